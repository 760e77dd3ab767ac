package dispatch

import (
	"io"
	"log/slog"
	"slices"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

// Namespace holds the per-entity fields bindings read and write.
// *state.Store satisfies it.
type Namespace interface {
	Get(name string) (state.Field, bool)
	Set(name string, f state.Field)
	IDs() []tree.ID
}

// Parameters resolves scalar arguments.
type Parameters interface {
	Param(name string) (float64, bool)
}

// NoParameters resolves nothing.
type NoParameters struct{}

func (NoParameters) Param(string) (float64, bool) { return 0, false }

type argument struct {
	name   string
	scalar bool
	value  float64
}

// Binding is a registration whose arguments have been resolved.
type Binding struct {
	Tag    Tag
	Name   string
	Args   []string
	kernel Kernel
	args   []argument
}

const defaultMinChunk = 256

type Dispatcher struct {
	ns        Namespace
	processes []Binding
	updates   []Binding
	workers   int
	minChunk  int
	logger    *slog.Logger
}

type Option func(*Dispatcher)

// WithWorkers evaluates each binding on up to n goroutines.
func WithWorkers(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.workers = n
		}
	}
}

// WithMinChunk sets the smallest entity slice handed to one worker.
func WithMinChunk(n int) Option {
	return func(d *Dispatcher) {
		if n > 0 {
			d.minChunk = n
		}
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) {
		if l != nil {
			d.logger = l
		}
	}
}

// Build resolves every registration against ns and params.
func Build(reg *Registry, ns Namespace, params Parameters, opts ...Option) (*Dispatcher, error) {
	if params == nil {
		params = NoParameters{}
	}
	d := &Dispatcher{
		ns:       ns,
		workers:  1,
		minChunk: defaultMinChunk,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(d)
	}

	outputs := make(map[string]bool)
	for _, r := range reg.Registrations(Process) {
		b, err := resolve(r, ns, params, outputs)
		if err != nil {
			return nil, err
		}
		if _, ok := params.Param(r.Name); ok {
			return nil, &BindingError{Tag: Process, Binding: r.Name, Err: ErrShadowParameter}
		}
		outputs[r.Name] = true
		d.processes = append(d.processes, b)
	}

	seen := make(map[string]bool)
	for _, r := range reg.Registrations(Update) {
		if seen[r.Name] {
			return nil, &BindingError{Tag: Update, Binding: r.Name, Err: ErrDuplicate}
		}
		seen[r.Name] = true
		if _, ok := ns.Get(r.Name); !ok {
			return nil, &BindingError{Tag: Update, Binding: r.Name, Err: ErrUnknownTarget}
		}
		b, err := resolve(r, ns, params, outputs)
		if err != nil {
			return nil, err
		}
		d.updates = append(d.updates, b)
	}

	d.logger.Debug("bindings built", "processes", len(d.processes), "updates", len(d.updates))
	return d, nil
}

func resolve(r Registration, ns Namespace, params Parameters, outputs map[string]bool) (Binding, error) {
	fail := func(arg string, err error) (Binding, error) {
		return Binding{}, &BindingError{Tag: r.Tag, Binding: r.Name, Argument: arg, Err: err}
	}
	if r.Kernel == nil {
		return fail("", ErrNilKernel)
	}
	if len(r.Args) == 0 {
		return fail("", ErrNoArguments)
	}
	if r.Tag == Process && outputs[r.Name] {
		return fail("", ErrDuplicate)
	}

	args := make([]argument, len(r.Args))
	for i, name := range r.Args {
		_, stored := ns.Get(name)
		field := stored || outputs[name]
		v, scalar := params.Param(name)
		switch {
		case field && scalar:
			return fail(name, ErrAmbiguous)
		case scalar:
			args[i] = argument{name: name, scalar: true, value: v}
		case field:
			args[i] = argument{name: name}
		default:
			return fail(name, ErrUnknownArgument)
		}
	}
	return Binding{Tag: r.Tag, Name: r.Name, Args: slices.Clone(r.Args), kernel: r.Kernel, args: args}, nil
}

// Bindings returns the resolved bindings of a pass in evaluation order.
func (d *Dispatcher) Bindings(tag Tag) []Binding {
	if tag == Update {
		return slices.Clone(d.updates)
	}
	return slices.Clone(d.processes)
}

// Evaluate runs one pass over every entity of the namespace.
func (d *Dispatcher) Evaluate(tag Tag) error {
	ids := d.ns.IDs()
	if tag == Process {
		for _, b := range d.processes {
			out, err := d.run(b, ids)
			if err != nil {
				return err
			}
			d.ns.Set(b.Name, out)
		}
		return nil
	}

	staged := make([]state.Field, len(d.updates))
	for i, b := range d.updates {
		out, err := d.run(b, ids)
		if err != nil {
			return err
		}
		staged[i] = out
	}
	for i, b := range d.updates {
		d.ns.Set(b.Name, staged[i])
	}
	return nil
}

func (d *Dispatcher) run(b Binding, ids []tree.ID) (state.Field, error) {
	fields := make([]state.Field, len(b.args))
	for i, a := range b.args {
		if a.scalar {
			continue
		}
		f, ok := d.ns.Get(a.name)
		if !ok {
			return nil, &BindingError{Tag: b.Tag, Binding: b.Name, Argument: a.name, Err: ErrUnknownArgument}
		}
		fields[i] = f
	}

	values := make([]float64, len(ids))
	eval := func(start, end int) error {
		scratch := make([]float64, len(b.args))
		for j := start; j < end; j++ {
			id := ids[j]
			for i, a := range b.args {
				if a.scalar {
					scratch[i] = a.value
					continue
				}
				v, ok := fields[i][id]
				if !ok {
					return &BindingError{Tag: b.Tag, Binding: b.Name, Argument: a.name, Entity: id, HasEntity: true, Err: ErrMissingValue}
				}
				scratch[i] = v
			}
			v, err := b.kernel(scratch)
			if err != nil {
				return &BindingError{Tag: b.Tag, Binding: b.Name, Entity: id, HasEntity: true, Err: err}
			}
			values[j] = v
		}
		return nil
	}

	if err := d.parallelFor(len(ids), eval); err != nil {
		return nil, err
	}

	out := make(state.Field, len(ids))
	for j, id := range ids {
		out[id] = values[j]
	}
	return out, nil
}

// parallelFor splits [0, n) into contiguous chunks. The error reported is the
// one from the lowest chunk, so failures do not depend on scheduling.
func (d *Dispatcher) parallelFor(n int, fn func(start, end int) error) error {
	workers := d.workers
	if n/d.minChunk < workers {
		workers = n / d.minChunk
	}
	if workers <= 1 {
		return fn(0, n)
	}

	chunk := (n + workers - 1) / workers
	errs := make([]error, workers)
	var g errgroup.Group
	for w := 0; w < workers; w++ {
		start := w * chunk
		end := min(start+chunk, n)
		g.Go(func() error {
			errs[w] = fn(start, end)
			return errs[w]
		})
	}
	if err := g.Wait(); err == nil {
		return nil
	}

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}
