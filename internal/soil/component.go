package soil

import (
	"fmt"
	"io"
	"log/slog"
	"slices"
	"sync/atomic"
	"time"

	"github.com/san-kum/rhizosoil/internal/coupling"
	"github.com/san-kum/rhizosoil/internal/dispatch"
	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

const Name = "model_soil"

// Diagnostics receives counters the component produces while stepping.
type Diagnostics interface {
	UnstableTemperature(process string, temperature float64)
	StepCompleted(entities int, elapsed time.Duration)
}

type noDiagnostics struct{}

func (noDiagnostics) UnstableTemperature(string, float64) {}
func (noDiagnostics) StepCompleted(int, time.Duration)    {}

// Component is the soil model attached to one root tree. It is not safe for
// concurrent use; one step completes before the next starts.
type Component struct {
	tree   tree.Tree
	dt     float64
	params Params
	decls  []state.Declaration

	store      *state.Store
	linker     *coupling.Linker
	dispatcher *dispatch.Dispatcher
	spatial    Spatial

	diag    Diagnostics
	logger  *slog.Logger
	workers int

	unstable atomic.Int64
	steps    int
	ready    bool
}

type Option func(*Component)

func WithLogger(l *slog.Logger) Option {
	return func(c *Component) {
		if l != nil {
			c.logger = l
		}
	}
}

func WithDiagnostics(d Diagnostics) Option {
	return func(c *Component) {
		if d != nil {
			c.diag = d
		}
	}
}

// WithWorkers spreads each binding over n goroutines.
func WithWorkers(n int) Option {
	return func(c *Component) { c.workers = n }
}

func WithSpatial(s Spatial) Option {
	return func(c *Component) { c.spatial = s }
}

// WithLinks adds coupling links, as Link does.
func WithLinks(links ...coupling.Link) Option {
	return func(c *Component) {
		for _, l := range links {
			c.linker.Add(l)
		}
	}
}

// New applies the scenario to the defaults, fixes the parameters and
// populates the state of every current vertex of t.
func New(t tree.Tree, dt float64, scenario Scenario, opts ...Option) (*Component, error) {
	if dt <= 0 {
		return nil, fmt.Errorf("%w (got %g)", ErrTimeStep, dt)
	}

	params := DefaultParams()
	decls := baseDeclarations()
	if err := scenario.apply(&params, decls); err != nil {
		return nil, err
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}

	c := &Component{
		tree:    t,
		dt:      dt,
		params:  params,
		decls:   decls,
		store:   state.New(),
		linker:  coupling.NewLinker(),
		diag:    noDiagnostics{},
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		workers: 1,
	}
	for _, opt := range opts {
		opt(c)
	}

	if err := c.store.Initialize(t.Vertices(), decls); err != nil {
		return nil, err
	}
	return c, nil
}

// Link couples a local input to sibling outputs. Links are fixed by PostSetup.
func (c *Component) Link(l coupling.Link) error {
	if c.ready {
		return ErrLinkAfterSetup
	}
	c.linker.Add(l)
	return nil
}

// PostSetup validates the links, builds the process and update bindings and
// performs the first refresh so linked inputs are visible before any step.
// It must run once, after every sibling exists.
func (c *Component) PostSetup() error {
	if c.ready {
		return ErrAlreadySetup
	}
	isInput := func(name string) bool {
		d, ok := c.store.Declaration(name)
		return ok && d.Role == state.Input
	}
	if err := c.linker.Validate(isInput); err != nil {
		return err
	}

	d, err := dispatch.Build(c.registry(), c.store, c,
		dispatch.WithWorkers(c.workers),
		dispatch.WithLogger(c.logger),
	)
	if err != nil {
		return err
	}
	c.dispatcher = d

	if err := c.refresh(); err != nil {
		return err
	}
	c.ready = true
	c.logger.Info("soil component ready",
		"entities", c.store.Len(),
		"links", len(c.linker.Links()),
		"processes", len(d.Bindings(dispatch.Process)),
		"updates", len(d.Bindings(dispatch.Update)))
	return nil
}

func (c *Component) refresh() error {
	ids := c.tree.Vertices()
	if err := c.linker.Refresh(ids, c.store); err != nil {
		return err
	}
	return c.store.Extend(c.tree, ids)
}

// Step advances the soil by one time step. Calling it twice advances two
// steps; growth must happen between calls, never during one.
func (c *Component) Step() error {
	if !c.ready {
		return ErrNotReady
	}
	start := time.Now()

	if err := c.refresh(); err != nil {
		return fmt.Errorf("step %d: %w", c.steps, err)
	}
	if c.spatial != nil {
		if err := c.applySpatialFlows(); err != nil {
			return fmt.Errorf("step %d: %w", c.steps, err)
		}
	}
	if err := c.dispatcher.Evaluate(dispatch.Process); err != nil {
		return fmt.Errorf("step %d: %w", c.steps, err)
	}
	if err := c.dispatcher.Evaluate(dispatch.Update); err != nil {
		return fmt.Errorf("step %d: %w", c.steps, err)
	}
	if c.spatial != nil {
		if err := c.readSpatialStates(); err != nil {
			return fmt.Errorf("step %d: %w", c.steps, err)
		}
	}
	if err := c.store.Check(); err != nil {
		return fmt.Errorf("step %d: %w", c.steps, err)
	}

	c.steps++
	c.diag.StepCompleted(c.store.Len(), time.Since(start))
	c.logger.Debug("soil step", "step", c.steps, "entities", c.store.Len())
	return nil
}

func (c *Component) applySpatialFlows() error {
	flows := make(map[string]state.Field, len(flowInputs))
	for _, name := range flowInputs {
		f, _ := c.store.Get(name)
		flows[name] = f.Clone()
	}
	return c.spatial.ApplyFlows(c.store.IDs(), flows)
}

func (c *Component) readSpatialStates() error {
	var names []string
	for _, d := range c.decls {
		if d.Role == state.StateVariable && d.Extensivity == state.Intensive {
			names = append(names, d.Name)
		}
	}
	ids := c.store.IDs()
	states, err := c.spatial.ReadStates(ids, names)
	if err != nil {
		return err
	}
	for _, name := range names {
		f, ok := states[name]
		if !ok {
			continue
		}
		merged, _ := c.store.Get(name)
		merged = merged.Clone()
		for _, id := range ids {
			if v, ok := f[id]; ok {
				merged[id] = v
			}
		}
		c.store.Set(name, merged)
	}
	return nil
}

func (c *Component) unstableTemperature(process string, temperature float64) {
	c.unstable.Add(1)
	c.logger.Warn("temperature response unstable, rate set to 0",
		"process", process, "temperature", temperature)
	c.diag.UnstableTemperature(process, temperature)
}

func (c *Component) Name() string { return Name }

// Field returns a copy of the current per-entity values of a variable.
func (c *Component) Field(name string) (state.Field, bool) {
	f, ok := c.store.Get(name)
	if !ok {
		return nil, false
	}
	return f.Clone(), true
}

// Param resolves the scalar arguments of the bindings.
func (c *Component) Param(name string) (float64, bool) {
	if name == TimeStep {
		return c.dt, true
	}
	return c.params.Param(name)
}

func (c *Component) Params() Params { return c.params }

func (c *Component) TimeStep() float64 { return c.dt }

// Steps returns the number of completed steps.
func (c *Component) Steps() int { return c.steps }

// Unstable returns how many unstable temperature responses were clamped.
func (c *Component) Unstable() int64 { return c.unstable.Load() }

// Entities returns the current entity set.
func (c *Component) Entities() []tree.ID { return c.store.IDs() }

// Variables lists the stored variables in declaration order.
func (c *Component) Variables() []string { return c.store.Names() }

// Check verifies the entity-set invariant of the store.
func (c *Component) Check() error { return c.store.Check() }

// Documentation lists every declaration, parameters included.
func (c *Component) Documentation() []state.Declaration {
	out := slices.Clone(c.decls)
	p := c.params
	return append(out, p.Declarations()...)
}

// Bindings exposes the resolved computations once PostSetup has run.
func (c *Component) Bindings(tag dispatch.Tag) []dispatch.Binding {
	if c.dispatcher == nil {
		return nil
	}
	return c.dispatcher.Bindings(tag)
}
