package coupling

import (
	"errors"
	"fmt"

	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

var (
	ErrNoSource        = errors.New("coupling: link has no source component")
	ErrNoTerms         = errors.New("coupling: link has no source variable")
	ErrUnknownSource   = errors.New("coupling: source does not expose variable")
	ErrUnknownTarget   = errors.New("coupling: target is not a declared input")
	ErrMissingEntity   = errors.New("coupling: source value missing for entity")
	ErrSingleConverted = errors.New("coupling: single-variable link copies directly and cannot carry a conversion factor")
)

// Source is a sibling component whose per-entity outputs can be linked.
// Both sides share the same tree, hence the same entity ids.
type Source interface {
	Name() string
	Field(name string) (state.Field, bool)
}

// Sink receives refreshed fields. *state.Store satisfies it.
type Sink interface {
	Set(name string, f state.Field)
}

// Term is one contribution to a linked variable.
type Term struct {
	Variable string
	Factor   float64
}

// Link populates Target from one or more source variables. With several
// terms the target is the per-entity sum of value*Factor.
type Link struct {
	Source Source
	Target string
	Terms  []Term
}

// Direct links target to a single source variable.
func Direct(src Source, target, variable string) Link {
	return Link{Source: src, Target: target, Terms: []Term{{Variable: variable, Factor: 1}}}
}

// Sum links target to a weighted sum of source variables.
func Sum(src Source, target string, terms ...Term) Link {
	return Link{Source: src, Target: target, Terms: terms}
}

func (l Link) String() string {
	name := "<nil>"
	if l.Source != nil {
		name = l.Source.Name()
	}
	return fmt.Sprintf("%s<-%s", l.Target, name)
}

// LinkError reports a link that cannot be resolved.
type LinkError struct {
	Link     string
	Variable string
	Entity   tree.ID
	Err      error
}

func (e *LinkError) Error() string {
	if errors.Is(e.Err, ErrMissingEntity) {
		return fmt.Sprintf("%v (link=%s, variable=%s, entity=%d)", e.Err, e.Link, e.Variable, e.Entity)
	}
	if e.Variable != "" {
		return fmt.Sprintf("%v (link=%s, variable=%s)", e.Err, e.Link, e.Variable)
	}
	return fmt.Sprintf("%v (link=%s)", e.Err, e.Link)
}

func (e *LinkError) Unwrap() error { return e.Err }

// Linker pulls sibling outputs into the local namespace.
type Linker struct {
	links []Link
}

func NewLinker(links ...Link) *Linker {
	return &Linker{links: links}
}

func (l *Linker) Add(link Link) { l.links = append(l.links, link) }

func (l *Linker) Links() []Link { return l.links }

// Targets returns the local variables populated by links, in link order.
func (l *Linker) Targets() []string {
	out := make([]string, 0, len(l.links))
	for _, link := range l.links {
		out = append(out, link.Target)
	}
	return out
}

// Validate checks that every link is resolvable. isInput reports whether a
// local name is a declared input.
func (l *Linker) Validate(isInput func(name string) bool) error {
	for _, link := range l.links {
		if link.Source == nil {
			return &LinkError{Link: link.String(), Err: ErrNoSource}
		}
		if len(link.Terms) == 0 {
			return &LinkError{Link: link.String(), Err: ErrNoTerms}
		}
		if !isInput(link.Target) {
			return &LinkError{Link: link.String(), Variable: link.Target, Err: ErrUnknownTarget}
		}
		if len(link.Terms) == 1 && link.Terms[0].Factor != 0 && link.Terms[0].Factor != 1 {
			return &LinkError{Link: link.String(), Variable: link.Terms[0].Variable, Err: ErrSingleConverted}
		}
		for _, term := range link.Terms {
			if _, ok := link.Source.Field(term.Variable); !ok {
				return &LinkError{Link: link.String(), Variable: term.Variable, Err: ErrUnknownSource}
			}
		}
	}
	return nil
}

// Refresh overwrites every linked target for the given entities. A source
// value missing for any entity is an error; nothing is zero-filled.
func (l *Linker) Refresh(ids []tree.ID, sink Sink) error {
	for _, link := range l.links {
		f, err := l.resolve(link, ids)
		if err != nil {
			return err
		}
		sink.Set(link.Target, f)
	}
	return nil
}

func (l *Linker) resolve(link Link, ids []tree.ID) (state.Field, error) {
	sources := make([]state.Field, len(link.Terms))
	for i, term := range link.Terms {
		f, ok := link.Source.Field(term.Variable)
		if !ok {
			return nil, &LinkError{Link: link.String(), Variable: term.Variable, Err: ErrUnknownSource}
		}
		sources[i] = f
	}

	out := make(state.Field, len(ids))
	for _, id := range ids {
		if len(link.Terms) == 1 {
			v, ok := sources[0][id]
			if !ok {
				return nil, &LinkError{Link: link.String(), Variable: link.Terms[0].Variable, Entity: id, Err: ErrMissingEntity}
			}
			out[id] = v
			continue
		}
		sum := 0.0
		for i, term := range link.Terms {
			v, ok := sources[i][id]
			if !ok {
				return nil, &LinkError{Link: link.String(), Variable: term.Variable, Entity: id, Err: ErrMissingEntity}
			}
			sum += v * term.Factor
		}
		out[id] = sum
	}
	return out, nil
}
