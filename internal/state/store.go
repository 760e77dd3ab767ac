package state

import (
	"fmt"
	"math"
	"slices"

	"github.com/san-kum/rhizosoil/internal/tree"
)

// Store owns the canonical per-entity fields of one component. Parameters are
// not kept here. A Store is driven by a single goroutine: the dispatcher may
// fan out reads but writes go through Set between bindings.
type Store struct {
	decls  map[string]Declaration
	order  []string
	fields map[string]Field

	ids     []tree.ID
	present map[tree.ID]struct{}
	ready   bool
}

func New() *Store {
	return &Store{
		decls:   make(map[string]Declaration),
		fields:  make(map[string]Field),
		present: make(map[tree.ID]struct{}),
	}
}

// Initialize declares every per-entity variable and fills missing entries with
// the declared default. A field already set (for instance by a coupling refresh)
// is reused and only completed.
func (s *Store) Initialize(ids []tree.ID, decls []Declaration) error {
	for _, d := range decls {
		if !d.PerEntity() {
			continue
		}
		if math.IsNaN(d.Default) {
			return fmt.Errorf("%w: %s", ErrNoDefault, d.Name)
		}
		if _, dup := s.decls[d.Name]; dup {
			return fmt.Errorf("%w: %s", ErrDuplicate, d.Name)
		}
		s.decls[d.Name] = d
		s.order = append(s.order, d.Name)
	}

	// fields set before Initialize under a name that is not declared are
	// derived outputs; they follow the extensive rule.
	for name := range s.fields {
		if _, ok := s.decls[name]; !ok {
			s.derive(name)
		}
	}

	for _, id := range ids {
		s.present[id] = struct{}{}
	}
	s.ids = sortedKeys(s.present)

	for _, name := range s.order {
		f, ok := s.fields[name]
		if !ok {
			f = make(Field, len(s.ids))
			s.fields[name] = f
		}
		def := s.decls[name].Default
		for _, id := range s.ids {
			if _, ok := f[id]; !ok {
				f[id] = def
			}
		}
	}

	s.ready = true
	return s.Check()
}

// Extend adds entities created by growth. Ids already present are skipped, so
// calling Extend twice with the same ids is a no-op. State variables of a new
// entity start from the parent's current value; inputs that were not already
// populated start from their default.
func (s *Store) Extend(t tree.Tree, ids []tree.ID) error {
	if !s.ready {
		return ErrNotInitialized
	}

	pending := make([]tree.ID, 0, len(ids))
	for _, id := range ids {
		if _, ok := s.present[id]; !ok && !slices.Contains(pending, id) {
			pending = append(pending, id)
		}
	}
	if len(pending) == 0 {
		return nil
	}
	slices.Sort(pending)

	// a parent may itself be new, so resolve in waves
	for len(pending) > 0 {
		var next []tree.ID
		for _, id := range pending {
			parent, hasParent := t.Parent(id)
			if hasParent {
				if _, ok := s.present[parent]; !ok {
					next = append(next, id)
					continue
				}
			}
			s.seed(id, parent, hasParent)
		}
		if len(next) == len(pending) {
			return fmt.Errorf("%w: %v", ErrOrphan, next)
		}
		pending = next
	}

	s.ids = sortedKeys(s.present)
	return s.Check()
}

func (s *Store) seed(id, parent tree.ID, hasParent bool) {
	for _, name := range s.order {
		f := s.fields[name]
		if _, ok := f[id]; ok {
			continue
		}
		d := s.decls[name]
		if d.Role == StateVariable && hasParent {
			f[id] = f[parent]
			continue
		}
		f[id] = d.Default
	}
	s.present[id] = struct{}{}
}

// Sync extends the store with every vertex of t it does not know yet.
func (s *Store) Sync(t tree.Tree) error {
	return s.Extend(t, t.Vertices())
}

// Get returns the live field for name. Callers must not keep it across a Set.
func (s *Store) Get(name string) (Field, bool) {
	f, ok := s.fields[name]
	return f, ok
}

// Set replaces the field for name. A name that was never declared becomes a
// derived extensive state variable with a zero default.
func (s *Store) Set(name string, f Field) {
	if _, ok := s.decls[name]; !ok && s.ready {
		s.derive(name)
	}
	s.fields[name] = f
}

func (s *Store) derive(name string) {
	s.decls[name] = Declaration{Name: name, Role: StateVariable, Extensivity: Extensive, By: "derived"}
	s.order = append(s.order, name)
}

// Value returns a single entry.
func (s *Store) Value(name string, id tree.ID) (float64, error) {
	f, ok := s.fields[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrUnknownVariable, name)
	}
	v, ok := f[id]
	if !ok {
		return 0, &InvariantError{Variable: name, Missing: []tree.ID{id}}
	}
	return v, nil
}

// Check verifies that every field covers exactly the entity set.
func (s *Store) Check() error {
	for _, name := range s.order {
		f := s.fields[name]
		var missing, extra []tree.ID
		for _, id := range s.ids {
			if _, ok := f[id]; !ok {
				missing = append(missing, id)
			}
		}
		if len(f) != len(s.ids)-len(missing) {
			for id := range f {
				if _, ok := s.present[id]; !ok {
					extra = append(extra, id)
				}
			}
			slices.Sort(extra)
		}
		if len(missing) > 0 || len(extra) > 0 {
			return &InvariantError{Variable: name, Missing: missing, Extra: extra}
		}
	}
	return nil
}

func (s *Store) Has(name string) bool {
	_, ok := s.fields[name]
	return ok
}

func (s *Store) Declaration(name string) (Declaration, bool) {
	d, ok := s.decls[name]
	return d, ok
}

// Names returns the stored variables in declaration order.
func (s *Store) Names() []string { return slices.Clone(s.order) }

// IDs returns the entity set in ascending order.
func (s *Store) IDs() []tree.ID { return slices.Clone(s.ids) }

func (s *Store) Len() int { return len(s.ids) }

func sortedKeys(m map[tree.ID]struct{}) []tree.ID {
	ids := make([]tree.ID, 0, len(m))
	for id := range m {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}
