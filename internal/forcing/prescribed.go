// Package forcing provides stand-ins for the sibling components that feed
// the soil: carbon transport, anatomy and growth.
package forcing

import (
	"maps"
	"slices"

	"github.com/san-kum/rhizosoil/internal/coupling"
	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

// Prescribed reports a fixed value per variable on every vertex of a tree,
// including vertices added after construction.
type Prescribed struct {
	name   string
	tree   tree.Tree
	values map[string]float64
}

func NewPrescribed(name string, t tree.Tree, values map[string]float64) *Prescribed {
	return &Prescribed{name: name, tree: t, values: maps.Clone(values)}
}

func (p *Prescribed) Name() string { return p.name }

func (p *Prescribed) Field(name string) (state.Field, bool) {
	v, ok := p.values[name]
	if !ok {
		return nil, false
	}
	return state.Fill(p.tree.Vertices(), v), true
}

// Variables lists the prescribed names in sorted order.
func (p *Prescribed) Variables() []string {
	return slices.Sorted(maps.Keys(p.values))
}

// Links connects every prescribed variable to the input of the same name.
func (p *Prescribed) Links() []coupling.Link {
	names := p.Variables()
	links := make([]coupling.Link, 0, len(names))
	for _, name := range names {
		links = append(links, coupling.Direct(p, name, name))
	}
	return links
}
