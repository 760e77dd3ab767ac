package tree

import (
	"errors"
	"fmt"
	"slices"
)

// ID identifies a root segment.
type ID int

// Tree is the view of the externally owned root graph.
type Tree interface {
	// Vertices returns every live entity in ascending order.
	Vertices() []ID
	// Parent returns the parent of id; ok is false for a root or an unknown id.
	Parent(id ID) (parent ID, ok bool)
}

var ErrUnknownVertex = errors.New("tree: unknown vertex")

type node struct {
	parent    ID
	hasParent bool
	children  []ID
}

// Graph is a minimal growable tree. It is not safe for concurrent use;
// growth happens between steps.
type Graph struct {
	nodes map[ID]*node
	next  ID
}

func NewGraph() *Graph {
	return &Graph{nodes: make(map[ID]*node), next: 1}
}

// AddRoot inserts a vertex without a parent.
func (g *Graph) AddRoot() ID {
	id := g.next
	g.next++
	g.nodes[id] = &node{}
	return id
}

// AddChild subdivides parent by appending a new child vertex.
func (g *Graph) AddChild(parent ID) (ID, error) {
	p, ok := g.nodes[parent]
	if !ok {
		return 0, fmt.Errorf("%w: %d", ErrUnknownVertex, parent)
	}
	id := g.next
	g.next++
	g.nodes[id] = &node{parent: parent, hasParent: true}
	p.children = append(p.children, id)
	return id, nil
}

func (g *Graph) Vertices() []ID {
	ids := make([]ID, 0, len(g.nodes))
	for id := range g.nodes {
		ids = append(ids, id)
	}
	slices.Sort(ids)
	return ids
}

func (g *Graph) Parent(id ID) (ID, bool) {
	n, ok := g.nodes[id]
	if !ok || !n.hasParent {
		return 0, false
	}
	return n.parent, true
}

func (g *Graph) Children(id ID) []ID {
	n, ok := g.nodes[id]
	if !ok {
		return nil
	}
	return slices.Clone(n.children)
}

// Tips returns the vertices without children, in ascending order.
func (g *Graph) Tips() []ID {
	var tips []ID
	for _, id := range g.Vertices() {
		if len(g.nodes[id].children) == 0 {
			tips = append(tips, id)
		}
	}
	return tips
}

func (g *Graph) Len() int { return len(g.nodes) }

// Depth counts the ancestors of id.
func (g *Graph) Depth(id ID) int {
	d := 0
	for {
		p, ok := g.Parent(id)
		if !ok {
			return d
		}
		d++
		id = p
	}
}
