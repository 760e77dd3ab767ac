package state

import (
	"maps"

	"github.com/san-kum/rhizosoil/internal/tree"
)

// Role tells who produces a declared variable.
type Role int

const (
	// Input is produced by a sibling component and consumed here.
	Input Role = iota
	// StateVariable is owned and evolved by this component.
	StateVariable
	// Parameter is a scalar shared by every entity; never stored per entity.
	Parameter
)

func (r Role) String() string {
	switch r {
	case Input:
		return "input"
	case StateVariable:
		return "state_variable"
	case Parameter:
		return "parameter"
	default:
		return "unknown"
	}
}

// Extensivity decides how a state variable is seeded on subdivision.
type Extensivity int

const (
	Intensive Extensivity = iota
	Extensive
)

func (e Extensivity) String() string {
	if e == Extensive {
		return "extensive"
	}
	return "intensive"
}

// Declaration describes one named scalar of a component.
type Declaration struct {
	Name        string
	Role        Role
	Default     float64
	Extensivity Extensivity
	Unit        string
	By          string
	Description string
}

// PerEntity reports whether the declaration is stored per entity.
func (d Declaration) PerEntity() bool { return d.Role != Parameter }

// Field maps each entity to the current value of one variable.
type Field map[tree.ID]float64

func (f Field) Clone() Field { return maps.Clone(f) }

// Fill returns a field holding v for every id.
func Fill(ids []tree.ID, v float64) Field {
	f := make(Field, len(ids))
	for _, id := range ids {
		f[id] = v
	}
	return f
}
