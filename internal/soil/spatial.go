package soil

import (
	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

// Spatial is an optional soil discretization shared by neighbouring
// segments. When set, the carbon flows of every segment are handed to it
// before the processes run and the intensive soil states it returns replace
// the per-segment values after the updates.
type Spatial interface {
	ApplyFlows(ids []tree.ID, flows map[string]state.Field) error
	ReadStates(ids []tree.ID, names []string) (map[string]state.Field, error)
}

// flowInputs are the extensive inputs a Spatial receives.
var flowInputs = []string{
	HexoseExudation,
	PhloemHexoseExudation,
	HexoseUptakeFromSoil,
	PhloemHexoseUptakeFromSoil,
	MucilageSecretion,
	CellsRelease,
}
