// Package soil is the rhizosphere soil component.
//
// It attaches soil state (carbon concentrations, temperature, volume) to
// every root segment and advances it once per time step:
//
//  1. refresh inputs linked from sibling components
//  2. extend the state to segments created by growth
//  3. run every process (degradation rates)
//  4. run every update (concentration balances)
//
// Lifecycle:
//
//	c, err := soil.New(g, 3600, soil.Scenario{"Km_hexose_degradation": 5e-5})
//	c.Link(coupling.Direct(carbon, soil.HexoseExudation, "hexose_exudation"))
//	err = c.PostSetup()
//	for ... {
//	    err = c.Step()
//	}
//
// Parameters are fixed once New returns. Component also implements
// [coupling.Source], so other components can link to its outputs.
package soil
