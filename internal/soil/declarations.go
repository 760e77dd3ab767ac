package soil

import "github.com/san-kum/rhizosoil/internal/state"

const (
	byCarbon  = "model_carbon"
	byAnatomy = "model_anatomy"
	byGrowth  = "model_growth"
	bySoil    = "model_soil"
)

func input(name string, def float64, unit, by, desc string) state.Declaration {
	return state.Declaration{Name: name, Role: state.Input, Default: def, Unit: unit, By: by, Description: desc}
}

func variable(name string, def float64, ext state.Extensivity, unit, desc string) state.Declaration {
	return state.Declaration{Name: name, Role: state.StateVariable, Default: def, Extensivity: ext, Unit: unit, By: bySoil, Description: desc}
}

// baseDeclarations lists the per-entity variables with their default values.
func baseDeclarations() []state.Declaration {
	return []state.Declaration{
		input(HexoseExudation, 0, "mol.s-1", byCarbon, "hexose exuded by the root"),
		input(PhloemHexoseExudation, 0, "mol.s-1", byCarbon, "hexose exuded from the phloem"),
		input(HexoseUptakeFromSoil, 0, "mol.s-1", byCarbon, "hexose taken up by the root"),
		input(PhloemHexoseUptakeFromSoil, 0, "mol.s-1", byCarbon, "hexose taken up into the phloem"),
		input(MucilageSecretion, 0, "mol.s-1", byCarbon, "mucilage secreted, in hexose equivalent"),
		input(CellsRelease, 0, "mol.s-1", byCarbon, "root cells released, in hexose equivalent"),
		input(RootExchangeSurface, 0, "m2", byAnatomy, "external surface in contact with soil solution"),
		input(StructMass, 1.35e-4, "g", byGrowth, "structural mass of the segment"),

		variable(SoilTemperature, 15, state.Intensive, "°C", "soil temperature"),
		variable(CHexoseSoil, 1e-5, state.Intensive, "mol.g-1", "hexose concentration in soil solution"),
		variable(CsMucilageSoil, 1e-5, state.Intensive, "mol.g-1", "mucilage concentration in soil"),
		variable(CsCellsSoil, 1e-5, state.Intensive, "mol.g-1", "released cells concentration in soil"),
		variable(CMineralNSoil, 5, state.Intensive, "mol.m-3", "mineral nitrogen concentration"),
		variable(CAASoil, 1e-4, state.Intensive, "mol.m-3", "amino acid concentration"),
		variable(WaterPotentialSoil, -0.1e6, state.Intensive, "Pa", "soil water potential"),
		variable(VolumeSoil, 1e-7, state.Extensive, "m3", "soil volume around the segment"),
		variable(HexoseDegradation, 0, state.Extensive, "mol.s-1", "hexose consumed by microorganisms"),
		variable(MucilageDegradation, 0, state.Extensive, "mol.s-1", "mucilage degraded"),
		variable(CellsDegradation, 0, state.Extensive, "mol.s-1", "released cells degraded"),
	}
}
