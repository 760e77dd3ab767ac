package soil

// Inputs linked from sibling components.
const (
	HexoseExudation            = "hexose_exudation"
	PhloemHexoseExudation      = "phloem_hexose_exudation"
	HexoseUptakeFromSoil       = "hexose_uptake_from_soil"
	PhloemHexoseUptakeFromSoil = "phloem_hexose_uptake_from_soil"
	MucilageSecretion          = "mucilage_secretion"
	CellsRelease               = "cells_release"
	RootExchangeSurface        = "root_exchange_surface"
	StructMass                 = "struct_mass"
)

// State variables owned by the soil.
const (
	SoilTemperature     = "soil_temperature_in_Celsius"
	CHexoseSoil         = "C_hexose_soil"
	CsMucilageSoil      = "Cs_mucilage_soil"
	CsCellsSoil         = "Cs_cells_soil"
	CMineralNSoil       = "C_mineralN_soil"
	CAASoil             = "C_AA_soil"
	WaterPotentialSoil  = "water_potential_soil"
	VolumeSoil          = "volume_soil"
	HexoseDegradation   = "hexose_degradation"
	MucilageDegradation = "mucilage_degradation"
	CellsDegradation    = "cells_degradation"
)

// TimeStep is the scalar argument carrying the step length in seconds.
const TimeStep = "time_step_in_seconds"
