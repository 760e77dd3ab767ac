package kinetics

// MichaelisMenten returns vmax*surface*conc/(km+conc), never negative.
func MichaelisMenten(vmax, surface, conc, km float64) float64 {
	return max(vmax*surface*conc/(km+conc), 0)
}

// Degradation is the temperature-corrected Michaelis-Menten consumption rate
// of a carbon pool at the root surface.
type Degradation struct {
	AtRef   float64
	RateMax float64
	Km      float64
	Thermal Thermal
}

// Rate returns the degradation rate (mol.s-1) for one root segment.
func (d Degradation) Rate(conc, surface, temperature float64) (rate float64, unstable bool, err error) {
	corr, unstable, err := TemperatureModification(d.AtRef, temperature, d.Thermal)
	if err != nil {
		return 0, false, err
	}
	return MichaelisMenten(d.RateMax*corr, surface, conc, d.Km), unstable, nil
}

// Saturation is the limit of Rate as the concentration grows.
func (d Degradation) Saturation(surface, temperature float64) (float64, error) {
	corr, _, err := TemperatureModification(d.AtRef, temperature, d.Thermal)
	if err != nil {
		return 0, err
	}
	return d.RateMax * corr * surface, nil
}
