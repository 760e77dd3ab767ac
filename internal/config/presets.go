package config

import (
	"maps"
	"slices"
)

var Presets = map[string]*Config{
	"default": DefaultConfig(),
	"warm-q10": {
		TimeStep: 3600, Steps: 48, Segments: 10, Forcing: "baseline", Workers: 1, DataDir: DefaultDataDir,
		Growth: GrowthConfig{Pattern: "none", Mass: DefaultMass},
		Scenario: map[string]float64{
			"soil_temperature_in_Celsius":   25,
			"hexose_degradation_rate_max_B": 2,
		},
	},
	"linear": {
		TimeStep: 3600, Steps: 24, Segments: 10, Forcing: "baseline", Workers: 1, DataDir: DefaultDataDir,
		Growth: GrowthConfig{Pattern: "none", Mass: DefaultMass},
		Scenario: map[string]float64{
			"hexose_degradation_rate_max_A": 0.05,
			"hexose_degradation_rate_max_B": 1,
			"hexose_degradation_rate_max_C": 0,
		},
	},
	"unstable": {
		TimeStep: 3600, Steps: 12, Segments: 4, Forcing: "baseline", Workers: 1, DataDir: DefaultDataDir,
		Growth: GrowthConfig{Pattern: "none", Mass: DefaultMass},
		Scenario: map[string]float64{
			"soil_temperature_in_Celsius":   30,
			"hexose_degradation_rate_max_B": -1,
		},
	},
	"branching": {
		TimeStep: 3600, Steps: 48, Segments: 3, Forcing: "rich", Workers: 4, DataDir: DefaultDataDir,
		Growth: GrowthConfig{Pattern: "branching", Every: 12, Mass: DefaultMass, Limit: 200},
	},
	"apical": {
		TimeStep: 1800, Steps: 96, Segments: 5, Forcing: "baseline", Workers: 1, DataDir: DefaultDataDir,
		Growth: GrowthConfig{Pattern: "apical", Every: 8, Mass: DefaultMass},
	},
	"starved": {
		TimeStep: 3600, Steps: 24, Segments: 10, Forcing: "none", Workers: 1, DataDir: DefaultDataDir,
		Growth: GrowthConfig{Pattern: "none", Mass: DefaultMass},
	},
}

// GetPreset returns a copy of the named preset, or nil.
func GetPreset(name string) *Config {
	p, ok := Presets[name]
	if !ok {
		return nil
	}
	cfg := *p
	cfg.Inputs = maps.Clone(p.Inputs)
	cfg.Scenario = maps.Clone(p.Scenario)
	cfg.Record = slices.Clone(p.Record)
	return &cfg
}

func ListPresets() []string {
	return slices.Sorted(maps.Keys(Presets))
}
