package experiment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rhizosoil/internal/config"
	"github.com/san-kum/rhizosoil/internal/coupling"
	"github.com/san-kum/rhizosoil/internal/soil"
)

func setup(t *testing.T, cfg *config.Config) *Experiment {
	t.Helper()
	e := New(cfg)
	require.NoError(t, e.Setup())
	return e
}

func TestRunDefault(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 6
	e := setup(t, cfg)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 6, result.StepsTaken)
	assert.Equal(t, 6, e.Component().Steps())
	assert.Len(t, result.Times, 7)
	assert.Equal(t, 6*cfg.TimeStep, result.Times[6])
	assert.Equal(t, 1.0, result.Metrics["positivity_C_hexose_soil"])
	assert.Greater(t, result.Metrics["total_hexose_degradation"], 0.0)
	require.NoError(t, e.Component().Check())
}

func TestRunWithGrowth(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Segments = 2
	cfg.Steps = 5
	cfg.Growth = config.GrowthConfig{Pattern: "apical", Every: 2, Mass: 2e-4}
	e := setup(t, cfg)

	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []int{2, 2, 2, 3, 3, 4}, result.Entities)
	require.NoError(t, e.Component().Check())

	mass, ok := e.Component().Field(soil.StructMass)
	require.True(t, ok)
	for _, id := range e.Tree().Vertices() {
		assert.Equal(t, 2e-4, mass[id])
	}
}

func TestStarvedSoilOnlyDegrades(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Forcing = "none"
	cfg.Steps = 4
	e := setup(t, cfg)

	before, _ := e.Component().Field(soil.CHexoseSoil)
	_, err := e.Run(context.Background())
	require.NoError(t, err)
	after, _ := e.Component().Field(soil.CHexoseSoil)

	for id, c := range after {
		assert.Less(t, c, before[id])
	}
}

func TestInputOverride(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Inputs = map[string]float64{soil.HexoseExudation: 1e-15, soil.RootExchangeSurface: 2e-8}
	e := setup(t, cfg)

	exu, _ := e.Component().Field(soil.HexoseExudation)
	surf, _ := e.Component().Field(soil.RootExchangeSurface)
	for _, id := range e.Tree().Vertices() {
		assert.Equal(t, 1e-15, exu[id])
		assert.Equal(t, 2e-8, surf[id])
	}
}

func TestInputOverrideUnknownTarget(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Inputs = map[string]float64{"nitrate_uptake": 1}
	err := New(cfg).Setup()
	assert.ErrorIs(t, err, coupling.ErrUnknownTarget)
}

func TestUnstablePresetIsCounted(t *testing.T) {
	e := setup(t, config.GetPreset("unstable"))
	result, err := e.Run(context.Background())
	require.NoError(t, err)
	assert.Positive(t, result.Unstable)
}

func TestSetupErrors(t *testing.T) {
	tests := []struct {
		name   string
		modify func(*config.Config)
	}{
		{"unknown forcing", func(c *config.Config) { c.Forcing = "tropical" }},
		{"unknown growth", func(c *config.Config) { c.Growth = config.GrowthConfig{Pattern: "spiral", Every: 1} }},
		{"unknown scenario key", func(c *config.Config) { c.Scenario = map[string]float64{"nope": 1} }},
		{"invalid config", func(c *config.Config) { c.Steps = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			tt.modify(cfg)
			assert.Error(t, New(cfg).Setup())
		})
	}
}

func TestRunBeforeSetup(t *testing.T) {
	_, err := New(config.DefaultConfig()).Run(context.Background())
	assert.Error(t, err)
}

func TestRunsAreReproducible(t *testing.T) {
	run := func(workers int) map[string]float64 {
		cfg := config.GetPreset("branching")
		cfg.Steps = 25
		cfg.Workers = workers
		e := setup(t, cfg)
		result, err := e.Run(context.Background())
		require.NoError(t, err)
		return result.Metrics
	}
	assert.Equal(t, run(1), run(4))
}

func TestRegistryListings(t *testing.T) {
	r := NewRegistry()
	assert.Equal(t, []string{"apical", "branching", "none"}, r.ListGrowth())
	assert.Equal(t, []string{"baseline", "none", "rich"}, r.ListProfiles())

	p, err := r.GetProfile("rich", nil)
	require.NoError(t, err)
	q, _ := r.GetProfile("baseline", nil)
	assert.InDelta(t, 5*q.Carbon[soil.HexoseExudation], p.Carbon[soil.HexoseExudation], 1e-30)
}

func TestSweep(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 4
	cfg.Forcing = "none"

	results, err := Sweep(context.Background(), cfg, "soil_temperature_in_Celsius", []float64{5, 15, 25})
	require.NoError(t, err)
	require.Len(t, results, 3)

	degraded := func(i int) float64 { return results[i].Metrics["total_hexose_degradation"] }
	assert.Less(t, degraded(0), degraded(1))
	assert.Less(t, degraded(1), degraded(2))
	assert.Nil(t, cfg.Scenario, "base config must not be modified")
}

func TestSweepSetupError(t *testing.T) {
	_, err := Sweep(context.Background(), config.DefaultConfig(), "not_a_parameter", []float64{1})
	assert.Error(t, err)
}

func TestRunWithLeavesBaseUntouched(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Steps = 2
	cfg.Scenario = map[string]float64{soil.SoilTemperature: 10}

	result, err := RunWith(context.Background(), cfg, map[string]float64{"Km_hexose_degradation": 1e-4})
	require.NoError(t, err)
	assert.Equal(t, 2, result.StepsTaken)
	assert.Equal(t, map[string]float64{soil.SoilTemperature: 10}, cfg.Scenario)
}
