package experiment

import (
	"context"
	"maps"

	"github.com/san-kum/rhizosoil/internal/config"
	"github.com/san-kum/rhizosoil/internal/sim"
)

func withOverrides(base *config.Config, overrides map[string]float64) *config.Config {
	cfg := *base
	cfg.Scenario = maps.Clone(base.Scenario)
	if cfg.Scenario == nil {
		cfg.Scenario = make(map[string]float64, len(overrides))
	}
	maps.Copy(cfg.Scenario, overrides)
	return &cfg
}

// RunWith sets up and runs base with extra scenario overrides. base is not
// modified.
func RunWith(ctx context.Context, base *config.Config, overrides map[string]float64, opts ...Option) (*sim.Result, error) {
	e := New(withOverrides(base, overrides), opts...)
	if err := e.Setup(); err != nil {
		return nil, err
	}
	return e.Run(ctx)
}

// Sweep runs base once per value of a scenario key, concurrently. Results
// are in the order of values.
func Sweep(ctx context.Context, base *config.Config, key string, values []float64, opts ...Option) ([]*sim.Result, error) {
	simCfg := New(base, opts...).SimConfig()
	factory := func(idx int) (*sim.Simulator, error) {
		e := New(withOverrides(base, map[string]float64{key: values[idx]}), opts...)
		if err := e.Setup(); err != nil {
			return nil, err
		}
		return e.GetSimulator(), nil
	}

	return sim.NewEnsemble(factory, len(values)).Run(ctx, simCfg)
}
