package experiment

import (
	"fmt"
	"log/slog"
	"maps"
	"slices"

	"github.com/san-kum/rhizosoil/internal/config"
	"github.com/san-kum/rhizosoil/internal/forcing"
	"github.com/san-kum/rhizosoil/internal/metrics"
	"github.com/san-kum/rhizosoil/internal/sim"
	"github.com/san-kum/rhizosoil/internal/soil"
	"github.com/san-kum/rhizosoil/internal/tree"
)

// Profile holds the prescribed sibling outputs for a run.
type Profile struct {
	Carbon  map[string]float64
	Anatomy map[string]float64
}

type growthFunc func(g *tree.Graph, cfg config.GrowthConfig, logger *slog.Logger) (*forcing.Growth, error)

type Registry struct {
	growth   map[string]growthFunc
	profiles map[string]func() Profile
}

func NewRegistry() *Registry {
	r := &Registry{
		growth:   make(map[string]growthFunc),
		profiles: make(map[string]func() Profile),
	}

	for _, p := range []forcing.Pattern{forcing.None, forcing.Apical, forcing.Branching} {
		pattern := p
		r.growth[string(pattern)] = func(g *tree.Graph, cfg config.GrowthConfig, logger *slog.Logger) (*forcing.Growth, error) {
			return forcing.NewGrowth(g, pattern, cfg.Every, cfg.Mass,
				forcing.WithLimit(cfg.Limit), forcing.WithGrowthLogger(logger))
		}
	}

	r.profiles["baseline"] = func() Profile { return baseline(1) }
	r.profiles["rich"] = func() Profile { return baseline(5) }
	r.profiles["none"] = func() Profile {
		p := baseline(0)
		p.Carbon = map[string]float64{}
		return p
	}

	return r
}

// baseline scales the carbon fluxes of a young root segment by k.
func baseline(k float64) Profile {
	return Profile{
		Carbon: map[string]float64{
			soil.HexoseExudation:      k * 2e-16,
			soil.HexoseUptakeFromSoil: k * 5e-17,
			soil.MucilageSecretion:    k * 1e-16,
			soil.CellsRelease:         k * 3e-17,
		},
		Anatomy: map[string]float64{
			soil.RootExchangeSurface: 1e-8,
		},
	}
}

func (r *Registry) GetGrowth(name string, g *tree.Graph, cfg config.GrowthConfig, logger *slog.Logger) (*forcing.Growth, error) {
	if name == "" {
		name = string(forcing.None)
	}
	fn, ok := r.growth[name]
	if !ok {
		return nil, fmt.Errorf("unknown growth pattern: %s", name)
	}
	return fn(g, cfg, logger)
}

// GetProfile returns a fresh copy of the named profile with inputs applied
// over it. An override lands in the anatomy map when that map already
// holds the name, in the carbon map otherwise.
func (r *Registry) GetProfile(name string, inputs map[string]float64) (Profile, error) {
	fn, ok := r.profiles[name]
	if !ok {
		return Profile{}, fmt.Errorf("unknown forcing profile: %s", name)
	}
	p := fn()
	for k, v := range inputs {
		if _, ok := p.Anatomy[k]; ok {
			p.Anatomy[k] = v
			continue
		}
		p.Carbon[k] = v
	}
	return p, nil
}

func (r *Registry) ListGrowth() []string {
	return slices.Sorted(maps.Keys(r.growth))
}

func (r *Registry) ListProfiles() []string {
	return slices.Sorted(maps.Keys(r.profiles))
}

func (r *Registry) DefaultMetrics(dt float64) []sim.Metric {
	return []sim.Metric{
		metrics.NewMean(soil.CHexoseSoil),
		metrics.NewPeak(soil.CHexoseSoil),
		metrics.NewPositivity(soil.CHexoseSoil),
		metrics.NewTotal(soil.HexoseDegradation, dt),
		metrics.NewStock(soil.VolumeSoil, soil.CHexoseSoil, soil.CsMucilageSoil, soil.CsCellsSoil),
	}
}
