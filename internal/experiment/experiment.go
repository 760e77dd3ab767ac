package experiment

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/rhizosoil/internal/config"
	"github.com/san-kum/rhizosoil/internal/coupling"
	"github.com/san-kum/rhizosoil/internal/forcing"
	"github.com/san-kum/rhizosoil/internal/sim"
	"github.com/san-kum/rhizosoil/internal/soil"
	"github.com/san-kum/rhizosoil/internal/tree"
)

// Experiment wires a tree, its prescribed siblings, the soil component and
// a simulator from one configuration.
type Experiment struct {
	cfg       *config.Config
	registry  *Registry
	logger    *slog.Logger
	diag      soil.Diagnostics
	graph     *tree.Graph
	growth    *forcing.Growth
	soil      *soil.Component
	simulator *sim.Simulator
}

type Option func(*Experiment)

func WithLogger(l *slog.Logger) Option {
	return func(e *Experiment) {
		if l != nil {
			e.logger = l
		}
	}
}

func WithDiagnostics(d soil.Diagnostics) Option {
	return func(e *Experiment) { e.diag = d }
}

func WithRegistry(r *Registry) Option {
	return func(e *Experiment) { e.registry = r }
}

func New(cfg *config.Config, opts ...Option) *Experiment {
	e := &Experiment{
		cfg:      cfg,
		registry: NewRegistry(),
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *Experiment) Setup() error {
	if err := e.cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	e.graph = tree.NewGraph()
	prev := e.graph.AddRoot()
	for i := 1; i < e.cfg.Segments; i++ {
		next, err := e.graph.AddChild(prev)
		if err != nil {
			return err
		}
		prev = next
	}

	growth, err := e.registry.GetGrowth(e.cfg.Growth.Pattern, e.graph, e.cfg.Growth, e.logger)
	if err != nil {
		return err
	}
	e.growth = growth

	profile, err := e.registry.GetProfile(e.cfg.Forcing, e.cfg.Inputs)
	if err != nil {
		return err
	}
	carbon := forcing.NewPrescribed("model_carbon", e.graph, profile.Carbon)
	anatomy := forcing.NewPrescribed("model_anatomy", e.graph, profile.Anatomy)

	links := append(carbon.Links(), anatomy.Links()...)
	links = append(links, coupling.Direct(growth, soil.StructMass, "struct_mass"))

	opts := []soil.Option{
		soil.WithLogger(e.logger),
		soil.WithWorkers(e.cfg.Workers),
		soil.WithLinks(links...),
	}
	if e.diag != nil {
		opts = append(opts, soil.WithDiagnostics(e.diag))
	}
	comp, err := soil.New(e.graph, e.cfg.TimeStep, soil.Scenario(e.cfg.Scenario), opts...)
	if err != nil {
		return err
	}
	if err := comp.PostSetup(); err != nil {
		return err
	}
	e.soil = comp

	e.simulator = sim.New(comp, growth)
	e.simulator.SetLogger(e.logger)
	for _, m := range e.registry.DefaultMetrics(e.cfg.TimeStep) {
		e.simulator.AddMetric(m)
	}
	return nil
}

func (e *Experiment) Run(ctx context.Context) (*sim.Result, error) {
	if e.simulator == nil {
		return nil, fmt.Errorf("experiment not setup")
	}

	simCfg := e.SimConfig()
	e.logger.Info("starting run", "steps", simCfg.Steps, "entities", e.graph.Len(), "forcing", e.cfg.Forcing)
	return e.simulator.Run(ctx, simCfg)
}

// SimConfig checks the carbon pools for NaN/Inf after every step.
func (e *Experiment) SimConfig() sim.Config {
	return sim.Config{
		Steps:         e.cfg.Steps,
		ValidateState: true,
		Validate:      []string{soil.CHexoseSoil, soil.CsMucilageSoil, soil.CsCellsSoil},
	}
}

// GetSimulator returns the underlying simulator for adding observers
func (e *Experiment) GetSimulator() *sim.Simulator {
	return e.simulator
}

func (e *Experiment) Component() *soil.Component { return e.soil }

func (e *Experiment) Tree() *tree.Graph { return e.graph }
