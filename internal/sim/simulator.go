package sim

import (
	"context"
	"fmt"
	"io"
	"log/slog"
)

type unstableCounter interface {
	Unstable() int64
}

// Simulator sequences growth and component steps.
type Simulator struct {
	comp      Component
	growth    Grower
	metrics   []Metric
	observers []Observer
	logger    *slog.Logger
}

// New builds a simulator. growth may be nil for a static tree.
func New(comp Component, growth Grower) *Simulator {
	return &Simulator{
		comp:      comp,
		growth:    growth,
		metrics:   make([]Metric, 0),
		observers: make([]Observer, 0),
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

func (s *Simulator) SetLogger(l *slog.Logger) {
	if l != nil {
		s.logger = l
	}
}

// Run executes cfg.Steps steps. On error the partial result is returned with it.
func (s *Simulator) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := s.validateConfig(cfg); err != nil {
		return nil, err
	}

	result := &Result{
		Times:    make([]float64, 0, cfg.Steps+1),
		Entities: make([]int, 0, cfg.Steps+1),
		Metrics:  make(map[string]float64),
	}
	for _, m := range s.metrics {
		m.Reset()
	}

	dt := s.comp.TimeStep()
	t := 0.0
	if err := s.observe(0, t); err != nil {
		return result, err
	}
	result.Times = append(result.Times, t)
	result.Entities = append(result.Entities, len(s.comp.Entities()))

	for i := 0; i < cfg.Steps; i++ {
		select {
		case <-ctx.Done():
			return s.finish(result), ctx.Err()
		default:
		}

		if s.growth != nil {
			if err := s.growth.Grow(i); err != nil {
				return s.finish(result), SimError{Time: t, Step: i, Message: "growth failed", Err: err}
			}
		}
		if err := s.comp.Step(); err != nil {
			return s.finish(result), SimError{Time: t, Step: i, Message: "step failed", Err: err}
		}
		t += dt

		if cfg.ValidateState {
			for _, name := range cfg.Validate {
				if f, ok := s.comp.Field(name); ok && !IsValid(f) {
					return s.finish(result), SimError{Time: t, Step: i, Message: fmt.Sprintf("invalid %s (NaN/Inf)", name)}
				}
			}
		}

		for _, m := range s.metrics {
			m.Observe(s.comp, t)
		}
		if err := s.observe(i+1, t); err != nil {
			return s.finish(result), err
		}

		result.StepsTaken++
		result.Times = append(result.Times, t)
		result.Entities = append(result.Entities, len(s.comp.Entities()))
	}

	s.logger.Info("run finished", "steps", result.StepsTaken, "entities", len(s.comp.Entities()))
	return s.finish(result), nil
}

func (s *Simulator) observe(step int, t float64) error {
	for _, obs := range s.observers {
		if err := obs.OnStep(step, t, s.comp); err != nil {
			return SimError{Time: t, Step: step, Message: "observer failed", Err: err}
		}
	}
	return nil
}

func (s *Simulator) finish(result *Result) *Result {
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}
	if u, ok := s.comp.(unstableCounter); ok {
		result.Unstable = u.Unstable()
	}
	return result
}

func (s *Simulator) validateConfig(cfg Config) error {
	if cfg.Steps <= 0 {
		return fmt.Errorf("steps must be positive, got %d", cfg.Steps)
	}
	if s.comp.TimeStep() <= 0 {
		return fmt.Errorf("dt must be positive, got %f", s.comp.TimeStep())
	}
	return nil
}
