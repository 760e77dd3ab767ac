package forcing

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

const GrowthName = "model_growth"

type Pattern string

const (
	None      Pattern = "none"
	Apical    Pattern = "apical"
	Branching Pattern = "branching"
)

var ErrPattern = errors.New("forcing: unknown growth pattern")

// Growth subdivides tips on a fixed cadence and reports the structural
// mass of every segment.
type Growth struct {
	graph   *tree.Graph
	pattern Pattern
	every   int
	mass    float64
	limit   int
	logger  *slog.Logger
}

type GrowthOption func(*Growth)

// WithLimit stops growth once the tree holds n vertices.
func WithLimit(n int) GrowthOption {
	return func(g *Growth) { g.limit = n }
}

func WithGrowthLogger(l *slog.Logger) GrowthOption {
	return func(g *Growth) {
		if l != nil {
			g.logger = l
		}
	}
}

// NewGrowth grows g every `every` steps. mass is the structural mass of
// each segment in grams.
func NewGrowth(g *tree.Graph, pattern Pattern, every int, mass float64, opts ...GrowthOption) (*Growth, error) {
	switch pattern {
	case None, Apical, Branching:
	default:
		return nil, fmt.Errorf("%w: %q", ErrPattern, pattern)
	}
	if pattern != None && every <= 0 {
		return nil, fmt.Errorf("growth interval must be positive, got %d", every)
	}
	gr := &Growth{
		graph:   g,
		pattern: pattern,
		every:   every,
		mass:    mass,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(gr)
	}
	return gr, nil
}

func (g *Growth) Name() string { return GrowthName }

func (g *Growth) Field(name string) (state.Field, bool) {
	if name != "struct_mass" {
		return nil, false
	}
	return state.Fill(g.graph.Vertices(), g.mass), true
}

// Grow runs before step. Nothing happens on step 0, so the first step sees
// the initial tree.
func (g *Growth) Grow(step int) error {
	if g.pattern == None || step == 0 || step%g.every != 0 {
		return nil
	}
	per := 1
	if g.pattern == Branching {
		per = 2
	}
	added := 0
	for _, tip := range g.graph.Tips() {
		for i := 0; i < per; i++ {
			if g.limit > 0 && g.graph.Len() >= g.limit {
				break
			}
			if _, err := g.graph.AddChild(tip); err != nil {
				return err
			}
			added++
		}
	}
	if added > 0 {
		g.logger.Debug("tree grew", "step", step, "added", added, "entities", g.graph.Len())
	}
	return nil
}
