package optim

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"math"

	"github.com/san-kum/rhizosoil/internal/sim"
)

var ErrNoCandidate = errors.New("optim: no grid point completed")

// Runner builds and runs one simulation for a set of scenario overrides.
type Runner func(ctx context.Context, overrides map[string]float64) (*sim.Result, error)

// Objective scores a finished run; lower is better.
type Objective func(r *sim.Result) float64

// Minimize scores a metric as is.
func Minimize(metric string) Objective {
	return func(r *sim.Result) float64 { return r.Metrics[metric] }
}

// Match scores the distance of a metric to target.
func Match(metric string, target float64) Objective {
	return func(r *sim.Result) float64 { return math.Abs(r.Metrics[metric] - target) }
}

// GridSearch evaluates every combination of the given scenario values.
type GridSearch struct {
	paramNames []string
	ranges     [][]float64
}

func NewGridSearch(params []string, ranges [][]float64) (*GridSearch, error) {
	if len(params) != len(ranges) {
		return nil, fmt.Errorf("%d parameters but %d ranges", len(params), len(ranges))
	}
	for i, r := range ranges {
		if len(r) == 0 {
			return nil, fmt.Errorf("empty range for %s", params[i])
		}
	}
	return &GridSearch{paramNames: params, ranges: ranges}, nil
}

// Size is the number of grid points.
func (g *GridSearch) Size() int {
	n := 1
	for _, r := range g.ranges {
		n *= len(r)
	}
	return n
}

// Search returns the best overrides and their score. Points whose run
// fails are skipped; ties keep the first point in grid order.
func (g *GridSearch) Search(ctx context.Context, run Runner, objective Objective) (map[string]float64, float64, error) {
	best := math.Inf(1)
	var bestParams map[string]float64
	var lastErr error

	err := g.searchRecursive(ctx, 0, make(map[string]float64), func(params map[string]float64) {
		result, err := run(ctx, params)
		if err != nil {
			lastErr = err
			return
		}
		score := objective(result)
		if math.IsNaN(score) {
			return
		}
		if bestParams == nil || score < best {
			best = score
			bestParams = maps.Clone(params)
		}
	})
	if err != nil {
		return nil, 0, err
	}
	if bestParams == nil {
		return nil, 0, errors.Join(ErrNoCandidate, lastErr)
	}
	return bestParams, best, nil
}

func (g *GridSearch) searchRecursive(ctx context.Context, depth int, current map[string]float64, visit func(map[string]float64)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if depth == len(g.paramNames) {
		visit(current)
		return nil
	}

	paramName := g.paramNames[depth]
	for _, val := range g.ranges[depth] {
		next := maps.Clone(current)
		next[paramName] = val
		if err := g.searchRecursive(ctx, depth+1, next, visit); err != nil {
			return err
		}
	}
	return nil
}
