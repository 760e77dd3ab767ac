package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/san-kum/rhizosoil/internal/sim"
)

// bowl scores (a-2)^2 + (b+1)^2 as the metric "loss".
func bowl(_ context.Context, p map[string]float64) (*sim.Result, error) {
	a, b := p["a"], p["b"]
	return &sim.Result{Metrics: map[string]float64{"loss": (a-2)*(a-2) + (b+1)*(b+1)}}, nil
}

func TestGridSearchMinimize(t *testing.T) {
	g, err := NewGridSearch([]string{"a", "b"}, [][]float64{{0, 1, 2, 3}, {-2, -1, 0}})
	require.NoError(t, err)
	assert.Equal(t, 12, g.Size())

	best, score, err := g.Search(context.Background(), bowl, Minimize("loss"))
	require.NoError(t, err)
	assert.Equal(t, map[string]float64{"a": 2, "b": -1}, best)
	assert.Equal(t, 0.0, score)
}

func TestGridSearchMatch(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{{0, 1, 2, 3, 4}})
	require.NoError(t, err)

	// loss with b=0 is (a-2)^2+1; 5 is reached at a=0 and a=4, first wins.
	best, score, err := g.Search(context.Background(), bowl, Match("loss", 5))
	require.NoError(t, err)
	assert.Equal(t, 0.0, best["a"])
	assert.Equal(t, 0.0, score)
}

func TestGridSearchSkipsFailures(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{{2, 3}})
	require.NoError(t, err)

	run := func(ctx context.Context, p map[string]float64) (*sim.Result, error) {
		if p["a"] == 2 {
			return nil, errors.New("diverged")
		}
		return bowl(ctx, p)
	}
	best, _, err := g.Search(context.Background(), run, Minimize("loss"))
	require.NoError(t, err)
	assert.Equal(t, 3.0, best["a"])
}

func TestGridSearchAllFail(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{{1}})
	require.NoError(t, err)

	cause := errors.New("diverged")
	_, _, err = g.Search(context.Background(), func(context.Context, map[string]float64) (*sim.Result, error) {
		return nil, cause
	}, Minimize("loss"))
	assert.ErrorIs(t, err, ErrNoCandidate)
	assert.ErrorIs(t, err, cause)
}

func TestGridSearchCancelled(t *testing.T) {
	g, err := NewGridSearch([]string{"a"}, [][]float64{{1, 2}})
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, _, err = g.Search(ctx, bowl, Minimize("loss"))
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewGridSearchRejects(t *testing.T) {
	_, err := NewGridSearch([]string{"a", "b"}, [][]float64{{1}})
	assert.Error(t, err)
	_, err = NewGridSearch([]string{"a"}, [][]float64{{}})
	assert.Error(t, err)
}
