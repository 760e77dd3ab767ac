package metrics

import (
	"math"

	"github.com/san-kum/rhizosoil/internal/sim"
)

// Peak tracks the largest value a variable reaches on any entity.
type Peak struct {
	name     string
	variable string
	peak     float64
	seen     bool
}

func NewPeak(variable string) *Peak {
	return &Peak{
		name:     "peak_" + variable,
		variable: variable,
	}
}

func (p *Peak) Name() string { return p.name }

func (p *Peak) Observe(v sim.View, t float64) {
	f, ok := v.Field(p.variable)
	if !ok {
		return
	}
	for _, x := range f {
		if !p.seen || x > p.peak {
			p.peak = x
			p.seen = true
		}
	}
}

func (p *Peak) Value() float64 {
	if !p.seen {
		return math.NaN()
	}
	return p.peak
}

func (p *Peak) Reset() {
	p.peak = 0
	p.seen = false
}
