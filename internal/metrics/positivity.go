package metrics

import "github.com/san-kum/rhizosoil/internal/sim"

// Positivity is the fraction of samples where every value of a
// concentration is non-negative. Forward Euler can drive a pool below zero
// when the step is too long for the degradation rate.
type Positivity struct {
	name     string
	variable string
	positive int
	samples  int
}

func NewPositivity(variable string) *Positivity {
	return &Positivity{
		name:     "positivity_" + variable,
		variable: variable,
	}
}

func (p *Positivity) Name() string { return p.name }

func (p *Positivity) Observe(v sim.View, t float64) {
	f, ok := v.Field(p.variable)
	if !ok {
		return
	}
	p.samples++
	for _, x := range f {
		if x < 0 {
			return
		}
	}
	p.positive++
}

func (p *Positivity) Value() float64 {
	if p.samples == 0 {
		return 1.0
	}
	return float64(p.positive) / float64(p.samples)
}

func (p *Positivity) Reset() {
	p.positive = 0
	p.samples = 0
}
