package metrics

import "github.com/san-kum/rhizosoil/internal/sim"

// Mean averages a variable over entities and then over samples.
type Mean struct {
	name     string
	variable string
	sum      float64
	samples  int
}

func NewMean(variable string) *Mean {
	return &Mean{
		name:     "mean_" + variable,
		variable: variable,
	}
}

func (m *Mean) Name() string { return m.name }

func (m *Mean) Observe(v sim.View, t float64) {
	f, ok := v.Field(m.variable)
	if !ok {
		return
	}
	var s float64
	n := 0
	for _, id := range v.Entities() {
		if x, ok := f[id]; ok {
			s += x
			n++
		}
	}
	if n == 0 {
		return
	}
	m.sum += s / float64(n)
	m.samples++
}

func (m *Mean) Value() float64 {
	if m.samples == 0 {
		return 0
	}
	return m.sum / float64(m.samples)
}

func (m *Mean) Reset() {
	m.sum = 0
	m.samples = 0
}
