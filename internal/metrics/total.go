package metrics

import "github.com/san-kum/rhizosoil/internal/sim"

// Total integrates a flux (per second) over entities and time with a
// left-rectangle rule: each observation contributes flux*dt.
type Total struct {
	name string
	flux string
	dt   float64
	sum  float64
}

func NewTotal(flux string, dt float64) *Total {
	return &Total{
		name: "total_" + flux,
		flux: flux,
		dt:   dt,
	}
}

func (c *Total) Name() string { return c.name }

func (c *Total) Observe(v sim.View, t float64) {
	f, ok := v.Field(c.flux)
	if !ok {
		return
	}
	for _, id := range v.Entities() {
		c.sum += f[id] * c.dt
	}
}

func (c *Total) Value() float64 { return c.sum }

func (c *Total) Reset() { c.sum = 0 }
