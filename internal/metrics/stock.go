package metrics

import "github.com/san-kum/rhizosoil/internal/sim"

// Stock is the carbon held in the soil at the last observation: the sum
// over pools and entities of concentration times volume.
type Stock struct {
	name   string
	pools  []string
	volume string
	last   float64
}

func NewStock(volume string, pools ...string) *Stock {
	return &Stock{
		name:   "soil_carbon_stock",
		pools:  pools,
		volume: volume,
	}
}

func (s *Stock) Name() string { return s.name }

func (s *Stock) Observe(v sim.View, t float64) {
	vol, ok := v.Field(s.volume)
	if !ok {
		return
	}
	var total float64
	for _, pool := range s.pools {
		c, ok := v.Field(pool)
		if !ok {
			continue
		}
		for _, id := range v.Entities() {
			total += c[id] * vol[id]
		}
	}
	s.last = total
}

func (s *Stock) Value() float64 { return s.last }

func (s *Stock) Reset() { s.last = 0 }
