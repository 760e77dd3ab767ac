package soil

import (
	"fmt"

	"github.com/san-kum/rhizosoil/internal/kinetics"
	"github.com/san-kum/rhizosoil/internal/state"
)

// 277 nmol of C per g of soil per day, spread over the root surface.
const defaultDegradationRateMax = 277 * 0.000000001 / (60 * 60 * 24) * 1000 * 1 / (0.5 * 1) * 10

const defaultKm = 1000 * 1e-6 / 12.

// Pool parameterizes the degradation of one carbon pool.
type Pool struct {
	RateMax float64
	Km      float64
	TRef    float64
	A       float64
	B       float64
	C       float64
}

func (p Pool) thermal() kinetics.Thermal {
	return kinetics.Thermal{TRef: p.TRef, A: p.A, B: p.B, C: p.C}
}

// Params is the scalar configuration of the soil. It is built once by New
// and never mutated afterwards.
type Params struct {
	ProcessAtTRef float64
	Hexose        Pool
	Mucilage      Pool
	Cells         Pool
}

func DefaultParams() Params {
	pool := Pool{RateMax: defaultDegradationRateMax, Km: defaultKm, TRef: 20, A: 0, B: 3.98, C: 1}
	cells := pool
	cells.RateMax = defaultDegradationRateMax / 2
	return Params{
		ProcessAtTRef: 1,
		Hexose:        pool,
		Mucilage:      pool,
		Cells:         cells,
	}
}

type paramField struct {
	name string
	ptr  *float64
	unit string
}

func (p *Params) fields() []paramField {
	pool := func(prefix string, q *Pool) []paramField {
		return []paramField{
			{prefix + "_degradation_rate_max", &q.RateMax, "mol.m-2.s-1"},
			{"Km_" + prefix + "_degradation", &q.Km, "mol.g-1"},
			{prefix + "_degradation_rate_max_T_ref", &q.TRef, "°C"},
			{prefix + "_degradation_rate_max_A", &q.A, "adim"},
			{prefix + "_degradation_rate_max_B", &q.B, "adim"},
			{prefix + "_degradation_rate_max_C", &q.C, "adim"},
		}
	}
	out := []paramField{{"process_at_T_ref", &p.ProcessAtTRef, "adim"}}
	out = append(out, pool("hexose", &p.Hexose)...)
	out = append(out, pool("mucilage", &p.Mucilage)...)
	out = append(out, pool("cells", &p.Cells)...)
	return out
}

// Param looks a parameter up by its declared name.
func (p Params) Param(name string) (float64, bool) {
	for _, f := range p.fields() {
		if f.name == name {
			return *f.ptr, true
		}
	}
	return 0, false
}

func (p *Params) set(name string, v float64) bool {
	for _, f := range p.fields() {
		if f.name == name {
			*f.ptr = v
			return true
		}
	}
	return false
}

// Validate rejects parameter sets that cannot produce a rate.
func (p Params) Validate() error {
	pools := []struct {
		name string
		pool Pool
	}{{"hexose", p.Hexose}, {"mucilage", p.Mucilage}, {"cells", p.Cells}}
	for _, q := range pools {
		if err := q.pool.thermal().Validate(); err != nil {
			return fmt.Errorf("%s_degradation_rate_max_C: %w", q.name, err)
		}
	}
	return nil
}

// Declarations returns the parameters as declarations carrying their values.
func (p Params) Declarations() []state.Declaration {
	fields := p.fields()
	out := make([]state.Declaration, 0, len(fields))
	for _, f := range fields {
		out = append(out, state.Declaration{Name: f.name, Role: state.Parameter, Default: *f.ptr, Unit: f.unit, By: bySoil})
	}
	return out
}

func (p Params) degradation(q Pool) kinetics.Degradation {
	// The degradation rates are scaled from a reference of 1; process_at_T_ref
	// is declared but does not enter them.
	return kinetics.Degradation{AtRef: 1, RateMax: q.RateMax, Km: q.Km, Thermal: q.thermal()}
}
