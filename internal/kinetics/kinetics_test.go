package kinetics

import (
	"errors"
	"math"
	"testing"
)

func TestTemperatureModificationAtReference(t *testing.T) {
	tests := []struct {
		name string
		a, b float64
	}{
		{"q10", 0, 3.98},
		{"bell", -0.05, 3},
		{"flat", 0, 1},
		{"zero base", 0.2, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, unstable, err := TemperatureModification(1, 20, Thermal{TRef: 20, A: tt.a, B: tt.b, C: 1})
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if unstable {
				t.Error("reference temperature reported unstable")
			}
			if got != 1 {
				t.Errorf("expected exactly 1, got %v", got)
			}
		})
	}
}

func TestTemperatureModificationShapes(t *testing.T) {
	tests := []struct {
		name     string
		atRef    float64
		T        float64
		th       Thermal
		expected float64
	}{
		{"linear", 2, 25, Thermal{TRef: 20, A: 0.1, B: 1, C: 0}, 2 * 1.5},
		{"q10 one decade", 1, 30, Thermal{TRef: 20, A: 0, B: 2, C: 1}, 2},
		{"q10 below ref", 1, 10, Thermal{TRef: 20, A: 0, B: 2, C: 1}, 0.5},
		{"linear clamped", 1, 0, Thermal{TRef: 20, A: 0.1, B: 1, C: 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, _, err := TemperatureModification(tt.atRef, tt.T, tt.th)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if math.Abs(got-tt.expected) > 1e-12 {
				t.Errorf("expected %v, got %v", tt.expected, got)
			}
		})
	}
}

func TestTemperatureModificationUnstable(t *testing.T) {
	// A*(T-TRef)+B = -0.05*80 + 3 < 0
	got, unstable, err := TemperatureModification(1, 100, Thermal{TRef: 20, A: -0.05, B: 3, C: 1})
	if err != nil {
		t.Fatalf("unstable regime must not be an error: %v", err)
	}
	if !unstable {
		t.Error("expected unstable flag")
	}
	if got != 0 {
		t.Errorf("expected 0, got %v", got)
	}
}

func TestTemperatureModificationZeroBase(t *testing.T) {
	// A*(T-TRef)+B = 0.1*-10 + 1 = 0 below TRef
	th := Thermal{TRef: 20, A: 0.1, B: 1, C: 1}
	got, unstable, err := TemperatureModification(1, 10, th)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !unstable {
		t.Error("expected unstable flag")
	}
	if got != 0 {
		t.Errorf("expected 0, got %v", got)
	}

	rate, unstable, err := Degradation{AtRef: 1, RateMax: 1e-7, Km: 1e-5, Thermal: th}.Rate(1e-5, 1e-4, 10)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !unstable || math.IsInf(rate, 0) || rate != 0 {
		t.Errorf("expected finite zero rate flagged unstable, got %v (unstable=%v)", rate, unstable)
	}
}

func TestTemperatureModificationInvalidC(t *testing.T) {
	for _, c := range []float64{0.5, 2, -1} {
		_, _, err := TemperatureModification(1, 15, Thermal{TRef: 20, B: 1, C: c})
		if !errors.Is(err, ErrInvalidC) {
			t.Errorf("C=%v: expected ErrInvalidC, got %v", c, err)
		}
	}
}

func TestBellShape(t *testing.T) {
	th := Thermal{TRef: 0, A: -0.05, B: 3, C: 1}
	low, _, _ := TemperatureModification(1, 5, th)
	mid, _, _ := TemperatureModification(1, 25, th)
	high, _, _ := TemperatureModification(1, 55, th)
	if !(mid > low && mid > high) {
		t.Errorf("expected a peak: f(5)=%v f(25)=%v f(55)=%v", low, mid, high)
	}
}

func TestDegradationLimits(t *testing.T) {
	d := Degradation{AtRef: 1, RateMax: 6.4e-7, Km: 1000e-6 / 12, Thermal: Thermal{TRef: 20, A: 0, B: 3.98, C: 1}}

	zero, _, err := d.Rate(0, 2e-4, 15)
	if err != nil {
		t.Fatal(err)
	}
	if zero != 0 {
		t.Errorf("expected 0 at zero concentration, got %v", zero)
	}

	sat, err := d.Saturation(2e-4, 15)
	if err != nil {
		t.Fatal(err)
	}
	high, _, _ := d.Rate(1e12, 2e-4, 15)
	if math.Abs(high-sat)/sat > 1e-9 {
		t.Errorf("expected saturation %v, got %v", sat, high)
	}

	half, _, _ := d.Rate(d.Km, 2e-4, 15)
	if math.Abs(half-sat/2)/sat > 1e-12 {
		t.Errorf("expected half saturation at Km, got %v vs %v", half, sat/2)
	}
}

func TestDegradationNeverNegative(t *testing.T) {
	d := Degradation{AtRef: 1, RateMax: 1, Km: 1, Thermal: Thermal{TRef: 20, B: 1, C: 0}}
	got, _, _ := d.Rate(-0.5, 1, 20)
	if got != 0 {
		t.Errorf("expected 0 for negative concentration, got %v", got)
	}
}

func TestMassBalanceUpdate(t *testing.T) {
	got := Euler(1e-5, 3600, 1e-7, NetFlow([]float64{2e-9}, []float64{5e-10}))
	want := 1e-5 + (3600/1e-7)*(2e-9-5e-10)
	if got != want {
		t.Errorf("expected %v, got %v", want, got)
	}
}

func TestNetFlowOrder(t *testing.T) {
	a, b, c, d, e := 3e-9, 1e-9, 5e-10, 2e-10, 7e-10
	got := NetFlow([]float64{a, b}, []float64{c, d, e})
	if got != a+b-c-d-e {
		t.Errorf("expected left-to-right evaluation, got %v", got)
	}
}
