package kinetics

import (
	"errors"
	"fmt"
	"math"
)

var ErrInvalidC = errors.New("kinetics: temperature coefficient C must be 0 or 1")

// Thermal holds the coefficients of one temperature response.
type Thermal struct {
	TRef float64
	A    float64
	B    float64
	C    float64
}

func (th Thermal) Validate() error {
	if th.C != 0 && th.C != 1 {
		return fmt.Errorf("%w (got %g)", ErrInvalidC, th.C)
	}
	return nil
}

// TemperatureModification scales atRef to temperature T. When C=1 and the
// base A*(T-TRef)+B is negative, or zero below TRef, the response is
// unstable; the result is 0 and unstable is true. Negative results are
// clamped to 0.
func TemperatureModification(atRef, T float64, th Thermal) (value float64, unstable bool, err error) {
	if err := th.Validate(); err != nil {
		return 0, false, err
	}
	dT := T - th.TRef
	base := th.A*dT + th.B
	if th.C == 1 && (base < 0 || (base == 0 && dT < 0)) {
		return 0, true, nil
	}

	value = atRef * math.Pow(base, 1-th.C) * math.Pow(base, th.C*dT/10)
	if math.IsInf(value, 0) {
		return 0, true, nil
	}
	if value < 0 || math.IsNaN(value) {
		value = 0
	}
	return value, false, nil
}
