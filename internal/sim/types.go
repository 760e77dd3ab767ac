package sim

import (
	"fmt"
	"math"

	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

// View is the read side of a component.
type View interface {
	Field(name string) (state.Field, bool)
	Entities() []tree.ID
}

// Component is advanced once per step.
type Component interface {
	View
	Step() error
	TimeStep() float64
}

// Grower mutates the tree between steps.
type Grower interface {
	Grow(step int) error
}

type Metric interface {
	Name() string
	Observe(v View, t float64)
	Value() float64
	Reset()
}

// Observer sees the state before the first step and after every step.
type Observer interface {
	OnStep(step int, t float64, v View) error
}

type Config struct {
	Steps         int
	ValidateState bool
	// Validate lists the variables checked for NaN/Inf when ValidateState is set.
	Validate []string
}

func DefaultConfig() Config {
	return Config{Steps: 24, ValidateState: true}
}

type Result struct {
	Times      []float64
	Entities   []int
	Metrics    map[string]float64
	StepsTaken int
	Unstable   int64
}

type SimError struct {
	Time    float64
	Step    int
	Message string
	Err     error
}

func (e SimError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("step %d (t=%.0fs): %s: %v", e.Step, e.Time, e.Message, e.Err)
	}
	return fmt.Sprintf("step %d (t=%.0fs): %s", e.Step, e.Time, e.Message)
}

func (e SimError) Unwrap() error { return e.Err }

// IsValid reports whether every value of f is finite.
func IsValid(f state.Field) bool {
	for _, v := range f {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}
