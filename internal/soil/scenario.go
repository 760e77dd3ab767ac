package soil

import (
	"fmt"
	"maps"
	"slices"

	"github.com/san-kum/rhizosoil/internal/state"
)

// Scenario overrides parameters and initial per-entity defaults by name.
type Scenario map[string]float64

func (s Scenario) apply(p *Params, decls []state.Declaration) error {
	for _, name := range slices.Sorted(maps.Keys(s)) {
		v := s[name]
		if p.set(name, v) {
			continue
		}
		i := slices.IndexFunc(decls, func(d state.Declaration) bool { return d.Name == name })
		if i < 0 {
			return fmt.Errorf("%w: %s", ErrUnknownOverride, name)
		}
		decls[i].Default = v
	}
	return nil
}
