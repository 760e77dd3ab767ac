package dispatch

import "slices"

// Tag selects the pass a computation belongs to.
type Tag int

const (
	Process Tag = iota
	Update
)

func (t Tag) String() string {
	if t == Update {
		return "update"
	}
	return "process"
}

// Kernel computes one entity's value from its arguments, given in the order
// they were registered. Kernels must not retain args.
type Kernel func(args []float64) (float64, error)

// Registration is a computation before its arguments are resolved.
type Registration struct {
	Tag    Tag
	Name   string
	Args   []string
	Kernel Kernel
}

// Registry collects registrations in order.
type Registry struct {
	regs []Registration
}

func NewRegistry() *Registry {
	return &Registry{}
}

// Process registers a rate computation written back under name.
func (r *Registry) Process(name string, k Kernel, args ...string) *Registry {
	return r.add(Process, name, k, args)
}

// Update registers the integration of the state variable name.
func (r *Registry) Update(name string, k Kernel, args ...string) *Registry {
	return r.add(Update, name, k, args)
}

func (r *Registry) add(tag Tag, name string, k Kernel, args []string) *Registry {
	r.regs = append(r.regs, Registration{Tag: tag, Name: name, Args: slices.Clone(args), Kernel: k})
	return r
}

// Registrations returns a copy of the registrations with the given tag.
func (r *Registry) Registrations(tag Tag) []Registration {
	var out []Registration
	for _, reg := range r.regs {
		if reg.Tag == tag {
			reg.Args = slices.Clone(reg.Args)
			out = append(out, reg)
		}
	}
	return out
}

func (r *Registry) Len() int { return len(r.regs) }
