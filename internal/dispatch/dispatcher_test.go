package dispatch_test

import (
	"errors"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/san-kum/rhizosoil/internal/dispatch"
	"github.com/san-kum/rhizosoil/internal/state"
	"github.com/san-kum/rhizosoil/internal/tree"
)

type params map[string]float64

func (p params) Param(name string) (float64, bool) {
	v, ok := p[name]
	return v, ok
}

func sum(args []float64) (float64, error) {
	s := 0.0
	for _, a := range args {
		s += a
	}
	return s, nil
}

func newStore(n int) *state.Store {
	ids := make([]tree.ID, n)
	for i := range ids {
		ids[i] = tree.ID(i + 1)
	}
	s := state.New()
	err := s.Initialize(ids, []state.Declaration{
		{Name: "x", Role: state.StateVariable, Default: 1},
		{Name: "y", Role: state.StateVariable, Default: 10},
		{Name: "in", Role: state.Input, Default: 0},
	})
	Expect(err).NotTo(HaveOccurred())
	for _, id := range ids {
		f, _ := s.Get("in")
		f[id] = float64(id)
	}
	return s
}

var _ = Describe("Build", func() {
	var store *state.Store

	BeforeEach(func() {
		store = newStore(3)
	})

	DescribeTable("rejects invalid registrations",
		func(reg *dispatch.Registry, want error) {
			_, err := dispatch.Build(reg, store, params{"k": 2})
			Expect(err).To(MatchError(want))

			var be *dispatch.BindingError
			Expect(errors.As(err, &be)).To(BeTrue())
		},
		Entry("no arguments", dispatch.NewRegistry().Process("rate", sum), dispatch.ErrNoArguments),
		Entry("nil kernel", dispatch.NewRegistry().Process("rate", nil, "x"), dispatch.ErrNilKernel),
		Entry("unknown argument", dispatch.NewRegistry().Process("rate", sum, "x", "missing"), dispatch.ErrUnknownArgument),
		Entry("duplicate process", dispatch.NewRegistry().Process("rate", sum, "x").Process("rate", sum, "y"), dispatch.ErrDuplicate),
		Entry("duplicate update", dispatch.NewRegistry().Update("x", sum, "x").Update("x", sum, "y"), dispatch.ErrDuplicate),
		Entry("update of unknown variable", dispatch.NewRegistry().Update("z", sum, "x"), dispatch.ErrUnknownTarget),
		Entry("process shadowing a parameter", dispatch.NewRegistry().Process("k", sum, "x"), dispatch.ErrShadowParameter),
	)

	It("rejects a name that is both a variable and a parameter", func() {
		_, err := dispatch.Build(dispatch.NewRegistry().Process("rate", sum, "x"), store, params{"x": 1})
		Expect(err).To(MatchError(dispatch.ErrAmbiguous))
	})

	It("lets updates consume any process output", func() {
		reg := dispatch.NewRegistry().
			Update("x", sum, "x", "late").
			Process("late", sum, "in")
		d, err := dispatch.Build(reg, store, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Bindings(dispatch.Process)).To(HaveLen(1))
		Expect(d.Bindings(dispatch.Update)[0].Args).To(Equal([]string{"x", "late"}))
	})

	It("refuses a process reading a later process output", func() {
		reg := dispatch.NewRegistry().
			Process("first", sum, "second").
			Process("second", sum, "in")
		_, err := dispatch.Build(reg, store, nil)
		Expect(err).To(MatchError(dispatch.ErrUnknownArgument))
	})
})

var _ = Describe("Evaluate", func() {
	var store *state.Store

	BeforeEach(func() {
		store = newStore(4)
	})

	It("writes every process result for every entity", func() {
		reg := dispatch.NewRegistry().Process("rate", func(a []float64) (float64, error) {
			return a[0] * a[1], nil
		}, "in", "k")
		d, err := dispatch.Build(reg, store, params{"k": 3})
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Evaluate(dispatch.Process)).To(Succeed())

		rate, ok := store.Get("rate")
		Expect(ok).To(BeTrue())
		Expect(rate).To(Equal(state.Field{1: 3, 2: 6, 3: 9, 4: 12}))
		Expect(store.Check()).To(Succeed())
	})

	It("chains processes in registration order", func() {
		reg := dispatch.NewRegistry().
			Process("a", sum, "in").
			Process("b", func(a []float64) (float64, error) { return 2 * a[0], nil }, "a")
		d, err := dispatch.Build(reg, store, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Evaluate(dispatch.Process)).To(Succeed())

		b, _ := store.Get("b")
		Expect(b[3]).To(Equal(6.0))
	})

	It("commits updates together from start-of-pass state", func() {
		swap := func(a []float64) (float64, error) { return a[0], nil }
		reg := dispatch.NewRegistry().
			Update("x", swap, "y").
			Update("y", swap, "x")
		d, err := dispatch.Build(reg, store, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Evaluate(dispatch.Update)).To(Succeed())

		x, _ := store.Get("x")
		y, _ := store.Get("y")
		Expect(x[1]).To(Equal(10.0))
		Expect(y[1]).To(Equal(1.0))
	})

	It("names the entity whose kernel failed", func() {
		boom := errors.New("boom")
		reg := dispatch.NewRegistry().Process("rate", func(a []float64) (float64, error) {
			if a[0] == 3 {
				return 0, boom
			}
			return a[0], nil
		}, "in")
		d, err := dispatch.Build(reg, store, nil)
		Expect(err).NotTo(HaveOccurred())

		err = d.Evaluate(dispatch.Process)
		Expect(err).To(MatchError(boom))
		var be *dispatch.BindingError
		Expect(errors.As(err, &be)).To(BeTrue())
		Expect(be.Entity).To(Equal(tree.ID(3)))
		Expect(be.Binding).To(Equal("rate"))
	})

	It("names entity zero in the failure message", func() {
		zero := state.New()
		Expect(zero.Initialize([]tree.ID{0, 1}, []state.Declaration{
			{Name: "in", Role: state.Input, Default: 0},
		})).To(Succeed())
		reg := dispatch.NewRegistry().Process("rate", func(a []float64) (float64, error) {
			if a[0] == 0 {
				return 0, errors.New("boom")
			}
			return a[0], nil
		}, "in")
		d, err := dispatch.Build(reg, zero, nil)
		Expect(err).NotTo(HaveOccurred())

		err = d.Evaluate(dispatch.Process)
		var be *dispatch.BindingError
		Expect(errors.As(err, &be)).To(BeTrue())
		Expect(be.HasEntity).To(BeTrue())
		Expect(err.Error()).To(ContainSubstring("entity=0"))
	})

	It("leaves a failed update pass uncommitted", func() {
		reg := dispatch.NewRegistry().
			Update("x", func(a []float64) (float64, error) { return a[0] + 1, nil }, "x").
			Update("y", func([]float64) (float64, error) { return 0, errors.New("bad") }, "y")
		d, err := dispatch.Build(reg, store, nil)
		Expect(err).NotTo(HaveOccurred())
		Expect(d.Evaluate(dispatch.Update)).NotTo(Succeed())

		x, _ := store.Get("x")
		Expect(x[1]).To(Equal(1.0))
	})

	It("reports a value missing for an entity", func() {
		reg := dispatch.NewRegistry().Process("rate", sum, "in")
		d, err := dispatch.Build(reg, store, nil)
		Expect(err).NotTo(HaveOccurred())

		store.Set("in", state.Field{1: 1, 2: 2, 3: 3})
		Expect(d.Evaluate(dispatch.Process)).To(MatchError(dispatch.ErrMissingValue))
	})
})

var _ = Describe("Parallel evaluation", func() {
	kernel := func(a []float64) (float64, error) {
		return math.Sin(a[0])*a[1] + math.Sqrt(a[0]), nil
	}

	evaluate := func(opts ...dispatch.Option) state.Field {
		store := newStore(2000)
		reg := dispatch.NewRegistry().
			Process("rate", kernel, "in", "y").
			Update("x", sum, "x", "rate")
		d, err := dispatch.Build(reg, store, nil, opts...)
		Expect(err).NotTo(HaveOccurred())
		for i := 0; i < 3; i++ {
			Expect(d.Evaluate(dispatch.Process)).To(Succeed())
			Expect(d.Evaluate(dispatch.Update)).To(Succeed())
		}
		x, _ := store.Get("x")
		return x
	}

	It("is bit-identical to serial evaluation", func() {
		serial := evaluate()
		parallel := evaluate(dispatch.WithWorkers(8), dispatch.WithMinChunk(16))
		Expect(parallel).To(HaveLen(len(serial)))
		for id, v := range serial {
			Expect(math.Float64bits(parallel[id])).To(Equal(math.Float64bits(v)), "entity %d", id)
		}
	})

	It("reports the lowest failing entity regardless of scheduling", func() {
		store := newStore(1000)
		reg := dispatch.NewRegistry().Process("rate", func(a []float64) (float64, error) {
			if int(a[0])%100 == 0 {
				return 0, errors.New("bad")
			}
			return 0, nil
		}, "in")
		d, err := dispatch.Build(reg, store, nil, dispatch.WithWorkers(4), dispatch.WithMinChunk(10))
		Expect(err).NotTo(HaveOccurred())

		err = d.Evaluate(dispatch.Process)
		var be *dispatch.BindingError
		Expect(errors.As(err, &be)).To(BeTrue())
		Expect(be.Entity).To(Equal(tree.ID(100)))
	})
})
