package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Diagnostics exports component counters to Prometheus.
type Diagnostics struct {
	unstable *prometheus.CounterVec
	steps    prometheus.Counter
	entities prometheus.Gauge
	duration prometheus.Histogram
}

// NewDiagnostics registers the collectors on reg. A nil reg leaves them
// unregistered, which is what tests usually want.
func NewDiagnostics(reg prometheus.Registerer) (*Diagnostics, error) {
	d := &Diagnostics{
		unstable: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "rhizosoil",
			Name:      "unstable_temperature_total",
			Help:      "Temperature responses that were undefined and replaced by zero.",
		}, []string{"process"}),
		steps: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "rhizosoil",
			Name:      "steps_total",
			Help:      "Completed soil steps.",
		}),
		entities: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "rhizosoil",
			Name:      "entities",
			Help:      "Entities evaluated in the last step.",
		}),
		duration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: "rhizosoil",
			Name:      "step_duration_seconds",
			Help:      "Wall time of one soil step.",
			Buckets:   prometheus.ExponentialBuckets(1e-5, 4, 10),
		}),
	}
	if reg != nil {
		for _, c := range []prometheus.Collector{d.unstable, d.steps, d.entities, d.duration} {
			if err := reg.Register(c); err != nil {
				return nil, err
			}
		}
	}
	return d, nil
}

func (d *Diagnostics) UnstableTemperature(process string, temperature float64) {
	d.unstable.WithLabelValues(process).Inc()
}

func (d *Diagnostics) StepCompleted(entities int, elapsed time.Duration) {
	d.steps.Inc()
	d.entities.Set(float64(entities))
	d.duration.Observe(elapsed.Seconds())
}
