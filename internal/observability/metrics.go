package observability

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector bundles the Prometheus metrics for the positioning and
// lighting engine and provides a ready-made /metrics handler.
type Collector struct {
	gatherer prometheus.Gatherer

	AcquireAttempts  *prometheus.CounterVec
	AcquireDurations *prometheus.HistogramVec

	SunAltitude prometheus.Gauge
	PositionAge prometheus.Gauge
	LightPreset *prometheus.GaugeVec
}

// knownPresets pins the label set so the preset gauge always exports one
// series per preset, exactly one of which is 1.
var knownPresets = []string{"day", "dawn", "dusk", "night"}

// NewCollector registers the engine metrics against the provided
// registerer, defaulting to the global Prometheus registry when nil.
func NewCollector(reg prometheus.Registerer) (*Collector, error) {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	gatherer := prometheus.DefaultGatherer
	if g, ok := reg.(prometheus.Gatherer); ok {
		gatherer = g
	}

	attempts := prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "skylight_acquire_attempts_total",
		Help: "Acquisition tier outcomes, labeled by ladder tier and result code.",
	}, []string{"tier", "outcome"})
	attempts, err := registerCounterVec(reg, attempts, "skylight_acquire_attempts_total")
	if err != nil {
		return nil, err
	}

	durations := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "skylight_acquire_duration_seconds",
		Help:    "Per-tier acquisition latency in seconds.",
		Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 15, 30},
	}, []string{"tier"})
	durations, err = registerHistogramVec(reg, durations, "skylight_acquire_duration_seconds")
	if err != nil {
		return nil, err
	}

	sunAltitude, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skylight_sun_altitude_degrees",
		Help: "Current computed solar altitude for the arbitrated position.",
	}), "skylight_sun_altitude_degrees")
	if err != nil {
		return nil, err
	}

	positionAge, err := registerGauge(reg, prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "skylight_position_age_seconds",
		Help: "Age of the currently arbitrated position.",
	}), "skylight_position_age_seconds")
	if err != nil {
		return nil, err
	}

	preset := prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Name: "skylight_light_preset",
		Help: "Active discrete light preset (1 for the active preset, 0 otherwise).",
	}, []string{"preset"})
	preset, err = registerGaugeVec(reg, preset, "skylight_light_preset")
	if err != nil {
		return nil, err
	}

	return &Collector{
		gatherer:         gatherer,
		AcquireAttempts:  attempts,
		AcquireDurations: durations,
		SunAltitude:      sunAltitude,
		PositionAge:      positionAge,
		LightPreset:      preset,
	}, nil
}

// ObserveAcquire records one tier outcome and its latency. Safe on a nil
// collector so callers never need to guard.
func (c *Collector) ObserveAcquire(tier int, outcome string, elapsed time.Duration) {
	if c == nil {
		return
	}
	label := strconv.Itoa(tier)
	if c.AcquireAttempts != nil {
		c.AcquireAttempts.WithLabelValues(label, outcome).Inc()
	}
	if c.AcquireDurations != nil {
		c.AcquireDurations.WithLabelValues(label).Observe(elapsed.Seconds())
	}
}

// SetSolarAltitude updates the solar altitude gauge.
func (c *Collector) SetSolarAltitude(deg float64) {
	if c == nil || c.SunAltitude == nil {
		return
	}
	c.SunAltitude.Set(deg)
}

// SetPositionAge updates the arbitrated-position age gauge.
func (c *Collector) SetPositionAge(age time.Duration) {
	if c == nil || c.PositionAge == nil {
		return
	}
	c.PositionAge.Set(age.Seconds())
}

// SetLightPreset marks the active preset series and zeroes the rest.
func (c *Collector) SetLightPreset(preset string) {
	if c == nil || c.LightPreset == nil {
		return
	}
	for _, p := range knownPresets {
		v := 0.0
		if p == preset {
			v = 1.0
		}
		c.LightPreset.WithLabelValues(p).Set(v)
	}
}

// Handler exposes a ready-to-use /metrics handler.
func (c *Collector) Handler() http.Handler {
	gatherer := prometheus.DefaultGatherer
	if c != nil && c.gatherer != nil {
		gatherer = c.gatherer
	}
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

func registerCounterVec(reg prometheus.Registerer, vec *prometheus.CounterVec, name string) (*prometheus.CounterVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.CounterVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerHistogramVec(reg prometheus.Registerer, vec *prometheus.HistogramVec, name string) (*prometheus.HistogramVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.HistogramVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}

func registerGauge(reg prometheus.Registerer, gauge prometheus.Gauge, name string) (prometheus.Gauge, error) {
	if err := reg.Register(gauge); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(prometheus.Gauge); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return gauge, nil
}

func registerGaugeVec(reg prometheus.Registerer, vec *prometheus.GaugeVec, name string) (*prometheus.GaugeVec, error) {
	if err := reg.Register(vec); err != nil {
		if are, ok := err.(prometheus.AlreadyRegisteredError); ok {
			if existing, ok := are.ExistingCollector.(*prometheus.GaugeVec); ok {
				return existing, nil
			}
			return nil, fmt.Errorf("collector %s already registered with incompatible type", name)
		}
		return nil, err
	}
	return vec, nil
}
