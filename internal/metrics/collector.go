// Package metrics exposes placement counters to Prometheus.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "zonetile"

// Collector implements memory.Metrics on a private registry.
type Collector struct {
	registry *prometheus.Registry

	placementsTotal *prometheus.CounterVec
	verifyTotal     *prometheus.CounterVec
	savesTotal      *prometheus.CounterVec
	storeErrors     *prometheus.CounterVec
	matchScore      prometheus.Histogram

	zones   prometheus.Gauge
	tracked prometheus.Gauge
	screens prometheus.Gauge
}

// NewCollector registers every metric plus the Go runtime collectors.
func NewCollector() *Collector {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Collector{
		registry: reg,
		placementsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "placements_total",
				Help:      "Windows placed, by source",
			},
			[]string{"source"},
		),
		verifyTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "verifications_total",
				Help:      "Geometry verifications, by outcome",
			},
			[]string{"outcome"},
		),
		savesTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "position_saves_total",
				Help:      "Remembered positions written, by kind",
			},
			[]string{"kind"},
		),
		storeErrors: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "store_errors_total",
				Help:      "Position store failures, by operation",
			},
			[]string{"op"},
		),
		matchScore: factory.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "match_score",
				Help:      "Score of accepted matcher hits",
				Buckets:   []float64{0.5, 0.6, 0.7, 0.8, 0.9, 0.95, 1},
			},
		),
		zones: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "zones",
			Help:      "Zone instances across all screens",
		}),
		tracked: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tracked_windows",
			Help:      "Windows with a zone assignment",
		}),
		screens: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "screens",
			Help:      "Attached screens",
		}),
	}
}

// Registry returns the registry backing the collector.
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

func (c *Collector) Placed(source string) {
	c.placementsTotal.WithLabelValues(source).Inc()
}

func (c *Collector) Verified(outcome string) {
	c.verifyTotal.WithLabelValues(outcome).Inc()
}

func (c *Collector) Saved(kind string) {
	c.savesTotal.WithLabelValues(kind).Inc()
}

func (c *Collector) StoreError(op string) {
	c.storeErrors.WithLabelValues(op).Inc()
}

func (c *Collector) MatchScore(score float64) {
	c.matchScore.Observe(score)
}

// SetState updates the gauges.
func (c *Collector) SetState(screens, zones, tracked int) {
	c.screens.Set(float64(screens))
	c.zones.Set(float64(zones))
	c.tracked.Set(float64(tracked))
}
