// Package metrics exposes taming activity as Prometheus collectors.
// Counters are fed only by bus subscriptions; gauges read the manager.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/udisondev/taming/internal/event"
)

const namespace = "taming"

// Failure reasons recorded by taming_failed_total.
const (
	FailureCalmExpired = "calm_expired"
)

// Source provides the values behind the gauges.
// Implemented by *taming.Manager together with its registry.
type Source interface {
	ActiveAttempts() int
	TamedCount() int
}

// Collectors holds every taming metric.
type Collectors struct {
	registry *prometheus.Registry

	started   prometheus.Counter
	completed *prometheus.CounterVec
	failed    *prometheus.CounterVec
	lost      *prometheus.CounterVec
	trust     prometheus.Counter
}

// New creates the collectors and registers them, together with gauges
// reading src, on a dedicated registry.
func New(src Source) *Collectors {
	c := &Collectors{
		registry: prometheus.NewRegistry(),
		started: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "started_total",
			Help:      "Taming attempts started.",
		}),
		completed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "completed_total",
			Help:      "Taming attempts completed, by species.",
		}, []string{"species"}),
		failed: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "failed_total",
			Help:      "Taming attempts dropped before completion, by reason.",
		}, []string{"reason"}),
		lost: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "creatures_lost_total",
			Help:      "Tamed animals removed from the registry, by reason.",
		}, []string{"reason"}),
		trust: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "trust_gained_total",
			Help:      "Trust points gained across all attempts.",
		}),
	}

	c.registry.MustRegister(
		c.started,
		c.completed,
		c.failed,
		c.lost,
		c.trust,
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "tamed_animals",
			Help:      "Tamed animals currently registered.",
		}, func() float64 { return float64(src.TamedCount()) }),
		prometheus.NewGaugeFunc(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "attempts_active",
			Help:      "Taming attempts in progress.",
		}, func() float64 { return float64(src.ActiveAttempts()) }),
	)
	return c
}

// Registry returns the registry holding the collectors.
func (c *Collectors) Registry() *prometheus.Registry {
	return c.registry
}

// Handler serves the collectors in the Prometheus text format.
func (c *Collectors) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

// Subscribe feeds the counters from bus events. The returned
// subscriptions are removed by Unsubscribe.
func (c *Collectors) Subscribe(bus *event.Bus, priority int) []*event.Subscription {
	return []*event.Subscription{
		event.On(bus, priority, func(event.TamingStarted) error {
			c.started.Inc()
			return nil
		}),
		event.On(bus, priority, func(e event.TamingCompleted) error {
			c.completed.WithLabelValues(e.Animal.SpeciesID).Inc()
			return nil
		}),
		event.On(bus, priority, func(event.CalmExpired) error {
			c.failed.WithLabelValues(FailureCalmExpired).Inc()
			return nil
		}),
		event.On(bus, priority, func(e event.TamingCancelled) error {
			c.failed.WithLabelValues(e.Reason).Inc()
			return nil
		}),
		event.On(bus, priority, func(e event.CreatureLost) error {
			c.lost.WithLabelValues(e.Reason).Inc()
			return nil
		}),
		event.On(bus, priority, func(e event.TrustChanged) error {
			if gain := e.NewTrust - e.OldTrust; gain > 0 {
				c.trust.Add(float64(gain))
			}
			return nil
		}),
	}
}
