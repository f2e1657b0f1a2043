package metrics

import (
	"log"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/milk9111/echoes/physics"
)

const namespace = "echoes"

// Collector exports physics and echo statistics to Prometheus. A nil *Collector is
// valid and records nothing, so headless tools can run without metrics.
type Collector struct {
	bodies          prometheus.Gauge
	echoes          prometheus.Gauge
	collisionChecks prometheus.Counter
	collisions      prometheus.Counter
	stepDuration    prometheus.Histogram
	echoesCreated   prometheus.Counter
	puzzleEvents    *prometheus.CounterVec
}

// New creates a Collector and registers it with reg. A nil reg uses the default
// registerer.
func New(reg prometheus.Registerer) *Collector {
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	c := &Collector{
		bodies: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "physics_bodies",
			Help:      "Bodies in the physics world after the last step.",
		}),
		echoes: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active",
			Help:      "Echoes alive after the last tick.",
		}),
		collisionChecks: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "physics_collision_checks_total",
			Help:      "Narrow-phase pair tests.",
		}),
		collisions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "physics_collisions_total",
			Help:      "Pair tests that found a contact.",
		}),
		stepDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "physics_step_seconds",
			Help:      "Wall time spent in one world step.",
			Buckets:   prometheus.ExponentialBuckets(0.00001, 4, 8),
		}),
		echoesCreated: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "spawned_total",
			Help:      "Echoes spawned.",
		}),
		puzzleEvents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "puzzle_events_total",
			Help:      "Puzzle state changes by kind.",
		}, []string{"kind"}),
	}
	reg.MustRegister(c.bodies, c.echoes, c.collisionChecks, c.collisions, c.stepDuration, c.echoesCreated, c.puzzleEvents)
	return c
}

// ObserveStep records the counters of one world step and the echo population after it.
func (c *Collector) ObserveStep(stats physics.Stats, echoes int) {
	if c == nil {
		return
	}
	c.bodies.Set(float64(stats.Bodies))
	c.echoes.Set(float64(echoes))
	c.collisionChecks.Add(float64(stats.CollisionChecks))
	c.collisions.Add(float64(stats.CollisionsDetected))
	c.stepDuration.Observe(stats.UpdateTime.Seconds())
}

func (c *Collector) EchoCreated() {
	if c == nil {
		return
	}
	c.echoesCreated.Inc()
}

// PuzzleEvent counts one puzzle state change. kind is the event's String form.
func (c *Collector) PuzzleEvent(kind string) {
	if c == nil {
		return
	}
	c.puzzleEvents.WithLabelValues(kind).Inc()
}

// Handler serves the metrics gathered by g. A nil g uses the default gatherer.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}

// Serve starts a /metrics endpoint on addr in the background.
func Serve(addr string, g prometheus.Gatherer) {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(g))
	go func() {
		log.Printf("metrics: serving /metrics on %s", addr)
		if err := http.ListenAndServe(addr, mux); err != nil {
			log.Printf("metrics: server stopped: %v", err)
		}
	}()
}
