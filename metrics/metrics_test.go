package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/echoes/physics"
)

func TestObserveStep(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.ObserveStep(physics.Stats{Bodies: 7, CollisionChecks: 10, CollisionsDetected: 3, UpdateTime: time.Millisecond}, 2)
	c.ObserveStep(physics.Stats{Bodies: 8, CollisionChecks: 5, CollisionsDetected: 1}, 3)

	assert.Equal(t, 8.0, testutil.ToFloat64(c.bodies))
	assert.Equal(t, 3.0, testutil.ToFloat64(c.echoes))
	assert.Equal(t, 15.0, testutil.ToFloat64(c.collisionChecks))
	assert.Equal(t, 4.0, testutil.ToFloat64(c.collisions))
	assert.Equal(t, 1, testutil.CollectAndCount(c.stepDuration))
}

func TestEventCounters(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)

	c.EchoCreated()
	c.EchoCreated()
	c.PuzzleEvent("switch-pressed")
	c.PuzzleEvent("goal-reached")
	c.PuzzleEvent("switch-pressed")

	assert.Equal(t, 2.0, testutil.ToFloat64(c.echoesCreated))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.puzzleEvents.WithLabelValues("switch-pressed")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.puzzleEvents.WithLabelValues("goal-reached")))
}

func TestNilCollector(t *testing.T) {
	var c *Collector
	assert.NotPanics(t, func() {
		c.ObserveStep(physics.Stats{Bodies: 1}, 1)
		c.EchoCreated()
		c.PuzzleEvent("goal-reached")
	})
}

func TestHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	c := New(reg)
	c.EchoCreated()

	rec := httptest.NewRecorder()
	Handler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, strings.Contains(rec.Body.String(), "echoes_spawned_total 1"))
}
