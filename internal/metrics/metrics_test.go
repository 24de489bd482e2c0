package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/udisondev/taming/internal/event"
	"github.com/udisondev/taming/internal/model"
)

type fakeSource struct {
	active int
	tamed  int
}

func (f *fakeSource) ActiveAttempts() int { return f.active }
func (f *fakeSource) TamedCount() int     { return f.tamed }

func TestCollectors_CountEvents(t *testing.T) {
	bus := event.NewBus()
	c := New(&fakeSource{})
	subs := c.Subscribe(bus, 0)
	assert.Len(t, subs, 6)

	bus.Publish(event.TamingStarted{})
	bus.Publish(event.TamingStarted{})
	bus.Publish(event.TamingCompleted{Animal: model.TamedAnimal{SpeciesID: "wolf"}})
	bus.Publish(event.CalmExpired{})
	bus.Publish(event.TamingCancelled{Reason: "creature_fled"})
	bus.Publish(event.CreatureLost{Reason: event.LostDied})
	bus.Publish(event.TrustChanged{OldTrust: 1, NewTrust: 3})
	bus.Publish(event.TrustChanged{OldTrust: 3, NewTrust: 3})

	assert.Equal(t, 2.0, testutil.ToFloat64(c.started))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.completed.WithLabelValues("wolf")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failed.WithLabelValues(FailureCalmExpired)))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.failed.WithLabelValues("creature_fled")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.lost.WithLabelValues(event.LostDied)))
	assert.Equal(t, 2.0, testutil.ToFloat64(c.trust))

	for _, s := range subs {
		require.True(t, bus.Unsubscribe(s))
	}
	bus.Publish(event.TamingStarted{})
	assert.Equal(t, 2.0, testutil.ToFloat64(c.started), "unsubscribed")
}

func TestCollectors_GaugesAndHandler(t *testing.T) {
	src := &fakeSource{active: 3, tamed: 7}
	c := New(src)

	rec := httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	body := rec.Body.String()
	assert.Contains(t, body, "taming_tamed_animals 7")
	assert.Contains(t, body, "taming_attempts_active 3")
	assert.Contains(t, body, "taming_started_total 0")

	src.tamed = 8
	rec = httptest.NewRecorder()
	c.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.True(t, strings.Contains(rec.Body.String(), "taming_tamed_animals 8"))
}
