package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestObserveRequest(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodGet, "/api/carts/{id}", http.StatusNotFound, 3*time.Millisecond)
	m.ObserveRequest(http.MethodGet, "/api/carts/{id}", http.StatusNotFound, 5*time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.requests.WithLabelValues("GET", "/api/carts/{id}", "404")))
	assert.Equal(t, 1, testutil.CollectAndCount(m.duration))
}

func TestAuthEventAndInFlight(t *testing.T) {
	m := New()
	m.AuthEvent("login", "ok")
	m.AuthEvent("login", "unauthorized")
	m.AuthEvent("login", "ok")
	m.TrackInFlight(1)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.auth.WithLabelValues("login", "ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.inFlight))
}

func TestHandlerExposes(t *testing.T) {
	m := New()
	m.AuthEvent("signup", "ok")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `smartcart_auth_events_total{event="signup",outcome="ok"} 1`)
}
