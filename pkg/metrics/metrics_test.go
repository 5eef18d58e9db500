package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/orders/{id}", func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusNotFound) })

	before := testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/orders/{id}", "404"))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/41", nil))
	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/orders/42", nil))

	assert.Equal(t, before+2, testutil.ToFloat64(RequestTotal.WithLabelValues("GET", "/api/orders/{id}", "404")))
}

func TestDomainHelpers(t *testing.T) {
	before := testutil.ToFloat64(OrderTransitions.WithLabelValues("printing"))
	RecordTransition("printing")
	assert.Equal(t, before+1, testutil.ToFloat64(OrderTransitions.WithLabelValues("printing")))

	hits := testutil.ToFloat64(CacheLookups.WithLabelValues("pricing", "hit"))
	misses := testutil.ToFloat64(CacheLookups.WithLabelValues("pricing", "miss"))
	RecordCache("pricing", true)
	RecordCache("pricing", false)
	RecordCache("pricing", false)
	assert.Equal(t, hits+1, testutil.ToFloat64(CacheLookups.WithLabelValues("pricing", "hit")))
	assert.Equal(t, misses+2, testutil.ToFloat64(CacheLookups.WithLabelValues("pricing", "miss")))
}

func TestHandlerExposesRegistry(t *testing.T) {
	OrdersCreated.Inc()
	rec := httptest.NewRecorder()
	Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, "printhub_orders_created_total"))
	assert.True(t, strings.Contains(body, "go_goroutines"))
}
