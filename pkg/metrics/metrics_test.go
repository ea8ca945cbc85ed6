package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func counterValue(t *testing.T, c interface{ Write(*dto.Metric) error }) float64 {
	t.Helper()
	var m dto.Metric
	require.NoError(t, c.Write(&m))
	return m.GetCounter().GetValue()
}

func scrape(t *testing.T) string {
	t.Helper()
	w := httptest.NewRecorder()
	Handler()(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, w.Code)
	return w.Body.String()
}

func TestMiddlewareLabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/api/groups/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/groups/abc", nil))

	body := scrape(t)
	assert.Contains(t, body, `route="/api/groups/{id}"`)
	assert.Contains(t, body, `status="418"`)
	assert.NotContains(t, body, "/api/groups/abc")
}

func TestObserveCheckout(t *testing.T) {
	ok := Checkouts.WithLabelValues("ok")
	before := counterValue(t, ok)
	ObserveCheckout(time.Now(), 3)
	assert.Equal(t, before+1, counterValue(t, ok))
}

func TestHandlerServesRegistry(t *testing.T) {
	RecordJob("invoices.send", "ok")
	assert.Contains(t, scrape(t), "groupcart_jobs_processed_total")
}
