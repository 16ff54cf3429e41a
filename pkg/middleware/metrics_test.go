package middleware

import (
	"bufio"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// findMetric collects c and returns the first series whose labels are a
// superset of want, or nil.
func findMetric(c prometheus.Collector, want map[string]string) *dto.Metric {
	ch := make(chan prometheus.Metric, 100)
	c.Collect(ch)
	close(ch)

	for m := range ch {
		d := &dto.Metric{}
		if err := m.Write(d); err != nil {
			continue
		}

		got := make(map[string]string, len(d.GetLabel()))
		for _, lp := range d.GetLabel() {
			got[lp.GetName()] = lp.GetValue()
		}

		matched := true
		for k, v := range want {
			if got[k] != v {
				matched = false
				break
			}
		}
		if matched {
			return d
		}
	}
	return nil
}

// metricsRouter mounts the middleware on a chi router so RoutePattern
// resolves.
func metricsRouter(service string, handler http.HandlerFunc) *chi.Mux {
	r := chi.NewRouter()
	r.Use(PrometheusMetrics(service))
	r.Get("/api/v1/products/{id}", handler)
	return r
}

func TestPrometheusMetrics_CountsByRoutePattern(t *testing.T) {
	router := metricsRouter("count-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	for _, id := range []string{"1", "2", "3"} {
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/"+id, nil))
		require.Equal(t, http.StatusOK, rec.Code)
	}

	// All three ids collapse into the one route-pattern series.
	m := findMetric(httpRequestsTotal, map[string]string{
		"service": "count-svc",
		"method":  "GET",
		"path":    "/api/v1/products/{id}",
		"status":  "200",
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetCounter().GetValue(), float64(3))
}

func TestPrometheusMetrics_ObservesDuration(t *testing.T) {
	router := metricsRouter("duration-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusCreated)
	})

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/v1/products/7", nil))

	m := findMetric(httpRequestDuration, map[string]string{
		"service": "duration-svc",
		"status":  "201",
	})
	require.NotNil(t, m)
	assert.GreaterOrEqual(t, m.GetHistogram().GetSampleCount(), uint64(1))
}

func TestPrometheusMetrics_InFlightDuringRequest(t *testing.T) {
	seen := float64(-1)
	router := metricsRouter("inflight-svc", func(w http.ResponseWriter, _ *http.Request) {
		if m := findMetric(httpRequestsInFlight, map[string]string{"service": "inflight-svc"}); m != nil {
			seen = m.GetGauge().GetValue()
		}
		w.WriteHeader(http.StatusOK)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))

	assert.GreaterOrEqual(t, seen, float64(1))
}

func TestPrometheusMetrics_ImplicitStatusIs200(t *testing.T) {
	router := metricsRouter("implicit-svc", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte("ok"))
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/1", nil))

	m := findMetric(httpRequestsTotal, map[string]string{"service": "implicit-svc", "status": "200"})
	require.NotNil(t, m)
}

func TestPrometheusMetrics_ErrorStatusLabel(t *testing.T) {
	router := metricsRouter("error-svc", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})

	router.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/api/v1/products/999", nil))

	m := findMetric(httpRequestsTotal, map[string]string{"service": "error-svc", "status": "404"})
	require.NotNil(t, m)
}

// bareResponseWriter implements only http.ResponseWriter.
type bareResponseWriter struct {
	header http.Header
}

func (b *bareResponseWriter) Header() http.Header {
	if b.header == nil {
		b.header = make(http.Header)
	}
	return b.header
}

func (b *bareResponseWriter) Write(p []byte) (int, error) { return len(p), nil }

func (b *bareResponseWriter) WriteHeader(int) {}

type flushingWriter struct {
	http.ResponseWriter
	flushed bool
}

func (f *flushingWriter) Flush() { f.flushed = true }

type hijackingWriter struct {
	http.ResponseWriter
	hijacked bool
}

func (h *hijackingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h.hijacked = true
	return nil, nil, nil
}

func TestMetricsResponseWriter_FlushDelegates(t *testing.T) {
	under := &flushingWriter{ResponseWriter: httptest.NewRecorder()}
	rw := &metricsResponseWriter{ResponseWriter: under, statusCode: http.StatusOK}

	rw.Flush()
	assert.True(t, under.flushed)
}

func TestMetricsResponseWriter_FlushWithoutSupportIsNoOp(t *testing.T) {
	rw := &metricsResponseWriter{ResponseWriter: &bareResponseWriter{}, statusCode: http.StatusOK}

	assert.NotPanics(t, func() { rw.Flush() })
}

func TestMetricsResponseWriter_HijackDelegates(t *testing.T) {
	under := &hijackingWriter{ResponseWriter: httptest.NewRecorder()}
	rw := &metricsResponseWriter{ResponseWriter: under, statusCode: http.StatusOK}

	_, _, err := rw.Hijack()
	assert.NoError(t, err)
	assert.True(t, under.hijacked)
}

func TestMetricsResponseWriter_HijackWithoutSupport(t *testing.T) {
	rw := &metricsResponseWriter{ResponseWriter: &bareResponseWriter{}, statusCode: http.StatusOK}

	_, _, err := rw.Hijack()
	assert.ErrorIs(t, err, http.ErrNotSupported)
}
