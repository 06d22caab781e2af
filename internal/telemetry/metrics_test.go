package telemetry

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/items/{id}", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	for _, path := range []string{"/items/1", "/items/2"} {
		r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, path, nil))
	}

	got := testutil.ToFloat64(httpReqs.WithLabelValues("/items/{id}", http.MethodGet, http.StatusText(http.StatusTeapot)))
	if got != 2 {
		t.Errorf("requests = %v, want 2", got)
	}
}

func TestMiddleware_UnroutedPathUsesURL(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware)
	r.Get("/known", func(http.ResponseWriter, *http.Request) {})

	r.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/unknown", nil))

	got := testutil.ToFloat64(httpReqs.WithLabelValues("/unknown", http.MethodGet, http.StatusText(http.StatusNotFound)))
	if got != 1 {
		t.Errorf("requests = %v, want 1", got)
	}
}

func TestStatusWriter_Flush(t *testing.T) {
	rec := httptest.NewRecorder()
	w := &statusWriter{ResponseWriter: rec, status: 200}
	w.WriteHeader(http.StatusAccepted)
	w.Flush()

	if w.status != http.StatusAccepted || !rec.Flushed {
		t.Errorf("status = %d, flushed = %v", w.status, rec.Flushed)
	}
}
