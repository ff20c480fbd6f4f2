package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNewCollector_IndependentRegistries(t *testing.T) {
	// Two collectors must not fight over metric registration
	a := NewCollector("lessonforge")
	b := NewCollector("lessonforge")

	a.ContentCreated.Inc()

	if got := testutil.ToFloat64(a.ContentCreated); got != 1 {
		t.Errorf("a.ContentCreated = %v, want 1", got)
	}
	if got := testutil.ToFloat64(b.ContentCreated); got != 0 {
		t.Errorf("b.ContentCreated = %v, want 0", got)
	}
}

func TestMiddleware_CountsRequests(t *testing.T) {
	c := NewCollector("lessonforge")

	handler := c.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/content", nil)
	handler.ServeHTTP(httptest.NewRecorder(), req)

	got := testutil.ToFloat64(c.HTTPRequests.WithLabelValues(http.MethodPost, "/api/content", "201"))
	if got != 1 {
		t.Errorf("counter = %v, want 1", got)
	}
}

func TestHandler_ExposesMetrics(t *testing.T) {
	c := NewCollector("lessonforge")
	c.SuggestionsGenerated.Add(3)

	w := httptest.NewRecorder()
	c.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	body, err := io.ReadAll(w.Result().Body)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(body), "lessonforge_suggestions_generated_total 3") {
		t.Errorf("metrics output missing counter:\n%s", body)
	}
}
