package metrics

import (
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func scrape(t *testing.T) string {
	t.Helper()
	rec := httptest.NewRecorder()
	DefaultHandler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	body, _ := io.ReadAll(rec.Body)
	return string(body)
}

func TestObserveRemoteCountsOutcome(t *testing.T) {
	ObserveRemote("remote_test_op", time.Now(), errors.New("boom"))
	ObserveRemote("remote_test_op", time.Now(), nil)
	ObserveRemote("remote_test_op", time.Now(), nil)

	out := scrape(t)
	for _, want := range []string{
		`todoweb_remote_requests_total{op="remote_test_op",outcome="error"} 1`,
		`todoweb_remote_requests_total{op="remote_test_op",outcome="ok"} 2`,
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}

func TestDefaultHandlerExposesMetrics(t *testing.T) {
	ObserveHTTP("", http.MethodGet, http.StatusNotFound, time.Now())

	out := scrape(t)
	for _, want := range []string{
		`todoweb_http_requests_total{method="GET",route="unmatched",status="404"} 1`,
		"go_goroutines",
	} {
		if !strings.Contains(out, want) {
			t.Fatalf("metrics output missing %q", want)
		}
	}
}
