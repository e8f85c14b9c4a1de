package metrics_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/ErlanBelekov/authmail/internal/health"
	"github.com/ErlanBelekov/authmail/internal/metrics"
)

type fakeChecker struct {
	ready health.HealthResult
}

func (f *fakeChecker) Liveness(_ context.Context) health.HealthResult {
	return health.HealthResult{Status: "up"}
}

func (f *fakeChecker) Readiness(_ context.Context) health.HealthResult {
	return f.ready
}

func serve(t *testing.T, c *fakeChecker, path string) *httptest.ResponseRecorder {
	t.Helper()
	srv := metrics.NewServer(":0", c)
	w := httptest.NewRecorder()
	srv.Handler.ServeHTTP(w, httptest.NewRequest(http.MethodGet, path, nil))
	return w
}

func TestServer_Healthz(t *testing.T) {
	w := serve(t, &fakeChecker{}, "/healthz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestServer_ReadyzDown_Returns503(t *testing.T) {
	c := &fakeChecker{ready: health.HealthResult{
		Status: "down",
		Checks: map[string]health.CheckResult{"postgres": {Status: "down", Error: "refused"}},
	}}

	w := serve(t, c, "/readyz")
	if w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}

	var res health.HealthResult
	if err := json.Unmarshal(w.Body.Bytes(), &res); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if res.Checks["postgres"].Status != "down" {
		t.Errorf("postgres check = %+v", res.Checks["postgres"])
	}
}

func TestServer_ReadyzUp_Returns200(t *testing.T) {
	w := serve(t, &fakeChecker{ready: health.HealthResult{Status: "up"}}, "/readyz")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}

func TestServer_ExposesMetrics(t *testing.T) {
	w := serve(t, &fakeChecker{}, "/metrics")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
}
