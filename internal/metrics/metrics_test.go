package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveLogin(t *testing.T) {
	before := testutil.ToFloat64(LoginsTotal.WithLabelValues("supplier", "DEVICE_MISMATCH"))
	ObserveLogin("supplier", "DEVICE_MISMATCH", time.Now())
	after := testutil.ToFloat64(LoginsTotal.WithLabelValues("supplier", "DEVICE_MISMATCH"))
	if after != before+1 {
		t.Errorf("logins_total = %v, want %v", after, before+1)
	}
}

func TestServer_ExposesMetrics(t *testing.T) {
	SessionsInvalidatedTotal.WithLabelValues("customer", "NEW_LOGIN").Inc()

	srv := NewServer(":0")
	rec := httptest.NewRecorder()
	srv.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "marketplace_auth_sessions_invalidated_total") {
		t.Error("metrics output should include sessions_invalidated_total")
	}
}
