package observability_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func loggedRequest(t *testing.T, path string, status int) []observer.LoggedEntry {
	t.Helper()
	core, logs := observer.New(zapcore.InfoLevel)
	logger := zap.New(core)

	h := observability.ZapLoggerMiddleware(logger)(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(status)
		}))

	req := httptest.NewRequest(http.MethodGet, path, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	return logs.All()
}

func TestZapLoggerMiddleware_LogsRequest(t *testing.T) {
	entries := loggedRequest(t, "/v1/datasets", http.StatusOK)

	if len(entries) != 1 {
		t.Fatalf("expected 1 log entry, got %d", len(entries))
	}
	entry := entries[0]
	if entry.Level != zapcore.InfoLevel {
		t.Errorf("level = %v, want info for 2xx", entry.Level)
	}

	fields := entry.ContextMap()
	if fields["path"] != "/v1/datasets" {
		t.Errorf("path field = %v", fields["path"])
	}
	if fields["status"] != int64(http.StatusOK) {
		t.Errorf("status field = %v", fields["status"])
	}
	if _, ok := fields["bytes"]; !ok {
		t.Error("missing bytes field")
	}
	if _, ok := fields["latency"]; !ok {
		t.Error("missing latency field")
	}
}

func TestZapLoggerMiddleware_LevelsByStatus(t *testing.T) {
	tests := []struct {
		status int
		want   zapcore.Level
	}{
		{http.StatusOK, zapcore.InfoLevel},
		{http.StatusNotFound, zapcore.WarnLevel},
		{http.StatusInternalServerError, zapcore.ErrorLevel},
	}
	for _, tc := range tests {
		entries := loggedRequest(t, "/v1/datasets", tc.status)
		if len(entries) != 1 {
			t.Fatalf("status %d: expected 1 entry, got %d", tc.status, len(entries))
		}
		if entries[0].Level != tc.want {
			t.Errorf("status %d logged at %v, want %v", tc.status, entries[0].Level, tc.want)
		}
	}
}

func TestZapLoggerMiddleware_SkipsScrapeEndpoints(t *testing.T) {
	for _, path := range []string{"/metrics", "/ping"} {
		if entries := loggedRequest(t, path, http.StatusOK); len(entries) != 0 {
			t.Errorf("%s: expected no log entries, got %d", path, len(entries))
		}
	}
}
