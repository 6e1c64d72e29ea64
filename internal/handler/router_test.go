package handler_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/retailpulse/loyalty-analytics-go/internal/domain"
	"github.com/retailpulse/loyalty-analytics-go/internal/handler"
	"github.com/retailpulse/loyalty-analytics-go/internal/infra/observability"
	"github.com/retailpulse/loyalty-analytics-go/internal/service"

	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

func newRouter(t *testing.T) http.Handler {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	svcs := handler.Services{
		Auth:    service.NewAuthService("admin", string(hash), []byte("test-secret"), time.Hour, zap.NewNop()),
		Metrics: observability.NewMetrics(),
	}
	return handler.NewRouter(svcs, zap.NewNop())
}

func TestHealthz(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestReadyz(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/readyz", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestMetrics(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rec.Code)
	}
}

func TestProtectedRouteWithoutToken(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets/ds1/analysis/export", nil)
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}

func TestOperatorFromContext(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("pw"), bcrypt.MinCost)
	if err != nil {
		t.Fatalf("bcrypt: %v", err)
	}
	auth := service.NewAuthService("admin", string(hash), []byte("test-secret"), time.Hour, zap.NewNop())
	resp, err := auth.Login(context.Background(), &domain.LoginRequest{Username: "admin", Password: "pw"})
	if err != nil {
		t.Fatalf("login: %v", err)
	}

	var operator string
	protected := handler.JWTAuthMiddleware(auth, zap.NewNop())(
		http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			operator = handler.OperatorFromContext(r.Context())
		}))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+resp.AccessToken)
	rec := httptest.NewRecorder()

	protected.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if operator != "admin" {
		t.Errorf("operator = %q, want admin", operator)
	}
}

func TestProtectedRouteWithMalformedHeader(t *testing.T) {
	router := newRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/v1/datasets/ds1/analysis/export", nil)
	req.Header.Set("Authorization", "Token abc")
	rec := httptest.NewRecorder()

	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusUnauthorized {
		t.Errorf("expected 401, got %d", rec.Code)
	}
}
