package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

type fixedGate bool

func (g fixedGate) Ready() bool { return bool(g) }

func readiness(t *testing.T, gate Gate, checks map[string]Check) (int, readinessResponse) {
	t.Helper()
	e := echo.New()
	rec := httptest.NewRecorder()
	c := e.NewContext(httptest.NewRequest(http.MethodGet, "/health/ready", nil), rec)

	if err := NewReadinessHandler(gate, checks).Readiness(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	var resp readinessResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	return rec.Code, resp
}

func okCheck(context.Context) error { return nil }

func TestHealthHandler_Liveness(t *testing.T) {
	e := echo.New()
	rec := httptest.NewRecorder()
	if err := NewHealthHandler().Liveness(e.NewContext(httptest.NewRequest(http.MethodGet, "/health", nil), rec)); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestReadiness_PendingUntilPreloaded(t *testing.T) {
	code, resp := readiness(t, fixedGate(false), map[string]Check{"redis": okCheck})

	if code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", code)
	}
	if resp.Dependencies["preload"].Status != "pending" {
		t.Fatalf("unexpected preload status: %+v", resp.Dependencies)
	}
}

func TestReadiness_DependencyDown(t *testing.T) {
	code, resp := readiness(t, fixedGate(true), map[string]Check{
		"redis": func(context.Context) error { return errors.New("connection refused") },
	})

	if code != http.StatusServiceUnavailable || resp.Status != "degraded" {
		t.Fatalf("expected degraded 503, got %d %s", code, resp.Status)
	}
	if dep := resp.Dependencies["redis"]; dep.Status != "unhealthy" || dep.Error != "connection refused" {
		t.Fatalf("unexpected redis status: %+v", dep)
	}
}

func TestReadiness_Ready(t *testing.T) {
	code, resp := readiness(t, fixedGate(true), map[string]Check{"redis": okCheck})

	if code != http.StatusOK || resp.Status != "ok" {
		t.Fatalf("expected ok 200, got %d %s", code, resp.Status)
	}
	if len(resp.Dependencies) != 2 {
		t.Fatalf("unexpected dependencies: %+v", resp.Dependencies)
	}
}
