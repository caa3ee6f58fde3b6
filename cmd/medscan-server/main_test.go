package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog"

	"github.com/medscan/medscan/internal/config"
	"github.com/medscan/medscan/internal/domain/report"
)

// unreachableRepo simulates a durable backend whose connection died
// after startup.
type unreachableRepo struct{}

func (unreachableRepo) Create(context.Context, *report.SavedReport) error { return errors.New("down") }
func (unreachableRepo) List(context.Context) ([]*report.SavedReport, error) {
	return nil, errors.New("down")
}
func (unreachableRepo) Get(context.Context, string) (*report.SavedReport, error) {
	return nil, errors.New("down")
}
func (unreachableRepo) Delete(context.Context, string) error { return errors.New("down") }
func (unreachableRepo) Ping(context.Context) error           { return errors.New("connection refused") }
func (unreachableRepo) Name() string                         { return "mongodb" }

func getJSON(t *testing.T, h echo.HandlerFunc) map[string]interface{} {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	if err := h(c); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &body); err != nil {
		t.Fatalf("bad response body: %v", err)
	}
	return body
}

func TestRootHandler(t *testing.T) {
	body := getJSON(t, rootHandler(false))
	if body["message"] != "Medical Report Scanner API" {
		t.Errorf("unexpected message: %v", body["message"])
	}
	if body["version"] != "1.0" {
		t.Errorf("unexpected version: %v", body["version"])
	}
	if body["durable_connected"] != false {
		t.Errorf("expected durable_connected false, got %v", body["durable_connected"])
	}
}

func TestHealthHandler_MemoryOnly(t *testing.T) {
	body := getJSON(t, healthHandler(report.NewReportRepoMemory(), false))
	if body["status"] != "healthy" {
		t.Errorf("unexpected status: %v", body["status"])
	}
	if body["storage"] != "memory" {
		t.Errorf("unexpected storage: %v", body["storage"])
	}
	if body["durable"] != "disconnected" {
		t.Errorf("unexpected durable state: %v", body["durable"])
	}
}

func TestHealthHandler_DurableConnected(t *testing.T) {
	body := getJSON(t, healthHandler(report.NewReportRepoMemory(), true))
	if body["durable"] != "connected" {
		t.Errorf("unexpected durable state: %v", body["durable"])
	}
}

func TestHealthHandler_DurableError(t *testing.T) {
	body := getJSON(t, healthHandler(unreachableRepo{}, true))
	if body["storage"] != "mongodb" {
		t.Errorf("unexpected storage: %v", body["storage"])
	}
	if body["durable"] != "error: connection refused" {
		t.Errorf("unexpected durable state: %v", body["durable"])
	}
}

func TestBuildRepository_NoStoreConfigured(t *testing.T) {
	repo, cleanup, durable := buildRepository(context.Background(), &config.Config{}, zerolog.Nop())
	defer cleanup()

	if durable {
		t.Error("expected no durable store")
	}
	if repo.Name() != "memory" {
		t.Errorf("expected memory backend, got %q", repo.Name())
	}
	if err := repo.Create(context.Background(), &report.SavedReport{ID: "r1"}); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	reports, err := repo.List(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(reports) != 1 {
		t.Errorf("expected 1 report, got %d", len(reports))
	}
}
