package runserver

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"github.com/jfoltran/envclone/internal/metrics"
)

func TestHandlerStatus(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()
	c.SetPhase("replicating")

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	rec := httptest.NewRecorder()

	h.status(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status code = %d, want 200", rec.Code)
	}

	ct := rec.Header().Get("Content-Type")
	if ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var snap metrics.Snapshot
	if err := json.Unmarshal(rec.Body.Bytes(), &snap); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if snap.Phase != "replicating" {
		t.Errorf("Phase = %q, want replicating", snap.Phase)
	}
}

func TestHandlerEntities(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()
	c.SetEntities([]metrics.EntityProgress{
		{Name: "users", Status: metrics.EntityDone},
	})

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/entities", nil)
	rec := httptest.NewRecorder()

	h.entities(rec, req)

	var entities []metrics.EntityProgress
	if err := json.Unmarshal(rec.Body.Bytes(), &entities); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(entities) != 1 {
		t.Fatalf("expected 1 entity, got %d", len(entities))
	}
	if entities[0].Name != "users" {
		t.Errorf("entity name = %q, want users", entities[0].Name)
	}
}

func TestHandlerLogs(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()

	c.AddLog(metrics.LogEntry{Level: "info", Message: "test log"})

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/logs", nil)
	rec := httptest.NewRecorder()

	h.logs(rec, req)

	var logs []metrics.LogEntry
	if err := json.Unmarshal(rec.Body.Bytes(), &logs); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if len(logs) != 1 {
		t.Fatalf("expected 1 log, got %d", len(logs))
	}
	if logs[0].Message != "test log" {
		t.Errorf("log message = %q, want 'test log'", logs[0].Message)
	}
}

func TestHandlerCORS(t *testing.T) {
	c := metrics.NewCollector(zerolog.Nop())
	defer c.Close()

	h := &handlers{collector: c}
	req := httptest.NewRequest("GET", "/api/v1/status", nil)
	rec := httptest.NewRecorder()

	h.status(rec, req)

	cors := rec.Header().Get("Access-Control-Allow-Origin")
	if cors != "*" {
		t.Errorf("CORS header = %q, want *", cors)
	}
}
