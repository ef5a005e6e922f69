package config

import (
	"runtime"
	"strings"
	"testing"

	"github.com/jfoltran/envclone/internal/replication"
)

func TestValidate_AllValid(t *testing.T) {
	cfg := Config{
		Source: StoreConfig{Kind: StorePostgres, URI: "postgres://src/srcdb"},
		Dest:   StoreConfig{Kind: StoreMongo, URI: "mongodb://dst/dstdb"},
		Run:    replication.NewConfig(),
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() unexpected error: %v", err)
	}
	if cfg.Logging.Level != "info" {
		t.Errorf("expected default log level info, got %s", cfg.Logging.Level)
	}
	if cfg.Logging.Format != "console" {
		t.Errorf("expected default log format console, got %s", cfg.Logging.Format)
	}
}

func TestValidate_MissingFields(t *testing.T) {
	cfg := Config{}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("Validate() expected error for empty config")
	}

	errStr := err.Error()
	expected := []string{
		"source uri is required",
		"source kind is required",
		"destination uri is required",
		"destination kind is required",
	}
	for _, e := range expected {
		if !strings.Contains(errStr, e) {
			t.Errorf("Validate() error %q missing expected message: %q", errStr, e)
		}
	}
}

func TestValidate_DefaultsApplied(t *testing.T) {
	cfg := Config{
		Source: StoreConfig{Kind: StorePostgres, URI: "postgres://src/srcdb"},
		Dest:   StoreConfig{Kind: StorePostgres, URI: "postgres://dst/dstdb"},
	}
	_ = cfg.Validate()
	if cfg.Run.ThreadCount != runtime.NumCPU() {
		t.Errorf("expected default thread count %d, got %d", runtime.NumCPU(), cfg.Run.ThreadCount)
	}
	if cfg.Run.DefaultBatchSize != 1000 {
		t.Errorf("expected default batch size 1000, got %d", cfg.Run.DefaultBatchSize)
	}
}

func TestValidate_PartialMissing(t *testing.T) {
	cfg := Config{
		Source: StoreConfig{Kind: StorePostgres},
		Dest:   StoreConfig{Kind: StoreMongo, URI: "mongodb://dst/dstdb"},
	}
	err := cfg.Validate()
	if err == nil {
		t.Fatal("expected error for missing source uri")
	}
	if !strings.Contains(err.Error(), "source uri is required") {
		t.Errorf("unexpected error: %v", err)
	}
	if strings.Contains(err.Error(), "destination") {
		t.Errorf("should not have destination error: %v", err)
	}
}
