package config

import (
	"errors"
	"runtime"

	"github.com/jfoltran/envclone/internal/replication"
)

// StoreConfig holds the connection parameters for one side of a run. URI
// follows each adapter's own scheme (postgres://... or mongodb://...); Kind
// selects which adapter dials it.
type StoreConfig struct {
	Kind StoreKind
	URI  string
}

// StoreKind names a supported adapter.
type StoreKind string

const (
	StorePostgres StoreKind = "postgres"
	StoreMongo    StoreKind = "mongo"
)

// LoggingConfig holds settings for structured logging.
type LoggingConfig struct {
	Level  string
	Format string // "json" or "console"
}

// Config is the top-level configuration for an envclone run.
type Config struct {
	Source  StoreConfig
	Dest    StoreConfig
	Run     replication.Config
	Logging LoggingConfig
}

// Validate checks that required fields are present and fills in the
// ThreadCount and DefaultBatchSize defaults replication.NewConfig uses when
// they are left zero, plus the logging defaults. Strategy and
// AdaptiveBatching are left as set.
func (c *Config) Validate() error {
	var errs []error

	if c.Source.URI == "" {
		errs = append(errs, errors.New("source uri is required"))
	}
	if c.Source.Kind == "" {
		errs = append(errs, errors.New("source kind is required"))
	}
	if c.Dest.URI == "" {
		errs = append(errs, errors.New("destination uri is required"))
	}
	if c.Dest.Kind == "" {
		errs = append(errs, errors.New("destination kind is required"))
	}
	if c.Run.ThreadCount < 1 {
		c.Run.ThreadCount = runtime.NumCPU()
	}
	if c.Run.DefaultBatchSize == 0 {
		c.Run.DefaultBatchSize = 1000
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}

	return errors.Join(errs...)
}
