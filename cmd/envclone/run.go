package main

import (
	"context"
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jfoltran/envclone/internal/config"
	"github.com/jfoltran/envclone/internal/dbpair"
	"github.com/jfoltran/envclone/internal/metrics"
	"github.com/jfoltran/envclone/internal/mongostore"
	"github.com/jfoltran/envclone/internal/pgstore"
	"github.com/jfoltran/envclone/internal/replication"
	"github.com/jfoltran/envclone/internal/runserver"
)

// recordEnvelope is the CLI's single built-in entity shape: an id plus an
// opaque JSON payload. This lets `envclone run` move an entity end to end
// without the caller writing Go code, at the cost of losing per-field
// masking rules (only whole-payload substitution is available from the
// CLI). Library callers who know their record types at compile time use
// internal/replication.AddProcessor directly instead.
type recordEnvelope struct {
	ID      string         `db:"id" bson:"_id"`
	Payload map[string]any `db:"payload" bson:"payload"`
}

var (
	runEntity     string
	runServerPort int
	runServe      bool
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Replicate one entity from source to destination",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := cfg.Validate(); err != nil {
			return fmt.Errorf("invalid config: %w", err)
		}
		if runEntity == "" {
			return fmt.Errorf("--entity is required")
		}

		ctx := cmd.Context()
		collector := metrics.NewCollector(logger)
		defer collector.Close()

		persister, err := metrics.NewStatePersister(collector, logger)
		if err == nil {
			persister.Start()
			defer persister.Stop()
		}

		if runServe {
			srv := runserver.New(collector, logger)
			srv.StartBackground(ctx, runServerPort)
		}

		collector.SetPhase("replicating")
		bar := metrics.NewEntityBar(collector, runEntity)

		switch {
		case cfg.Source.Kind == config.StorePostgres && cfg.Dest.Kind == config.StorePostgres:
			return runPostgresToPostgres(ctx, bar)
		case cfg.Source.Kind == config.StoreMongo && cfg.Dest.Kind == config.StoreMongo:
			return runMongoToMongo(ctx, bar)
		default:
			return fmt.Errorf("unsupported adapter pairing: %s -> %s", cfg.Source.Kind, cfg.Dest.Kind)
		}
	},
}

func init() {
	runCmd.Flags().StringVar(&runEntity, "entity", "", "Entity (table/collection) name to replicate")
	runCmd.Flags().BoolVar(&runServe, "serve", false, "Expose a status server for the duration of the run")
	runCmd.Flags().IntVar(&runServerPort, "port", 7654, "Status server port, with --serve")
	rootCmd.AddCommand(runCmd)
}

func runPostgresToPostgres(ctx context.Context, bar *metrics.EntityBar) error {
	source, err := pgstore.Dial(ctx, cfg.Source.URI, logger)
	if err != nil {
		return fmt.Errorf("dial source: %w", err)
	}
	defer source.Close()

	dest, err := pgstore.Dial(ctx, cfg.Dest.URI, logger)
	if err != nil {
		return fmt.Errorf("dial destination: %w", err)
	}
	defer dest.Close()

	pair := dbpair.New[pgstore.Query](source, dest)
	m := replication.NewManager(pair, cfg.Run, logger)

	columns := []string{"id", "payload"}
	reader := pgstore.NewTable[recordEnvelope](source, runEntity, columns)
	writer := pgstore.NewTable[recordEnvelope](dest, runEntity, columns)
	replication.AddProcessor[recordEnvelope](m, runEntity, reader, writer, bar)

	return m.Run(ctx)
}

func runMongoToMongo(ctx context.Context, bar *metrics.EntityBar) error {
	source, err := mongostore.Dial(ctx, cfg.Source.URI, dbNameFromURI(cfg.Source.URI), logger)
	if err != nil {
		return fmt.Errorf("dial source: %w", err)
	}
	defer source.Close(ctx)

	dest, err := mongostore.Dial(ctx, cfg.Dest.URI, dbNameFromURI(cfg.Dest.URI), logger)
	if err != nil {
		return fmt.Errorf("dial destination: %w", err)
	}
	defer dest.Close(ctx)

	pair := dbpair.New[mongostore.Query](source, dest)
	m := replication.NewManager(pair, cfg.Run, logger)

	reader := mongostore.NewCollection[recordEnvelope](source, runEntity)
	writer := mongostore.NewCollection[recordEnvelope](dest, runEntity)
	replication.AddProcessor[recordEnvelope](m, runEntity, reader, writer, bar)

	return m.Run(ctx)
}

// dbNameFromURI extracts the database name from a mongodb:// URI's path.
func dbNameFromURI(uri string) string {
	u, err := url.Parse(uri)
	if err != nil {
		return ""
	}
	return strings.TrimPrefix(u.Path, "/")
}
