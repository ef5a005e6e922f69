package pgstore

import (
	"context"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/jfoltran/envclone/internal/dbpair"
)

// quoteIdent double-quotes a Postgres identifier, escaping any embedded
// double quote, so interpolated entity/column/index names can't break out
// of the identifier position in a generated statement.
func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Store is the entity-shape-independent connection handle, implementing
// dbpair.Source[Query] and dbpair.Destination over a pgxpool.Pool.
type Store struct {
	pool *pgxpool.Pool
	log  zerolog.Logger
}

// Dial connects to dsn and returns a ready Store.
func Dial(ctx context.Context, dsn string, log zerolog.Logger) (*Store, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("pgstore: connect: %w", err)
	}
	return &Store{pool: pool, log: log}, nil
}

func (s *Store) Close() {
	s.pool.Close()
}

func (s *Store) TestConnection(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *Store) Prepare(ctx context.Context) error {
	return nil
}

func (s *Store) CountTotalRecords(ctx context.Context, entity string, query Query) (uint64, error) {
	sql := fmt.Sprintf("SELECT count(*) FROM %s%s", quoteIdent(entity), query.whereClause())
	var count int64
	if err := s.pool.QueryRow(ctx, sql, query.Args...).Scan(&count); err != nil {
		return 0, fmt.Errorf("pgstore: count %s: %w", entity, err)
	}
	return uint64(count), nil
}

func (s *Store) ListIndexes(ctx context.Context, entity string) (dbpair.SourceIndexes, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT indexname, indexdef
		FROM pg_indexes
		WHERE tablename = $1 AND indexname != $2
	`, entity, entity+"_pkey")
	if err != nil {
		return dbpair.SourceIndexes{}, fmt.Errorf("pgstore: list indexes for %s: %w", entity, err)
	}
	defer rows.Close()

	result := dbpair.SourceIndexes{EntityName: entity}
	for rows.Next() {
		var name, def string
		if err := rows.Scan(&name, &def); err != nil {
			return dbpair.SourceIndexes{}, fmt.Errorf("pgstore: scan index row: %w", err)
		}
		result.Indexes = append(result.Indexes, indexConfigFromDDL(name, def))
	}
	return result, rows.Err()
}

// AverageRecordSize samples pg_column_size over a small TABLESAMPLE to
// estimate the average row width without a full table scan.
func (s *Store) AverageRecordSize(ctx context.Context, entity string) (uint64, error) {
	sql := fmt.Sprintf(`
		SELECT avg(pg_column_size(t.*))::bigint
		FROM %s TABLESAMPLE SYSTEM (1) t
	`, quoteIdent(entity))

	var avg *int64
	if err := s.pool.QueryRow(ctx, sql).Scan(&avg); err != nil {
		return 0, &dbpair.ErrUnsupported{Capability: "average_record_size"}
	}
	if avg == nil || *avg <= 0 {
		return 0, &dbpair.ErrUnsupported{Capability: "average_record_size"}
	}
	return uint64(*avg), nil
}

func (s *Store) DefaultBatchSize() uint64 { return 1000 }

func (s *Store) DefaultSortField() string { return "id" }

func (s *Store) CreateIndexes(ctx context.Context, indexes dbpair.SourceIndexes) error {
	for _, cfg := range indexes.Indexes {
		sql := ddlFromIndexConfig(indexes.EntityName, cfg)
		if _, err := s.pool.Exec(ctx, sql); err != nil {
			return fmt.Errorf("pgstore: create index %s on %s: %w", cfg.Name, indexes.EntityName, err)
		}
	}
	return nil
}

func (s *Store) DropIndex(ctx context.Context, entity, indexName string) error {
	if _, err := s.pool.Exec(ctx, fmt.Sprintf("DROP INDEX IF EXISTS %s", quoteIdent(indexName))); err != nil {
		return fmt.Errorf("pgstore: drop index %s: %w", indexName, err)
	}
	return nil
}

// ClearDatabase truncates every entity in entityNames. Callers are expected
// to have already applied the entity-clearing safety rules.
func (s *Store) ClearDatabase(ctx context.Context, entityNames []string) error {
	for _, name := range entityNames {
		if _, err := s.pool.Exec(ctx, fmt.Sprintf("TRUNCATE %s", quoteIdent(name))); err != nil {
			return fmt.Errorf("pgstore: truncate %s: %w", name, err)
		}
	}
	return nil
}
