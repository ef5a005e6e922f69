package dbpair

import "context"

// ReadOptions carries the adapter-typed read hints the processor derives: a
// deterministic sort (defaulting to the source adapter's primary-key field
// ascending) and a cursor batch-size hint for adapters that support
// streaming fetch granularity separate from the logical batch size.
type ReadOptions struct {
	SortField      string
	SortDescending bool
	CursorBatch    uint64
}

// Source is the entity-shape-independent half of the source adapter
// contract: everything that does not need to know the record type T. A
// single Source value is shared across every entity in a run, which is what
// lets the Manager hold one connection for the lifetime of the replication.
//
// Q is the adapter's opaque, cloneable, zero-valued-means-select-all query
// type.
type Source[Q any] interface {
	CountTotalRecords(ctx context.Context, entity string, query Q) (uint64, error)
	ListIndexes(ctx context.Context, entity string) (SourceIndexes, error)
	TestConnection(ctx context.Context) error
	Prepare(ctx context.Context) error

	// AverageRecordSize supports adaptive batching. Adapters that cannot
	// estimate this return ErrUnsupported; the processor then falls back to
	// the configured/default batch size.
	AverageRecordSize(ctx context.Context, entity string) (uint64, error)

	// DefaultBatchSize is used when neither the processor nor the
	// replication config supplies one.
	DefaultBatchSize() uint64

	// DefaultSortField names the field ReadChunk should order by when
	// neither the processor nor a ProcessorOption overrides it. Each
	// adapter reports its own store's convention (e.g. "id" for pgstore,
	// "_id" for mongostore) rather than the core assuming one.
	DefaultSortField() string
}

// Reader is the record-shape-dependent half of the source contract: one
// entity's typed batch read. ReadChunk MUST return at most page.Limit
// records, starting from the page.StartPosition-th record under the
// ordering implied by opts.
type Reader[T any, Q any] interface {
	ReadChunk(ctx context.Context, entity string, query Q, page Pagination, opts ReadOptions) ([]T, error)
}

// Destination is the entity-shape-independent half of the destination
// adapter contract.
type Destination interface {
	CreateIndexes(ctx context.Context, indexes SourceIndexes) error
	DropIndex(ctx context.Context, entity, indexName string) error

	// ClearDatabase drops every entity present in entityNames and no
	// others. The entity-clearing safety rules (system/admin/config
	// prefixes and suffixes) are applied by the caller: Pair.ClearEntities
	// filters the allow-list through PlanClear before calling it.
	ClearDatabase(ctx context.Context, entityNames []string) error

	TestConnection(ctx context.Context) error
	Prepare(ctx context.Context) error
}

// Writer is the record-shape-dependent half of the destination contract.
// Write is semantically an append of each record as a new row/document;
// the engine assumes the target entity was cleared beforehand.
type Writer[T any] interface {
	Write(ctx context.Context, entity string, records []T) error
}

// ViewSource is an optional capability: stores with a native "view" concept
// (e.g. MongoDB) can enumerate and describe them for the final view-copy
// phase of a run.
type ViewSource interface {
	ListViews(ctx context.Context) ([]ViewDefinition, error)
}

// ViewDestination is the write-side counterpart of ViewSource.
type ViewDestination interface {
	CreateView(ctx context.Context, view ViewDefinition) error
}

// ViewDefinition preserves only viewOn and pipeline; collation and other
// view options are not transferred.
type ViewDefinition struct {
	Name     string
	ViewOn   string
	Pipeline []map[string]any
}

// ErrUnsupported is returned by optional adapter capabilities (such as
// AverageRecordSize) that a given adapter does not implement.
type ErrUnsupported struct {
	Capability string
}

func (e *ErrUnsupported) Error() string {
	return "dbpair: capability not supported: " + e.Capability
}
