package mongostore

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jfoltran/envclone/internal/dbpair"
)

// Collection is the record-shape-dependent half of the adapter: a thin
// generic wrapper over the shared Store, scoped to one entity's record
// type T. Constructing one is cheap (it only stores a pointer and a
// string), so every Processor[T] gets its own over the same connection.
type Collection[T any] struct {
	store *Store
	name  string
}

// NewCollection binds T to entity name on store.
func NewCollection[T any](store *Store, entity string) *Collection[T] {
	return &Collection[T]{store: store, name: entity}
}

func (c *Collection[T]) ReadChunk(ctx context.Context, entity string, query Query, page dbpair.Pagination, opts dbpair.ReadOptions) ([]T, error) {
	sortField := opts.SortField
	if sortField == "" {
		sortField = "_id"
	}
	dir := int32(1)
	if opts.SortDescending {
		dir = -1
	}

	findOpts := options.Find().
		SetSkip(int64(page.StartPosition)).
		SetLimit(int64(page.Limit)).
		SetSort(bson.D{{Key: sortField, Value: dir}})
	if opts.CursorBatch > 0 {
		findOpts.SetBatchSize(int32(opts.CursorBatch))
	}

	cur, err := c.store.db.Collection(entity).Find(ctx, query.Filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("mongostore: find on %s: %w", entity, err)
	}
	defer cur.Close(ctx)

	var results []T
	if err := cur.All(ctx, &results); err != nil {
		return nil, fmt.Errorf("mongostore: decode results from %s: %w", entity, err)
	}
	return results, nil
}

func (c *Collection[T]) Write(ctx context.Context, entity string, records []T) error {
	if len(records) == 0 {
		return nil
	}
	docs := make([]any, len(records))
	for i := range records {
		docs[i] = records[i]
	}
	_, err := c.store.db.Collection(entity).InsertMany(ctx, docs)
	if err != nil {
		return fmt.Errorf("mongostore: insert %d records into %s: %w", len(records), entity, err)
	}
	return nil
}

