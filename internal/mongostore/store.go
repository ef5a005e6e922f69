package mongostore

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
	"go.mongodb.org/mongo-driver/v2/mongo/readpref"

	"github.com/jfoltran/envclone/internal/dbpair"
)

// Store is the entity-shape-independent connection handle, implementing
// dbpair.Source[Query] and dbpair.Destination. A single Store is shared by
// every entity in a run; per-entity typed reads/writes go through Collection.
type Store struct {
	client *mongo.Client
	db     *mongo.Database
	log    zerolog.Logger
}

// Dial connects to uri and selects database dbName.
func Dial(ctx context.Context, uri, dbName string, log zerolog.Logger) (*Store, error) {
	client, err := mongo.Connect(options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("mongostore: connect: %w", err)
	}
	return &Store{client: client, db: client.Database(dbName), log: log}, nil
}

func (s *Store) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *Store) TestConnection(ctx context.Context) error {
	return s.client.Ping(ctx, readpref.Primary())
}

func (s *Store) Prepare(ctx context.Context) error {
	return nil
}

func (s *Store) CountTotalRecords(ctx context.Context, entity string, query Query) (uint64, error) {
	n, err := s.db.Collection(entity).CountDocuments(ctx, query.Filter)
	if err != nil {
		return 0, fmt.Errorf("mongostore: count %s: %w", entity, err)
	}
	return uint64(n), nil
}

func (s *Store) ListIndexes(ctx context.Context, entity string) (dbpair.SourceIndexes, error) {
	specs, err := s.db.Collection(entity).Indexes().ListSpecifications(ctx)
	if err != nil {
		return dbpair.SourceIndexes{}, fmt.Errorf("mongostore: list indexes for %s: %w", entity, err)
	}

	result := dbpair.SourceIndexes{EntityName: entity}
	for _, spec := range specs {
		if spec.Name == "_id_" {
			continue
		}
		result.Indexes = append(result.Indexes, indexConfigFromModel(entity, spec))
	}
	return result, nil
}

// AverageRecordSize uses $collStats to read the collection's avgObjSize.
func (s *Store) AverageRecordSize(ctx context.Context, entity string) (uint64, error) {
	pipeline := bson.A{
		bson.D{{Key: "$collStats", Value: bson.D{{Key: "storageStats", Value: bson.D{}}}}},
	}
	cur, err := s.db.Collection(entity).Aggregate(ctx, pipeline)
	if err != nil {
		return 0, &dbpair.ErrUnsupported{Capability: "average_record_size"}
	}
	defer cur.Close(ctx)

	var doc struct {
		StorageStats struct {
			AvgObjSize int64 `bson:"avgObjSize"`
		} `bson:"storageStats"`
	}
	if !cur.Next(ctx) {
		return 0, &dbpair.ErrUnsupported{Capability: "average_record_size"}
	}
	if err := cur.Decode(&doc); err != nil {
		return 0, &dbpair.ErrUnsupported{Capability: "average_record_size"}
	}
	if doc.StorageStats.AvgObjSize <= 0 {
		return 0, &dbpair.ErrUnsupported{Capability: "average_record_size"}
	}
	return uint64(doc.StorageStats.AvgObjSize), nil
}

func (s *Store) DefaultBatchSize() uint64 { return 1000 }

func (s *Store) DefaultSortField() string { return "_id" }

func (s *Store) CreateIndexes(ctx context.Context, indexes dbpair.SourceIndexes) error {
	if len(indexes.Indexes) == 0 {
		return nil
	}
	models := make([]mongo.IndexModel, 0, len(indexes.Indexes))
	for _, cfg := range indexes.Indexes {
		models = append(models, indexModelFromConfig(cfg))
	}
	_, err := s.db.Collection(indexes.EntityName).Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("mongostore: create indexes on %s: %w", indexes.EntityName, err)
	}
	return nil
}

func (s *Store) DropIndex(ctx context.Context, entity, indexName string) error {
	_, err := s.db.Collection(entity).Indexes().DropOne(ctx, indexName)
	if err != nil {
		return fmt.Errorf("mongostore: drop index %s on %s: %w", indexName, entity, err)
	}
	return nil
}

// ClearDatabase drops every entity in entityNames. Callers are expected to
// have already applied the entity-clearing safety rules (see
// dbpair.PlanClear); this method performs no filtering of its own.
func (s *Store) ClearDatabase(ctx context.Context, entityNames []string) error {
	for _, name := range entityNames {
		if err := s.db.Collection(name).Drop(ctx); err != nil {
			return fmt.Errorf("mongostore: drop collection %s: %w", name, err)
		}
	}
	return nil
}

// ListViews enumerates native MongoDB views, preserving only viewOn and
// pipeline per the documented gap on view-replication completeness.
func (s *Store) ListViews(ctx context.Context) ([]dbpair.ViewDefinition, error) {
	filter := bson.D{{Key: "type", Value: "view"}}
	specs, err := s.db.ListCollectionSpecifications(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("mongostore: list views: %w", err)
	}

	views := make([]dbpair.ViewDefinition, 0, len(specs))
	for _, spec := range specs {
		var opts struct {
			ViewOn   string   `bson:"viewOn"`
			Pipeline bson.A   `bson:"pipeline"`
		}
		if spec.Options != nil {
			_ = bson.Unmarshal(spec.Options, &opts)
		}

		pipeline := make([]map[string]any, 0, len(opts.Pipeline))
		for _, stage := range opts.Pipeline {
			if m, ok := stage.(bson.D); ok {
				pipeline = append(pipeline, m.Map())
			}
		}

		views = append(views, dbpair.ViewDefinition{
			Name:     spec.Name,
			ViewOn:   opts.ViewOn,
			Pipeline: pipeline,
		})
	}
	return views, nil
}

func (s *Store) CreateView(ctx context.Context, view dbpair.ViewDefinition) error {
	pipeline := make(bson.A, 0, len(view.Pipeline))
	for _, stage := range view.Pipeline {
		d := bson.D{}
		for k, v := range stage {
			d = append(d, bson.E{Key: k, Value: v})
		}
		pipeline = append(pipeline, d)
	}

	if err := s.db.CreateView(ctx, view.Name, view.ViewOn, pipeline); err != nil {
		return fmt.Errorf("mongostore: create view %s: %w", view.Name, err)
	}
	return nil
}
