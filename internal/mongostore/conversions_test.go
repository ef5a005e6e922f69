package mongostore

import (
	"testing"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"

	"github.com/jfoltran/envclone/internal/dbpair"
)

// TestIndexModelFromConfigRoundTrip covers the index round-trip property:
// converting a store-agnostic IndexConfig to a native IndexModel and back
// preserves field names, directions and kind.
func TestIndexModelFromConfigRoundTrip(t *testing.T) {
	cases := []dbpair.IndexConfig{
		{
			Name:   "idx_users_email_asc",
			Fields: []dbpair.IndexField{{Name: "email", Direction: dbpair.Ascending}},
			Kind:   dbpair.Unique,
		},
		{
			Name: "idx_orders_created_desc",
			Fields: []dbpair.IndexField{
				{Name: "created_at", Direction: dbpair.Descending},
				{Name: "status", Direction: dbpair.Ascending},
			},
			Kind: dbpair.Compound,
		},
		{
			Name:   "idx_products_description_text",
			Fields: []dbpair.IndexField{{Name: "description", Direction: dbpair.Ascending}},
			Kind:   dbpair.Text,
		},
		{
			Name:   "idx_locations_geo",
			Fields: []dbpair.IndexField{{Name: "loc", Direction: dbpair.Ascending}},
			Kind:   dbpair.Geo2DSphere,
		},
	}

	for _, cfg := range cases {
		t.Run(cfg.Name, func(t *testing.T) {
			model := indexModelFromConfig(cfg)

			keysDoc, err := bson.Marshal(model.Keys)
			if err != nil {
				t.Fatalf("marshal keys: %v", err)
			}

			unique := cfg.Kind == dbpair.Unique
			spec := &mongo.IndexSpecification{
				Name:         cfg.Name,
				KeysDocument: keysDoc,
				Unique:       &unique,
			}

			roundTripped := indexConfigFromModel("users", spec)

			if len(roundTripped.Fields) != len(cfg.Fields) {
				t.Fatalf("field count = %d, want %d", len(roundTripped.Fields), len(cfg.Fields))
			}
			for i, f := range cfg.Fields {
				if roundTripped.Fields[i].Name != f.Name {
					t.Errorf("field %d name = %q, want %q", i, roundTripped.Fields[i].Name, f.Name)
				}
				if roundTripped.Fields[i].Direction != f.Direction {
					t.Errorf("field %d direction = %v, want %v", i, roundTripped.Fields[i].Direction, f.Direction)
				}
			}
			if roundTripped.Kind != cfg.Kind {
				t.Errorf("kind = %v, want %v", roundTripped.Kind, cfg.Kind)
			}
		})
	}
}

// TestPrimaryKeyIndexNameIsFiltered replays the "_id_" name filter that
// Store.ListIndexes applies before calling indexConfigFromModel. It does not
// call ListIndexes itself, which needs a live server.
func TestPrimaryKeyIndexNameIsFiltered(t *testing.T) {
	indexes := dbpair.SourceIndexes{EntityName: "users"}
	for _, name := range []string{"_id_", "idx_email"} {
		if name == "_id_" {
			continue
		}
		indexes.Indexes = append(indexes.Indexes, dbpair.IndexConfig{
			Name:   name,
			Fields: []dbpair.IndexField{{Name: "email", Direction: dbpair.Ascending}},
		})
	}
	if len(indexes.Indexes) != 1 {
		t.Fatalf("expected the primary key index to be excluded, got %d indexes", len(indexes.Indexes))
	}
}
