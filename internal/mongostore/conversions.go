// Package mongostore is the MongoDB Source/Destination adapter: a concrete
// binding of the dbpair contracts over go.mongodb.org/mongo-driver/v2.
package mongostore

import (
	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jfoltran/envclone/internal/dbpair"
)

// indexConfigFromModel converts a driver IndexSpecification (as returned by
// Collection.Indexes().ListSpecifications) into a store-agnostic
// IndexConfig, detecting kind from the key document's values.
func indexConfigFromModel(entity string, spec *mongo.IndexSpecification) dbpair.IndexConfig {
	var keys bson.D
	_ = bson.Unmarshal(spec.KeysDocument, &keys)

	fields := make([]dbpair.IndexField, 0, len(keys))
	kind := dbpair.Standard

	for _, elem := range keys {
		switch v := elem.Value.(type) {
		case string:
			switch v {
			case "text":
				kind = dbpair.Text
			case "2dsphere":
				kind = dbpair.Geo2DSphere
			case "2d":
				kind = dbpair.Geo2D
			case "hashed":
				kind = dbpair.Hashed
			}
			fields = append(fields, dbpair.IndexField{Name: elem.Key, Direction: dbpair.Ascending})
		case int32:
			dir := dbpair.Ascending
			if v < 0 {
				dir = dbpair.Descending
			}
			fields = append(fields, dbpair.IndexField{Name: elem.Key, Direction: dir})
		case int64:
			dir := dbpair.Ascending
			if v < 0 {
				dir = dbpair.Descending
			}
			fields = append(fields, dbpair.IndexField{Name: elem.Key, Direction: dir})
		default:
			fields = append(fields, dbpair.IndexField{Name: elem.Key, Direction: dbpair.Ascending})
		}
	}

	if len(fields) > 1 && kind == dbpair.Standard {
		kind = dbpair.Compound
	}

	options := map[string]any{}
	if spec.Unique != nil && *spec.Unique {
		kind = dbpair.Unique
		options["unique"] = true
	}
	if spec.Sparse != nil {
		options["sparse"] = *spec.Sparse
	}

	name := spec.Name
	if name == "" {
		name = dbpair.GenerateIndexName(entity, fields)
	}

	return dbpair.IndexConfig{
		Name:    name,
		Fields:  fields,
		Kind:    kind,
		Options: options,
	}
}

// indexModelFromConfig is the inverse conversion: a store-agnostic
// IndexConfig to a native IndexModel suitable for CreateMany.
func indexModelFromConfig(cfg dbpair.IndexConfig) mongo.IndexModel {
	keys := bson.D{}
	for _, f := range cfg.Fields {
		switch cfg.Kind {
		case dbpair.Text:
			keys = append(keys, bson.E{Key: f.Name, Value: "text"})
		case dbpair.Geo2DSphere:
			keys = append(keys, bson.E{Key: f.Name, Value: "2dsphere"})
		case dbpair.Geo2D:
			keys = append(keys, bson.E{Key: f.Name, Value: "2d"})
		case dbpair.Hashed:
			keys = append(keys, bson.E{Key: f.Name, Value: "hashed"})
		default:
			dir := int32(1)
			if f.Direction == dbpair.Descending {
				dir = -1
			}
			keys = append(keys, bson.E{Key: f.Name, Value: dir})
		}
	}

	opts := options.Index().SetName(cfg.Name)
	if cfg.Kind == dbpair.Unique {
		opts.SetUnique(true)
	}
	if sparse, ok := cfg.Options["sparse"].(bool); ok {
		opts.SetSparse(sparse)
	}
	if lang, ok := cfg.Options["default_language"].(string); ok {
		opts.SetDefaultLanguage(lang)
	}
	if override, ok := cfg.Options["language_override"].(string); ok {
		opts.SetLanguageOverride(override)
	}

	return mongo.IndexModel{Keys: keys, Options: opts}
}
