package mongostore

import "go.mongodb.org/mongo-driver/v2/bson"

// Query is the mongostore adapter's opaque filter type. The zero value is
// bson.D(nil), which mongo.Find treats as "match everything".
type Query struct {
	Filter bson.D
}

// Clone returns a deep-enough copy of q for reuse across concurrent tasks.
func (q Query) Clone() Query {
	filter := make(bson.D, len(q.Filter))
	copy(filter, q.Filter)
	return Query{Filter: filter}
}
