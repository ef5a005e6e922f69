// Package pgstore is the PostgreSQL Source/Destination adapter, built on
// github.com/jackc/pgx/v5 and pgxpool.Pool. It demonstrates the engine's
// heterogeneous-pair capability: this adapter can be paired with
// internal/mongostore for the same entity type, since dbpair.Pair only
// fixes the query type, not the concrete source/destination.
package pgstore

// Query is the pgstore adapter's opaque filter type: a raw SQL WHERE
// fragment plus its positional arguments. The zero value is an empty
// fragment, which matches every row.
type Query struct {
	Where string
	Args  []any
}

func (q Query) Clone() Query {
	args := make([]any, len(q.Args))
	copy(args, q.Args)
	return Query{Where: q.Where, Args: args}
}

func (q Query) whereClause() string {
	if q.Where == "" {
		return ""
	}
	return " WHERE " + q.Where
}
