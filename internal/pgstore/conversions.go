package pgstore

import (
	"fmt"
	"strings"

	"github.com/jfoltran/envclone/internal/dbpair"
)

// indexConfigFromDDL parses a `pg_indexes.indexdef` string into a
// store-agnostic IndexConfig. Postgres index "kind" reports only
// Standard/Unique/Partial faithfully here; GIN/GiST/hash access methods are
// detected where the method name is unambiguous, else the index is
// reported as Standard.
func indexConfigFromDDL(name, def string) dbpair.IndexConfig {
	lower := strings.ToLower(def)

	kind := dbpair.Standard
	switch {
	case strings.Contains(lower, "create unique index"):
		kind = dbpair.Unique
	case strings.Contains(lower, "using gin"):
		kind = dbpair.Text
	case strings.Contains(lower, "using gist"):
		kind = dbpair.Geo2DSphere
	case strings.Contains(lower, "using hash"):
		kind = dbpair.Hashed
	}

	options := map[string]any{}
	if idx := strings.Index(lower, " where "); idx != -1 {
		kind = dbpair.Partial
		options["predicate"] = strings.TrimSpace(def[idx+len(" where "):])
	}

	fields := parseIndexColumns(def)
	if len(fields) > 1 && kind == dbpair.Standard {
		kind = dbpair.Compound
	}

	return dbpair.IndexConfig{
		Name:    name,
		Fields:  fields,
		Kind:    kind,
		Options: options,
	}
}

// parseIndexColumns extracts the column list from a CREATE INDEX
// statement's parenthesized clause, e.g. "... (email, created_at DESC)".
// Double-quoted column names are unquoted.
func parseIndexColumns(def string) []dbpair.IndexField {
	open := strings.Index(def, "(")
	if open == -1 {
		return nil
	}
	end := strings.LastIndex(def, ")")
	if end == -1 || end < open {
		return nil
	}

	parts := strings.Split(def[open+1:end], ",")
	fields := make([]dbpair.IndexField, 0, len(parts))
	for _, part := range parts {
		part = strings.TrimSpace(part)
		dir := dbpair.Ascending
		if strings.HasSuffix(strings.ToUpper(part), " DESC") {
			dir = dbpair.Descending
			part = strings.TrimSpace(part[:len(part)-len(" DESC")])
		}
		if len(part) >= 2 && strings.HasPrefix(part, `"`) && strings.HasSuffix(part, `"`) {
			part = strings.ReplaceAll(part[1:len(part)-1], `""`, `"`)
		}
		fields = append(fields, dbpair.IndexField{Name: part, Direction: dir})
	}
	return fields
}

// ddlFromIndexConfig renders a store-agnostic IndexConfig back to a
// CREATE INDEX statement for the destination.
func ddlFromIndexConfig(entity string, cfg dbpair.IndexConfig) string {
	var b strings.Builder
	b.WriteString("CREATE ")
	if cfg.Kind == dbpair.Unique {
		b.WriteString("UNIQUE ")
	}
	fmt.Fprintf(&b, "INDEX %s ON %s", quoteIdent(cfg.Name), quoteIdent(entity))

	switch cfg.Kind {
	case dbpair.Text:
		b.WriteString(" USING GIN")
	case dbpair.Geo2DSphere, dbpair.Geo2D:
		b.WriteString(" USING GIST")
	case dbpair.Hashed:
		b.WriteString(" USING HASH")
	}

	b.WriteString(" (")
	for i, f := range cfg.Fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(quoteIdent(f.Name))
		if f.Direction == dbpair.Descending {
			b.WriteString(" DESC")
		}
	}
	b.WriteString(")")

	if predicate, ok := cfg.Options["predicate"].(string); ok && predicate != "" {
		b.WriteString(" WHERE ")
		b.WriteString(predicate)
	}

	return b.String()
}
