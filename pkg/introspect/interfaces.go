// Package introspect queries live relational catalogs for existence and
// shape facts about named objects. Implementations are safe for concurrent
// use; all lookups honor the caller's context.
package introspect

import "context"

// SchemaIntrospector answers existence checks and similar-name lookups
// against a live catalog. The pipeline treats it as a black box.
type SchemaIntrospector interface {
	// TableExists reports whether schema.table exists.
	TableExists(ctx context.Context, schema, table string) (bool, error)

	// ColumnExists reports whether schema.table.column exists.
	ColumnExists(ctx context.Context, schema, table, column string) (bool, error)

	// FindSimilarTableNames returns known table names loosely matching
	// pattern, for fuzzy-match suggestion populations.
	FindSimilarTableNames(ctx context.Context, pattern string) ([]string, error)

	// FindSimilarColumnNames returns column names of schema.table loosely
	// matching pattern.
	FindSimilarColumnNames(ctx context.Context, schema, table, pattern string) ([]string, error)

	// ObjectDefinition returns the stored source of a routine or view,
	// or empty string when the catalog does not retain one.
	ObjectDefinition(ctx context.Context, schema, name string) (string, error)

	// Close releases the backing connection pool.
	Close() error
}
