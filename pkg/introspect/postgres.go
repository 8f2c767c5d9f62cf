package introspect

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"
)

// PostgresIntrospector answers catalog queries against a PostgreSQL
// datasource using a shared pgx pool.
type PostgresIntrospector struct {
	pool   *pgxpool.Pool
	logger *zap.Logger
}

// NewPostgresIntrospector connects to the datasource described by connStr.
func NewPostgresIntrospector(ctx context.Context, connStr string, logger *zap.Logger) (*PostgresIntrospector, error) {
	if logger == nil {
		logger = zap.NewNop()
	}

	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}

	return &PostgresIntrospector{
		pool:   pool,
		logger: logger.Named("introspect-postgres"),
	}, nil
}

var _ SchemaIntrospector = (*PostgresIntrospector)(nil)

func (p *PostgresIntrospector) TableExists(ctx context.Context, schema, table string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.tables
			WHERE table_schema = $1 AND table_name = $2
		)`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, schema, table).Scan(&exists); err != nil {
		return false, fmt.Errorf("check table existence: %w", err)
	}
	return exists, nil
}

func (p *PostgresIntrospector) ColumnExists(ctx context.Context, schema, table, column string) (bool, error) {
	const query = `
		SELECT EXISTS (
			SELECT 1
			FROM information_schema.columns
			WHERE table_schema = $1 AND table_name = $2 AND column_name = $3
		)`

	var exists bool
	if err := p.pool.QueryRow(ctx, query, schema, table, column).Scan(&exists); err != nil {
		return false, fmt.Errorf("check column existence: %w", err)
	}
	return exists, nil
}

func (p *PostgresIntrospector) FindSimilarTableNames(ctx context.Context, pattern string) ([]string, error) {
	const query = `
		SELECT table_schema || '.' || table_name
		FROM information_schema.tables
		WHERE table_type = 'BASE TABLE'
		  AND table_schema NOT IN ('pg_catalog', 'information_schema', 'pg_toast')
		  AND table_name ILIKE '%' || $1 || '%'
		ORDER BY table_schema, table_name
		LIMIT 100`

	return p.queryNames(ctx, query, pattern)
}

func (p *PostgresIntrospector) FindSimilarColumnNames(ctx context.Context, schema, table, pattern string) ([]string, error) {
	const query = `
		SELECT column_name
		FROM information_schema.columns
		WHERE table_schema = $1 AND table_name = $2
		  AND column_name ILIKE '%' || $3 || '%'
		ORDER BY ordinal_position
		LIMIT 100`

	return p.queryNames(ctx, query, schema, table, pattern)
}

// ObjectDefinition returns the source of a stored function or view.
func (p *PostgresIntrospector) ObjectDefinition(ctx context.Context, schema, name string) (string, error) {
	const query = `
		SELECT COALESCE(pg_get_functiondef(p.oid), '')
		FROM pg_proc p
		JOIN pg_namespace n ON n.oid = p.pronamespace
		WHERE n.nspname = $1 AND p.proname = $2
		LIMIT 1`

	var definition string
	err := p.pool.QueryRow(ctx, query, schema, name).Scan(&definition)
	if err == nil {
		return definition, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return "", fmt.Errorf("object definition for %s.%s: %w", schema, name, err)
	}

	// Not a routine; fall back to view definitions.
	const viewQuery = `
		SELECT COALESCE(view_definition, '')
		FROM information_schema.views
		WHERE table_schema = $1 AND table_name = $2`
	err = p.pool.QueryRow(ctx, viewQuery, schema, name).Scan(&definition)
	if errors.Is(err, pgx.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("object definition for %s.%s: %w", schema, name, err)
	}
	return definition, nil
}

func (p *PostgresIntrospector) queryNames(ctx context.Context, query string, args ...any) ([]string, error) {
	rows, err := p.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query names: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("scan name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate names: %w", err)
	}
	return names, nil
}

// Close releases the connection pool.
func (p *PostgresIntrospector) Close() error {
	p.pool.Close()
	return nil
}
