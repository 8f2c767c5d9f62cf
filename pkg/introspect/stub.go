package introspect

import "context"

// StubIntrospector is a configurable in-memory introspector for tests.
// Set the function fields to control behavior; nil fields return zero values.
type StubIntrospector struct {
	TableExistsFunc            func(ctx context.Context, schema, table string) (bool, error)
	ColumnExistsFunc           func(ctx context.Context, schema, table, column string) (bool, error)
	FindSimilarTableNamesFunc  func(ctx context.Context, pattern string) ([]string, error)
	FindSimilarColumnNamesFunc func(ctx context.Context, schema, table, pattern string) ([]string, error)
	ObjectDefinitionFunc       func(ctx context.Context, schema, name string) (string, error)

	// Call tracking for short-circuit assertions.
	TableExistsCalls  int
	ColumnExistsCalls int
}

var _ SchemaIntrospector = (*StubIntrospector)(nil)

func (s *StubIntrospector) TableExists(ctx context.Context, schema, table string) (bool, error) {
	s.TableExistsCalls++
	if s.TableExistsFunc != nil {
		return s.TableExistsFunc(ctx, schema, table)
	}
	return false, nil
}

func (s *StubIntrospector) ColumnExists(ctx context.Context, schema, table, column string) (bool, error) {
	s.ColumnExistsCalls++
	if s.ColumnExistsFunc != nil {
		return s.ColumnExistsFunc(ctx, schema, table, column)
	}
	return false, nil
}

func (s *StubIntrospector) FindSimilarTableNames(ctx context.Context, pattern string) ([]string, error) {
	if s.FindSimilarTableNamesFunc != nil {
		return s.FindSimilarTableNamesFunc(ctx, pattern)
	}
	return nil, nil
}

func (s *StubIntrospector) FindSimilarColumnNames(ctx context.Context, schema, table, pattern string) ([]string, error) {
	if s.FindSimilarColumnNamesFunc != nil {
		return s.FindSimilarColumnNamesFunc(ctx, schema, table, pattern)
	}
	return nil, nil
}

func (s *StubIntrospector) ObjectDefinition(ctx context.Context, schema, name string) (string, error) {
	if s.ObjectDefinitionFunc != nil {
		return s.ObjectDefinitionFunc(ctx, schema, name)
	}
	return "", nil
}

func (s *StubIntrospector) Close() error { return nil }
