package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/apperrors"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/confidence"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/fuzzy"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/introspect"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// SchemaValidator checks a record's identity fields against the live
// catalog. Misses become warnings or errors on the record plus advisory
// fuzzy-match suggestions; only infrastructure failures are returned as
// errors.
type SchemaValidator interface {
	// Validate checks table and column existence for the record. An empty
	// name skips its check; the column check is never attempted when the
	// table check failed. A table declared manually is required: a miss is a
	// fatal record error. An extracted table name miss is a warning with a
	// confidence penalty.
	Validate(ctx context.Context, record *models.ExtractedRecord) error
}

type schemaValidator struct {
	introspector introspect.SchemaIntrospector
	logger       *zap.Logger
}

// NewSchemaValidator creates a schema validator backed by the given
// introspector.
func NewSchemaValidator(introspector introspect.SchemaIntrospector, logger *zap.Logger) SchemaValidator {
	return &schemaValidator{
		introspector: introspector,
		logger:       logger.Named("schema-validation"),
	}
}

var _ SchemaValidator = (*schemaValidator)(nil)

func (v *schemaValidator) Validate(ctx context.Context, record *models.ExtractedRecord) error {
	if record == nil {
		return apperrors.ErrNilRecord
	}

	// Routines and views are confirmed by their catalog definition lookup,
	// not by table existence.
	if record.ObjectType == models.ObjectTypeStoredProcedure || record.ObjectType == models.ObjectTypeView {
		record.TableExists = record.Definition != ""
		if !record.TableExists {
			record.AddWarning(fmt.Sprintf("no catalog definition found for %s", record.QualifiedName()))
		}
		return nil
	}

	// Existence checks are independently skippable: a record that names no
	// table cannot be validated, which is not a validation failure.
	if record.TableName == "" {
		record.AddWarning("no table name identified; existence checks skipped")
		return nil
	}

	exists, err := v.introspector.TableExists(ctx, record.SchemaName, record.TableName)
	if err != nil {
		return fmt.Errorf("table existence check for %s: %w", record.QualifiedName(), err)
	}
	if exists {
		record.TableExists = true
	} else {
		v.recordTableMiss(ctx, record)
	}

	if record.ColumnName == "" {
		return nil
	}
	if !record.TableExists {
		v.logger.Debug("Skipping column check, table did not validate",
			zap.String("object", record.QualifiedName()))
		return nil
	}

	colExists, err := v.introspector.ColumnExists(ctx, record.SchemaName, record.TableName, record.ColumnName)
	if err != nil {
		return fmt.Errorf("column existence check for %s: %w", record.QualifiedName(), err)
	}
	if colExists {
		record.ColumnExists = true
		return nil
	}

	record.AddWarning(fmt.Sprintf("column %q not found on table %s.%s",
		record.ColumnName, record.SchemaName, record.TableName))
	record.PenalizeConfidence(models.FieldColumnName, confidence.SchemaMismatchPenalty)
	v.suggestColumns(ctx, record)
	return nil
}

func (v *schemaValidator) recordTableMiss(ctx context.Context, record *models.ExtractedRecord) {
	msg := fmt.Sprintf("table %s.%s not found in schema", record.SchemaName, record.TableName)
	if record.FieldConfidence(models.FieldTableName) >= confidence.WeightManual {
		// An explicitly declared table must exist.
		record.AddError(msg)
	} else {
		record.AddWarning(msg)
		record.PenalizeConfidence(models.FieldTableName, confidence.SchemaMismatchPenalty)
	}

	names, err := v.introspector.FindSimilarTableNames(ctx, record.TableName)
	if err != nil {
		v.logger.Warn("Similar table name lookup failed",
			zap.String("table", record.TableName), zap.Error(err))
		return
	}
	if matches := fuzzy.Suggest(record.TableName, names, confidence.SuggestionLimit); len(matches) > 0 {
		record.SuggestedCorrections[models.FieldTableName] = strings.Join(matches, ", ")
	}
}

func (v *schemaValidator) suggestColumns(ctx context.Context, record *models.ExtractedRecord) {
	names, err := v.introspector.FindSimilarColumnNames(ctx, record.SchemaName, record.TableName, record.ColumnName)
	if err != nil {
		v.logger.Warn("Similar column name lookup failed",
			zap.String("object", record.QualifiedName()), zap.Error(err))
		return
	}
	if matches := fuzzy.Suggest(record.ColumnName, names, confidence.SuggestionLimit); len(matches) > 0 {
		record.SuggestedCorrections[models.FieldColumnName] = strings.Join(matches, ", ")
	}
}
