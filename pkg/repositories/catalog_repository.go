// Package repositories provides data access for the documentation catalog.
package repositories

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/apperrors"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/database"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// CatalogEntry is one persisted documentation dataset plus the review
// signals a human approver filters on.
type CatalogEntry struct {
	DocID                uuid.UUID
	SchemaName           string
	TableName            string
	ColumnName           string
	ObjectType           string
	TicketID             string
	Dataset              *models.RenderDataset
	Confidence           float64
	Warnings             []string
	Errors               []string
	SuggestedCorrections map[string]string
	CreatedAt            time.Time
}

// CatalogRepository persists assembled documentation datasets.
type CatalogRepository interface {
	// Save inserts the dataset. A later run for the same object inserts a
	// new row; the catalog keeps every generation.
	Save(ctx context.Context, dataset *models.RenderDataset) error

	// GetLatest returns the newest entry for schema.table[.column], or
	// apperrors.ErrNotFound.
	GetLatest(ctx context.Context, schema, table, column string) (*CatalogEntry, error)

	// ListBelowConfidence returns recent entries whose overall confidence is
	// under threshold, newest first, for the review queue.
	ListBelowConfidence(ctx context.Context, threshold float64, limit int) ([]*CatalogEntry, error)
}

type catalogRepository struct {
	db *database.DB
}

// NewCatalogRepository creates a catalog repository over the given pool.
func NewCatalogRepository(db *database.DB) CatalogRepository {
	return &catalogRepository{db: db}
}

var _ CatalogRepository = (*catalogRepository)(nil)

func (r *catalogRepository) Save(ctx context.Context, dataset *models.RenderDataset) error {
	if dataset == nil {
		return apperrors.ErrNilRecord
	}

	payload, err := json.Marshal(dataset)
	if err != nil {
		return fmt.Errorf("failed to marshal dataset: %w", err)
	}
	warnings, err := json.Marshal(dataset.Warnings)
	if err != nil {
		return fmt.Errorf("failed to marshal warnings: %w", err)
	}
	errsJSON, err := json.Marshal(dataset.Errors)
	if err != nil {
		return fmt.Errorf("failed to marshal errors: %w", err)
	}
	corrections, err := json.Marshal(dataset.SuggestedCorrections)
	if err != nil {
		return fmt.Errorf("failed to marshal suggested corrections: %w", err)
	}

	query := `
		INSERT INTO schemadoc_catalog (
			doc_id, schema_name, table_name, column_name, object_type,
			ticket_id, dataset, confidence, warnings, errors,
			suggested_corrections
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)`

	_, err = r.db.Exec(ctx, query,
		dataset.DocID,
		dataset.SchemaName,
		dataset.TableName,
		dataset.ColumnName,
		dataset.ObjectType,
		dataset.JiraID,
		payload,
		dataset.ConfidenceScore,
		warnings,
		errsJSON,
		corrections,
	)
	if err != nil {
		return fmt.Errorf("failed to save catalog entry: %w", err)
	}
	return nil
}

func (r *catalogRepository) GetLatest(ctx context.Context, schema, table, column string) (*CatalogEntry, error) {
	query := `
		SELECT doc_id, schema_name, table_name, column_name, object_type,
		       ticket_id, dataset, confidence, warnings, errors,
		       suggested_corrections, created_at
		FROM schemadoc_catalog
		WHERE schema_name = $1 AND table_name = $2 AND column_name = $3
		ORDER BY created_at DESC
		LIMIT 1`

	entry, err := scanEntry(r.db.QueryRow(ctx, query, schema, table, column))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("catalog entry for %s.%s: %w", schema, table, apperrors.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get catalog entry: %w", err)
	}
	return entry, nil
}

func (r *catalogRepository) ListBelowConfidence(ctx context.Context, threshold float64, limit int) ([]*CatalogEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}

	query := `
		SELECT doc_id, schema_name, table_name, column_name, object_type,
		       ticket_id, dataset, confidence, warnings, errors,
		       suggested_corrections, created_at
		FROM schemadoc_catalog
		WHERE confidence < $1
		ORDER BY created_at DESC
		LIMIT $2`

	rows, err := r.db.Query(ctx, query, threshold, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list catalog entries: %w", err)
	}
	defer rows.Close()

	var entries []*CatalogEntry
	for rows.Next() {
		entry, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan catalog entry: %w", err)
		}
		entries = append(entries, entry)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate catalog entries: %w", err)
	}
	return entries, nil
}

func scanEntry(row pgx.Row) (*CatalogEntry, error) {
	var (
		entry           CatalogEntry
		payload         []byte
		warningsJSON    []byte
		errorsJSON      []byte
		correctionsJSON []byte
	)

	err := row.Scan(
		&entry.DocID,
		&entry.SchemaName,
		&entry.TableName,
		&entry.ColumnName,
		&entry.ObjectType,
		&entry.TicketID,
		&payload,
		&entry.Confidence,
		&warningsJSON,
		&errorsJSON,
		&correctionsJSON,
		&entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	var dataset models.RenderDataset
	if err := json.Unmarshal(payload, &dataset); err != nil {
		return nil, fmt.Errorf("failed to unmarshal dataset: %w", err)
	}
	entry.Dataset = &dataset

	if err := json.Unmarshal(warningsJSON, &entry.Warnings); err != nil {
		return nil, fmt.Errorf("failed to unmarshal warnings: %w", err)
	}
	if err := json.Unmarshal(errorsJSON, &entry.Errors); err != nil {
		return nil, fmt.Errorf("failed to unmarshal errors: %w", err)
	}
	if err := json.Unmarshal(correctionsJSON, &entry.SuggestedCorrections); err != nil {
		return nil, fmt.Errorf("failed to unmarshal suggested corrections: %w", err)
	}
	return &entry, nil
}
