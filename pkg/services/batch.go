package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/workers"
)

// BatchProcessor runs the pipeline over a whole change log with bounded
// parallelism. Records are independent; one failing row never stops the
// batch.
type BatchProcessor interface {
	// ProcessChangeLog documents every change request and returns the
	// successful results plus the number of failed rows. Result order is
	// completion order, not input order. Rows naming the same object see
	// the rows above them as change history.
	ProcessChangeLog(ctx context.Context, requests []models.ChangeRequest, onProgress func(completed, total int)) ([]*PipelineResult, int)
}

type batchProcessor struct {
	pipeline DocumentationPipeline
	pool     *workers.Pool
	logger   *zap.Logger
}

// NewBatchProcessor creates a batch processor around the pipeline.
func NewBatchProcessor(pipeline DocumentationPipeline, pool *workers.Pool, logger *zap.Logger) BatchProcessor {
	return &batchProcessor{
		pipeline: pipeline,
		pool:     pool,
		logger:   logger.Named("batch"),
	}
}

var _ BatchProcessor = (*batchProcessor)(nil)

func (b *batchProcessor) ProcessChangeLog(
	ctx context.Context,
	requests []models.ChangeRequest,
	onProgress func(completed, total int),
) ([]*PipelineResult, int) {
	if len(requests) == 0 {
		return nil, 0
	}

	// Change logs run oldest row first. Each row captures the earlier rows
	// for its object as history, newest first, before the pool reorders
	// anything.
	items := make([]workers.WorkItem[*PipelineResult], 0, len(requests))
	priorByObject := make(map[string][]models.ChangeEntry)
	for i := range requests {
		cr := requests[i]
		key := changeLogObjectKey(&cr)
		history := append([]models.ChangeEntry{}, priorByObject[key]...)
		id := fmt.Sprintf("%d:%s.%s", i, cr.SchemaName, cr.TableName)
		items = append(items, workers.WorkItem[*PipelineResult]{
			ID: id,
			Execute: func(ctx context.Context) (*PipelineResult, error) {
				return b.pipeline.FromSpreadsheetRow(ctx, &cr, history)
			},
		})
		if entry, ok := changeLogEntry(&cr); ok {
			priorByObject[key] = append([]models.ChangeEntry{entry}, priorByObject[key]...)
		}
	}

	b.logger.Info("Processing change log", zap.Int("rows", len(items)))

	outcomes := workers.Process(ctx, b.pool, items, onProgress)

	results := make([]*PipelineResult, 0, len(outcomes))
	failed := 0
	for _, outcome := range outcomes {
		if outcome.Err != nil {
			failed++
			b.logger.Warn("Change log row failed",
				zap.String("row", outcome.ID),
				zap.Error(outcome.Err))
			continue
		}
		results = append(results, outcome.Result)
	}

	b.logger.Info("Change log processed",
		zap.Int("succeeded", len(results)),
		zap.Int("failed", failed))

	return results, failed
}

// changeLogObjectKey normalizes a row's object identity the same way the
// pipeline splits dotted table names, so rows group regardless of whether
// the schema rides in its own cell.
func changeLogObjectKey(cr *models.ChangeRequest) string {
	schema, table := cr.SchemaName, cr.TableName
	if s, t, ok := strings.Cut(cr.TableName, "."); ok {
		schema, table = s, t
	}
	return strings.ToLower(schema) + "." + strings.ToLower(table)
}
