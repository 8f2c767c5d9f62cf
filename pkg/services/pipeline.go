package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/apperrors"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/confidence"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/extract"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/introspect"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/logging"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// documentExcerptRunes caps how much of a free-text document is carried on
// the record as its description.
const documentExcerptRunes = 500

// PipelineResult bundles everything one pipeline invocation produced. The
// record carries the confidence ledger and warnings; the dataset is the
// render- and persistence-facing payload.
type PipelineResult struct {
	Record     *models.ExtractedRecord
	Enrichment *models.EnrichmentResult
	Dataset    *models.RenderDataset
}

// DocumentationPipeline runs the full stage sequence for one input:
// extraction, then schema validation, then AI enrichment, then merge.
// Stages never run out of order and are never parallelized for a single
// record. Every entry point returns a complete result even when validation
// found problems or enrichment failed; only contract violations (empty
// input) and introspection infrastructure failures return an error.
type DocumentationPipeline interface {
	// FromDatabaseObject documents a live object by name. The definition is
	// pulled from the catalog when one exists and mined for structural
	// facts before enrichment.
	FromDatabaseObject(ctx context.Context, schema, name, objectType string) (*PipelineResult, error)

	// FromDocument documents whatever object a free-text change document
	// describes, relying entirely on pattern extraction for identity.
	FromDocument(ctx context.Context, text string) (*PipelineResult, error)

	// FromSpreadsheetRow documents the object named by a manually entered
	// change-log row. Manual fields enter the ledger at full confidence.
	// Earlier change-log entries for the same object may be passed as
	// history; they land in the dataset's change sections newest first.
	FromSpreadsheetRow(ctx context.Context, cr *models.ChangeRequest, history []models.ChangeEntry) (*PipelineResult, error)
}

type documentationPipeline struct {
	extraction   PatternExtractionService
	validator    SchemaValidator
	enricher     AIEnricher
	assembler    MergeAssembler
	introspector introspect.SchemaIntrospector
	logger       *zap.Logger
}

// NewDocumentationPipeline wires the four stages into a pipeline.
func NewDocumentationPipeline(
	extraction PatternExtractionService,
	validator SchemaValidator,
	enricher AIEnricher,
	assembler MergeAssembler,
	introspector introspect.SchemaIntrospector,
	logger *zap.Logger,
) DocumentationPipeline {
	return &documentationPipeline{
		extraction:   extraction,
		validator:    validator,
		enricher:     enricher,
		assembler:    assembler,
		introspector: introspector,
		logger:       logger.Named("pipeline"),
	}
}

var _ DocumentationPipeline = (*documentationPipeline)(nil)

func (p *documentationPipeline) FromDatabaseObject(ctx context.Context, schema, name, objectType string) (*PipelineResult, error) {
	if strings.TrimSpace(name) == "" {
		return nil, apperrors.ErrEmptyObjectName
	}

	record := models.NewExtractedRecord(models.SourceDatabaseObject)
	record.SchemaName = schema
	record.TableName = name
	record.ObjectType = objectType
	if schema != "" {
		record.SetConfidence(models.FieldSchemaName, confidence.WeightIntrospection)
	}
	record.SetConfidence(models.FieldTableName, confidence.WeightIntrospection)
	if objectType != "" {
		record.SetConfidence(models.FieldObjectType, confidence.WeightIntrospection)
	}

	definition, err := p.introspector.ObjectDefinition(ctx, schema, name)
	if err != nil {
		record.AddWarning(fmt.Sprintf("could not load object definition: %v", err))
	} else if definition != "" {
		p.logger.Debug("Loaded object definition",
			zap.String("object", record.QualifiedName()),
			zap.String("definition", logging.SanitizeDefinition(definition)))
		record.Definition = definition
		p.applyObjectFacts(record, definition)
		p.extraction.ApplyText(definition, record)
	}

	return p.run(ctx, record, nil, nil)
}

func (p *documentationPipeline) FromDocument(ctx context.Context, text string) (*PipelineResult, error) {
	if strings.TrimSpace(text) == "" {
		return nil, apperrors.ErrEmptyInput
	}

	record := models.NewExtractedRecord(models.SourceDocument)
	record.Description = excerpt(text, documentExcerptRunes)
	p.extraction.ApplyText(text, record)
	if record.ObjectType == "" {
		if record.ColumnName != "" {
			record.ObjectType = models.ObjectTypeColumn
		} else {
			record.ObjectType = models.ObjectTypeTable
		}
	}

	return p.run(ctx, record, nil, nil)
}

func (p *documentationPipeline) FromSpreadsheetRow(ctx context.Context, cr *models.ChangeRequest, history []models.ChangeEntry) (*PipelineResult, error) {
	if cr == nil {
		return nil, fmt.Errorf("%w: nil change request", apperrors.ErrEmptyInput)
	}
	if strings.TrimSpace(cr.TableName) == "" {
		return nil, fmt.Errorf("%w: change request has no table name", apperrors.ErrEmptyObjectName)
	}

	record := models.NewExtractedRecord(models.SourceSpreadsheet)
	applyChangeRequest(record, cr)
	if cr.Description != "" {
		p.extraction.ApplyText(cr.Description, record)
	}

	return p.run(ctx, record, cr, history)
}

// run executes validation, enrichment and merge in order. An enrichment
// failure degrades to a marker and never blocks the merge.
func (p *documentationPipeline) run(ctx context.Context, record *models.ExtractedRecord, manual *models.ChangeRequest, history []models.ChangeEntry) (*PipelineResult, error) {
	if err := p.validator.Validate(ctx, record); err != nil {
		return nil, fmt.Errorf("schema validation: %w", err)
	}

	enrichment := p.enricher.Enrich(ctx, record)
	dataset := p.assembler.Assemble(record, manual, enrichment, history)

	p.logger.Info("Pipeline complete",
		zap.String("object", record.QualifiedName()),
		zap.String("source", record.Source),
		zap.Float64("confidence", dataset.ConfidenceScore),
		zap.Int("warnings", len(record.Warnings)),
		zap.Int("errors", len(record.Errors)))

	return &PipelineResult{Record: record, Enrichment: enrichment, Dataset: dataset}, nil
}

func (p *documentationPipeline) applyObjectFacts(record *models.ExtractedRecord, definition string) {
	facts := extract.ExtractObjectFacts(definition)
	record.Parameters = facts.Parameters
	record.ReferencedTables = facts.ReferencedTables
	record.CalledProcedures = facts.CalledProcedures
	record.TempTables = facts.TempTables
	record.LogicSteps = facts.LogicSteps
	record.BracketedChange = facts.BracketedChange
	record.ComplexityScore = facts.ComplexityScore

	if len(facts.Parameters) > 0 {
		record.SetConfidence(models.FieldParameters, confidence.WeightIntrospection)
	}
	if len(facts.ReferencedTables) > 0 {
		record.SetConfidence(models.FieldReferencedTables, confidence.WeightIntrospection)
	}
	if len(facts.TempTables) > 0 {
		record.SetConfidence(models.FieldTempTables, confidence.WeightIntrospection)
	}
	if len(facts.CalledProcedures) > 0 {
		record.SetConfidence(models.FieldCalledProcedures, confidence.WeightIntrospection)
	}
	if len(facts.LogicSteps) > 0 {
		record.SetConfidence(models.FieldLogicSteps, confidence.WeightIntrospection)
	}
	if facts.BracketedChange != nil && facts.BracketedChange.TicketID != "" {
		if !containsFold(record.TicketIDs, facts.BracketedChange.TicketID) {
			record.TicketIDs = append(record.TicketIDs, facts.BracketedChange.TicketID)
		}
		record.SetConfidence(models.FieldTicketID, confidence.WeightIntrospection)
	}
}

// applyChangeRequest copies manual fields onto the record at full
// confidence. Manual values are never displaced by later extraction.
func applyChangeRequest(record *models.ExtractedRecord, cr *models.ChangeRequest) {
	schema, table := cr.SchemaName, cr.TableName
	if s, t, ok := strings.Cut(cr.TableName, "."); ok {
		schema, table = s, t
	}

	if schema != "" {
		record.SchemaName = schema
		record.SetConfidence(models.FieldSchemaName, confidence.WeightManual)
	}
	record.TableName = table
	record.SetConfidence(models.FieldTableName, confidence.WeightManual)

	if cr.ColumnName != "" {
		record.ColumnName = cr.ColumnName
		record.SetConfidence(models.FieldColumnName, confidence.WeightManual)
	}

	record.ObjectType = cr.ObjectType
	if record.ObjectType == "" {
		if cr.ColumnName != "" {
			record.ObjectType = models.ObjectTypeColumn
		} else {
			record.ObjectType = models.ObjectTypeTable
		}
	} else {
		record.SetConfidence(models.FieldObjectType, confidence.WeightManual)
	}

	if cr.TicketID != "" {
		record.TicketIDs = append(record.TicketIDs, cr.TicketID)
		record.SetConfidence(models.FieldTicketID, confidence.WeightManual)
	}
	if cr.Description != "" {
		record.Description = cr.Description
		record.SetConfidence(models.FieldDescription, confidence.WeightManual)
	}
	if cr.BusinessImpact != "" {
		record.BusinessImpact = cr.BusinessImpact
		record.SetConfidence(models.FieldBusinessImpact, confidence.WeightManual)
	}
	if cr.Definition != "" {
		record.Definition = cr.Definition
	}
}

func excerpt(text string, maxRunes int) string {
	text = strings.TrimSpace(text)
	runes := []rune(text)
	if len(runes) <= maxRunes {
		return text
	}
	return string(runes[:maxRunes])
}
