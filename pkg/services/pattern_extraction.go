// Package services wires the extraction pipeline stages together: pattern
// extraction, schema validation, AI enrichment and merge assembly. Each
// stage mutates the request-scoped ExtractedRecord in place; stages run
// strictly in order for a single record.
package services

import (
	"strings"

	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/extract"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// PatternExtractionService applies pattern-rule candidates from free text
// onto a record and its confidence ledger.
type PatternExtractionService interface {
	// ApplyText extracts candidates from text and applies them to record.
	// For single-value fields the highest-weight candidate wins; on equal
	// weight the earliest match in the text wins. Multi-value fields
	// (ticket references, called procedures) accumulate distinct values.
	// A candidate never displaces a value that already has equal or higher
	// confidence. Returns all raw candidates for traceability.
	ApplyText(text string, record *models.ExtractedRecord) []models.CandidateField
}

type patternExtractionService struct {
	extractor *extract.Extractor
	logger    *zap.Logger
}

// NewPatternExtractionService creates a pattern extraction service backed by
// the given rule extractor.
func NewPatternExtractionService(extractor *extract.Extractor, logger *zap.Logger) PatternExtractionService {
	return &patternExtractionService{
		extractor: extractor,
		logger:    logger.Named("pattern-extraction"),
	}
}

var _ PatternExtractionService = (*patternExtractionService)(nil)

func (s *patternExtractionService) ApplyText(text string, record *models.ExtractedRecord) []models.CandidateField {
	candidates := s.extractor.Extract(text)
	if len(candidates) == 0 {
		return candidates
	}

	winners := make(map[string]models.CandidateField)
	for _, c := range splitQualifiedNames(candidates) {
		switch c.Field {
		case models.FieldTicketID:
			if !containsFold(record.TicketIDs, c.Value) {
				record.TicketIDs = append(record.TicketIDs, c.Value)
			}
			if c.Confidence > record.FieldConfidence(models.FieldTicketID) {
				record.SetConfidence(models.FieldTicketID, c.Confidence)
			}
		case models.FieldCalledProcedures:
			if !containsFold(record.CalledProcedures, c.Value) {
				record.CalledProcedures = append(record.CalledProcedures, c.Value)
			}
			if c.Confidence > record.FieldConfidence(models.FieldCalledProcedures) {
				record.SetConfidence(models.FieldCalledProcedures, c.Confidence)
			}
		default:
			// Strictly-greater keeps the first candidate on a weight tie.
			if current, ok := winners[c.Field]; !ok || c.Confidence > current.Confidence {
				winners[c.Field] = c
			}
		}
	}

	applied := 0
	for field, w := range winners {
		if w.Confidence <= record.FieldConfidence(field) && fieldValue(record, field) != "" {
			continue
		}
		switch field {
		case models.FieldSchemaName:
			record.SchemaName = w.Value
		case models.FieldTableName:
			record.TableName = w.Value
		case models.FieldColumnName:
			record.ColumnName = w.Value
		default:
			continue
		}
		record.SetConfidence(field, w.Confidence)
		applied++
	}

	s.logger.Debug("Applied pattern candidates",
		zap.Int("candidates", len(candidates)),
		zap.Int("fields_applied", applied),
		zap.String("object", record.QualifiedName()))

	return candidates
}

// splitQualifiedNames turns a dotted table-name candidate into separate
// schema and table candidates at the same weight, so a labeled schema can
// still outrank the qualifier.
func splitQualifiedNames(candidates []models.CandidateField) []models.CandidateField {
	out := make([]models.CandidateField, 0, len(candidates))
	for _, c := range candidates {
		if c.Field == models.FieldTableName {
			if schema, table, ok := strings.Cut(c.Value, "."); ok {
				out = append(out,
					models.CandidateField{Field: models.FieldSchemaName, Value: schema, Confidence: c.Confidence, Rule: c.Rule},
					models.CandidateField{Field: models.FieldTableName, Value: table, Confidence: c.Confidence, Rule: c.Rule},
				)
				continue
			}
		}
		out = append(out, c)
	}
	return out
}

func fieldValue(record *models.ExtractedRecord, field string) string {
	switch field {
	case models.FieldSchemaName:
		return record.SchemaName
	case models.FieldTableName:
		return record.TableName
	case models.FieldColumnName:
		return record.ColumnName
	}
	return ""
}

func containsFold(values []string, v string) bool {
	for _, existing := range values {
		if strings.EqualFold(existing, v) {
			return true
		}
	}
	return false
}
