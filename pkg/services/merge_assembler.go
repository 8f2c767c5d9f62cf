package services

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/confidence"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

const datasetDateLayout = "2006-01-02"

// maxRecentChanges bounds the "recent changes" section; the full history
// still lands in version_history.
const maxRecentChanges = 5

// MergeAssembler folds the manual, extracted and AI-generated values into
// the final render dataset. Precedence per overlapping field: manual wins
// over extracted, extracted wins over AI; AI narrative is only used as a
// fallback and only when long enough to be worth showing.
type MergeAssembler interface {
	// Assemble builds the dataset and computes the record's overall
	// confidence. It mutates the record: AI-fallback usage is reflected in
	// the confidence ledger, and an uncovered enrichment failure adds a
	// warning before scoring. Never returns nil.
	Assemble(record *models.ExtractedRecord, manual *models.ChangeRequest, enrichment *models.EnrichmentResult, history []models.ChangeEntry) *models.RenderDataset
}

type mergeAssembler struct {
	logger *zap.Logger
}

// NewMergeAssembler creates the merge stage.
func NewMergeAssembler(logger *zap.Logger) MergeAssembler {
	return &mergeAssembler{logger: logger.Named("merge-assembler")}
}

var _ MergeAssembler = (*mergeAssembler)(nil)

func (m *mergeAssembler) Assemble(
	record *models.ExtractedRecord,
	manual *models.ChangeRequest,
	enrichment *models.EnrichmentResult,
	history []models.ChangeEntry,
) *models.RenderDataset {
	if manual == nil {
		manual = &models.ChangeRequest{}
	}
	if enrichment == nil {
		enrichment = models.FailedEnrichment("no enrichment result")
	}

	ds := &models.RenderDataset{
		DocID:         uuid.New(),
		SchemaName:    record.SchemaName,
		TableName:     record.TableName,
		ColumnName:    record.ColumnName,
		ObjectType:    record.ObjectType,
		Version:       manual.Version,
		CreatedBy:     manual.RequestedBy,
		GeneratedDate: time.Now().UTC().Format(datasetDateLayout),
		IsQA:          isQAObject(record),
	}

	ds.JiraID = manual.TicketID
	if ds.JiraID == "" && len(record.TicketIDs) > 0 {
		ds.JiraID = record.TicketIDs[0]
	}
	if !manual.ChangeDate.IsZero() {
		ds.CreatedDate = manual.ChangeDate.Format(datasetDateLayout)
	}

	m.mergeNarrative(ds, record, manual, enrichment)
	m.mergeStructural(ds, record, enrichment)
	ds.RecentChanges, ds.VersionHistory = buildChangeSections(manual, history)
	ds.Tags = deriveTags(record)

	if enrichment.EnrichmentFailed {
		if uncovered := uncoveredNarrativeKeys(ds); len(uncovered) > 0 {
			record.AddWarning(fmt.Sprintf("ai enrichment unavailable (%s); empty sections: %s",
				enrichment.FailureReason, strings.Join(uncovered, ", ")))
		}
	}

	ds.ConfidenceScore = confidence.Score(record)
	ds.Warnings = append([]string{}, record.Warnings...)
	ds.Errors = append([]string{}, record.Errors...)
	ds.SuggestedCorrections = make(map[string]string, len(record.SuggestedCorrections))
	for k, v := range record.SuggestedCorrections {
		ds.SuggestedCorrections[k] = v
	}

	m.logger.Debug("Assembled dataset",
		zap.String("object", record.QualifiedName()),
		zap.Float64("confidence", ds.ConfidenceScore),
		zap.Bool("enrichment_failed", enrichment.EnrichmentFailed))

	return ds
}

func (m *mergeAssembler) mergeNarrative(
	ds *models.RenderDataset,
	record *models.ExtractedRecord,
	manual *models.ChangeRequest,
	enrichment *models.EnrichmentResult,
) {
	ds.Description = firstNonEmpty(manual.Description, record.Description)
	if ds.Description == "" && usableAIText(enrichment.Purpose) {
		// AI substitutes for a core extracted field: record that in the
		// ledger so the reviewer sees a guessed description.
		ds.Description = enrichment.Purpose
		record.SetConfidence(models.FieldDescription, confidence.WeightAIGenerated)
	}

	if usableAIText(enrichment.Purpose) {
		ds.Purpose = enrichment.Purpose
	} else {
		ds.Purpose = ds.Description
	}

	ds.BusinessImpact = firstNonEmpty(manual.BusinessImpact, record.BusinessImpact)
	if ds.BusinessImpact == "" && usableAIText(enrichment.BusinessImpact) {
		ds.BusinessImpact = enrichment.BusinessImpact
	}

	ds.TechnicalSummary = record.TechnicalSummary
	if ds.TechnicalSummary == "" && usableAIText(enrichment.TechnicalSummary) {
		ds.TechnicalSummary = enrichment.TechnicalSummary
	}

	ds.WhatsNew = enrichment.WhatsNew
	if ds.WhatsNew == "" && manual.Description != "" && manual.TicketID != "" {
		ds.WhatsNew = fmt.Sprintf("%s (%s)", manual.Description, manual.TicketID)
	}

	ds.ErrorHandling = enrichment.ErrorHandling
	ds.PerformanceNotes = strings.Join(enrichment.PerformanceNotes, "\n")
}

func (m *mergeAssembler) mergeStructural(
	ds *models.RenderDataset,
	record *models.ExtractedRecord,
	enrichment *models.EnrichmentResult,
) {
	ds.CodeBlock = record.Definition

	// Extracted parameters are authoritative; AI only contributes
	// per-parameter descriptions matched by name.
	ds.Parameters = append([]models.Parameter{}, record.Parameters...)
	if len(ds.Parameters) == 0 {
		for _, p := range enrichment.Parameters {
			ds.Parameters = append(ds.Parameters, models.Parameter{Name: p.Name, Description: p.Description})
		}
	} else {
		described := make(map[string]string, len(enrichment.Parameters))
		for _, p := range enrichment.Parameters {
			described[normalizeParamName(p.Name)] = p.Description
		}
		for i := range ds.Parameters {
			if ds.Parameters[i].Description == "" {
				ds.Parameters[i].Description = described[normalizeParamName(ds.Parameters[i].Name)]
			}
		}
	}

	ds.LogicSteps = append([]models.LogicStep{}, record.LogicSteps...)
	if len(ds.LogicSteps) == 0 {
		ds.LogicSteps = append(ds.LogicSteps, enrichment.LogicSteps...)
	}

	ds.Dependencies = models.DependencyGroups{
		Tables:     mergeDistinct(record.ReferencedTables, enrichment.Dependencies.Tables),
		Procedures: mergeDistinct(record.CalledProcedures, enrichment.Dependencies.Procedures),
		TempTables: mergeDistinct(record.TempTables, enrichment.Dependencies.TempTables),
	}
	ds.UsageExamples = []models.UsageExample{}

	ds.ComplexityScore = record.ComplexityScore
	if enrichment.Complexity.Score > 0 && enrichment.Complexity.Score <= 100 {
		ds.ComplexityScore = enrichment.Complexity.Score
	}
}

// buildChangeSections folds the current change request into the supplied
// history. Recent changes are the newest few entries; version history is
// everything.
func buildChangeSections(manual *models.ChangeRequest, history []models.ChangeEntry) ([]models.ChangeEntry, []models.ChangeEntry) {
	all := make([]models.ChangeEntry, 0, len(history)+1)
	if entry, ok := changeLogEntry(manual); ok {
		all = append(all, entry)
	}
	all = append(all, history...)

	recent := all
	if len(recent) > maxRecentChanges {
		recent = recent[:maxRecentChanges]
	}
	return append([]models.ChangeEntry{}, recent...), all
}

// changeLogEntry converts a change request into one history line. Requests
// with neither a description nor a ticket carry no entry.
func changeLogEntry(manual *models.ChangeRequest) (models.ChangeEntry, bool) {
	if manual.Description == "" && manual.TicketID == "" {
		return models.ChangeEntry{}, false
	}
	date := ""
	if !manual.ChangeDate.IsZero() {
		date = manual.ChangeDate.Format(datasetDateLayout)
	}
	return models.ChangeEntry{
		Date:      date,
		Summary:   manual.Description,
		RefDoc:    manual.TicketID,
		Version:   manual.Version,
		ChangedBy: manual.RequestedBy,
	}, true
}

// uncoveredNarrativeKeys lists the narrative sections left empty after the
// merge. Non-empty only matters when enrichment failed: the render proceeds
// with visibly empty sections instead of failing the document.
func uncoveredNarrativeKeys(ds *models.RenderDataset) []string {
	var keys []string
	if ds.Purpose == "" {
		keys = append(keys, "purpose")
	}
	if ds.BusinessImpact == "" {
		keys = append(keys, "business_impact")
	}
	if ds.TechnicalSummary == "" {
		keys = append(keys, "technical_summary")
	}
	return keys
}

// deriveTags builds searchable tags from the object identity: schema name,
// singularized table-name tokens and the object type.
func deriveTags(record *models.ExtractedRecord) []string {
	seen := make(map[string]bool)
	tags := []string{}
	add := func(tag string) {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" || seen[tag] {
			return
		}
		seen[tag] = true
		tags = append(tags, tag)
	}

	add(record.SchemaName)
	for _, token := range strings.Split(strings.ToLower(record.TableName), "_") {
		if len(token) < 3 {
			continue
		}
		add(inflection.Singular(token))
	}
	add(record.ObjectType)
	for _, tag := range record.Tags {
		add(tag)
	}
	return tags
}

func isQAObject(record *models.ExtractedRecord) bool {
	for _, name := range []string{record.SchemaName, record.TableName} {
		lower := strings.ToLower(name)
		if lower == "qa" || strings.HasPrefix(lower, "qa_") || strings.HasSuffix(lower, "_qa") {
			return true
		}
	}
	return false
}

// usableAIText gates AI narrative fallback: near-empty answers are worse
// than an empty section.
func usableAIText(s string) bool {
	return utf8.RuneCountInString(strings.TrimSpace(s)) >= confidence.MinUsableAITextLen
}

func normalizeParamName(name string) string {
	return strings.ToLower(strings.TrimPrefix(strings.TrimSpace(name), "@"))
}

func mergeDistinct(primary, secondary []string) []string {
	out := append([]string{}, primary...)
	for _, v := range secondary {
		if !containsFold(out, v) {
			out = append(out, v)
		}
	}
	return out
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
