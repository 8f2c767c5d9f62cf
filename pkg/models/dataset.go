package models

import (
	"github.com/google/uuid"
)

// UsageExample is one worked example in the rendered document.
type UsageExample struct {
	Title       string `json:"title"`
	Code        string `json:"code"`
	Explanation string `json:"explanation,omitempty"`
}

// Complexity thresholds the renderer uses to gate optional sections,
// emitted with the rest of the dataset so the renderer carries no
// gating logic of its own.
const (
	ComplexityDependencySectionMin  = 30
	ComplexityErrorHandlingMin      = 40
	ComplexityPerformanceSectionMin = 50
)

// RenderDataset is the flat, fixed-vocabulary dataset handed to the
// document renderer and the catalog writer. Every key is always present;
// renderer-facing code never branches on "key missing" vs "key empty".
type RenderDataset struct {
	DocID         uuid.UUID `json:"doc_id"`
	JiraID        string    `json:"jira_id"`
	SchemaName    string    `json:"schema_name"`
	TableName     string    `json:"table_name"`
	ColumnName    string    `json:"column_name"`
	ObjectType    string    `json:"object_type"`
	Version       string    `json:"version"`
	CreatedDate   string    `json:"created_date"`
	CreatedBy     string    `json:"created_by"`
	GeneratedDate string    `json:"generated_date"`
	IsQA          bool      `json:"is_qa"`

	Description      string      `json:"description"`
	Purpose          string      `json:"purpose"`
	WhatsNew         string      `json:"whats_new"`
	BusinessImpact   string      `json:"business_impact"`
	TechnicalSummary string      `json:"technical_summary"`
	CodeBlock        string      `json:"code_block"`
	Parameters       []Parameter `json:"parameters"`
	LogicSteps       []LogicStep `json:"logic_steps"`

	Dependencies     DependencyGroups `json:"dependencies"`
	UsageExamples    []UsageExample   `json:"usage_examples"`
	PerformanceNotes string           `json:"performance_notes"`
	ErrorHandling    string           `json:"error_handling"`
	ComplexityScore  int              `json:"complexity_score"`
	Tags             []string         `json:"tags"`

	RecentChanges  []ChangeEntry `json:"recent_changes"`
	VersionHistory []ChangeEntry `json:"version_history"`

	ConfidenceScore      float64           `json:"confidence_score"`
	Warnings             []string          `json:"warnings"`
	Errors               []string          `json:"errors"`
	SuggestedCorrections map[string]string `json:"suggested_corrections"`
}

// ToMap converts the dataset to a generic key/value map at the renderer
// boundary. The key set is stable and exhaustive: keys are emitted even
// when the contributing value is empty.
func (d *RenderDataset) ToMap() map[string]any {
	params := make([]map[string]any, 0, len(d.Parameters))
	for _, p := range d.Parameters {
		params = append(params, map[string]any{
			"name":          p.Name,
			"type":          p.DataType,
			"description":   p.Description,
			"default_value": p.DefaultValue,
		})
	}

	steps := make([]map[string]any, 0, len(d.LogicSteps))
	for _, s := range d.LogicSteps {
		steps = append(steps, map[string]any{
			"title":       s.Title,
			"description": s.Description,
		})
	}

	examples := make([]map[string]any, 0, len(d.UsageExamples))
	for _, e := range d.UsageExamples {
		examples = append(examples, map[string]any{
			"title":       e.Title,
			"code":        e.Code,
			"explanation": e.Explanation,
		})
	}

	changes := make([]map[string]any, 0, len(d.RecentChanges))
	for _, c := range d.RecentChanges {
		changes = append(changes, map[string]any{
			"date":    c.Date,
			"summary": c.Summary,
			"ref_doc": c.RefDoc,
		})
	}

	history := make([]map[string]any, 0, len(d.VersionHistory))
	for _, h := range d.VersionHistory {
		history = append(history, map[string]any{
			"version":    h.Version,
			"date":       h.Date,
			"changed_by": h.ChangedBy,
			"changes":    h.Summary,
			"ref_doc":    h.RefDoc,
		})
	}

	return map[string]any{
		"doc_id":            d.DocID.String(),
		"jira_id":           d.JiraID,
		"schema_name":       d.SchemaName,
		"table_name":        d.TableName,
		"column_name":       d.ColumnName,
		"object_type":       d.ObjectType,
		"version":           d.Version,
		"created_date":      d.CreatedDate,
		"created_by":        d.CreatedBy,
		"generated_date":    d.GeneratedDate,
		"is_qa":             d.IsQA,
		"description":       d.Description,
		"purpose":           d.Purpose,
		"whats_new":         d.WhatsNew,
		"business_impact":   d.BusinessImpact,
		"technical_summary": d.TechnicalSummary,
		"code_block":        d.CodeBlock,
		"parameters":        params,
		"logic_steps":       steps,
		"dependencies": map[string]any{
			"tables":      append([]string{}, d.Dependencies.Tables...),
			"procedures":  append([]string{}, d.Dependencies.Procedures...),
			"temp_tables": append([]string{}, d.Dependencies.TempTables...),
		},
		"usage_examples":    examples,
		"performance_notes": d.PerformanceNotes,
		"error_handling":    d.ErrorHandling,
		"complexity_score":  d.ComplexityScore,
		"complexity_thresholds": map[string]any{
			"dependencies":      ComplexityDependencySectionMin,
			"error_handling":    ComplexityErrorHandlingMin,
			"performance_notes": ComplexityPerformanceSectionMin,
		},
		"tags":                  append([]string{}, d.Tags...),
		"recent_changes":        changes,
		"version_history":       history,
		"confidence_score":      d.ConfidenceScore,
		"warnings":              append([]string{}, d.Warnings...),
		"errors":                append([]string{}, d.Errors...),
		"suggested_corrections": d.SuggestedCorrections,
	}
}
