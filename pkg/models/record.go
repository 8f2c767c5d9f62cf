package models

import (
	"time"
)

// Extraction source constants. Every ExtractedRecord is produced from
// exactly one raw source; the source determines which extraction stages run.
const (
	SourceDatabaseObject = "database_object" // live object definition pulled from a datasource
	SourceDocument       = "document"        // free-text change document
	SourceSpreadsheet    = "spreadsheet"     // manually entered change-log row
)

// Object type constants for documented database objects.
const (
	ObjectTypeTable           = "table"
	ObjectTypeColumn          = "column"
	ObjectTypeStoredProcedure = "stored_procedure"
	ObjectTypeView            = "view"
)

// Field name constants form the fixed vocabulary of the confidence map.
// Extraction rules, validation penalties and the merge step all key on these.
const (
	FieldSchemaName       = "SchemaName"
	FieldTableName        = "TableName"
	FieldColumnName       = "ColumnName"
	FieldObjectType       = "ObjectType"
	FieldTicketID         = "TicketID"
	FieldDescription      = "Description"
	FieldBusinessImpact   = "BusinessImpact"
	FieldTechnicalSummary = "TechnicalSummary"
	FieldLogicSteps       = "LogicSteps"
	FieldParameters       = "Parameters"
	FieldReferencedTables = "ReferencedTables"
	FieldCalledProcedures = "CalledProcedures"
	FieldTempTables       = "TempTables"
	FieldTags             = "Tags"
)

// Parameter describes one parameter of a documented stored procedure.
type Parameter struct {
	Name         string `json:"name"`
	DataType     string `json:"data_type"`
	Description  string `json:"description,omitempty"`
	DefaultValue string `json:"default_value,omitempty"`
}

// LogicStep is one step in a procedure's logic flow.
type LogicStep struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// BracketedChange marks a sub-range of source code tied to a specific ticket,
// distinguishing "this modification" from the surrounding unchanged code.
type BracketedChange struct {
	TicketID  string `json:"ticket_id"`
	StartLine int    `json:"start_line"`
	EndLine   int    `json:"end_line"`
}

// ExtractedRecord is the central entity produced by the extraction pipeline.
// It is created once per extraction call, mutated in place through the stage
// pipeline (extraction -> validation -> enrichment -> merge) and never
// updated after being returned.
type ExtractedRecord struct {
	// Identity
	SchemaName string   `json:"schema_name"`
	TableName  string   `json:"table_name"`
	ColumnName string   `json:"column_name,omitempty"`
	ObjectType string   `json:"object_type"`
	TicketIDs  []string `json:"ticket_ids,omitempty"`

	// Narrative
	Description         string      `json:"description,omitempty"`
	EnhancedDescription string      `json:"enhanced_description,omitempty"`
	BusinessImpact      string      `json:"business_impact,omitempty"`
	TechnicalSummary    string      `json:"technical_summary,omitempty"`
	LogicSteps          []LogicStep `json:"logic_steps,omitempty"`
	Tags                []string    `json:"tags,omitempty"`

	// Structural facts extracted from the object definition
	Parameters       []Parameter      `json:"parameters,omitempty"`
	ReferencedTables []string         `json:"referenced_tables,omitempty"`
	CalledProcedures []string         `json:"called_procedures,omitempty"`
	TempTables       []string         `json:"temp_tables,omitempty"`
	BracketedChange  *BracketedChange `json:"bracketed_change,omitempty"`
	ComplexityScore  int              `json:"complexity_score"`
	Definition       string           `json:"definition,omitempty"` // raw object source, if available

	// Validated existence flags, set only by schema validation
	TableExists  bool `json:"table_exists"`
	ColumnExists bool `json:"column_exists"`

	// Confidence ledger: field name -> confidence in [0,1].
	Confidence map[string]float64 `json:"confidence"`

	// Warnings are non-fatal; Errors mark the record invalid but the record
	// is still returned. SuggestedCorrections holds advisory fuzzy matches,
	// comma-joined, keyed by field name.
	Warnings             []string          `json:"warnings"`
	Errors               []string          `json:"errors"`
	SuggestedCorrections map[string]string `json:"suggested_corrections,omitempty"`

	Source      string    `json:"source"`
	ExtractedAt time.Time `json:"extracted_at"`
}

// NewExtractedRecord creates an empty record for the given extraction source.
func NewExtractedRecord(source string) *ExtractedRecord {
	return &ExtractedRecord{
		Confidence:           make(map[string]float64),
		Warnings:             []string{},
		Errors:               []string{},
		SuggestedCorrections: make(map[string]string),
		Source:               source,
		ExtractedAt:          time.Now().UTC(),
	}
}

// SetConfidence records the confidence for a field. Intended only for the
// stage that extracted the field; later stages must use PenalizeConfidence.
func (r *ExtractedRecord) SetConfidence(field string, confidence float64) {
	if confidence < 0 {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	r.Confidence[field] = confidence
}

// PenalizeConfidence multiplies an existing field confidence down by factor.
// factor must be in (0,1]; a missing field is left untouched. Penalties can
// only lower confidence, never raise it.
func (r *ExtractedRecord) PenalizeConfidence(field string, factor float64) {
	if factor >= 1 || factor <= 0 {
		return
	}
	if current, ok := r.Confidence[field]; ok {
		r.Confidence[field] = current * factor
	}
}

// FieldConfidence returns the confidence for a field, or 0 when absent.
func (r *ExtractedRecord) FieldConfidence(field string) float64 {
	return r.Confidence[field]
}

// AddWarning appends a non-fatal warning.
func (r *ExtractedRecord) AddWarning(msg string) {
	r.Warnings = append(r.Warnings, msg)
}

// AddError appends a fatal validation error. The record remains returnable
// but is never asserted as schema-valid.
func (r *ExtractedRecord) AddError(msg string) {
	r.Errors = append(r.Errors, msg)
	r.TableExists = false
	r.ColumnExists = false
}

// IsValid reports whether the record carries no fatal errors.
func (r *ExtractedRecord) IsValid() bool {
	return len(r.Errors) == 0
}

// QualifiedName returns schema.table[.column] for logging and prompts.
func (r *ExtractedRecord) QualifiedName() string {
	name := r.TableName
	if r.SchemaName != "" {
		name = r.SchemaName + "." + name
	}
	if r.ColumnName != "" {
		name = name + "." + r.ColumnName
	}
	return name
}
