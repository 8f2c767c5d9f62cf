package models

import "time"

// ChangeRequest holds manually entered change metadata, either from a
// change-request form or a spreadsheet change-log row. Manual fields take
// precedence over every extracted or AI-generated value during merge.
type ChangeRequest struct {
	TicketID       string    `json:"ticket_id"`
	SchemaName     string    `json:"schema_name"`
	TableName      string    `json:"table_name"`
	ColumnName     string    `json:"column_name,omitempty"`
	ObjectType     string    `json:"object_type,omitempty"`
	Description    string    `json:"description,omitempty"`
	BusinessImpact string    `json:"business_impact,omitempty"`
	RequestedBy    string    `json:"requested_by,omitempty"`
	Version        string    `json:"version,omitempty"`
	ChangeDate     time.Time `json:"change_date,omitempty"`

	// Definition is the object source code attached to the request, when the
	// requester pasted it instead of the pipeline pulling it from a datasource.
	Definition string `json:"definition,omitempty"`
}

// ChangeEntry is one historical change line for the documented object,
// rendered in the "recent changes" and "version history" sections.
type ChangeEntry struct {
	Date      string `json:"date"`
	Summary   string `json:"summary"`
	RefDoc    string `json:"ref_doc"`
	Version   string `json:"version,omitempty"`
	ChangedBy string `json:"changed_by,omitempty"`
}
