package models

// ParameterDescription is the AI-generated description for one parameter.
type ParameterDescription struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// DependencyGroups lists the database objects a documented object touches.
type DependencyGroups struct {
	Tables     []string `json:"tables"`
	Procedures []string `json:"procedures"`
	TempTables []string `json:"temp_tables,omitempty"`
}

// ComplexityAssessment is the AI's view of object complexity.
type ComplexityAssessment struct {
	Score   int      `json:"score"` // 0-100
	Factors []string `json:"factors,omitempty"`
}

// EnrichmentResult holds the parsed output of one AI enrichment call.
// It is merged into the final dataset and discarded; it is never persisted
// on its own. When the call or the response parse fails, EnrichmentFailed
// is true, FailureReason carries the error text and no other field is
// populated.
type EnrichmentResult struct {
	Purpose          string                 `json:"purpose"`
	BusinessImpact   string                 `json:"business_impact"`
	TechnicalSummary string                 `json:"technical_summary"`
	Parameters       []ParameterDescription `json:"parameters,omitempty"`
	LogicSteps       []LogicStep            `json:"logic_steps,omitempty"`
	Dependencies     DependencyGroups       `json:"dependencies"`
	Complexity       ComplexityAssessment   `json:"complexity"`
	PerformanceNotes []string               `json:"performance_notes,omitempty"`
	WhatsNew         string                 `json:"whats_new,omitempty"`
	ErrorHandling    string                 `json:"error_handling,omitempty"`

	EnrichmentFailed bool   `json:"enrichment_failed"`
	FailureReason    string `json:"failure_reason,omitempty"`
	ModelUsed        string `json:"model_used,omitempty"`
}

// FailedEnrichment builds the marker result for a failed AI call.
func FailedEnrichment(reason string) *EnrichmentResult {
	return &EnrichmentResult{
		EnrichmentFailed: true,
		FailureReason:    reason,
	}
}
