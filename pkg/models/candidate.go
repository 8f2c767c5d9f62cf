package models

// CandidateField is one value pulled out of free text by a pattern rule.
// Rules run independently and can match the same field more than once;
// the caller picks a winner per field.
type CandidateField struct {
	Field      string  `json:"field"`      // one of the Field* constants
	Value      string  `json:"value"`      // raw matched value
	Confidence float64 `json:"confidence"` // fixed weight assigned by the matching rule
	Rule       string  `json:"rule"`       // rule name, for traceability
}
