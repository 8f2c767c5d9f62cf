// Package confidence centralizes every confidence weight and penalty used
// by the extraction pipeline, so the scoring arithmetic and the per-rule
// weights are reviewable and testable in one place.
package confidence

// Per-source extraction weights. A value recorded in the ledger carries the
// weight of the rule or stage that produced it.
const (
	// WeightManual is assigned to manually entered change-request fields.
	WeightManual = 1.0

	// WeightIntrospection is assigned to facts read from the live catalog.
	WeightIntrospection = 0.95

	// WeightLabeledPattern is assigned when an explicit label pattern
	// matches, e.g. "Table: bal.bal_loss_tran" in a change document.
	WeightLabeledPattern = 0.9

	// WeightTicketPattern is assigned to ticket references such as BAS-9818.
	WeightTicketPattern = 0.85

	// WeightQualifiedName is assigned to bare schema.object tokens found
	// embedded in code or prose.
	WeightQualifiedName = 0.75

	// WeightCalledProcedure is assigned to EXEC/CALL procedure references.
	WeightCalledProcedure = 0.70

	// WeightAIGenerated is assigned to narrative fields that exist only
	// because the AI enrichment produced them.
	WeightAIGenerated = 0.6
)

// Penalty and scoring constants.
const (
	// SchemaMismatchPenalty is multiplied into a name field's confidence
	// when the name fails the live-catalog existence check.
	SchemaMismatchPenalty = 0.5

	// WarningPenaltyStep is the per-warning reduction of overall confidence.
	WarningPenaltyStep = 0.1

	// WarningPenaltyFloor caps the cumulative warning penalty: no matter
	// how many warnings accumulate, at least 50% of the mean field
	// confidence is retained.
	WarningPenaltyFloor = 0.5

	// FatalErrorMultiplier is applied unconditionally, after the warning
	// floor, when any fatal error is present. Errors are weighted far more
	// punitively than warnings and are not floor-protected.
	FatalErrorMultiplier = 0.3

	// NeutralDefault is returned when no field confidence was recorded at
	// all; absence of signal is not the same as known-bad data.
	NeutralDefault = 0.5
)

// MinUsableAITextLen is the minimum rune length for an AI narrative value
// to be used as a merge fallback. Shorter answers are treated as unusable
// so a near-empty AI answer never displaces a visibly empty section.
const MinUsableAITextLen = 20

// SuggestionLimit is the default number of fuzzy-match candidates attached
// to a failed name validation.
const SuggestionLimit = 5
