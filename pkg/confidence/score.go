package confidence

import (
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// Score computes the overall confidence for a record. The algorithm is fixed:
//
//  1. An empty ledger scores the neutral default of 0.5.
//  2. Otherwise take the arithmetic mean of all present field confidences.
//  3. Multiply by max(0.5, 1.0 - 0.1*warnings): each warning costs 10%,
//     floored at 50% retained.
//  4. If any fatal error is present, multiply by 0.3 unconditionally.
//
// The result is always recomputed from the ledger, never cached.
func Score(record *models.ExtractedRecord) float64 {
	if record == nil {
		return 0
	}

	score := NeutralDefault
	if len(record.Confidence) > 0 {
		sum := 0.0
		for _, v := range record.Confidence {
			sum += v
		}
		score = sum / float64(len(record.Confidence))
	}

	warningFactor := 1.0 - WarningPenaltyStep*float64(len(record.Warnings))
	if warningFactor < WarningPenaltyFloor {
		warningFactor = WarningPenaltyFloor
	}
	score *= warningFactor

	if len(record.Errors) > 0 {
		score *= FatalErrorMultiplier
	}

	return clamp01(score)
}

// clamp01 guards the [0,1] output invariant. Inputs are constructed to stay
// in range, so this only corrects float drift.
func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
