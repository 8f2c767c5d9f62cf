package confidence

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

func TestScore_EmptyLedgerReturnsNeutralDefault(t *testing.T) {
	record := models.NewExtractedRecord(models.SourceDocument)
	assert.Equal(t, 0.5, Score(record))
}

func TestScore_MeanOfFieldConfidences(t *testing.T) {
	record := models.NewExtractedRecord(models.SourceDocument)
	record.SetConfidence(models.FieldTableName, 0.9)
	record.SetConfidence(models.FieldColumnName, 0.7)

	assert.InDelta(t, 0.8, Score(record), 1e-9)
}

func TestScore_EachWarningCostsTenPercent(t *testing.T) {
	record := models.NewExtractedRecord(models.SourceDocument)
	record.SetConfidence(models.FieldTableName, 1.0)

	before := Score(record)
	record.AddWarning("table name not found in schema")
	after := Score(record)

	assert.InDelta(t, before*0.9, after, 1e-9)
}

func TestScore_WarningPenaltyFloorsAtHalf(t *testing.T) {
	record := models.NewExtractedRecord(models.SourceDocument)
	record.SetConfidence(models.FieldTableName, 1.0)

	// 10 warnings would be a 100% penalty without the floor.
	for i := 0; i < 10; i++ {
		record.AddWarning("warning")
	}

	assert.InDelta(t, 0.5, Score(record), 1e-9)
}

func TestScore_FatalErrorMultipliesByPointThree(t *testing.T) {
	record := models.NewExtractedRecord(models.SourceDocument)
	record.SetConfidence(models.FieldTableName, 1.0)
	record.AddWarning("minor issue")
	record.AddError("declared table does not exist")

	// warning-adjusted 0.9, then the unconditional 0.3 error multiplier.
	assert.InDelta(t, 0.9*0.3, Score(record), 1e-9)
}

func TestScore_ErrorAppliesAfterWarningFloor(t *testing.T) {
	record := models.NewExtractedRecord(models.SourceDocument)
	record.SetConfidence(models.FieldTableName, 1.0)
	for i := 0; i < 8; i++ {
		record.AddWarning("warning")
	}
	record.AddError("fatal")

	// Floor first (0.5 retained), then the error multiplier on top.
	assert.InDelta(t, 0.5*0.3, Score(record), 1e-9)
}

func TestScore_OutputStaysInUnitInterval(t *testing.T) {
	cases := []struct {
		name     string
		mutate   func(r *models.ExtractedRecord)
		expected func(got float64) bool
	}{
		{"nil ledger values", func(r *models.ExtractedRecord) {}, func(got float64) bool { return got == 0.5 }},
		{"all zero", func(r *models.ExtractedRecord) {
			r.SetConfidence(models.FieldTableName, 0)
		}, func(got float64) bool { return got == 0 }},
		{"clamped high input", func(r *models.ExtractedRecord) {
			r.SetConfidence(models.FieldTableName, 5.0) // SetConfidence clamps
		}, func(got float64) bool { return got == 1.0 }},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			record := models.NewExtractedRecord(models.SourceDocument)
			tc.mutate(record)
			got := Score(record)
			assert.True(t, got >= 0 && got <= 1, "score %v out of range", got)
			assert.True(t, tc.expected(got), "unexpected score %v", got)
			assert.False(t, math.IsNaN(got))
		})
	}
}

func TestPenalizeConfidence_NeverRaises(t *testing.T) {
	record := models.NewExtractedRecord(models.SourceDocument)
	record.SetConfidence(models.FieldTableName, 0.8)

	record.PenalizeConfidence(models.FieldTableName, 1.5) // ignored
	assert.Equal(t, 0.8, record.FieldConfidence(models.FieldTableName))

	record.PenalizeConfidence(models.FieldTableName, SchemaMismatchPenalty)
	assert.InDelta(t, 0.4, record.FieldConfidence(models.FieldTableName), 1e-9)

	// Penalizing an absent field must not create an entry.
	record.PenalizeConfidence(models.FieldColumnName, 0.5)
	_, ok := record.Confidence[models.FieldColumnName]
	assert.False(t, ok)
}
