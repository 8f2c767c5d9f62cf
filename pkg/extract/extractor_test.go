package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/confidence"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

func candidatesFor(candidates []models.CandidateField, field string) []models.CandidateField {
	var out []models.CandidateField
	for _, c := range candidates {
		if c.Field == field {
			out = append(out, c)
		}
	}
	return out
}

func TestExtract_EmptyTextYieldsEmptyList(t *testing.T) {
	e := NewExtractor()

	assert.Empty(t, e.Extract(""))
	assert.Empty(t, e.Extract("   \n\t  "))
	assert.NotNil(t, e.Extract(""))
}

func TestExtract_LabeledTablePattern(t *testing.T) {
	e := NewExtractor()

	candidates := e.Extract("Change request details\nTable: bal.bal_loss_tran\nColumn: pol_lapse_ind")

	tables := candidatesFor(candidates, models.FieldTableName)
	require.NotEmpty(t, tables)
	assert.Equal(t, "bal.bal_loss_tran", tables[0].Value)
	assert.Equal(t, confidence.WeightLabeledPattern, tables[0].Confidence)
	assert.Equal(t, "labeled_table", tables[0].Rule)

	columns := candidatesFor(candidates, models.FieldColumnName)
	require.Len(t, columns, 1)
	assert.Equal(t, "pol_lapse_ind", columns[0].Value)
}

func TestExtract_TicketReference(t *testing.T) {
	e := NewExtractor()

	candidates := e.Extract("Lapse indicator fix per BAS-9818 and follow-up DF-0089.")

	tickets := candidatesFor(candidates, models.FieldTicketID)
	require.Len(t, tickets, 2)
	assert.Equal(t, "BAS-9818", tickets[0].Value)
	assert.Equal(t, "DF-0089", tickets[1].Value)
	assert.Equal(t, confidence.WeightTicketPattern, tickets[0].Confidence)
}

func TestExtract_QualifiedTokenHasLowerWeightThanLabel(t *testing.T) {
	e := NewExtractor()

	candidates := e.Extract("Table: bal.bal_loss_tran\nJoins against bal.bal_policy for lookups.")

	tables := candidatesFor(candidates, models.FieldTableName)
	require.GreaterOrEqual(t, len(tables), 2)

	byRule := make(map[string]float64)
	for _, c := range tables {
		byRule[c.Rule] = c.Confidence
	}
	assert.Greater(t, byRule["labeled_table"], byRule["qualified_object"])
}

func TestExtract_SameFieldMatchedMultipleTimesReturnsAll(t *testing.T) {
	e := NewExtractor()

	candidates := e.Extract("uses bal.bal_loss_tran and bal.bal_policy and dbo.audit_log")

	tables := candidatesFor(candidates, models.FieldTableName)
	assert.Len(t, tables, 3)
}

func TestExtract_QualifiedTokenAcceptsMixedCase(t *testing.T) {
	e := NewExtractor()

	candidates := e.Extract("Backfill touches dbo.Customers but skips plain prose, e.g. this sentence.")

	tables := candidatesFor(candidates, models.FieldTableName)
	require.Len(t, tables, 1)
	assert.Equal(t, "dbo.Customers", tables[0].Value)
	assert.Equal(t, "qualified_object", tables[0].Rule)
}

func TestExtract_CalledProcedure(t *testing.T) {
	e := NewExtractor()

	candidates := e.Extract("EXEC dbo.usp_LogAuditEntry after the update")

	procs := candidatesFor(candidates, models.FieldCalledProcedures)
	require.Len(t, procs, 1)
	assert.Equal(t, "dbo.usp_LogAuditEntry", procs[0].Value)
	assert.Equal(t, confidence.WeightCalledProcedure, procs[0].Confidence)
}
