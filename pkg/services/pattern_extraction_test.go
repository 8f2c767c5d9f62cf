package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/confidence"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/extract"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

func newTestExtraction() PatternExtractionService {
	return NewPatternExtractionService(extract.NewExtractor(), zap.NewNop())
}

func TestApplyText_LabeledTableWins(t *testing.T) {
	svc := newTestExtraction()
	record := models.NewExtractedRecord(models.SourceDocument)

	// Both the label rule and the qualified-name rule match; the label
	// carries the higher weight.
	svc.ApplyText("Table: bal.bal_loss_tran was changed near ref.other_table", record)

	assert.Equal(t, "bal", record.SchemaName)
	assert.Equal(t, "bal_loss_tran", record.TableName)
	assert.InDelta(t, confidence.WeightLabeledPattern, record.FieldConfidence(models.FieldTableName), 1e-9)
}

func TestApplyText_QualifiedNameSplitsSchema(t *testing.T) {
	svc := newTestExtraction()
	record := models.NewExtractedRecord(models.SourceDocument)

	svc.ApplyText("Updated logic in bal.bal_loss_tran for month end.", record)

	assert.Equal(t, "bal", record.SchemaName)
	assert.Equal(t, "bal_loss_tran", record.TableName)
	assert.InDelta(t, confidence.WeightQualifiedName, record.FieldConfidence(models.FieldTableName), 1e-9)
	assert.InDelta(t, confidence.WeightQualifiedName, record.FieldConfidence(models.FieldSchemaName), 1e-9)
}

func TestApplyText_LabeledSchemaOutranksQualifier(t *testing.T) {
	svc := newTestExtraction()
	record := models.NewExtractedRecord(models.SourceDocument)

	svc.ApplyText("Schema: finance\nSee old.bal_loss_tran for prior layout.", record)

	assert.Equal(t, "finance", record.SchemaName)
	assert.InDelta(t, confidence.WeightLabeledPattern, record.FieldConfidence(models.FieldSchemaName), 1e-9)
}

func TestApplyText_TicketsAccumulate(t *testing.T) {
	svc := newTestExtraction()
	record := models.NewExtractedRecord(models.SourceDocument)

	svc.ApplyText("BAS-9818 supersedes BAS-9700; see also BAS-9818.", record)

	assert.Equal(t, []string{"BAS-9818", "BAS-9700"}, record.TicketIDs)
	assert.InDelta(t, confidence.WeightTicketPattern, record.FieldConfidence(models.FieldTicketID), 1e-9)
}

func TestApplyText_CalledProceduresAccumulate(t *testing.T) {
	svc := newTestExtraction()
	record := models.NewExtractedRecord(models.SourceDocument)

	svc.ApplyText("EXEC dbo.usp_LogAuditEntry then EXECUTE dbo.usp_Recalc", record)

	assert.Equal(t, []string{"dbo.usp_LogAuditEntry", "dbo.usp_Recalc"}, record.CalledProcedures)
}

func TestApplyText_ManualValueNotDisplaced(t *testing.T) {
	svc := newTestExtraction()
	record := models.NewExtractedRecord(models.SourceSpreadsheet)
	record.TableName = "bal_loss_tran"
	record.SetConfidence(models.FieldTableName, confidence.WeightManual)

	svc.ApplyText("Table: some_other_table", record)

	assert.Equal(t, "bal_loss_tran", record.TableName)
	assert.InDelta(t, confidence.WeightManual, record.FieldConfidence(models.FieldTableName), 1e-9)
}

func TestApplyText_EmptyText(t *testing.T) {
	svc := newTestExtraction()
	record := models.NewExtractedRecord(models.SourceDocument)

	candidates := svc.ApplyText("   ", record)

	assert.Empty(t, candidates)
	assert.Empty(t, record.TableName)
	assert.Empty(t, record.Confidence)
}
