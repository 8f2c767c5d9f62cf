package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/confidence"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

func TestAssemble_ManualDescriptionAlwaysWins(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceSpreadsheet)
	record.SchemaName = "bal"
	record.TableName = "bal_loss_tran"
	manual := &models.ChangeRequest{Description: "X"}
	enrichment := &models.EnrichmentResult{
		Purpose: "Y is a long AI-written purpose that easily clears the length threshold.",
	}

	ds := m.Assemble(record, manual, enrichment, nil)

	assert.Equal(t, "X", ds.Description)
	assert.NotContains(t, ds.Description, "Y is")
}

func TestAssemble_AIFallbackForDescription(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceDocument)
	record.TableName = "orders"
	enrichment := &models.EnrichmentResult{
		Purpose: "Holds one row per customer order with lifecycle status.",
	}

	ds := m.Assemble(record, nil, enrichment, nil)

	assert.Equal(t, enrichment.Purpose, ds.Description)
	assert.InDelta(t, confidence.WeightAIGenerated,
		record.FieldConfidence(models.FieldDescription), 1e-9)
}

func TestAssemble_ShortAITextNotUsed(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceDocument)
	record.TableName = "orders"
	enrichment := &models.EnrichmentResult{Purpose: "An orders table."}

	ds := m.Assemble(record, nil, enrichment, nil)

	assert.Empty(t, ds.Description)
	assert.NotContains(t, record.Confidence, models.FieldDescription)
}

func TestAssemble_EnrichmentFailureWarnsAndCompletes(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceSpreadsheet)
	record.SchemaName = "bal"
	record.TableName = "bal_loss_tran"
	record.SetConfidence(models.FieldTableName, confidence.WeightManual)
	manual := &models.ChangeRequest{TicketID: "BAS-9818", Description: "Lapse indicator fix"}

	ds := m.Assemble(record, manual, models.FailedEnrichment("upstream down"), nil)

	require.NotNil(t, ds)
	assert.Equal(t, "bal_loss_tran", ds.TableName)
	assert.Equal(t, "BAS-9818", ds.JiraID)
	require.Len(t, ds.Warnings, 1)
	assert.Contains(t, ds.Warnings[0], "upstream down")
	assert.Empty(t, ds.Errors)
}

func TestAssemble_NoWarningWhenEnrichmentSucceeds(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceSpreadsheet)
	record.TableName = "bal_loss_tran"
	enrichment := &models.EnrichmentResult{
		Purpose:          "Transaction-level loss records for the balance subsystem.",
		BusinessImpact:   "Finance reporting reads this nightly for loss rollups.",
		TechnicalSummary: "Populated by the loss batch; one row per transaction.",
	}

	ds := m.Assemble(record, &models.ChangeRequest{Description: "fix"}, enrichment, nil)

	assert.Empty(t, ds.Warnings)
	assert.Equal(t, enrichment.Purpose, ds.Purpose)
}

func TestAssemble_ParameterDescriptionsMatchedByName(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceDatabaseObject)
	record.TableName = "usp_Customer_Update"
	record.ObjectType = models.ObjectTypeStoredProcedure
	record.Parameters = []models.Parameter{
		{Name: "@CustomerID", DataType: "INT"},
		{Name: "@Email", DataType: "NVARCHAR(255)"},
	}
	enrichment := &models.EnrichmentResult{
		Parameters: []models.ParameterDescription{
			{Name: "@customerid", Description: "Key of the customer to update."},
		},
	}

	ds := m.Assemble(record, nil, enrichment, nil)

	require.Len(t, ds.Parameters, 2)
	assert.Equal(t, "INT", ds.Parameters[0].DataType)
	assert.Equal(t, "Key of the customer to update.", ds.Parameters[0].Description)
	assert.Empty(t, ds.Parameters[1].Description)
}

func TestAssemble_DependenciesMergeDistinct(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceDatabaseObject)
	record.TableName = "usp_X"
	record.ObjectType = models.ObjectTypeStoredProcedure
	record.ReferencedTables = []string{"dbo.Customers", "dbo.Orders"}
	enrichment := &models.EnrichmentResult{
		Dependencies: models.DependencyGroups{
			Tables: []string{"dbo.orders", "dbo.AuditLog"},
		},
	}

	ds := m.Assemble(record, nil, enrichment, nil)

	assert.Equal(t, []string{"dbo.Customers", "dbo.Orders", "dbo.AuditLog"}, ds.Dependencies.Tables)
}

func TestAssemble_ChangeSections(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceSpreadsheet)
	record.TableName = "bal_loss_tran"
	manual := &models.ChangeRequest{
		TicketID:    "BAS-9818",
		Description: "Lapse indicator fix",
		RequestedBy: "A.Kirby",
		Version:     "2.3",
		ChangeDate:  time.Date(2024, 12, 3, 0, 0, 0, 0, time.UTC),
	}
	history := []models.ChangeEntry{
		{Date: "2024-06-01", Summary: "Initial load", RefDoc: "BAS-9001", Version: "2.2"},
	}

	ds := m.Assemble(record, manual, nil, history)

	require.Len(t, ds.VersionHistory, 2)
	assert.Equal(t, "BAS-9818", ds.VersionHistory[0].RefDoc)
	assert.Equal(t, "2024-12-03", ds.VersionHistory[0].Date)
	assert.Equal(t, "BAS-9001", ds.VersionHistory[1].RefDoc)
	assert.Equal(t, ds.VersionHistory, ds.RecentChanges)
	assert.Equal(t, "2024-12-03", ds.CreatedDate)
	assert.Equal(t, "A.Kirby", ds.CreatedBy)
}

func TestAssemble_TagsAndQAFlag(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceDatabaseObject)
	record.SchemaName = "qa_sandbox"
	record.TableName = "customer_orders"
	record.ObjectType = models.ObjectTypeTable

	ds := m.Assemble(record, nil, nil, nil)

	assert.True(t, ds.IsQA)
	assert.Contains(t, ds.Tags, "customer")
	assert.Contains(t, ds.Tags, "order")
	assert.Contains(t, ds.Tags, "table")
}

func TestAssemble_ComplexityPrefersAIScore(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceDatabaseObject)
	record.TableName = "usp_X"
	record.ObjectType = models.ObjectTypeStoredProcedure
	record.ComplexityScore = 22

	ds := m.Assemble(record, nil, &models.EnrichmentResult{
		Complexity: models.ComplexityAssessment{Score: 47},
	}, nil)
	assert.Equal(t, 47, ds.ComplexityScore)

	ds = m.Assemble(record, nil, &models.EnrichmentResult{}, nil)
	assert.Equal(t, 22, ds.ComplexityScore)
}

func TestAssemble_ToMapKeysAlwaysPresent(t *testing.T) {
	m := NewMergeAssembler(zap.NewNop())

	record := models.NewExtractedRecord(models.SourceDocument)
	record.TableName = "orders"
	ds := m.Assemble(record, nil, nil, nil)

	rendered := ds.ToMap()
	for _, key := range []string{
		"doc_id", "jira_id", "schema_name", "table_name", "column_name",
		"description", "purpose", "business_impact", "technical_summary",
		"code_block", "parameters", "logic_steps", "dependencies",
		"complexity_score", "complexity_thresholds", "generated_date",
		"confidence_score", "warnings", "errors", "suggested_corrections",
	} {
		_, ok := rendered[key]
		assert.True(t, ok, "missing key %q", key)
	}

	thresholds, ok := rendered["complexity_thresholds"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, models.ComplexityDependencySectionMin, thresholds["dependencies"])
	assert.Equal(t, models.ComplexityErrorHandlingMin, thresholds["error_handling"])
	assert.Equal(t, models.ComplexityPerformanceSectionMin, thresholds["performance_notes"])
}
