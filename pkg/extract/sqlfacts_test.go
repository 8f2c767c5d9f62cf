package extract

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleProcedure = `CREATE PROCEDURE dbo.usp_Customer_Update
    @CustomerID INT,
    @Email VARCHAR(255),
    @Phone VARCHAR(20) = NULL
AS
BEGIN
    -- Step 1: Input Validation
    IF @CustomerID IS NULL RETURN -1

    -- BEGIN CHANGE DF-0089
    IF @Email NOT LIKE '%@%' RETURN -2
    -- END CHANGE

    BEGIN TRANSACTION

    -- Step 2: Update customer record
    UPDATE dbo.Customers SET email = @Email WHERE customer_id = @CustomerID

    SELECT customer_id INTO #changed FROM dbo.Customers WHERE customer_id = @CustomerID

    -- Step 3: Audit
    INSERT INTO dbo.CustomerAudit (customer_id) SELECT customer_id FROM #changed
    EXEC dbo.usp_LogAuditEntry @CustomerID

    COMMIT TRANSACTION
END`

func TestExtractObjectFacts_Parameters(t *testing.T) {
	facts := ExtractObjectFacts(sampleProcedure)

	require.Len(t, facts.Parameters, 3)
	assert.Equal(t, "@CustomerID", facts.Parameters[0].Name)
	assert.Equal(t, "INT", facts.Parameters[0].DataType)
	assert.Equal(t, "@Phone", facts.Parameters[2].Name)
	assert.Equal(t, "VARCHAR(20)", facts.Parameters[2].DataType)
	assert.Equal(t, "NULL", facts.Parameters[2].DefaultValue)
}

func TestExtractObjectFacts_ReferencedTablesExcludeTempTables(t *testing.T) {
	facts := ExtractObjectFacts(sampleProcedure)

	assert.Contains(t, facts.ReferencedTables, "dbo.Customers")
	assert.Contains(t, facts.ReferencedTables, "dbo.CustomerAudit")
	assert.NotContains(t, facts.ReferencedTables, "#changed")
	assert.Equal(t, []string{"#changed"}, facts.TempTables)
}

func TestExtractObjectFacts_CalledProcedures(t *testing.T) {
	facts := ExtractObjectFacts(sampleProcedure)

	assert.Equal(t, []string{"dbo.usp_LogAuditEntry"}, facts.CalledProcedures)
}

func TestExtractObjectFacts_LogicStepsFromAnnotations(t *testing.T) {
	facts := ExtractObjectFacts(sampleProcedure)

	require.Len(t, facts.LogicSteps, 3)
	assert.Equal(t, "Input Validation", facts.LogicSteps[0].Title)
	assert.Equal(t, "Audit", facts.LogicSteps[2].Title)
}

func TestExtractObjectFacts_BracketedChange(t *testing.T) {
	facts := ExtractObjectFacts(sampleProcedure)

	require.NotNil(t, facts.BracketedChange)
	assert.Equal(t, "DF-0089", facts.BracketedChange.TicketID)
	assert.Greater(t, facts.BracketedChange.EndLine, facts.BracketedChange.StartLine)
}

func TestExtractObjectFacts_ComplexityScoreBounded(t *testing.T) {
	facts := ExtractObjectFacts(sampleProcedure)
	assert.Greater(t, facts.ComplexityScore, 0)
	assert.LessOrEqual(t, facts.ComplexityScore, 100)

	empty := ExtractObjectFacts("   ")
	assert.Zero(t, empty.ComplexityScore)
	assert.Empty(t, empty.ReferencedTables)
}

func TestExtractObjectFacts_Deterministic(t *testing.T) {
	first := ExtractObjectFacts(sampleProcedure)
	second := ExtractObjectFacts(sampleProcedure)

	assert.Equal(t, first, second)
}
