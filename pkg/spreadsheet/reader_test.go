package spreadsheet

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tealeg/xlsx/v2"
)

func writeWorkbook(t *testing.T, header []string, rows [][]string) string {
	t.Helper()

	file := xlsx.NewFile()
	sheet, err := file.AddSheet("Changes")
	require.NoError(t, err)

	headerRow := sheet.AddRow()
	for _, h := range header {
		headerRow.AddCell().Value = h
	}
	for _, r := range rows {
		row := sheet.AddRow()
		for _, v := range r {
			row.AddCell().Value = v
		}
	}

	path := filepath.Join(t.TempDir(), "changes.xlsx")
	require.NoError(t, file.Save(path))
	return path
}

func TestReadChangeLog_MapsHeaderAliases(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Jira", "Table", "Column", "Description", "Changed By", "Date"},
		[][]string{
			{"BAS-9818", "bal.bal_loss_tran", "pol_lapse_ind", "Lapse indicator fix", "A.Kirby", "2024-12-03"},
		})

	requests, err := ReadChangeLog(path)
	require.NoError(t, err)
	require.Len(t, requests, 1)

	cr := requests[0]
	assert.Equal(t, "BAS-9818", cr.TicketID)
	assert.Equal(t, "bal", cr.SchemaName)
	assert.Equal(t, "bal_loss_tran", cr.TableName)
	assert.Equal(t, "pol_lapse_ind", cr.ColumnName)
	assert.Equal(t, "Lapse indicator fix", cr.Description)
	assert.Equal(t, "A.Kirby", cr.RequestedBy)
	assert.Equal(t, 2024, cr.ChangeDate.Year())
}

func TestReadChangeLog_SkipsRowsWithoutTable(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Table", "Description"},
		[][]string{
			{"", "orphan note"},
			{"dbo.orders", "index change"},
		})

	requests, err := ReadChangeLog(path)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "orders", requests[0].TableName)
}

func TestReadChangeLog_MissingTableColumn(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Jira", "Description"},
		[][]string{{"BAS-1", "no table header"}})

	_, err := ReadChangeLog(path)
	assert.Error(t, err)
}

func TestReadChangeLog_SeparateSchemaColumn(t *testing.T) {
	path := writeWorkbook(t,
		[]string{"Schema", "Table", "Description"},
		[][]string{{"bal", "bal_loss_tran", "fix"}})

	requests, err := ReadChangeLog(path)
	require.NoError(t, err)
	require.Len(t, requests, 1)
	assert.Equal(t, "bal", requests[0].SchemaName)
	assert.Equal(t, "bal_loss_tran", requests[0].TableName)
}
