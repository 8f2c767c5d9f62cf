// Package spreadsheet reads change-log workbooks into change requests.
// Rows are manually entered, so their values take highest precedence in the
// merge stage.
package spreadsheet

import (
	"fmt"
	"strings"
	"time"

	"github.com/tealeg/xlsx/v2"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// Header aliases recognized in the first row, lowercased. Change logs come
// from several teams with slightly different column titles.
var headerAliases = map[string]string{
	"ticket":          "ticket",
	"jira":            "ticket",
	"jira id":         "ticket",
	"ref doc":         "ticket",
	"schema":          "schema",
	"table":           "table",
	"table name":      "table",
	"object":          "table",
	"column":          "column",
	"column name":     "column",
	"field":           "column",
	"object type":     "object_type",
	"type":            "object_type",
	"description":     "description",
	"summary":         "description",
	"change summary":  "description",
	"business impact": "business_impact",
	"impact":          "business_impact",
	"requested by":    "requested_by",
	"author":          "requested_by",
	"changed by":      "requested_by",
	"version":         "version",
	"date":            "date",
	"change date":     "date",
}

// dateLayouts tried in order when parsing the date column.
var dateLayouts = []string{"2006-01-02", "01/02/2006", "2006-01-02 15:04:05", "2-Jan-2006"}

// ReadChangeLog reads the first sheet of an XLSX change log and maps its
// rows to change requests using the header row. Rows without a table name
// are skipped: there is nothing to document.
func ReadChangeLog(path string) ([]models.ChangeRequest, error) {
	f, err := xlsx.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("open change log: %w", err)
	}
	if len(f.Sheets) == 0 {
		return nil, fmt.Errorf("change log has no sheets")
	}

	sheet := f.Sheets[0]
	if len(sheet.Rows) == 0 {
		return []models.ChangeRequest{}, nil
	}

	columns := mapHeader(rowToStrings(sheet.Rows[0]))
	if _, ok := columns["table"]; !ok {
		return nil, fmt.Errorf("change log missing a table column in header row")
	}

	var requests []models.ChangeRequest
	for _, row := range sheet.Rows[1:] {
		cells := rowToStrings(row)
		cr := rowToChangeRequest(cells, columns)
		if cr.TableName == "" {
			continue
		}
		requests = append(requests, cr)
	}

	return requests, nil
}

func mapHeader(header []string) map[string]int {
	columns := make(map[string]int)
	for i, title := range header {
		key, ok := headerAliases[strings.ToLower(strings.TrimSpace(title))]
		if !ok {
			continue
		}
		if _, exists := columns[key]; !exists {
			columns[key] = i
		}
	}
	return columns
}

func rowToChangeRequest(cells []string, columns map[string]int) models.ChangeRequest {
	get := func(key string) string {
		idx, ok := columns[key]
		if !ok || idx >= len(cells) {
			return ""
		}
		return strings.TrimSpace(cells[idx])
	}

	cr := models.ChangeRequest{
		TicketID:       get("ticket"),
		SchemaName:     get("schema"),
		TableName:      get("table"),
		ColumnName:     get("column"),
		ObjectType:     get("object_type"),
		Description:    get("description"),
		BusinessImpact: get("business_impact"),
		RequestedBy:    get("requested_by"),
		Version:        get("version"),
	}

	// schema.table in the table cell wins over a separate schema column.
	if schema, table, ok := strings.Cut(cr.TableName, "."); ok {
		cr.SchemaName = schema
		cr.TableName = table
	}

	if raw := get("date"); raw != "" {
		for _, layout := range dateLayouts {
			if parsed, err := time.Parse(layout, raw); err == nil {
				cr.ChangeDate = parsed
				break
			}
		}
	}

	return cr
}

func rowToStrings(row *xlsx.Row) []string {
	cells := make([]string, len(row.Cells))
	for i, cell := range row.Cells {
		cells[i] = cell.String()
	}
	return cells
}
