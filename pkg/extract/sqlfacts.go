package extract

import (
	"regexp"
	"sort"
	"strings"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// ObjectFacts holds structural facts pulled from a SQL object definition.
// These feed the enrichment prompt and the assembled dataset directly.
type ObjectFacts struct {
	Parameters       []models.Parameter
	ReferencedTables []string
	CalledProcedures []string
	TempTables       []string
	LogicSteps       []models.LogicStep
	BracketedChange  *models.BracketedChange
	ComplexityScore  int
}

var (
	// @name TYPE [= default] declarations in the procedure header.
	sqlParamPattern = regexp.MustCompile(`(?im)^\s*(@\w+)\s+([A-Za-z]\w*(?:\s*\(\s*(?:\d+|MAX)\s*(?:,\s*\d+\s*)?\))?)\s*(?:=\s*([^,\r\n]+?))?\s*(?:,|\r?$)`)

	// FROM/JOIN/INTO/UPDATE targets; captures optional schema qualifier.
	sqlTablePattern = regexp.MustCompile(`(?i)\b(?:FROM|JOIN|INTO|UPDATE)\s+(#?[A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)`)

	sqlProcPattern = regexp.MustCompile(`(?i)\bEXEC(?:UTE)?\s+([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)`)

	sqlTempTablePattern = regexp.MustCompile(`#[A-Za-z_]\w*`)

	// -- Step 3: Title style annotations inside procedure bodies.
	sqlStepPattern = regexp.MustCompile(`(?im)^\s*--\s*step\s+\d+\s*[:.]\s*(.+)$`)

	// Bracketed change markers tying a code range to a ticket.
	changeBeginPattern = regexp.MustCompile(`(?i)--\s*BEGIN\s+CHANGE\s+([A-Z][A-Z0-9]{1,9}-\d{1,6})`)
	changeEndPattern   = regexp.MustCompile(`(?i)--\s*END\s+CHANGE\b`)

	// First AS keyword on its own line ends the parameter header.
	asKeywordPattern = regexp.MustCompile(`(?im)^\s*AS\b`)
)

// sqlKeywords are FROM/JOIN targets that are not tables.
var sqlKeywords = map[string]bool{
	"select": true, "where": true, "dual": true, "deleted": true, "inserted": true,
}

// ExtractObjectFacts parses a SQL object definition into structural facts.
// Pure function; an empty definition yields empty facts.
func ExtractObjectFacts(definition string) *ObjectFacts {
	facts := &ObjectFacts{
		ReferencedTables: []string{},
		CalledProcedures: []string{},
		TempTables:       []string{},
	}
	if strings.TrimSpace(definition) == "" {
		return facts
	}

	facts.Parameters = extractParameters(definition)
	facts.CalledProcedures = dedupeSorted(sqlProcPattern, definition, 1, nil)
	facts.TempTables = dedupeSorted(sqlTempTablePattern, definition, 0, nil)

	tempSet := make(map[string]bool, len(facts.TempTables))
	for _, tt := range facts.TempTables {
		tempSet[strings.ToLower(tt)] = true
	}
	facts.ReferencedTables = dedupeSorted(sqlTablePattern, definition, 1, func(v string) bool {
		lower := strings.ToLower(v)
		return !tempSet[lower] && !sqlKeywords[lower]
	})

	facts.LogicSteps = extractLogicSteps(definition)
	facts.BracketedChange = extractBracketedChange(definition)
	facts.ComplexityScore = complexityScore(definition, facts)

	return facts
}

func extractParameters(definition string) []models.Parameter {
	// Only scan the header: declarations end at the first AS keyword on its
	// own line (the procedure body may declare local variables).
	header := definition
	if loc := asKeywordPattern.FindStringIndex(definition); loc != nil {
		header = definition[:loc[0]]
	}

	var params []models.Parameter
	seen := make(map[string]bool)
	for _, m := range sqlParamPattern.FindAllStringSubmatch(header, -1) {
		name := m[1]
		if seen[strings.ToLower(name)] {
			continue
		}
		seen[strings.ToLower(name)] = true
		params = append(params, models.Parameter{
			Name:         name,
			DataType:     strings.ToUpper(strings.TrimSpace(m[2])),
			DefaultValue: strings.TrimSpace(m[3]),
		})
	}
	return params
}

func extractLogicSteps(definition string) []models.LogicStep {
	var steps []models.LogicStep
	for _, m := range sqlStepPattern.FindAllStringSubmatch(definition, -1) {
		steps = append(steps, models.LogicStep{Title: strings.TrimSpace(m[1])})
	}
	return steps
}

// extractBracketedChange finds the first BEGIN CHANGE / END CHANGE pair and
// returns the ticket and the 1-based line range it covers.
func extractBracketedChange(definition string) *models.BracketedChange {
	lines := strings.Split(definition, "\n")
	var change *models.BracketedChange
	for i, line := range lines {
		if change == nil {
			if m := changeBeginPattern.FindStringSubmatch(line); m != nil {
				change = &models.BracketedChange{
					TicketID:  m[1],
					StartLine: i + 1,
					EndLine:   len(lines),
				}
			}
			continue
		}
		if changeEndPattern.MatchString(line) {
			change.EndLine = i + 1
			break
		}
	}
	return change
}

// complexityScore maps structural signals into a 0-100 score. The weights
// mirror the documentation thresholds: dependencies show above 30,
// error handling above 40, performance notes above 50.
func complexityScore(definition string, facts *ObjectFacts) int {
	lower := strings.ToLower(definition)

	score := 0
	score += 2 * strings.Count(lower, "select ")
	score += 3 * strings.Count(lower, " join ")
	score += 3 * strings.Count(lower, "insert ")
	score += 3 * strings.Count(lower, "update ")
	score += 4 * strings.Count(lower, "delete ")
	score += 4 * strings.Count(lower, "case ")
	score += 3 * strings.Count(lower, "if ")
	score += 5 * strings.Count(lower, "cursor")
	score += 5 * strings.Count(lower, "while ")
	score += 4 * strings.Count(lower, "begin try")
	score += 3 * strings.Count(lower, "begin transaction")
	score += 5 * len(facts.TempTables)
	score += 2 * len(facts.ReferencedTables)
	score += 3 * len(facts.CalledProcedures)
	score += 2 * len(facts.Parameters)

	if score > 100 {
		score = 100
	}
	return score
}

// dedupeSorted collects unique capture-group values in deterministic order.
func dedupeSorted(pattern *regexp.Regexp, text string, group int, keep func(string) bool) []string {
	seen := make(map[string]bool)
	result := []string{}
	for _, m := range pattern.FindAllStringSubmatch(text, -1) {
		if group >= len(m) {
			continue
		}
		value := strings.TrimSpace(m[group])
		if value == "" || seen[strings.ToLower(value)] {
			continue
		}
		if keep != nil && !keep(value) {
			continue
		}
		seen[strings.ToLower(value)] = true
		result = append(result, value)
	}
	sort.Strings(result)
	return result
}
