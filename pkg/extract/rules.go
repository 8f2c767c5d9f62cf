// Package extract pulls candidate metadata fields out of free text and SQL
// object definitions. Extraction is pure: no I/O, same input always yields
// the same candidates.
package extract

import (
	"fmt"
	"os"
	"regexp"

	"gopkg.in/yaml.v3"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/confidence"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
)

// Rule is one pattern rule. Group selects the capture group holding the
// field value; Weight is the fixed confidence assigned to every match.
type Rule struct {
	Name    string
	Field   string
	Pattern *regexp.Regexp
	Weight  float64
	Group   int
}

// DefaultRules returns the built-in rule table. Rules run independently;
// several rules may emit candidates for the same field.
func DefaultRules() []Rule {
	return []Rule{
		{
			Name:    "labeled_table",
			Field:   models.FieldTableName,
			Pattern: regexp.MustCompile(`(?im)\btable\s*[:=]\s*([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)`),
			Weight:  confidence.WeightLabeledPattern,
			Group:   1,
		},
		{
			Name:    "labeled_column",
			Field:   models.FieldColumnName,
			Pattern: regexp.MustCompile(`(?im)\b(?:column|field)\s*[:=]\s*([A-Za-z_]\w*)`),
			Weight:  confidence.WeightLabeledPattern,
			Group:   1,
		},
		{
			Name:    "labeled_schema",
			Field:   models.FieldSchemaName,
			Pattern: regexp.MustCompile(`(?im)\bschema\s*[:=]\s*([A-Za-z_]\w*)`),
			Weight:  confidence.WeightLabeledPattern,
			Group:   1,
		},
		{
			Name:    "ticket_reference",
			Field:   models.FieldTicketID,
			Pattern: regexp.MustCompile(`\b([A-Z][A-Z0-9]{1,9}-\d{1,6})\b`),
			Weight:  confidence.WeightTicketPattern,
			Group:   1,
		},
		{
			Name:    "qualified_object",
			Field:   models.FieldTableName,
			Pattern: regexp.MustCompile(`\b([A-Za-z_]\w+\.[A-Za-z_]\w+)\b`),
			Weight:  confidence.WeightQualifiedName,
			Group:   1,
		},
		{
			Name:    "called_procedure",
			Field:   models.FieldCalledProcedures,
			Pattern: regexp.MustCompile(`(?i)\bEXEC(?:UTE)?\s+([A-Za-z_]\w*(?:\.[A-Za-z_]\w*)?)`),
			Weight:  confidence.WeightCalledProcedure,
			Group:   1,
		},
	}
}

// ruleOverride is the YAML shape for rule customization. An override with a
// known name replaces the built-in rule; an unknown name adds a new rule.
type ruleOverride struct {
	Name    string  `yaml:"name"`
	Field   string  `yaml:"field"`
	Pattern string  `yaml:"pattern"`
	Weight  float64 `yaml:"weight"`
	Group   int     `yaml:"group"`
}

type ruleFile struct {
	Rules []ruleOverride `yaml:"rules"`
}

// LoadRules reads a YAML rule-override file and merges it into the default
// rule table. Overrides may change weights or patterns of built-in rules by
// name, or introduce additional rules.
func LoadRules(path string) ([]Rule, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read rules file: %w", err)
	}

	var parsed ruleFile
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse rules file: %w", err)
	}

	rules := DefaultRules()
	byName := make(map[string]int, len(rules))
	for i, r := range rules {
		byName[r.Name] = i
	}

	for _, o := range parsed.Rules {
		if o.Name == "" {
			return nil, fmt.Errorf("rule override missing name")
		}

		var compiled *regexp.Regexp
		if o.Pattern != "" {
			compiled, err = regexp.Compile(o.Pattern)
			if err != nil {
				return nil, fmt.Errorf("compile pattern for rule %q: %w", o.Name, err)
			}
		}

		if idx, ok := byName[o.Name]; ok {
			if compiled != nil {
				rules[idx].Pattern = compiled
			}
			if o.Weight > 0 {
				rules[idx].Weight = o.Weight
			}
			if o.Field != "" {
				rules[idx].Field = o.Field
			}
			if o.Group > 0 {
				rules[idx].Group = o.Group
			}
			continue
		}

		if compiled == nil || o.Field == "" || o.Weight <= 0 {
			return nil, fmt.Errorf("new rule %q requires field, pattern and weight", o.Name)
		}
		group := o.Group
		if group == 0 {
			group = 1
		}
		rules = append(rules, Rule{
			Name:    o.Name,
			Field:   o.Field,
			Pattern: compiled,
			Weight:  o.Weight,
			Group:   group,
		})
	}

	return rules, nil
}
