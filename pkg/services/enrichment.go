package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/schemadoc-inc/schemadoc-engine/pkg/llm"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/models"
	"github.com/schemadoc-inc/schemadoc-engine/pkg/retry"
)

const (
	enrichmentTemperature = 0.1
	enrichmentMaxTokens   = 2048

	// Definitions beyond this are truncated in the prompt; the structural
	// facts below the cut were already extracted deterministically.
	maxDefinitionPromptChars = 6000
)

const enrichmentSystemPrompt = `You are a database documentation analyst. You are given verified facts about one database object: its name, type, extracted parameters, referenced tables, called procedures and, when available, its source definition.

Respond with a single JSON object and nothing else, using exactly these keys:
{
  "purpose": "what the object is for, 2-4 sentences",
  "business_impact": "who relies on it and what breaks if it misbehaves",
  "technical_summary": "how it works, 2-5 sentences",
  "parameters": [{"name": "@param", "description": "..."}],
  "logic_steps": [{"title": "...", "description": "..."}],
  "dependencies": {"tables": [], "procedures": [], "temp_tables": []},
  "complexity": {"score": 0, "factors": []},
  "performance_notes": [],
  "whats_new": "summary of the most recent change, if evident",
  "error_handling": "how errors are handled, or empty string"
}

complexity.score is an integer from 0 to 100. Never invent parameters, tables or procedures that are not in the provided facts or source. Use empty strings and empty arrays for anything you cannot determine.`

// AIEnricher generates narrative documentation for a validated record.
// Enrichment is best-effort: every failure path returns a failed-enrichment
// marker instead of an error, so a dead AI endpoint never blocks the
// pipeline.
type AIEnricher interface {
	Enrich(ctx context.Context, record *models.ExtractedRecord) *models.EnrichmentResult
}

type aiEnricher struct {
	client   llm.LLMClient
	retryCfg *retry.Config
	logger   *zap.Logger
}

// NewAIEnricher creates an enricher around the given LLM client. A nil
// retry config selects the default backoff.
func NewAIEnricher(client llm.LLMClient, retryCfg *retry.Config, logger *zap.Logger) AIEnricher {
	if retryCfg == nil {
		retryCfg = retry.DefaultConfig()
	}
	return &aiEnricher{
		client:   client,
		retryCfg: retryCfg,
		logger:   logger.Named("ai-enrichment"),
	}
}

var _ AIEnricher = (*aiEnricher)(nil)

// disabledEnricher is used when AI enrichment is switched off. Every record
// gets the failed-enrichment marker and the merge proceeds without AI text.
type disabledEnricher struct {
	logger *zap.Logger
}

// NewDisabledEnricher returns an enricher that never calls a model.
func NewDisabledEnricher(logger *zap.Logger) AIEnricher {
	return &disabledEnricher{logger: logger.Named("ai-enrichment")}
}

func (e *disabledEnricher) Enrich(ctx context.Context, record *models.ExtractedRecord) *models.EnrichmentResult {
	e.logger.Debug("AI enrichment disabled", zap.String("object", record.QualifiedName()))
	return models.FailedEnrichment("ai enrichment disabled")
}

func (e *aiEnricher) Enrich(ctx context.Context, record *models.ExtractedRecord) *models.EnrichmentResult {
	prompt := e.buildPrompt(record)

	var raw string
	err := retry.Do(ctx, e.retryCfg, func() error {
		var genErr error
		raw, genErr = e.client.GenerateResponse(ctx, prompt, enrichmentSystemPrompt, llm.GenerateOptions{
			Temperature: enrichmentTemperature,
			MaxTokens:   enrichmentMaxTokens,
		})
		return genErr
	})
	if err != nil {
		e.logger.Warn("AI enrichment call failed",
			zap.String("object", record.QualifiedName()),
			zap.Error(err))
		return models.FailedEnrichment(err.Error())
	}

	result, err := llm.ParseJSONResponse[models.EnrichmentResult](raw)
	if err != nil {
		e.logger.Warn("AI enrichment response did not parse",
			zap.String("object", record.QualifiedName()),
			zap.Error(err))
		return models.FailedEnrichment(fmt.Sprintf("parse enrichment response: %v", err))
	}

	result.ModelUsed = e.client.GetModel()
	return &result
}

// buildPrompt renders the record's facts in a fixed section order so the
// same record always yields the same prompt.
func (e *aiEnricher) buildPrompt(record *models.ExtractedRecord) string {
	var b strings.Builder

	fmt.Fprintf(&b, "Object: %s\nObject type: %s\n", record.QualifiedName(), record.ObjectType)
	if len(record.TicketIDs) > 0 {
		fmt.Fprintf(&b, "Related tickets: %s\n", strings.Join(record.TicketIDs, ", "))
	}
	if record.Description != "" {
		fmt.Fprintf(&b, "\nHuman-written description:\n%s\n", record.Description)
	}

	if len(record.Parameters) > 0 {
		b.WriteString("\nParameters:\n")
		for _, p := range record.Parameters {
			fmt.Fprintf(&b, "  %s %s", p.Name, p.DataType)
			if p.DefaultValue != "" {
				fmt.Fprintf(&b, " = %s", p.DefaultValue)
			}
			b.WriteString("\n")
		}
	}
	writeFactList(&b, "Referenced tables", record.ReferencedTables)
	writeFactList(&b, "Called procedures", record.CalledProcedures)
	writeFactList(&b, "Temp tables", record.TempTables)

	if len(record.LogicSteps) > 0 {
		b.WriteString("\nAnnotated logic steps:\n")
		for i, s := range record.LogicSteps {
			fmt.Fprintf(&b, "  %d. %s\n", i+1, s.Title)
		}
	}
	if record.BracketedChange != nil {
		fmt.Fprintf(&b, "\nMost recent change: lines %d-%d are bracketed for ticket %s.\n",
			record.BracketedChange.StartLine, record.BracketedChange.EndLine, record.BracketedChange.TicketID)
	}

	if record.Definition != "" {
		definition := record.Definition
		if len(definition) > maxDefinitionPromptChars {
			definition = definition[:maxDefinitionPromptChars] + "\n-- (truncated)"
		}
		fmt.Fprintf(&b, "\nSource definition:\n%s\n", definition)
	}

	return b.String()
}

func writeFactList(b *strings.Builder, label string, values []string) {
	if len(values) == 0 {
		return
	}
	fmt.Fprintf(b, "\n%s: %s\n", label, strings.Join(values, ", "))
}
