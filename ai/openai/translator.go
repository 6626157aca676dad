package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/doublesearch/ai"
	"github.com/poiesic/doublesearch/core"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Translator implements ai.QueryTranslator using OpenAI-compatible chat APIs.
type Translator struct {
	client llms.Model
	logger *slog.Logger
}

// newTranslator is an internal constructor that returns the concrete type.
// Used by Provider to manage the instance.
func newTranslator(config *ai.Config) (*Translator, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.TranslatorHost),
		openai.WithToken(config.APIToken),
		openai.WithModel(config.TranslatorModel),
	)
	if err != nil {
		return nil, err
	}

	return &Translator{
		client: client,
		logger: slog.Default().With("component", "openai-translator"),
	}, nil
}

// NewTranslator creates a new query translator using the provided configuration.
//
// Returns ai.QueryTranslator interface to enforce abstraction.
func NewTranslator(config *ai.Config) (ai.QueryTranslator, error) {
	return newTranslator(config)
}

// Translate converts a free-text query into a validated filter.
//
// Recovery policy for malformed model output:
//   - not parseable as JSON: one retry with a stricter format instruction,
//     then *core.TranslationError with kind Unparseable
//   - parseable but invalid: one schema-aware repair pass (strip unknown
//     keys, resolve product-name synonyms, coerce convertible scalars) and
//     one re-validation, then *core.TranslationError with kind SchemaViolation
//
// An empty {"products": {}} response is a valid match-everything filter.
func (t *Translator) Translate(ctx context.Context, queryText string) (*core.Filter, error) {
	systemPrompt := buildTranslationPrompt()

	candidate, raw, err := t.requestCandidate(ctx, systemPrompt, queryText)
	if err != nil {
		return nil, err
	}
	if candidate == nil {
		t.logger.Warn("model response was not parseable, retrying with strict format instruction",
			"response", raw)
		candidate, raw, err = t.requestCandidate(ctx, systemPrompt+strictRetryInstruction, queryText)
		if err != nil {
			return nil, err
		}
		if candidate == nil {
			return nil, &core.TranslationError{
				Kind:   core.TranslationUnparseable,
				Detail: "model response is not valid JSON after retry: " + truncate(raw, 200),
			}
		}
	}

	filter, err := core.ValidateFilter(candidate)
	if err == nil {
		return filter, nil
	}

	t.logger.Warn("model filter failed validation, attempting repair", "err", err)
	if repaired := repairCandidate(candidate); repaired != nil {
		filter, repairErr := core.ValidateFilter(repaired)
		if repairErr == nil {
			t.logger.Debug("filter repaired", "query", queryText)
			return filter, nil
		}
		err = repairErr
	}

	return nil, &core.TranslationError{
		Kind:   core.TranslationSchemaViolation,
		Detail: "model filter invalid after repair",
		Err:    err,
	}
}

// requestCandidate invokes the model once and tries to parse its response as
// a candidate mapping. A nil candidate with nil error means the response was
// not parseable; the raw response text is returned for diagnostics.
func (t *Translator) requestCandidate(ctx context.Context, systemPrompt, queryText string) (map[string]any, string, error) {
	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(systemPrompt),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(queryText),
			},
		},
	}

	response, err := t.client.GenerateContent(ctx, content, llms.WithTemperature(0.0), llms.WithJSONMode())
	if err != nil {
		t.logger.Error("failed to generate content", "err", err)
		return nil, "", err
	}

	if len(response.Choices) < 1 {
		t.logger.Debug("no choices returned from model")
		return nil, "", nil
	}

	raw := response.Choices[0].Content
	text := extractJSONObject(raw)
	if text == "" {
		return nil, raw, nil
	}

	// Try to repair common JSON issues before unmarshaling
	text = repairJSON(text)

	var candidate map[string]any
	if err := json.Unmarshal([]byte(text), &candidate); err != nil {
		t.logger.Warn("error parsing translator response", "response", text, "err", err)
		return nil, raw, nil
	}

	return candidate, raw, nil
}

// extractJSONObject pulls the outermost JSON object out of a model response,
// tolerating markdown fences and stray prose around the object.
func extractJSONObject(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)

	start := strings.Index(s, "{")
	end := strings.LastIndex(s, "}")
	if start < 0 || end <= start {
		return ""
	}
	return s[start : end+1]
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
