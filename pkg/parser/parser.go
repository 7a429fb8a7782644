package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/arnavsurve/wfcapture/pkg/log"
	"github.com/arnavsurve/wfcapture/pkg/types"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/schema"
)

// unknownSentinel is what the model is instructed to return for a question
// that does not describe a web-application task.
const unknownSentinel = "UNKNOWN"

// ValidationError means the question could not be turned into a usable
// task: no identifiable application, a malformed URL, or an unusable task
// description. Any model failure is wrapped into one as well, so callers
// only ever see a rejected request.
type ValidationError struct {
	Reason string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Reason, e.Err)
	}
	return e.Reason
}

func (e *ValidationError) Unwrap() error { return e.Err }

// parsedSchema is the fixed shape the model is configured to return.
type parsedSchema struct {
	AppName              string `json:"app_name"`
	AppURL               string `json:"app_url"`
	Task                 string `json:"task"`
	TaskName             string `json:"task_name"`
	OptimizedDescription string `json:"optimized_description"`
	AuthRequired         bool   `json:"auth_required"`
}

// Parser turns natural-language questions into structured task
// specifications through a single structured-output model call. No retry:
// one call is attempted per question.
type Parser struct {
	model  llms.Model
	logger types.Logger

	cacheEnabled bool
	mu           sync.Mutex
	cache        map[string]*types.ParsedQuestion
}

type Option func(*Parser)

// WithCache enables the exact-string result cache keyed by the raw
// question. There is no eviction; unbounded growth is accepted for this
// use case.
func WithCache() Option {
	return func(p *Parser) { p.cacheEnabled = true }
}

func WithLogger(logger types.Logger) Option {
	return func(p *Parser) { p.logger = logger }
}

func New(model llms.Model, opts ...Option) *Parser {
	p := &Parser{
		model:  model,
		logger: log.Nop(),
		cache:  make(map[string]*types.ParsedQuestion),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Parse analyzes a question and extracts which app to use and what task to
// perform. The returned record is immutable after construction.
func (p *Parser) Parse(ctx context.Context, question string) (*types.ParsedQuestion, error) {
	p.logger.Info().Str("question", truncate(question, 100)).Msg("Parsing question")

	if p.cacheEnabled {
		p.mu.Lock()
		cached, ok := p.cache[question]
		p.mu.Unlock()
		if ok {
			p.logger.Info().Msg("Cache hit, returning cached parse result")
			return cached, nil
		}
	}

	result, err := p.parseWithModel(ctx, question)
	if err != nil {
		return nil, err
	}

	if !result.IsValid() {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("parsing failed, missing required fields: app_name=%q app_url=%q task=%q",
				result.AppName, result.AppURL, result.Task),
		}
	}

	p.logger.Info().
		Str("app", result.AppName).
		Str("url", result.AppURL).
		Str("task_name", result.TaskName).
		Bool("auth_required", result.AuthRequired).
		Msg("Question parsed successfully")

	if p.cacheEnabled {
		p.mu.Lock()
		p.cache[question] = result
		p.mu.Unlock()
	}

	return result, nil
}

func (p *Parser) parseWithModel(ctx context.Context, question string) (*types.ParsedQuestion, error) {
	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, systemPrompt),
		llms.TextParts(schema.ChatMessageTypeHuman, parsingPrompt(question)),
	}

	resp, err := p.model.GenerateContent(ctx, messages,
		llms.WithJSONMode(),
		llms.WithTemperature(0),
	)
	if err != nil {
		p.logger.Error().Err(err).Msg("Model parsing failed")
		return nil, &ValidationError{Reason: "question parsing failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return nil, &ValidationError{Reason: "question parsing failed: model returned no choices"}
	}

	var schema parsedSchema
	if err := json.Unmarshal([]byte(resp.Choices[0].Content), &schema); err != nil {
		p.logger.Error().Err(err).Msg("Model returned unparseable output")
		return nil, &ValidationError{Reason: "question parsing failed: invalid model output", Err: err}
	}

	if schema.AppName == unknownSentinel || schema.AppURL == unknownSentinel || schema.Task == unknownSentinel {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("cannot extract web application information from question %q; "+
				"provide a question about a specific web application task, e.g. "+
				"'How do I create a project in Linear?'", question),
		}
	}

	if len(strings.TrimSpace(schema.AppName)) < 2 {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("invalid app_name extracted: %q; mention a specific web application in your question", schema.AppName),
		}
	}

	if !strings.HasPrefix(schema.AppURL, "https://") {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("invalid app_url extracted: %q; could not determine the application URL", schema.AppURL),
		}
	}

	if len(strings.TrimSpace(schema.Task)) < 3 {
		return nil, &ValidationError{
			Reason: fmt.Sprintf("invalid task extracted: %q; describe what you want to do in the application", schema.Task),
		}
	}

	return &types.ParsedQuestion{
		AppName:              strings.TrimSpace(schema.AppName),
		AppURL:               strings.TrimSpace(schema.AppURL),
		Task:                 strings.TrimSpace(schema.Task),
		TaskName:             strings.TrimSpace(schema.TaskName),
		OptimizedDescription: strings.TrimSpace(schema.OptimizedDescription),
		AuthRequired:         schema.AuthRequired,
		Confidence:           0.95,
		RawQuestion:          question,
	}, nil
}

// ClearCache drops every cached parse result.
func (p *Parser) ClearCache() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.cache = make(map[string]*types.ParsedQuestion)
	p.logger.Info().Msg("Parse cache cleared")
}

// CacheStats reports the cache's current state.
type CacheStats struct {
	Enabled   bool
	Size      int
	Questions []string
}

func (p *Parser) GetCacheStats() CacheStats {
	p.mu.Lock()
	defer p.mu.Unlock()
	stats := CacheStats{Enabled: p.cacheEnabled, Size: len(p.cache)}
	for q := range p.cache {
		stats.Questions = append(stats.Questions, q)
	}
	return stats
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
