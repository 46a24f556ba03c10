package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/steveyegge/partsbin/internal/types"
	"golang.org/x/time/rate"
)

// DefaultModel is used when LLMConfig.Model is empty
const DefaultModel = "claude-3-5-haiku-20241022"

// messageCreator is the part of the Anthropic client the parser uses
type messageCreator interface {
	New(ctx context.Context, body anthropic.MessageNewParams, opts ...option.RequestOption) (*anthropic.Message, error)
}

// LLMConfig configures the model-backed parser
type LLMConfig struct {
	APIKey            string
	Model             string
	RequestsPerMinute int // 0 = unlimited
	Timeout           time.Duration
}

// LLMParser asks a model to extract the component and falls back to the
// regex parser when the call or the response is unusable.
type LLMParser struct {
	client   messageCreator
	model    string
	timeout  time.Duration
	limiter  *rate.Limiter
	fallback Parser
	logger   *slog.Logger
}

// NewLLMParser creates a parser backed by the Anthropic API
func NewLLMParser(cfg LLMConfig, logger *slog.Logger) (*LLMParser, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("ANTHROPIC_API_KEY")
		if apiKey == "" {
			return nil, fmt.Errorf("ANTHROPIC_API_KEY not set")
		}
	}

	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return newLLMParser(&client.Messages, cfg, logger), nil
}

func newLLMParser(client messageCreator, cfg LLMConfig, logger *slog.Logger) *LLMParser {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	model := cfg.Model
	if model == "" {
		model = DefaultModel
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	limiter := rate.NewLimiter(rate.Inf, 0)
	if cfg.RequestsPerMinute > 0 {
		limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.RequestsPerMinute)), 1)
	}

	return &LLMParser{
		client:   client,
		model:    model,
		timeout:  timeout,
		limiter:  limiter,
		fallback: NewRegexParser(),
		logger:   logger.With("component", "parser"),
	}
}

// llmComponent mirrors the JSON object the model is asked to return.
// Values are decoded loosely because models do not always respect types.
type llmComponent struct {
	Name           json.RawMessage `json:"name"`
	Category       json.RawMessage `json:"category"`
	Specifications json.RawMessage `json:"specifications"`
	Source         json.RawMessage `json:"source"`
	Quantity       json.RawMessage `json:"quantity"`
}

// Parse implements Parser
func (p *LLMParser) Parse(ctx context.Context, text string) (*types.Component, error) {
	if strings.TrimSpace(text) == "" {
		return nil, fmt.Errorf("empty input")
	}

	if err := p.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter: %w", err)
	}

	component, err := p.parseWithModel(ctx, text)
	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		p.logger.Warn("LLM parsing failed, falling back to regex parsing", "error", err)
		return p.fallback.Parse(ctx, text)
	}

	return component, nil
}

func (p *LLMParser) parseWithModel(ctx context.Context, text string) (*types.Component, error) {
	callCtx, cancel := context.WithTimeout(ctx, p.timeout)
	defer cancel()

	start := time.Now()
	response, err := p.client.New(callCtx, anthropic.MessageNewParams{
		Model:     anthropic.Model(p.model),
		MaxTokens: 500,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(buildPrompt(text))),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("anthropic API call failed: %w", err)
	}

	var responseText string
	for _, block := range response.Content {
		if block.Type == "text" {
			responseText += block.Text
		}
	}

	raw, err := parseJSON[llmComponent](responseText)
	if err != nil {
		return nil, fmt.Errorf("%w (response: %s)", err, truncate(responseText, 200))
	}

	component := &types.Component{
		Name:           jsonText(raw.Name),
		Category:       jsonText(raw.Category),
		Specifications: jsonText(raw.Specifications),
		Source:         jsonText(raw.Source),
		Quantity:       jsonQuantity(raw.Quantity),
	}
	if strings.TrimSpace(component.Category) == "" {
		component.Category = types.DefaultCategory
	}
	if strings.TrimSpace(component.Name) == "" {
		return nil, fmt.Errorf("model returned no name")
	}

	p.logger.Debug("LLM parse complete", "name", component.Name, "category", component.Category,
		"duration", time.Since(start))
	return component, nil
}

func buildPrompt(text string) string {
	return fmt.Sprintf(`Parse the following hardware component description into a structured format.
Extract the following information:
- Component name
- Category (resistor, capacitor, IC, connector, etc.)
- Specifications (values, ratings, package type, etc.)
- Source/vendor information
- Quantity

Input: %q

Return ONLY a valid JSON object with these keys: name, category, specifications, source, quantity.
The quantity must be an integer. Use an empty string for any text field that is missing.`, text)
}

// jsonText renders any JSON value as text: strings unquoted, objects and
// arrays as compact JSON, null as empty.
func jsonText(raw json.RawMessage) string {
	if len(raw) == 0 || string(raw) == "null" {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return strings.TrimSpace(s)
	}
	return strings.TrimSpace(string(raw))
}

// jsonQuantity accepts numbers and numeric strings; anything else is 1
func jsonQuantity(raw json.RawMessage) int {
	text := jsonText(raw)
	if n, err := strconv.Atoi(text); err == nil && n >= 0 {
		return n
	}
	if f, err := strconv.ParseFloat(text, 64); err == nil && f >= 0 {
		return int(f)
	}
	return DefaultQuantity
}
