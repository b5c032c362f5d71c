package tutor

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/alkime/sonify/internal/analysis"
	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// Explainer produces a spoken explanation of an analysis result.
type Explainer interface {
	Explain(ctx context.Context, r analysis.Result) (string, error)
}

// Offline explains results from the built-in lessons.
type Offline struct{}

func (Offline) Explain(_ context.Context, r analysis.Result) (string, error) {
	return Describe(r), nil
}

// Claude explains results through the Anthropic API.
type Claude struct {
	apiKey string
	model  anthropic.Model
	opts   []option.RequestOption
}

// NewClaude creates an Anthropic-backed explainer.
func NewClaude(apiKey string, opts ...option.RequestOption) *Claude {
	return &Claude{
		apiKey: apiKey,
		model:  anthropic.ModelClaudeSonnet4_5_20250929,
		opts:   opts,
	}
}

// New returns a Claude explainer when apiKey is set, else the offline one.
func New(apiKey string) Explainer {
	if apiKey == "" {
		return Offline{}
	}

	return NewClaude(apiKey)
}

// Explain asks Claude to describe r.
func (c *Claude) Explain(ctx context.Context, r analysis.Result) (string, error) {
	if c.apiKey == "" {
		return "", errors.New("API key required: set ANTHROPIC_API_KEY or run 'sonify config set-key anthropic <key>'")
	}

	client := anthropic.NewClient(append([]option.RequestOption{option.WithAPIKey(c.apiKey)}, c.opts...)...)

	params := anthropic.MessageNewParams{
		Model:     c.model,
		MaxTokens: 512,
		System: []anthropic.TextBlockParam{
			{Text: ExplainSystemPrompt},
		},
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(resultPrompt(r))),
		},
	}

	resp, err := client.Messages.New(ctx, params)
	if err != nil {
		return "", fmt.Errorf("failed to explain graph via Anthropic API: %w", err)
	}

	if len(resp.Content) == 0 {
		return "", errors.New("empty response from Anthropic API")
	}

	textBlock, ok := resp.Content[0].AsAny().(anthropic.TextBlock)
	if !ok {
		return "", errors.New("unexpected response type from Anthropic API")
	}

	return strings.TrimSpace(textBlock.Text), nil
}

func resultPrompt(r analysis.Result) string {
	graphType := r.GraphType
	if graphType == "" {
		graphType = "unknown"
	}

	trend := r.Trend
	if trend == "" {
		trend = "unknown"
	}

	return fmt.Sprintf("Graph type: %s\nTrend: %s\nX-intercept: %s\nY-intercept: %s",
		analysis.Humanize(graphType), analysis.Humanize(trend), r.XIntercept, r.YIntercept)
}
