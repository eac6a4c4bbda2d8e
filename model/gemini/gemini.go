// Package gemini provides a text-only provider adapter for the Google Gemini
// API. Tool calling is not wired for this vendor; agents that carry tools
// must resolve to a tool-capable provider.
package gemini

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/model"
)

// Options configures the Gemini provider.
type Options struct {
	Model  string
	APIKey string
}

// Provider wraps the Gemini GenerateContent API behind the generic
// model.Provider interface.
type Provider struct {
	client *genai.Client
	opts   Options
}

// New creates a new Gemini provider using the official client.
func New(ctx context.Context, optFns ...func(o *Options)) (*Provider, error) {
	opts := Options{
		Model: "gemini-2.0-flash",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  opts.APIKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client: %w", err)
	}

	return &Provider{client: client, opts: opts}, nil
}

// NewFromClient creates a new Gemini provider from an existing client.
func NewFromClient(client *genai.Client, optFns ...func(o *Options)) *Provider {
	opts := Options{
		Model: "gemini-2.0-flash",
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Provider{client: client, opts: opts}
}

// Generate implements model.Provider. Tool results in the conversation are
// folded into user turns as plain text so loop transcripts stay replayable on
// this vendor even though it never issues tool calls itself.
func (p *Provider) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	var contents []*genai.Content
	for _, m := range req.Messages {
		switch m.Role {
		case core.RoleUser:
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: m.Content}}})
		case core.RoleAssistant:
			if m.Content != "" {
				contents = append(contents, &genai.Content{Role: "model", Parts: []*genai.Part{{Text: m.Content}}})
			}
		case core.RoleTool:
			text := fmt.Sprintf("Tool %s returned: %s", m.Name, m.Content)
			contents = append(contents, &genai.Content{Role: "user", Parts: []*genai.Part{{Text: text}}})
		}
	}

	var config *genai.GenerateContentConfig
	if req.SystemPrompt != "" {
		config = &genai.GenerateContentConfig{
			SystemInstruction: &genai.Content{Parts: []*genai.Part{{Text: req.SystemPrompt}}},
		}
	}

	result, err := p.client.Models.GenerateContent(ctx, p.opts.Model, contents, config)
	if err != nil {
		return nil, fmt.Errorf("gemini api error: %w", err)
	}

	var usage core.Usage
	if result.UsageMetadata != nil {
		usage = core.Usage{
			InputTokens:  int64(result.UsageMetadata.PromptTokenCount),
			OutputTokens: int64(result.UsageMetadata.CandidatesTokenCount),
			TotalTokens:  int64(result.UsageMetadata.TotalTokenCount),
		}
	}

	return &model.Response{
		Content:      result.Text(),
		FinishReason: model.FinishStop,
		Usage:        usage,
	}, nil
}

// Info returns metadata describing this Gemini provider.
func (p *Provider) Info() model.Info {
	return model.Info{
		Name:          p.opts.Model,
		Vendor:        "gemini",
		SupportsTools: false,
	}
}
