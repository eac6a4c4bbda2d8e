package agent

import "context"

// PromptProvider supplies dynamic system prompt text at run start.
// Implementations can derive the prompt from stores, environment or tenant
// settings. The orchestrator resolves the prompt exactly once per run, so a
// provider changing its answer mid-run never affects an in-flight execution.
type PromptProvider interface {
	Prompt(ctx context.Context) (string, error)
}

// PromptFunc is a functional adapter to allow ordinary functions to be used
// as PromptProviders.
type PromptFunc func(ctx context.Context) (string, error)

// Prompt implements PromptProvider.
func (f PromptFunc) Prompt(ctx context.Context) (string, error) { return f(ctx) }

// Prompt represents either a static prompt string or a dynamic provider.
// This mirrors a union of string | provider in a Go-idiomatic way.
type Prompt struct {
	text     string
	provider PromptProvider
}

// NewPromptFromText creates a Prompt from a static string.
func NewPromptFromText(text string) Prompt { return Prompt{text: text} }

// NewPromptFromProvider creates a Prompt from a dynamic provider.
func NewPromptFromProvider(p PromptProvider) Prompt { return Prompt{provider: p} }

// NewPromptFromFunc creates a Prompt from a function.
func NewPromptFromFunc(f func(ctx context.Context) (string, error)) Prompt {
	return Prompt{provider: PromptFunc(f)}
}

// IsStatic returns true if the prompt is backed by a static string.
func (p Prompt) IsStatic() bool { return p.provider == nil }

// Resolve returns the prompt text, invoking the provider if needed.
func (p Prompt) Resolve(ctx context.Context) (string, error) {
	if p.provider != nil {
		return p.provider.Prompt(ctx)
	}
	return p.text, nil
}
