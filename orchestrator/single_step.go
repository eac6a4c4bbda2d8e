package orchestrator

import (
	"context"

	"github.com/aegisops/aegis/core"
)

// runSingleStep makes one model call. If the model requests tools, the
// requests are executed and a single follow-up call, with tools withheld,
// produces the final answer. A single-step run never makes more than two
// model calls.
func (r *run) runSingleStep(ctx context.Context, messages []core.Message) (string, error) {
	resp, err := r.callModel(ctx, r.prompt, messages, true)
	if err != nil {
		return "", err
	}

	if len(resp.ToolCalls) == 0 {
		return resp.Content, nil
	}

	results := r.executeToolRound(ctx, resp.ToolCalls)
	messages = appendRound(messages, resp, results)

	final, err := r.callModel(ctx, r.prompt, messages, false)
	if err != nil {
		return "", err
	}

	return final.Content, nil
}
