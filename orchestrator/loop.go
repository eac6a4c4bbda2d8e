package orchestrator

import (
	"context"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/model"
)

// runLoop alternates model calls and tool rounds until the model answers
// without requesting tools or maxSteps model calls have been made. The step
// cap is soft: when it is reached the content of the last response is
// returned as the answer instead of an error.
func (r *run) runLoop(ctx context.Context, messages []core.Message, maxSteps int) (string, error) {
	var last *model.Response

	for step := 1; step <= maxSteps; step++ {
		resp, err := r.callModel(ctx, r.prompt, messages, true)
		if err != nil {
			return "", err
		}

		last = resp

		if len(resp.ToolCalls) == 0 {
			return resp.Content, nil
		}

		results := r.executeToolRound(ctx, resp.ToolCalls)
		messages = appendRound(messages, resp, results)
	}

	r.logger.Info("run.step_limit_reached", "run.id", r.id, "max_steps", maxSteps)

	return last.Content, nil
}
