package orchestrator

import (
	"context"
	"fmt"

	"github.com/aegisops/aegis/core"
)

// planInstruction is appended to the system prompt for the planning call.
const planInstruction = "Before acting, produce a short numbered plan for completing the task. " +
	"List the concrete steps you will take and which tools, if any, each step needs. " +
	"Do not execute anything yet."

// runPlanAndExecute asks the model for a plan first, threads the plan into
// the conversation as an assistant turn, then executes it with the standard
// loop. The planning call counts against nothing; the loop gets the full
// step budget.
func (r *run) runPlanAndExecute(ctx context.Context, messages []core.Message) (string, error) {
	planPrompt := r.prompt + "\n\n" + planInstruction

	resp, err := r.callModel(ctx, planPrompt, messages, false)
	if err != nil {
		return "", err
	}

	r.logger.Debug("run.plan.created", "run.id", r.id, "plan.length", len(resp.Content))

	plan := fmt.Sprintf("Plan: %s\n\nNow executing this plan, step by step.", resp.Content)
	messages = append(messages, core.NewAssistantMessage(plan))

	return r.runLoop(ctx, messages, r.cfg.MaxSteps)
}
