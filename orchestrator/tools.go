package orchestrator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aegisops/aegis/core"
)

// executeToolRound runs every tool call the model requested. Calls within one
// round are independent and execute concurrently; results and trace steps are
// recorded in the order the model requested them. A failing tool produces an
// error-tagged result, never an error return.
func (r *run) executeToolRound(ctx context.Context, calls []core.ToolCall) []core.ToolResult {
	results := make([]core.ToolResult, len(calls))
	durations := make([]time.Duration, len(calls))

	g, gctx := errgroup.WithContext(ctx)

	for i, call := range calls {
		i, call := i, call
		g.Go(func() error {
			started := time.Now()
			results[i] = r.executeTool(gctx, call)
			durations[i] = time.Since(started)

			return nil
		})
	}

	// Workers never return errors; Wait only synchronizes.
	_ = g.Wait()

	for i, res := range results {
		r.toolCalls++
		r.steps = append(r.steps, core.NewToolCallStep(res, durations[i]))

		r.logger.Debug("run.tool.executed",
			"run.id", r.id,
			"tool.name", res.Name,
			"tool.call_id", res.CallID,
			"tool.is_error", res.IsError,
		)
	}

	return results
}

// executeTool resolves and invokes one tool call. Every failure mode folds
// into the returned result so the model can react to it on the next turn.
func (r *run) executeTool(ctx context.Context, call core.ToolCall) core.ToolResult {
	t, ok := r.tools[call.Name]
	if !ok {
		r.logger.Warn("run.tool.missing", "run.id", r.id, "tool.name", call.Name)

		return core.ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: fmt.Sprintf("Tool executor not found: %s", call.Name),
			IsError: true,
		}
	}

	args := map[string]any{}
	if call.Arguments != "" {
		if err := json.Unmarshal([]byte(call.Arguments), &args); err != nil {
			return core.ToolResult{
				CallID:  call.ID,
				Name:    call.Name,
				Content: fmt.Sprintf("invalid tool arguments: %v", err),
				IsError: true,
			}
		}
	}

	out, err := t.Execute(ctx, r.execCtx, args)
	if err != nil {
		return core.ToolResult{
			CallID:  call.ID,
			Name:    call.Name,
			Content: err.Error(),
			IsError: true,
		}
	}

	return core.ToolResult{
		CallID:  call.ID,
		Name:    call.Name,
		Content: stringify(out),
	}
}

// stringify renders a tool's return value for the conversation. Strings pass
// through; everything else is JSON-encoded.
func stringify(out any) string {
	switch v := out.(type) {
	case nil:
		return ""
	case string:
		return v
	default:
		data, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprintf("%v", v)
		}

		return string(data)
	}
}
