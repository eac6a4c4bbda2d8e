package schedule

import (
	"errors"
	"time"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/orchestrator"
	"github.com/aegisops/aegis/store"
)

// completedRun maps an execution result onto the audit row shape.
func completedRun(job Job, started time.Time, res *orchestrator.Result) store.Run {
	return store.Run{
		ID:           res.RunID,
		AgentID:      job.AgentID,
		Status:       store.StatusCompleted,
		Input:        job.Input,
		Output:       res.Output,
		ModelCalls:   res.ModelCalls,
		ToolCalls:    res.ToolCallsExecuted,
		InputTokens:  res.Usage.InputTokens,
		OutputTokens: res.Usage.OutputTokens,
		TotalTokens:  res.Usage.TotalTokens,
		Calls:        callSummaries(res.Steps),
		StartedAt:    started,
		FinishedAt:   started.Add(res.Elapsed),
	}
}

// failedRun records a run that never produced a result. Model failures carry
// a partial trace and usage; both are preserved in the audit row.
func failedRun(job Job, started time.Time, err error) store.Run {
	run := store.Run{
		ID:         core.NewID(),
		AgentID:    job.AgentID,
		Status:     store.StatusFailed,
		Input:      job.Input,
		Error:      err.Error(),
		StartedAt:  started,
		FinishedAt: time.Now().UTC(),
	}

	var modelErr *orchestrator.ModelError
	if errors.As(err, &modelErr) {
		run.Calls = callSummaries(modelErr.Steps)
		run.ToolCalls = len(run.Calls)
		run.ModelCalls = countModelCalls(modelErr.Steps)
		run.InputTokens = modelErr.Usage.InputTokens
		run.OutputTokens = modelErr.Usage.OutputTokens
		run.TotalTokens = modelErr.Usage.TotalTokens
	}

	return run
}

func callSummaries(steps []core.Step) []store.ToolCallSummary {
	var out []store.ToolCallSummary

	for _, st := range steps {
		if st.Kind != core.StepToolCall {
			continue
		}

		name, _ := st.Detail["tool"].(string)
		callID, _ := st.Detail["call_id"].(string)
		isErr, _ := st.Detail["is_error"].(bool)

		out = append(out, store.ToolCallSummary{
			CallID:   callID,
			Name:     name,
			IsError:  isErr,
			Duration: st.Duration,
		})
	}

	return out
}

func countModelCalls(steps []core.Step) int {
	n := 0
	for _, st := range steps {
		if st.Kind == core.StepModelCall {
			n++
		}
	}
	return n
}
