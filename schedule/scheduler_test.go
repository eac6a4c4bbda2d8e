package schedule

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aegisops/aegis/agent"
	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/model"
	"github.com/aegisops/aegis/orchestrator"
	"github.com/aegisops/aegis/store"
)

func newSchedulerFixture(t *testing.T, mock *model.Mock) (*Scheduler, *store.InMemory) {
	t.Helper()

	reg := model.NewRegistry()
	require.NoError(t, reg.Register("claude-sonnet", mock))

	st := store.NewInMemory()
	st.PutConfig(agent.Config{
		ID:           "triage",
		Name:         "Alert Triage",
		SystemPrompt: "You triage security alerts.",
		ModelAlias:   "claude-sonnet",
		PlanningMode: agent.PlanningSingleStep,
	})

	s := New(orchestrator.New(reg), func(o *Options) {
		o.Store = st
		o.Recorder = st
		o.MaxConcurrentRuns = 2
	})

	return s, st
}

func TestSchedulerRecordsCompletedRuns(t *testing.T) {
	mock := model.NewMock("claude-sonnet-mock")
	mock.EnqueueText("all clear", core.Usage{InputTokens: 10, OutputTokens: 4, TotalTokens: 14})

	s, st := newSchedulerFixture(t, mock)

	_, err := s.Add(Job{
		AgentID: "triage",
		Spec:    "@every 50ms",
		Input:   "review the last hour",
		Exec:    core.ExecContext{OrganizationID: "org-1"},
	})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		runs, err := st.ListRuns(context.Background(), store.RunQuery{AgentID: "triage", Status: store.StatusCompleted})
		return err == nil && len(runs) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	runs, err := st.ListRuns(context.Background(), store.RunQuery{AgentID: "triage", Limit: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)

	run := runs[0]
	assert.Equal(t, "all clear", run.Output)
	assert.Equal(t, "review the last hour", run.Input)
	assert.Equal(t, 1, run.ModelCalls)
	assert.Equal(t, int64(14), run.TotalTokens)
	assert.NotEmpty(t, run.ID)
}

func TestSchedulerRecordsFailedRuns(t *testing.T) {
	mock := model.NewMock("claude-sonnet-mock")
	mock.FailWith(errors.New("provider unavailable"), 0)

	s, st := newSchedulerFixture(t, mock)

	_, err := s.Add(Job{AgentID: "triage", Spec: "@every 50ms", Input: "review"})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		runs, err := st.ListRuns(context.Background(), store.RunQuery{Status: store.StatusFailed})
		return err == nil && len(runs) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	runs, err := st.ListRuns(context.Background(), store.RunQuery{Status: store.StatusFailed, Limit: 1})
	require.NoError(t, err)
	require.Len(t, runs, 1)
	assert.Contains(t, runs[0].Error, "provider unavailable")
	assert.Equal(t, 1, runs[0].ModelCalls, "failed model call is still counted")
}

func TestSchedulerRecordsUnknownAgent(t *testing.T) {
	mock := model.NewMock("claude-sonnet-mock")
	mock.EnqueueText("unused", core.Usage{})

	s, st := newSchedulerFixture(t, mock)

	_, err := s.Add(Job{AgentID: "ghost", Spec: "@every 50ms", Input: "review"})
	require.NoError(t, err)

	s.Start(context.Background())
	defer s.Stop()

	require.Eventually(t, func() bool {
		runs, err := st.ListRuns(context.Background(), store.RunQuery{AgentID: "ghost"})
		return err == nil && len(runs) >= 1
	}, 2*time.Second, 10*time.Millisecond)

	runs, _ := st.ListRuns(context.Background(), store.RunQuery{AgentID: "ghost", Limit: 1})
	require.Len(t, runs, 1)
	assert.Equal(t, store.StatusFailed, runs[0].Status)
	assert.Contains(t, runs[0].Error, "agent not found")
	assert.Zero(t, mock.Calls(), "no model call without a resolvable config")
}

func TestSchedulerAddValidation(t *testing.T) {
	mock := model.NewMock("claude-sonnet-mock")
	s, _ := newSchedulerFixture(t, mock)

	_, err := s.Add(Job{Spec: "@every 1m"})
	assert.Error(t, err)

	_, err = s.Add(Job{AgentID: "triage"})
	assert.Error(t, err)

	_, err = s.Add(Job{AgentID: "triage", Spec: "not a cron spec"})
	assert.Error(t, err)
}

func TestSchedulerStopDrains(t *testing.T) {
	mock := model.NewMock("claude-sonnet-mock")
	mock.EnqueueText("ok", core.Usage{})

	s, st := newSchedulerFixture(t, mock)

	_, err := s.Add(Job{AgentID: "triage", Spec: "@every 20ms", Input: "tick"})
	require.NoError(t, err)

	s.Start(context.Background())

	require.Eventually(t, func() bool {
		runs, err := st.ListRuns(context.Background(), store.RunQuery{})
		return err == nil && len(runs) >= 2
	}, 2*time.Second, 5*time.Millisecond)

	s.Stop()

	runs, err := st.ListRuns(context.Background(), store.RunQuery{})
	require.NoError(t, err)
	before := len(runs)

	time.Sleep(80 * time.Millisecond)

	runs, err = st.ListRuns(context.Background(), store.RunQuery{})
	require.NoError(t, err)
	assert.Equal(t, before, len(runs), "no new runs after Stop")
}
