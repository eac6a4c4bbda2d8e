package schedule

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/logging"
	"github.com/aegisops/aegis/orchestrator"
	"github.com/aegisops/aegis/report"
	"github.com/aegisops/aegis/store"
	"github.com/aegisops/aegis/tool"
)

// DefaultMaxConcurrentRuns bounds simultaneous agent runs unless overridden.
const DefaultMaxConcurrentRuns = 4

// Options configures a Scheduler.
type Options struct {
	// Store resolves agent configurations per tick. Defaults to an empty
	// in-memory store.
	Store store.AgentStore

	// Recorder persists run outcomes. When nil, outcomes are only logged.
	Recorder store.RunRecorder

	// Reports, when set, writes a report document for every completed run.
	Reports report.Writer

	// MaxConcurrentRuns bounds simultaneous runs across all jobs. Zero or
	// negative selects DefaultMaxConcurrentRuns.
	MaxConcurrentRuns int

	// Logger for scheduler diagnostics.
	Logger logging.Logger
}

// Job binds a cron expression to an agent. Input is the fixed user input
// submitted on every tick; Tools are the executors offered to the run.
type Job struct {
	AgentID string
	Spec    string
	Input   string
	Exec    core.ExecContext
	Tools   map[string]tool.Tool
}

// Scheduler drives recurring agent runs. Construct with New, register jobs
// with Add, then Start. Stop drains running jobs before returning.
type Scheduler struct {
	executor *orchestrator.Executor
	agents   store.AgentStore
	recorder store.RunRecorder
	reports  report.Writer
	logger   logging.Logger

	cron  *cron.Cron
	group *errgroup.Group

	mu      sync.Mutex
	ctx     context.Context
	started bool
}

// New creates a Scheduler executing runs through executor.
func New(executor *orchestrator.Executor, optFns ...func(o *Options)) *Scheduler {
	opts := Options{
		MaxConcurrentRuns: DefaultMaxConcurrentRuns,
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	if opts.Store == nil {
		opts.Store = store.NewInMemory()
	}
	if opts.MaxConcurrentRuns <= 0 {
		opts.MaxConcurrentRuns = DefaultMaxConcurrentRuns
	}

	group := &errgroup.Group{}
	group.SetLimit(opts.MaxConcurrentRuns)

	return &Scheduler{
		executor: executor,
		agents:   opts.Store,
		recorder: opts.Recorder,
		reports:  opts.Reports,
		logger:   logging.EnsureLogger(opts.Logger),
		cron:     cron.New(),
		group:    group,
		ctx:      context.Background(),
	}
}

// Add registers a job. The spec accepts standard five-field cron expressions
// and @every/@hourly style descriptors.
func (s *Scheduler) Add(job Job) (cron.EntryID, error) {
	if job.AgentID == "" {
		return 0, errors.New("job agent id is required")
	}
	if job.Spec == "" {
		return 0, errors.New("job spec is required")
	}

	id, err := s.cron.AddFunc(job.Spec, func() { s.dispatch(job) })
	if err != nil {
		return 0, fmt.Errorf("add job for agent %q: %w", job.AgentID, err)
	}

	s.logger.Info("schedule.job.added", "agent.id", job.AgentID, "spec", job.Spec)

	return id, nil
}

// Start begins firing ticks. ctx is the base context for every run; cancel
// it to abort in-flight runs.
func (s *Scheduler) Start(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return
	}

	s.ctx = ctx
	s.started = true
	s.cron.Start()

	s.logger.Info("schedule.started", "jobs", len(s.cron.Entries()))
}

// Stop halts new ticks and waits for in-flight runs to finish.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	if !s.started {
		s.mu.Unlock()
		return
	}
	s.started = false
	s.mu.Unlock()

	<-s.cron.Stop().Done()
	_ = s.group.Wait()

	s.logger.Info("schedule.stopped")
}

// dispatch hands a tick to the bounded worker group. Workers never return
// errors; failures are recorded per run.
func (s *Scheduler) dispatch(job Job) {
	s.mu.Lock()
	ctx := s.ctx
	s.mu.Unlock()

	s.group.Go(func() error {
		s.runJob(ctx, job)
		return nil
	})
}

func (s *Scheduler) runJob(ctx context.Context, job Job) {
	started := time.Now().UTC()

	exec := job.Exec
	if exec.AgentID == "" {
		exec.AgentID = job.AgentID
	}

	cfg, err := s.agents.GetActiveConfig(ctx, job.AgentID)
	if err != nil {
		s.logger.Error("schedule.run.config_failed", "agent.id", job.AgentID, "error", err)
		s.record(ctx, failedRun(job, started, err))

		return
	}

	res, err := s.executor.Execute(ctx, orchestrator.Request{
		Config: cfg,
		Exec:   exec,
		Input:  job.Input,
		Tools:  job.Tools,
	})
	if err != nil {
		s.logger.Error("schedule.run.failed", "agent.id", job.AgentID, "error", err)
		s.record(ctx, failedRun(job, started, err))

		return
	}

	s.logger.Info("schedule.run.complete",
		"agent.id", job.AgentID,
		"run.id", res.RunID,
		"model.calls", res.ModelCalls,
		"tool.calls", res.ToolCallsExecuted,
	)

	s.record(ctx, completedRun(job, started, res))
	s.writeReport(ctx, cfg.Name, job, res)
}

func (s *Scheduler) record(ctx context.Context, run store.Run) {
	if s.recorder == nil {
		return
	}
	if err := s.recorder.SaveRun(ctx, run); err != nil {
		s.logger.Error("schedule.run.record_failed", "run.id", run.ID, "error", err)
	}
}

func (s *Scheduler) writeReport(ctx context.Context, agentName string, job Job, res *orchestrator.Result) {
	if s.reports == nil {
		return
	}

	title := agentName
	if title == "" {
		title = job.AgentID
	}

	doc := report.Document{
		ID:      res.RunID,
		Title:   title,
		Summary: res.Output,
		Sections: []report.Section{
			{
				Heading: "Run",
				Items: []string{
					fmt.Sprintf("agent: %s", job.AgentID),
					fmt.Sprintf("model calls: %d", res.ModelCalls),
					fmt.Sprintf("tool calls: %d", res.ToolCallsExecuted),
					fmt.Sprintf("total tokens: %d", res.Usage.TotalTokens),
					fmt.Sprintf("elapsed: %s", res.Elapsed),
				},
			},
		},
		Metadata: map[string]string{
			"agent_id": job.AgentID,
			"run_id":   res.RunID,
		},
	}

	if _, err := s.reports.Write(ctx, doc); err != nil {
		s.logger.Error("schedule.run.report_failed", "run.id", res.RunID, "error", err)
	}
}
