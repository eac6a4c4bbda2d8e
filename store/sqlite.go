package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/aegisops/aegis/agent"
)

const (
	defaultRunLimit = 200
	maxRunLimit     = 5000
)

// Config configures the SQLite store.
type Config struct {
	Path            string
	InMemory        bool
	EnableWAL       bool
	BusyTimeout     time.Duration
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Logger          logger.Interface
}

// SQLite is an AgentStore and RunRecorder backed by a SQLite database via
// gorm. Open migrates the schema; a single *SQLite is safe for concurrent
// use.
type SQLite struct {
	db    *gorm.DB
	sqlDB *sql.DB
}

// AgentRecord is the persisted form of an agent definition. The prompt text
// lives in PromptVersion rows, never here.
type AgentRecord struct {
	ID            string    `gorm:"primaryKey;size:64"`
	Name          string    `gorm:"size:255"`
	ModelAlias    string    `gorm:"size:128;not null"`
	PlanningMode  string    `gorm:"size:32;not null"`
	MaxSteps      int       `gorm:"not null"`
	MaxDurationMS int64     `gorm:"not null"`
	ToolsJSON     string    `gorm:"type:text"`
	CreatedAt     time.Time `gorm:"not null;autoCreateTime"`
	UpdatedAt     time.Time `gorm:"not null;autoUpdateTime"`
}

// PromptVersion is one immutable prompt text for an agent. At most one row
// per agent carries Active=true; GetActiveConfig resolves through it.
type PromptVersion struct {
	ID        uint64    `gorm:"primaryKey"`
	AgentID   string    `gorm:"size:64;not null;index:idx_prompt_versions_agent,priority:1"`
	Version   int       `gorm:"not null;index:idx_prompt_versions_agent,priority:2"`
	Text      string    `gorm:"type:text;not null"`
	Active    bool      `gorm:"not null;index"`
	CreatedAt time.Time `gorm:"not null;autoCreateTime"`
}

// RunRecord is the audit row of one finished (or failed) run.
type RunRecord struct {
	ID           string    `gorm:"primaryKey;size:64"`
	AgentID      string    `gorm:"size:64;not null;index:idx_run_records_agent_time,priority:1"`
	Status       string    `gorm:"size:32;not null;index"`
	Input        string    `gorm:"type:text"`
	Output       string    `gorm:"type:text"`
	ErrorMessage string    `gorm:"type:text"`
	ModelCalls   int       `gorm:"not null"`
	ToolCalls    int       `gorm:"not null"`
	InputTokens  int64     `gorm:"not null"`
	OutputTokens int64     `gorm:"not null"`
	TotalTokens  int64     `gorm:"not null"`
	StartedAt    time.Time `gorm:"index:idx_run_records_agent_time,priority:2"`
	FinishedAt   time.Time
	CreatedAt    time.Time `gorm:"not null;autoCreateTime"`
}

// ToolCallRecord is one tool invocation within a recorded run.
type ToolCallRecord struct {
	ID         uint64    `gorm:"primaryKey"`
	RunID      string    `gorm:"size:64;not null;index"`
	CallID     string    `gorm:"size:64"`
	Name       string    `gorm:"size:128;not null;index"`
	IsError    bool      `gorm:"not null"`
	DurationMS int64     `gorm:"not null"`
	CreatedAt  time.Time `gorm:"not null;autoCreateTime"`
}

// Open opens (creating if needed) the database, applies pragmas and migrates
// the schema.
func Open(ctx context.Context, cfg Config) (*SQLite, error) {
	if cfg.BusyTimeout <= 0 {
		cfg.BusyTimeout = 5 * time.Second
	}

	dsn, err := dsnFromConfig(cfg)
	if err != nil {
		return nil, err
	}

	gormCfg := &gorm.Config{}
	if cfg.Logger != nil {
		gormCfg.Logger = cfg.Logger
	}

	db, err := gorm.Open(sqlite.Open(dsn), gormCfg)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("get sql db: %w", err)
	}

	if cfg.MaxOpenConns > 0 {
		sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		sqlDB.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	s := &SQLite{db: db, sqlDB: sqlDB}

	if cfg.EnableWAL {
		if err := s.db.WithContext(ctx).Exec("PRAGMA journal_mode=WAL;").Error; err != nil {
			_ = s.Close()
			return nil, fmt.Errorf("enable wal: %w", err)
		}
	}

	if err := s.db.WithContext(ctx).Exec("PRAGMA foreign_keys=ON;").Error; err != nil {
		_ = s.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}

	if err := s.Migrate(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}

	return s, nil
}

// Close releases the underlying connection pool.
func (s *SQLite) Close() error {
	if s == nil || s.sqlDB == nil {
		return nil
	}
	return s.sqlDB.Close()
}

// Ping verifies the connection.
func (s *SQLite) Ping(ctx context.Context) error {
	if s == nil || s.sqlDB == nil {
		return errors.New("store not initialized")
	}
	return s.sqlDB.PingContext(ctx)
}

// Migrate creates or updates the schema.
func (s *SQLite) Migrate(ctx context.Context) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}

	if err := s.db.WithContext(ctx).AutoMigrate(
		&AgentRecord{},
		&PromptVersion{},
		&RunRecord{},
		&ToolCallRecord{},
	); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// SaveAgent inserts or updates the agent definition row. Prompt text is
// managed separately through AddPromptVersion.
func (s *SQLite) SaveAgent(ctx context.Context, cfg agent.Config) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	if cfg.ID == "" {
		return errors.New("agent id is required")
	}

	toolsJSON := ""
	if len(cfg.Tools) > 0 {
		data, err := json.Marshal(cfg.Tools)
		if err != nil {
			return fmt.Errorf("marshal tools: %w", err)
		}
		toolsJSON = string(data)
	}

	rec := AgentRecord{
		ID:            cfg.ID,
		Name:          cfg.Name,
		ModelAlias:    cfg.ModelAlias,
		PlanningMode:  string(cfg.PlanningMode),
		MaxSteps:      cfg.MaxSteps,
		MaxDurationMS: cfg.MaxDuration.Milliseconds(),
		ToolsJSON:     toolsJSON,
	}

	if err := s.db.WithContext(ctx).Save(&rec).Error; err != nil {
		return fmt.Errorf("save agent: %w", err)
	}
	return nil
}

// AddPromptVersion appends a new prompt version and returns its number. When
// activate is set the new version becomes the single active one.
func (s *SQLite) AddPromptVersion(ctx context.Context, agentID, text string, activate bool) (int, error) {
	if s == nil || s.db == nil {
		return 0, errors.New("store not initialized")
	}

	var version int

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var latest sql.NullInt64
		if err := tx.Model(&PromptVersion{}).
			Where("agent_id = ?", agentID).
			Select("MAX(version)").
			Scan(&latest).Error; err != nil {
			return fmt.Errorf("next prompt version: %w", err)
		}
		version = int(latest.Int64) + 1

		if activate {
			if err := tx.Model(&PromptVersion{}).
				Where("agent_id = ?", agentID).
				Update("active", false).Error; err != nil {
				return fmt.Errorf("deactivate prompt versions: %w", err)
			}
		}

		rec := PromptVersion{
			AgentID: agentID,
			Version: version,
			Text:    text,
			Active:  activate,
		}
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert prompt version: %w", err)
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	return version, nil
}

// ActivatePromptVersion makes the given version the single active one.
func (s *SQLite) ActivatePromptVersion(ctx context.Context, agentID string, version int) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&PromptVersion{}).
			Where("agent_id = ? AND version = ?", agentID, version).
			Update("active", true)
		if res.Error != nil {
			return fmt.Errorf("activate prompt version: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			return fmt.Errorf("prompt version %d not found for agent %q", version, agentID)
		}

		if err := tx.Model(&PromptVersion{}).
			Where("agent_id = ? AND version <> ?", agentID, version).
			Update("active", false).Error; err != nil {
			return fmt.Errorf("deactivate prompt versions: %w", err)
		}
		return nil
	})
}

// GetActiveConfig implements AgentStore. The agent row supplies alias, mode
// and limits; the active prompt version supplies the SystemPrompt.
func (s *SQLite) GetActiveConfig(ctx context.Context, agentID string) (agent.Config, error) {
	if s == nil || s.db == nil {
		return agent.Config{}, errors.New("store not initialized")
	}

	var rec AgentRecord
	if err := s.db.WithContext(ctx).First(&rec, "id = ?", agentID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return agent.Config{}, fmt.Errorf("agent %q: %w", agentID, ErrAgentNotFound)
		}
		return agent.Config{}, fmt.Errorf("load agent: %w", err)
	}

	var prompt PromptVersion
	if err := s.db.WithContext(ctx).
		First(&prompt, "agent_id = ? AND active = ?", agentID, true).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return agent.Config{}, fmt.Errorf("agent %q: %w", agentID, ErrNoActivePrompt)
		}
		return agent.Config{}, fmt.Errorf("load active prompt: %w", err)
	}

	var tools []string
	if rec.ToolsJSON != "" {
		if err := json.Unmarshal([]byte(rec.ToolsJSON), &tools); err != nil {
			return agent.Config{}, fmt.Errorf("unmarshal tools: %w", err)
		}
	}

	return agent.Config{
		ID:           rec.ID,
		Name:         rec.Name,
		SystemPrompt: prompt.Text,
		ModelAlias:   rec.ModelAlias,
		PlanningMode: agent.PlanningMode(rec.PlanningMode),
		MaxSteps:     rec.MaxSteps,
		MaxDuration:  time.Duration(rec.MaxDurationMS) * time.Millisecond,
		Tools:        tools,
	}, nil
}

// SaveRun implements RunRecorder: the run row and its tool call rows are
// written in one transaction.
func (s *SQLite) SaveRun(ctx context.Context, run Run) error {
	if s == nil || s.db == nil {
		return errors.New("store not initialized")
	}
	if run.ID == "" {
		return errors.New("run id is required")
	}

	rec := RunRecord{
		ID:           run.ID,
		AgentID:      run.AgentID,
		Status:       run.Status,
		Input:        run.Input,
		Output:       run.Output,
		ErrorMessage: run.Error,
		ModelCalls:   run.ModelCalls,
		ToolCalls:    run.ToolCalls,
		InputTokens:  run.InputTokens,
		OutputTokens: run.OutputTokens,
		TotalTokens:  run.TotalTokens,
		StartedAt:    run.StartedAt,
		FinishedAt:   run.FinishedAt,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&rec).Error; err != nil {
			return fmt.Errorf("insert run: %w", err)
		}

		if len(run.Calls) == 0 {
			return nil
		}

		rows := make([]ToolCallRecord, 0, len(run.Calls))
		for _, c := range run.Calls {
			rows = append(rows, ToolCallRecord{
				RunID:      run.ID,
				CallID:     c.CallID,
				Name:       c.Name,
				IsError:    c.IsError,
				DurationMS: c.Duration.Milliseconds(),
			})
		}
		if err := tx.CreateInBatches(rows, 200).Error; err != nil {
			return fmt.Errorf("insert tool calls: %w", err)
		}
		return nil
	})
}

// ListRuns returns recorded runs matching the query, including their tool
// call rows.
func (s *SQLite) ListRuns(ctx context.Context, q RunQuery) ([]Run, error) {
	if s == nil || s.db == nil {
		return nil, errors.New("store not initialized")
	}

	limit := q.Limit
	if limit <= 0 {
		limit = defaultRunLimit
	}
	if limit > maxRunLimit {
		limit = maxRunLimit
	}

	db := s.db.WithContext(ctx).Model(&RunRecord{})
	if q.AgentID != "" {
		db = db.Where("agent_id = ?", q.AgentID)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Desc {
		db = db.Order("started_at DESC")
	} else {
		db = db.Order("started_at ASC")
	}
	db = db.Limit(limit)

	var recs []RunRecord
	if err := db.Find(&recs).Error; err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}

	out := make([]Run, 0, len(recs))
	for _, rec := range recs {
		run := Run{
			ID:           rec.ID,
			AgentID:      rec.AgentID,
			Status:       rec.Status,
			Input:        rec.Input,
			Output:       rec.Output,
			Error:        rec.ErrorMessage,
			ModelCalls:   rec.ModelCalls,
			ToolCalls:    rec.ToolCalls,
			InputTokens:  rec.InputTokens,
			OutputTokens: rec.OutputTokens,
			TotalTokens:  rec.TotalTokens,
			StartedAt:    rec.StartedAt,
			FinishedAt:   rec.FinishedAt,
		}

		var calls []ToolCallRecord
		if err := s.db.WithContext(ctx).
			Where("run_id = ?", rec.ID).
			Order("id ASC").
			Find(&calls).Error; err != nil {
			return nil, fmt.Errorf("query tool calls: %w", err)
		}
		for _, c := range calls {
			run.Calls = append(run.Calls, ToolCallSummary{
				CallID:   c.CallID,
				Name:     c.Name,
				IsError:  c.IsError,
				Duration: time.Duration(c.DurationMS) * time.Millisecond,
			})
		}

		out = append(out, run)
	}

	return out, nil
}

func dsnFromConfig(cfg Config) (string, error) {
	timeoutMS := int(cfg.BusyTimeout / time.Millisecond)
	if timeoutMS <= 0 {
		timeoutMS = 5000
	}

	if cfg.InMemory {
		return fmt.Sprintf("file:aegis?mode=memory&cache=shared&_busy_timeout=%d", timeoutMS), nil
	}

	if cfg.Path == "" {
		return "", errors.New("sqlite path is required when InMemory=false")
	}

	return fmt.Sprintf("file:%s?_busy_timeout=%d", cfg.Path, timeoutMS), nil
}
