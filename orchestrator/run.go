package orchestrator

import (
	"context"
	"sort"
	"strings"
	"time"

	"github.com/aegisops/aegis/agent"
	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/logging"
	"github.com/aegisops/aegis/model"
	"github.com/aegisops/aegis/retrieval"
	"github.com/aegisops/aegis/tool"
)

// snippetMaxLen caps each retrieved snippet at this many characters before it
// enters the prompt.
const snippetMaxLen = 1000

const (
	contextHeader = "--- Relevant Context ---"
	contextFooter = "--- End Context ---"
)

// run collects the mutable state of a single execution. It lives for one
// Execute call and is never shared.
type run struct {
	id        string
	cfg       agent.Config
	execCtx   core.ExecContext
	input     string
	history   []core.Message
	provider  model.Provider
	retriever retrieval.Retriever
	tools     map[string]tool.Tool
	defs      []model.ToolDefinition
	logger    logging.Logger

	// prompt is the system prompt for this run: the configured prompt plus
	// the retrieved context block when assembly found snippets.
	prompt string

	steps      []core.Step
	usage      core.Usage
	modelCalls int
	toolCalls  int
}

func newRun(e *Executor, provider model.Provider, req Request) *run {
	defs := make([]model.ToolDefinition, 0, len(req.Tools))

	for _, name := range sortedToolNames(req.Tools) {
		t := req.Tools[name]
		defs = append(defs, model.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  t.Parameters(),
		})
	}

	return &run{
		id:        core.NewID(),
		cfg:       req.Config,
		execCtx:   req.Exec,
		input:     req.Input,
		history:   req.History,
		provider:  provider,
		retriever: e.retriever,
		tools:     req.Tools,
		defs:      defs,
		logger:    e.logger,
		prompt:    req.Config.SystemPrompt,
	}
}

func sortedToolNames(tools map[string]tool.Tool) []string {
	names := make([]string, 0, len(tools))
	for name := range tools {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// assemble builds the initial message list: cloned history followed by the
// user input. Retrieved context, when any, is appended to the run's system
// prompt as a delimited block; the message list itself stays untouched.
func (r *run) assemble(ctx context.Context) []core.Message {
	messages := core.CloneMessages(r.history)

	if r.retriever != nil {
		snippets, step := r.retrieve(ctx)
		r.steps = append(r.steps, step)

		if rendered := renderSnippets(snippets); rendered != "" {
			r.prompt = r.cfg.SystemPrompt + "\n\n" + rendered
		}
	}

	return append(messages, core.NewUserMessage(r.input))
}

// retrieve queries the retriever and records the retrieval step. A failing
// retriever degrades to an empty context; it never aborts the run.
func (r *run) retrieve(ctx context.Context) ([]retrieval.Snippet, core.Step) {
	started := time.Now()

	snippets, err := r.retriever.Retrieve(ctx, retrieval.Query{
		OrganizationID: r.execCtx.OrganizationID,
		AgentID:        r.execCtx.AgentID,
		Text:           r.input,
	})
	if err != nil {
		r.logger.Warn("run.retrieval.failed", "run.id", r.id, "error", err)

		return nil, core.NewRetrievalStep(0, true, time.Since(started))
	}

	return snippets, core.NewRetrievalStep(len(snippets), false, time.Since(started))
}

// renderSnippets formats retrieved snippets into the delimited context block.
// Each snippet body is truncated to snippetMaxLen characters. Returns "" when
// there is nothing to render.
func renderSnippets(snippets []retrieval.Snippet) string {
	if len(snippets) == 0 {
		return ""
	}

	var sb strings.Builder

	sb.WriteString(contextHeader)

	for _, s := range snippets {
		sb.WriteString("\n[")
		sb.WriteString(s.Label)
		sb.WriteString("]\n")
		sb.WriteString(truncate(s.Text, snippetMaxLen))
	}

	sb.WriteString("\n")
	sb.WriteString(contextFooter)

	return sb.String()
}

func truncate(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}

	return string(runes[:limit])
}

// callModel performs one model invocation and records it in the trace. The
// withTools flag controls whether tool definitions are offered; a final
// synthesis call passes false to force a textual answer.
func (r *run) callModel(ctx context.Context, systemPrompt string, messages []core.Message, withTools bool) (*model.Response, error) {
	mreq := model.Request{
		SystemPrompt: systemPrompt,
		Messages:     messages,
	}

	if withTools && len(r.defs) > 0 {
		mreq.Tools = r.defs
		mreq.ToolChoice = model.ToolChoiceAuto
	}

	started := time.Now()
	r.modelCalls++

	resp, err := r.provider.Generate(ctx, mreq)
	elapsed := time.Since(started)

	if err != nil {
		r.steps = append(r.steps, core.NewFailedModelCallStep(r.provider.Info().Name, err, elapsed))

		return nil, &ModelError{Alias: r.cfg.ModelAlias, Err: err, Steps: r.steps, Usage: r.usage}
	}

	r.usage.Add(resp.Usage)
	r.steps = append(r.steps, core.NewModelCallStep(r.provider.Info().Name, resp.FinishReason, resp.Usage, elapsed))

	r.logger.Debug("run.model.call",
		"run.id", r.id,
		"model.finish_reason", resp.FinishReason,
		"model.tool_calls", len(resp.ToolCalls),
		"usage.input_tokens", resp.Usage.InputTokens,
		"usage.output_tokens", resp.Usage.OutputTokens,
	)

	return resp, nil
}

// appendRound extends messages with the assistant turn and the results of its
// tool calls, returning the new slice.
func appendRound(messages []core.Message, resp *model.Response, results []core.ToolResult) []core.Message {
	messages = append(messages, core.NewAssistantMessage(resp.Content, resp.ToolCalls...))

	for _, res := range results {
		messages = append(messages, core.NewToolMessage(res))
	}

	return messages
}
