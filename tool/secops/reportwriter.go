package secops

import (
	"context"
	"fmt"

	"github.com/aegisops/aegis/core"
	"github.com/aegisops/aegis/report"
	"github.com/aegisops/aegis/tool"
)

// ReportWrite lets the model persist its findings as a timestamped JSON and
// Markdown report pair.
type ReportWrite struct {
	writer report.Writer
}

// NewReportWrite constructs the write_report tool on top of the given writer.
func NewReportWrite(writer report.Writer) *ReportWrite {
	return &ReportWrite{writer: writer}
}

// Name implements tool.Tool.
func (t *ReportWrite) Name() string { return "write_report" }

// Description implements tool.Tool.
func (t *ReportWrite) Description() string {
	return "Write a report of the current findings to persistent storage. Provide a title, a summary and optional sections with bullet points."
}

// Parameters implements tool.Tool.
func (t *ReportWrite) Parameters() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"title": map[string]any{
				"type":        "string",
				"description": "Report title",
			},
			"summary": map[string]any{
				"type":        "string",
				"description": "Short summary of the findings",
			},
			"sections": map[string]any{
				"type":        "array",
				"description": "Optional sections, each with a heading and bullet items",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"heading": map[string]any{"type": "string"},
						"items": map[string]any{
							"type":  "array",
							"items": map[string]any{"type": "string"},
						},
					},
					"required": []string{"heading"},
				},
			},
		},
		"required": []string{"title", "summary"},
	}
}

// Execute implements tool.Tool.
func (t *ReportWrite) Execute(ctx context.Context, execCtx core.ExecContext, args map[string]any) (any, error) {
	title := stringArg(args, "title")
	summary := stringArg(args, "summary")
	if title == "" || summary == "" {
		return nil, tool.NewError(t.Name(), "title and summary are required", tool.CodeValidation)
	}

	doc := report.Document{
		Title:   title,
		Summary: summary,
		Metadata: map[string]string{
			"organization_id": execCtx.OrganizationID,
			"agent_id":        execCtx.AgentID,
		},
	}

	if raw, ok := args["sections"].([]any); ok {
		for _, entry := range raw {
			section, ok := entry.(map[string]any)
			if !ok {
				continue
			}
			s := report.Section{Heading: stringArg(section, "heading")}
			if items, ok := section["items"].([]any); ok {
				for _, item := range items {
					if text, ok := item.(string); ok {
						s.Items = append(s.Items, text)
					}
				}
			}
			doc.Sections = append(doc.Sections, s)
		}
	}

	ref, err := t.writer.Write(ctx, doc)
	if err != nil {
		return nil, tool.NewError(t.Name(), fmt.Sprintf("write report: %v", err), tool.CodeExecution)
	}

	return ref, nil
}
