package report

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// timestampLayout matches the share-file naming convention: compact UTC,
// second resolution.
const timestampLayout = "20060102T150405Z"

// FS writes reports into a directory as <timestamp>.json and <timestamp>.md
// pairs (with the document ID appended when present). The directory is
// created on first write.
type FS struct {
	dir string
}

// NewFS constructs a filesystem writer targeting dir.
func NewFS(dir string) *FS {
	return &FS{dir: dir}
}

// Write implements Writer.
func (w *FS) Write(_ context.Context, doc Document) (Ref, error) {
	if doc.CreatedAt.IsZero() {
		doc.CreatedAt = time.Now().UTC()
	}

	if err := os.MkdirAll(w.dir, 0o755); err != nil {
		return Ref{}, fmt.Errorf("create report dir: %w", err)
	}

	name := doc.CreatedAt.UTC().Format(timestampLayout)
	if doc.ID != "" {
		name = name + "-" + doc.ID
	}

	ref := Ref{
		JSONPath:     filepath.Join(w.dir, name+".json"),
		MarkdownPath: filepath.Join(w.dir, name+".md"),
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return Ref{}, fmt.Errorf("marshal report: %w", err)
	}
	if err := os.WriteFile(ref.JSONPath, data, 0o644); err != nil {
		return Ref{}, fmt.Errorf("write report json: %w", err)
	}

	if err := os.WriteFile(ref.MarkdownPath, []byte(renderMarkdown(doc)), 0o644); err != nil {
		return Ref{}, fmt.Errorf("write report markdown: %w", err)
	}

	return ref, nil
}

func renderMarkdown(doc Document) string {
	var sb strings.Builder

	title := doc.Title
	if title == "" {
		title = "Summary"
	}
	sb.WriteString("# ")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(doc.Summary)
	sb.WriteString("\n")

	for _, sec := range doc.Sections {
		sb.WriteString("## ")
		sb.WriteString(sec.Heading)
		sb.WriteString("\n")
		if sec.Body != "" {
			sb.WriteString(sec.Body)
			sb.WriteString("\n")
		}
		for _, item := range sec.Items {
			sb.WriteString("- ")
			sb.WriteString(item)
			sb.WriteString("\n")
		}
	}

	return sb.String()
}
