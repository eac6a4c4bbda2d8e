package report

import (
	"context"
	"time"
)

// Section is one titled block of a report. Items render as Markdown bullets;
// Body renders as a paragraph. Both may be set.
type Section struct {
	Heading string   `json:"heading"`
	Body    string   `json:"body,omitempty"`
	Items   []string `json:"items,omitempty"`
}

// Document is one report. ID, when set, is appended to the generated file
// names so documents created in the same second never collide; run ids are a
// natural choice.
type Document struct {
	ID        string            `json:"id,omitempty"`
	Title     string            `json:"title"`
	Summary   string            `json:"summary"`
	Sections  []Section         `json:"sections,omitempty"`
	Metadata  map[string]string `json:"metadata,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
}

// Ref points at the files a Writer produced.
type Ref struct {
	JSONPath     string `json:"json_path"`
	MarkdownPath string `json:"markdown_path"`
}

// Writer persists report documents. Implementations must be safe for
// concurrent use.
type Writer interface {
	Write(ctx context.Context, doc Document) (Ref, error)
}
