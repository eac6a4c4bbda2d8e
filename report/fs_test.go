package report

import (
	"context"
	"encoding/json"
	"os"
	"strings"
	"testing"
	"time"
)

// Interface compliance (compile-time assertion)
var _ Writer = (*FS)(nil)

func TestFSWritePair(t *testing.T) {
	dir := t.TempDir()
	w := NewFS(dir)

	created := time.Date(2026, 3, 14, 9, 26, 53, 0, time.UTC)
	doc := Document{
		ID:      "run-1",
		Title:   "Daily Triage",
		Summary: "Two suspicious logins contained.",
		Sections: []Section{
			{Heading: "IoCs", Items: []string{"203.0.113.7", "evil.example.com"}},
			{Heading: "Actions", Body: "Credentials rotated for both accounts."},
		},
		Metadata:  map[string]string{"agent": "triage"},
		CreatedAt: created,
	}

	ref, err := w.Write(context.Background(), doc)
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	if !strings.HasSuffix(ref.JSONPath, "20260314T092653Z-run-1.json") {
		t.Errorf("json path = %q", ref.JSONPath)
	}
	if !strings.HasSuffix(ref.MarkdownPath, "20260314T092653Z-run-1.md") {
		t.Errorf("markdown path = %q", ref.MarkdownPath)
	}

	raw, err := os.ReadFile(ref.JSONPath)
	if err != nil {
		t.Fatalf("read json: %v", err)
	}
	var round Document
	if err := json.Unmarshal(raw, &round); err != nil {
		t.Fatalf("unmarshal json: %v", err)
	}
	if round.Summary != doc.Summary || len(round.Sections) != 2 {
		t.Errorf("roundtrip = %+v", round)
	}

	md, err := os.ReadFile(ref.MarkdownPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	text := string(md)
	for _, want := range []string{
		"# Daily Triage",
		"Two suspicious logins contained.",
		"## IoCs",
		"- 203.0.113.7",
		"- evil.example.com",
		"## Actions",
		"Credentials rotated for both accounts.",
	} {
		if !strings.Contains(text, want) {
			t.Errorf("markdown missing %q:\n%s", want, text)
		}
	}
}

func TestFSWriteDefaults(t *testing.T) {
	dir := t.TempDir()
	w := NewFS(dir)

	ref, err := w.Write(context.Background(), Document{Summary: "bare summary"})
	if err != nil {
		t.Fatalf("write: %v", err)
	}

	md, err := os.ReadFile(ref.MarkdownPath)
	if err != nil {
		t.Fatalf("read markdown: %v", err)
	}
	if !strings.HasPrefix(string(md), "# Summary\nbare summary\n") {
		t.Errorf("markdown = %q", string(md))
	}
}

func TestFSWriteCreatesDir(t *testing.T) {
	dir := t.TempDir() + "/nested/reports"
	w := NewFS(dir)

	if _, err := w.Write(context.Background(), Document{Summary: "s"}); err != nil {
		t.Fatalf("write into missing dir: %v", err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("read dir: %v", err)
	}
	if len(entries) != 2 {
		t.Errorf("entries = %d, want json+md pair", len(entries))
	}
}
