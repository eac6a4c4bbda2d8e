package retrieval

import (
	"context"
	"fmt"
	"testing"
)

func TestInMemory_ScopeFiltering(t *testing.T) {
	s := NewInMemory()
	s.AddDocument("org-1", "", "Phishing Playbook", "Steps for phishing triage")
	s.AddDocument("org-1", "agent-2", "Agent Two Notes", "phishing escalation path")
	s.AddDocument("org-2", "", "Other Org Doc", "phishing doc for another tenant")
	s.AddMemory("agent-1", "last-incident", "phishing campaign against finance")
	s.AddMemory("", "global-contact", "phishing reports go to soc@example.com")
	s.AddMemory("agent-2", "private", "phishing note for another agent")

	got, err := s.Retrieve(context.Background(), Query{OrganizationID: "org-1", AgentID: "agent-1", Text: "phishing"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	labels := make([]string, len(got))
	for i, sn := range got {
		labels[i] = sn.Label
	}

	want := []string{"Document: Phishing Playbook", "Memory: last-incident", "Memory: global-contact"}
	if len(labels) != len(want) {
		t.Fatalf("got %v, want %v", labels, want)
	}
	for i := range want {
		if labels[i] != want[i] {
			t.Fatalf("got %v, want %v", labels, want)
		}
	}
}

func TestInMemory_Limits(t *testing.T) {
	s := NewInMemory()
	for i := 0; i < 8; i++ {
		s.AddDocument("org-1", "", fmt.Sprintf("doc-%d", i), "malware indicators")
		s.AddMemory("agent-1", fmt.Sprintf("mem-%d", i), "malware sample hash")
	}

	got, err := s.Retrieve(context.Background(), Query{OrganizationID: "org-1", AgentID: "agent-1", Text: "malware"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(got) != MaxDocuments+MaxMemories {
		t.Fatalf("expected %d snippets, got %d", MaxDocuments+MaxMemories, len(got))
	}
	for i := 0; i < MaxDocuments; i++ {
		if got[i].Label != fmt.Sprintf("Document: doc-%d", i) {
			t.Fatalf("documents should precede memories in insertion order, got %q at %d", got[i].Label, i)
		}
	}
}

func TestInMemory_NoMatchesMeansEmpty(t *testing.T) {
	s := NewInMemory()
	s.AddDocument("org-1", "", "Ransomware Guide", "containment steps")

	got, err := s.Retrieve(context.Background(), Query{OrganizationID: "org-1", AgentID: "a", Text: "kubernetes"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected no snippets, got %v", got)
	}
}

func TestInMemory_RankingPrefersMoreTermHits(t *testing.T) {
	s := NewInMemory()
	s.AddDocument("org-1", "", "Generic", "mentions phishing once")
	s.AddDocument("org-1", "", "Specific", "phishing lure and phishing kit with credential harvesting")

	got, err := s.Retrieve(context.Background(), Query{OrganizationID: "org-1", Text: "phishing credential"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 snippets, got %d", len(got))
	}
	if got[0].Label != "Document: Specific" {
		t.Fatalf("expected higher scoring document first, got %q", got[0].Label)
	}
}

func TestInMemory_Deterministic(t *testing.T) {
	s := NewInMemory()
	s.AddDocument("org-1", "", "A", "incident response")
	s.AddDocument("org-1", "", "B", "incident response")

	q := Query{OrganizationID: "org-1", Text: "incident"}
	first, _ := s.Retrieve(context.Background(), q)
	second, _ := s.Retrieve(context.Background(), q)

	if len(first) != len(second) {
		t.Fatalf("non-deterministic result sizes: %d vs %d", len(first), len(second))
	}
	for i := range first {
		if first[i] != second[i] {
			t.Fatalf("non-deterministic result at %d: %+v vs %+v", i, first[i], second[i])
		}
	}
}
