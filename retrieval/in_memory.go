package retrieval

import (
	"context"
	"sort"
	"strings"
	"sync"
)

// document is the internal representation of an organization-scoped context
// document. An empty AgentID makes the document visible to every agent in the
// organization.
type document struct {
	organizationID string
	agentID        string
	title          string
	text           string
}

// memory is an agent-scoped (or global, when AgentID is empty) remembered
// fact keyed by a short name.
type memory struct {
	agentID string
	key     string
	text    string
}

// InMemory is a naive process-local Retriever. Ranking is a linear scan with
// case-insensitive term matching: a snippet's score is the number of query
// terms its text or label contains, and zero-score entries are dropped unless
// the query is empty. Ties keep insertion order, which makes results
// deterministic for tests. Documents are returned before memories, each class
// capped at its bound.
//
// Concurrency: protected by RWMutex. Suitable for tests and demos; swap for a
// vector index for production retrieval.
type InMemory struct {
	mu        sync.RWMutex
	documents []document
	memories  []memory
}

// NewInMemory creates an empty in-memory retriever.
func NewInMemory() *InMemory {
	return &InMemory{}
}

// AddDocument stores an organization-scoped document. agentID may be empty to
// share the document across the organization's agents.
func (s *InMemory) AddDocument(organizationID, agentID, title, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.documents = append(s.documents, document{
		organizationID: organizationID,
		agentID:        agentID,
		title:          title,
		text:           text,
	})
}

// AddMemory stores a remembered fact. agentID may be empty for a global
// memory visible to every agent.
func (s *InMemory) AddMemory(agentID, key, text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.memories = append(s.memories, memory{agentID: agentID, key: key, text: text})
}

// Retrieve implements Retriever.
func (s *InMemory) Retrieve(_ context.Context, q Query) ([]Snippet, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	terms := strings.Fields(strings.ToLower(q.Text))

	type scored struct {
		snippet Snippet
		score   int
		order   int
	}

	var docs []scored
	for i, d := range s.documents {
		if d.organizationID != q.OrganizationID {
			continue
		}
		if d.agentID != "" && d.agentID != q.AgentID {
			continue
		}
		score := matchScore(d.title+" "+d.text, terms)
		if score == 0 && len(terms) > 0 {
			continue
		}
		docs = append(docs, scored{
			snippet: Snippet{Label: "Document: " + d.title, Text: d.text},
			score:   score,
			order:   i,
		})
	}

	var mems []scored
	for i, m := range s.memories {
		if m.agentID != "" && m.agentID != q.AgentID {
			continue
		}
		score := matchScore(m.key+" "+m.text, terms)
		if score == 0 && len(terms) > 0 {
			continue
		}
		mems = append(mems, scored{
			snippet: Snippet{Label: "Memory: " + m.key, Text: m.text},
			score:   score,
			order:   i,
		})
	}

	rank := func(entries []scored) {
		sort.SliceStable(entries, func(a, b int) bool {
			if entries[a].score != entries[b].score {
				return entries[a].score > entries[b].score
			}
			return entries[a].order < entries[b].order
		})
	}
	rank(docs)
	rank(mems)

	if len(docs) > MaxDocuments {
		docs = docs[:MaxDocuments]
	}
	if len(mems) > MaxMemories {
		mems = mems[:MaxMemories]
	}

	out := make([]Snippet, 0, len(docs)+len(mems))
	for _, d := range docs {
		out = append(out, d.snippet)
	}
	for _, m := range mems {
		out = append(out, m.snippet)
	}

	return out, nil
}

// matchScore counts how many query terms appear in text (case-insensitive).
func matchScore(text string, terms []string) int {
	lower := strings.ToLower(text)
	score := 0
	for _, term := range terms {
		if strings.Contains(lower, term) {
			score++
		}
	}
	return score
}
