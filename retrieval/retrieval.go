// Package retrieval defines the context retrieval collaborator consumed by
// the orchestrator's pre-step, plus a process-local implementation. The
// orchestrator treats retrieval as a black box returning an ordered list of
// labeled snippets; ranking quality is entirely the retriever's concern.
package retrieval

import "context"

// Bounds applied by convention to a single retrieval: at most MaxDocuments
// document snippets followed by at most MaxMemories memory snippets.
const (
	MaxDocuments = 5
	MaxMemories  = 5
)

// Query identifies the scope and text the retriever ranks against.
type Query struct {
	OrganizationID string
	AgentID        string
	Text           string
}

// Snippet is one unit of retrieved context. Label names the source (document
// title or memory key) so the assembled prompt can attribute each snippet.
type Snippet struct {
	Label string `json:"label"`
	Text  string `json:"text"`
}

// Retriever returns relevance-ordered context snippets for a query.
// Implementations must be safe for concurrent use; a retriever is shared by
// all simultaneous runs of an executor.
type Retriever interface {
	Retrieve(ctx context.Context, q Query) ([]Snippet, error)
}
