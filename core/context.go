package core

// ExecContext identifies the tenant scope a run executes under. It is passed
// to every tool execution so tools can enforce organization boundaries and
// attribute side effects to the triggering user.
type ExecContext struct {
	OrganizationID string `json:"organization_id"`
	AgentID        string `json:"agent_id"`
	UserID         string `json:"user_id,omitempty"`
}
