// Package orchestrator drives the execution of one agent run: it assembles
// retrieved context into the system prompt, interleaves model-generation
// calls with tool executions according to the agent's planning mode, and
// returns the final output together with an ordered step trace and aggregate
// token usage.
//
// An Executor is stateless between runs and safe for concurrent use; each
// call to Execute owns its message list and trace. The executor persists
// nothing; recording outcomes is the caller's responsibility.
package orchestrator
