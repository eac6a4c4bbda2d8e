// Package core contains the shared domain types used across Aegis: the
// conversation message model, tool call / tool result pairing, token usage
// accounting, execution trace steps and the execution context handed to
// tools. Higher layers (orchestrator, model providers, tools, stores) all
// communicate through these types so no package depends on a vendor SDK
// representation.
package core
