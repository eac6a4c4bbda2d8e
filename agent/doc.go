// Package agent defines the configuration under which the orchestrator runs
// an agent: the active system prompt, the model alias to resolve, the
// planning mode and its step/duration limits, and the associated tool names.
// A Config is immutable for the duration of one execution; editing an agent
// while a run is in flight never affects that run.
package agent
