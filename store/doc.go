// Package store persists agent definitions and run outcomes.
//
// AgentStore resolves the executable configuration of an agent, including its
// single active prompt version. RunRecorder captures the outcome of finished
// runs for audit. Two implementations ship: a volatile in-memory store for
// tests and demos, and a SQLite store (gorm) for real deployments.
package store
