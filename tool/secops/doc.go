// Package secops ships the built-in security-operations toolset: CVE lookup
// against the NVD REST API, advisory feed fetching, IP reputation lookup,
// webhook notification and report writing. Every HTTP tool takes an
// injectable *http.Client and base URL so tests can point it at a local
// server. Tools return compact JSON-friendly values; transport and status
// failures surface as tool errors that the orchestrator feeds back to the
// model.
package secops
