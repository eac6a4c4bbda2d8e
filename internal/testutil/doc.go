// Package testutil contains helper utilities used across tests to reduce
// boilerplate when asserting on execution traces and conversation messages.
// These helpers are intentionally minimal and avoid adding third‑party
// dependencies. They are not intended for production usage.
package testutil
