// Package model defines the provider-agnostic abstractions for interacting
// with language models inside Aegis.
//
// Core goals:
//   - Keep request/response shapes minimal and transport independent
//   - Normalize tool / function call representation across vendors
//   - Resolve model aliases through an explicit registration table instead of
//     name inspection
//   - Facilitate lightweight scripting for tests (Mock)
//
// Providers (OpenAI, Anthropic, Gemini) implement the Provider interface from
// this package so higher layers remain decoupled from vendor SDKs.
package model
