// Package embed defines the embedding-provider contract and its adapters:
// an OpenAI-compatible HTTP client and a lazy single-flight wrapper that
// defers provider construction to first use.
package embed
