// Package ingest turns uploaded knowledge-base files into stored candidates.
//
// An upload arrives as a base64-encoded, zlib-compressed CSV with question
// and answer columns. Submit records a pending job and processes the payload
// in the background: each complete row is enriched with a language tag and
// an embedding, then persisted under the job's id. The job finishes exactly
// once, as either Done or Failed.
//
// A filesystem watcher can feed the same pipeline from a drop folder.
package ingest
