// Package vector holds the embedding primitives shared by the store and the
// scoring pipeline: a BLOB codec for persisting float32 embeddings in SQLite,
// cosine similarity, and unit normalization.
package vector
