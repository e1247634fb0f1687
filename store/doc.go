// Package store implements the durable corpus on SQLite: candidate
// question/answer records with embeddings, upload-job lifecycle tracking,
// and per-user chat history. Retrieval ranks candidates inside SQL using the
// vec_cosine and trgm_sim scalar functions registered by the engine package;
// vectors, weights, and filters always bind as parameters.
package store
