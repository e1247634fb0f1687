// Package textsim implements the trigram string-similarity metric used as
// the lexical retrieval signal. It follows the conventions of the PostgreSQL
// pg_trgm extension: words are padded with two leading spaces and one
// trailing space before trigram extraction, and similarity is the Jaccard
// ratio of the two trigram sets.
package textsim
