// Package question implements the query-time core: composing a query plan
// from the new message and optional conversation context, fusing the
// retrieval signals into a final ranked answer behind a minimum-confidence
// gate, and the synchronous edit operation. The history side effect of a
// search is dispatched to a detached worker and can never delay or fail the
// response.
package question
