// Package api exposes the question, upload, and history services over HTTP.
//
// All endpoints speak JSON. Mutating endpoints attribute their writes to the
// X-User-ID request header, falling back to "anonymous".
package api
