package middleware

import (
	"net/http"
	"slices"
)

// Middleware wraps a handler with cross-cutting behaviour.
type Middleware func(http.Handler) http.Handler

// Chain is an ordered middleware stack. The first entry sees the request
// first, so request IDs are assigned before the logger reads them.
type Chain []Middleware

// Then wraps h with every middleware in the chain.
func (c Chain) Then(h http.Handler) http.Handler {
	for _, mw := range slices.Backward(c) {
		h = mw(h)
	}
	return h
}
