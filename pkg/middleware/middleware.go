// Package middleware provides HTTP middleware for the soundslike API:
// CORS, request logging, prometheus metrics and per-client rate limiting.
package middleware

import "net/http"

// Func wraps an http.Handler.
type Func func(http.Handler) http.Handler

// Chain wraps handler so that mws run in the order given: mws[0] sees the
// request first.
func Chain(handler http.Handler, mws ...Func) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		handler = mws[i](handler)
	}
	return handler
}

// System accumulates middleware for later application to a handler.
type System interface {
	Use(mws ...Func)
	Apply(handler http.Handler) http.Handler
}

type stack []Func

// New creates an empty middleware System.
func New() System {
	return &stack{}
}

func (s *stack) Use(mws ...Func) {
	*s = append(*s, mws...)
}

func (s *stack) Apply(handler http.Handler) http.Handler {
	return Chain(handler, *s...)
}
