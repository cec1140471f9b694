// Package module mounts self-contained HTTP surfaces, such as the saldo API,
// under a single top-level path segment.
package module

import (
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"

	"github.com/JaimeStill/saldo/pkg/middleware"
)

// ErrInvalidPrefix is the panic value for a prefix that is not exactly one
// path segment.
var ErrInvalidPrefix = errors.New("invalid module prefix")

// Module serves every request under its prefix through its own router and
// middleware chain. The prefix is stripped before the router sees the path.
type Module struct {
	prefix string
	router http.Handler
	chain  middleware.Chain

	once    sync.Once
	handler http.Handler
}

// New creates a Module for prefix, for example "/api". It panics with
// ErrInvalidPrefix for "", "api" or "/api/v1".
func New(prefix string, router http.Handler) *Module {
	if err := checkPrefix(prefix); err != nil {
		panic(err)
	}
	return &Module{prefix: prefix, router: router}
}

func (m *Module) Prefix() string { return m.prefix }

// Use appends mw to the chain. The chain is fixed at the first request.
func (m *Module) Use(mw middleware.Middleware) {
	m.chain = append(m.chain, mw)
}

// Serve strips the prefix and dispatches through the middleware chain.
func (m *Module) Serve(w http.ResponseWriter, req *http.Request) {
	m.once.Do(func() {
		m.handler = m.chain.Then(m.router)
	})

	inner := req.Clone(req.Context())
	inner.URL.Path = strings.TrimPrefix(req.URL.Path, m.prefix)
	if inner.URL.Path == "" {
		inner.URL.Path = "/"
	}
	inner.URL.RawPath = ""

	m.handler.ServeHTTP(w, inner)
}

func checkPrefix(prefix string) error {
	segment, ok := strings.CutPrefix(prefix, "/")
	if !ok || segment == "" || strings.Contains(segment, "/") {
		return fmt.Errorf("%w: %q must be a single segment such as /api", ErrInvalidPrefix, prefix)
	}
	return nil
}
