package graphql

import (
	"net/http"
	"sync/atomic"

	"github.com/99designs/gqlgen/graphql/handler"
	"github.com/99designs/gqlgen/graphql/handler/extension"
	"github.com/99designs/gqlgen/graphql/handler/lru"
	"github.com/99designs/gqlgen/graphql/handler/transport"
	"github.com/vektah/gqlparser/v2/ast"

	"github.com/syssam/vertexql/compiler/gen"
)

// Holder keeps the active compiled schema and its query handler. Swapping
// a schema is atomic; requests in flight finish on the schema they started
// with.
type Holder struct {
	active     atomic.Pointer[served]
	exec       []ExecOption
	complexity int
	queryCache int
}

type served struct {
	schema  *gen.Schema
	handler http.Handler
}

// HolderOption configures a Holder.
type HolderOption func(*Holder)

// WithExecOptions sets the options of every executable schema the holder
// builds.
func WithExecOptions(opts ...ExecOption) HolderOption {
	return func(h *Holder) {
		h.exec = append(h.exec, opts...)
	}
}

// WithComplexityLimit rejects operations above the given complexity. Zero
// disables the limit.
func WithComplexityLimit(n int) HolderOption {
	return func(h *Holder) {
		h.complexity = n
	}
}

// WithQueryCacheSize sets the size of the parsed query cache.
func WithQueryCacheSize(n int) HolderOption {
	return func(h *Holder) {
		if n > 0 {
			h.queryCache = n
		}
	}
}

// NewHolder returns an empty holder. It serves 503 until a schema is
// swapped in.
func NewHolder(opts ...HolderOption) *Holder {
	h := &Holder{queryCache: 1000}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Swap makes s the active schema and returns the previous one.
func (h *Holder) Swap(s *gen.Schema) *gen.Schema {
	prev := h.active.Swap(&served{schema: s, handler: h.handler(s)})
	if prev == nil {
		return nil
	}
	return prev.schema
}

// Schema returns the active schema, or nil.
func (h *Holder) Schema() *gen.Schema {
	if cur := h.active.Load(); cur != nil {
		return cur.schema
	}
	return nil
}

// ServeHTTP serves GraphQL requests with the active schema.
func (h *Holder) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	cur := h.active.Load()
	if cur == nil {
		http.Error(w, "schema not loaded", http.StatusServiceUnavailable)
		return
	}
	cur.handler.ServeHTTP(w, r)
}

func (h *Holder) handler(s *gen.Schema) http.Handler {
	srv := handler.New(NewExecutableSchema(s, h.exec...))
	srv.AddTransport(transport.Options{})
	srv.AddTransport(transport.GET{})
	srv.AddTransport(transport.POST{})
	srv.SetQueryCache(lru.New[*ast.QueryDocument](h.queryCache))
	if h.complexity > 0 {
		srv.Use(extension.FixedComplexityLimit(h.complexity))
	}
	return srv
}
