package gen

import (
	"context"

	"github.com/syssam/vertexql/graph"
)

// Record is one vertex as returned by a resolver, keyed by property name.
// Absent properties are either missing or nil.
type Record map[string]any

// Resolver executes a bound root field.
//
// Resolve receives the field arguments keyed by argument name. Arguments
// left at their null default are present with a nil value and mean "no
// constraint". List resolvers return []Record; node resolvers return a
// Record or nil.
type Resolver interface {
	Resolve(ctx context.Context, args map[string]any) (any, error)
}

// The ResolverFunc type is an adapter to allow the use of ordinary
// functions as resolvers.
type ResolverFunc func(ctx context.Context, args map[string]any) (any, error)

// Resolve calls f(ctx, args).
func (f ResolverFunc) Resolve(ctx context.Context, args map[string]any) (any, error) {
	return f(ctx, args)
}

// ResolverFactory produces the resolver bound to the bulk lookup field of a
// vertex type. Implementations close over a query-execution capability and
// whatever session state it needs.
type ResolverFactory interface {
	ListResolver(vt graph.VertexType) (Resolver, error)
}

// The ResolverFactoryFunc type is an adapter to allow the use of ordinary
// functions as resolver factories.
type ResolverFactoryFunc func(vt graph.VertexType) (Resolver, error)

// ListResolver calls f(vt).
func (f ResolverFactoryFunc) ListResolver(vt graph.VertexType) (Resolver, error) {
	return f(vt)
}

// NodeResolverFactory is implemented by factories that can also resolve a
// single vertex by identifier. It is consulted only when the compiler runs
// with WithNodeResolvers.
type NodeResolverFactory interface {
	ResolverFactory
	NodeResolver(vt graph.VertexType) (Resolver, error)
}

// Coordinate addresses a field of a type in the compiled schema.
type Coordinate struct {
	Type  string
	Field string
}

// String returns "Type.Field".
func (c Coordinate) String() string {
	return c.Type + "." + c.Field
}
