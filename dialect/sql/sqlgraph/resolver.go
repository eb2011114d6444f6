package sqlgraph

import (
	"context"
	"errors"
	"fmt"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/compiler/gen"
	"github.com/syssam/vertexql/dialect/sql"
	"github.com/syssam/vertexql/dialect/sql/schema"
	"github.com/syssam/vertexql/graph"
)

// ResolverFactory binds compiled root fields to a Store.
type ResolverFactory struct {
	store *Store
	limit int
	vars  map[string]string
	order []string
}

// ResolverOption configures a ResolverFactory.
type ResolverOption func(*ResolverFactory)

// WithDefaultLimit caps the number of vertices a bulk lookup returns.
// Zero means no limit.
func WithDefaultLimit(n int) ResolverOption {
	return func(f *ResolverFactory) {
		if n >= 0 {
			f.limit = n
		}
	}
}

// WithSessionVar sets a session variable on every statement executed by
// the resolvers. The variable is reset after the statement.
func WithSessionVar(name, value string) ResolverOption {
	return func(f *ResolverFactory) {
		if _, ok := f.vars[name]; !ok {
			f.order = append(f.order, name)
		}
		f.vars[name] = value
	}
}

// NewResolverFactory returns a factory whose resolvers query store.
func NewResolverFactory(store *Store, opts ...ResolverOption) *ResolverFactory {
	f := &ResolverFactory{store: store, vars: make(map[string]string)}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

var (
	_ gen.ResolverFactory     = (*ResolverFactory)(nil)
	_ gen.NodeResolverFactory = (*ResolverFactory)(nil)
)

// ListResolver returns the resolver of the bulk lookup field of vt. The
// arguments are equality filters keyed by property name.
func (f *ResolverFactory) ListResolver(vt graph.VertexType) (gen.Resolver, error) {
	if f.store == nil {
		return nil, errors.New("sqlgraph: resolver factory has no store")
	}
	return gen.ResolverFunc(func(ctx context.Context, args map[string]any) (any, error) {
		recs, err := f.store.Find(f.session(ctx), vt, Query{Filter: args, Limit: f.limit})
		if err != nil {
			return nil, err
		}
		if recs == nil {
			recs = []gen.Record{}
		}
		return recs, nil
	}), nil
}

// NodeResolver returns the resolver of the single-vertex lookup field of vt.
// A missing vertex resolves to nil.
func (f *ResolverFactory) NodeResolver(vt graph.VertexType) (gen.Resolver, error) {
	if f.store == nil {
		return nil, errors.New("sqlgraph: resolver factory has no store")
	}
	return gen.ResolverFunc(func(ctx context.Context, args map[string]any) (any, error) {
		id, ok := args[gen.IDArgument]
		if !ok || id == nil {
			return nil, vertexql.NewExecutionError(vt.Name, "lookup", fmt.Errorf("missing %s argument", gen.IDArgument))
		}
		recs, err := f.store.Lookup(f.session(ctx), vt, asString(id))
		if err != nil {
			return nil, err
		}
		if recs[0] == nil {
			return nil, nil
		}
		return recs[0], nil
	}), nil
}

func (f *ResolverFactory) session(ctx context.Context) context.Context {
	for _, name := range f.order {
		ctx = sql.WithVar(ctx, name, f.vars[name])
	}
	return ctx
}

// Provision creates the tables of the given vertex types, adding missing
// columns to existing ones.
func (s *Store) Provision(ctx context.Context, vts []graph.VertexType, opts ...schema.Option) (*schema.Report, error) {
	var drv *sql.Driver
	switch d := s.drv.(type) {
	case *sql.Driver:
		drv = d
	case *sql.StatsDriver:
		drv = d.Driver
	case *sql.DebugDriver:
		drv = d.Driver
	default:
		return nil, fmt.Errorf("sqlgraph: cannot provision tables on %T", s.drv)
	}
	p, err := schema.NewProvisioner(drv, append([]schema.Option{schema.WithLogger(s.log)}, opts...)...)
	if err != nil {
		return nil, err
	}
	return p.Provision(ctx, vts)
}
