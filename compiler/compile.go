// Package compiler ties metadata loading to schema compilation.
//
//	s, err := compiler.Compile(ctx, load.NewFile("graph.yaml"), "social",
//		sqlgraph.NewResolverFactory(store),
//		gen.WithNodeResolvers(),
//	)
package compiler

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/syssam/vertexql/compiler/gen"
	"github.com/syssam/vertexql/compiler/load"
)

// Compile loads the vertex types of space and compiles them into a schema.
// Loader failures are returned unchanged, so they keep matching
// vertexql.ErrMetadataUnavailable.
func Compile(ctx context.Context, loader load.Loader, space string, factory gen.ResolverFactory, opts ...gen.Option) (*gen.Schema, error) {
	if loader == nil {
		return nil, fmt.Errorf("compiler: loader is required")
	}
	cfg, err := gen.NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	vts, err := loader.Load(ctx, space)
	if err != nil {
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s, err := gen.Compile(vts, factory, opts...)
	if err != nil {
		return nil, err
	}
	cfg.Logger.Debug("space compiled",
		zap.String("space", space),
		zap.Int("vertex_types", len(vts)),
		zap.String("hash", s.Hash()),
		zap.Duration("took", time.Since(start)),
	)
	return s, nil
}
