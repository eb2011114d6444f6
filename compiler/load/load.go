// Package load provides the metadata providers of the schema compiler.
//
// A Loader reports the vertex types of a graph space. Failures to reach the
// source or to find the space are *vertexql.MetadataError values matching
// vertexql.ErrMetadataUnavailable:
//
//	l := load.NewFile("graph.yaml")
//	vts, err := l.Load(ctx, "social")
//	if vertexql.IsMetadataUnavailable(err) {
//		// retry later or keep serving the previous schema
//	}
package load

import (
	"context"
	"fmt"
	"slices"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/graph"
)

// Loader loads the vertex types of a graph space.
type Loader interface {
	Load(ctx context.Context, space string) ([]graph.VertexType, error)
}

// The LoaderFunc type is an adapter to allow the use of ordinary functions
// as metadata loaders.
type LoaderFunc func(ctx context.Context, space string) ([]graph.VertexType, error)

// Load calls f(ctx, space).
func (f LoaderFunc) Load(ctx context.Context, space string) ([]graph.VertexType, error) {
	return f(ctx, space)
}

// Static is a loader over fixed metadata, keyed by space name.
type Static map[string][]graph.VertexType

// Load returns a copy of the vertex types of space.
func (s Static) Load(_ context.Context, space string) ([]graph.VertexType, error) {
	vts, ok := s[space]
	if !ok {
		return nil, vertexql.NewMetadataError(space, "lookup", fmt.Errorf("unknown space"))
	}
	return clone(vts), nil
}

func clone(vts []graph.VertexType) []graph.VertexType {
	out := make([]graph.VertexType, len(vts))
	for i, vt := range vts {
		out[i] = graph.VertexType{Name: vt.Name, Properties: slices.Clone(vt.Properties)}
	}
	return out
}
