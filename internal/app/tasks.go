package app

import (
	"context"
	"fmt"
	"io"
	"sort"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/syssam/vertexql/compiler/load"
	"github.com/syssam/vertexql/dialect/sql/schema"
	"github.com/syssam/vertexql/dialect/sql/sqlgraph"
	"github.com/syssam/vertexql/graph"
)

// SeedFile is a YAML document of vertices keyed by vertex type name:
//
//	vertices:
//	  Person:
//	    - id: p1
//	      properties:
//	        age: 42
type SeedFile struct {
	Vertices map[string][]SeedVertex `yaml:"vertices"`
}

// SeedVertex is one vertex of a SeedFile. An empty ID is generated.
type SeedVertex struct {
	ID         string         `yaml:"id,omitempty"`
	Properties map[string]any `yaml:"properties"`
}

func (a *App) vertexTypes(ctx context.Context) ([]graph.VertexType, error) {
	vts, err := a.Loader.Load(ctx, a.Config.Space)
	if err != nil {
		return nil, err
	}
	if len(vts) == 0 {
		return nil, fmt.Errorf("app: space %q has no vertex types", a.Config.Space)
	}
	return vts, nil
}

// Provision creates or extends the vertex tables of the configured space.
func (a *App) Provision(ctx context.Context, dryRun bool, opts ...schema.Option) (*schema.Report, error) {
	vts, err := a.vertexTypes(ctx)
	if err != nil {
		return nil, err
	}
	if dryRun {
		opts = append(opts, schema.WithDryRun())
	}
	return a.Store.Provision(ctx, vts, opts...)
}

// Seed inserts the vertices of a SeedFile read from r and returns how many
// were inserted. Vertex types are inserted in name order.
func (a *App) Seed(ctx context.Context, r io.Reader) (int, error) {
	var f SeedFile
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return 0, fmt.Errorf("app: decode seed file: %w", err)
	}
	vts, err := a.vertexTypes(ctx)
	if err != nil {
		return 0, err
	}
	byName := make(map[string]graph.VertexType, len(vts))
	for _, vt := range vts {
		byName[vt.Name] = vt
	}
	names := make([]string, 0, len(f.Vertices))
	for name := range f.Vertices {
		if _, ok := byName[name]; !ok {
			return 0, fmt.Errorf("app: seed: unknown vertex type %q in space %q", name, a.Config.Space)
		}
		names = append(names, name)
	}
	sort.Strings(names)
	n := 0
	for _, name := range names {
		vs := make([]sqlgraph.Vertex, 0, len(f.Vertices[name]))
		for _, v := range f.Vertices[name] {
			vs = append(vs, sqlgraph.Vertex{ID: v.ID, Properties: v.Properties})
		}
		if len(vs) == 0 {
			continue
		}
		ids, err := a.Store.Insert(ctx, byName[name], vs...)
		if err != nil {
			return n, err
		}
		n += len(ids)
		a.Log.Info("seeded vertices", zap.String("vertex", name), zap.Int("count", len(ids)))
	}
	return n, nil
}

// Export renders the metadata of the configured space as a metadata file,
// e.g. to snapshot a catalog-backed space.
func (a *App) Export(ctx context.Context) ([]byte, error) {
	vts, err := a.vertexTypes(ctx)
	if err != nil {
		return nil, err
	}
	return load.MarshalMetadata(&load.Metadata{
		Spaces: map[string]load.Space{a.Config.Space: {Vertices: vts}},
	})
}
