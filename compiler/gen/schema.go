package gen

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"strings"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/formatter"

	"github.com/syssam/vertexql/graph"
)

// Schema is a compiled, validated GraphQL schema together with its
// resolver binding table. It is immutable; the AST it exposes must not be
// modified.
type Schema struct {
	schema   *ast.Schema
	objects  []*ast.Definition
	vertices map[string]graph.VertexType
	order    []string
	bindings map[Coordinate]Resolver
	coords   []Coordinate
	sdl      string
	hash     string
}

func newSchema(s *ast.Schema, c *compilation) *Schema {
	schema := &Schema{
		schema:   s,
		objects:  append([]*ast.Definition(nil), c.objects...),
		vertices: make(map[string]graph.VertexType, len(c.vertices)),
		order:    make([]string, 0, len(c.objects)),
		bindings: make(map[Coordinate]Resolver, len(c.bindings)),
	}
	for _, def := range c.objects {
		schema.order = append(schema.order, def.Name)
		schema.vertices[def.Name] = c.vertices[def.Name]
	}
	for _, f := range c.root {
		coord := Coordinate{Type: c.cfg.QueryType, Field: f.Name}
		if r, ok := c.bindings[coord]; ok {
			schema.bindings[coord] = r
			schema.coords = append(schema.coords, coord)
		}
	}
	var b bytes.Buffer
	formatter.NewFormatter(&b, formatter.WithIndent("  ")).FormatSchema(s)
	schema.sdl = b.String()
	sum := sha256.Sum256(b.Bytes())
	schema.hash = hex.EncodeToString(sum[:])
	return schema
}

// AST returns the validated gqlparser schema.
func (s *Schema) AST() *ast.Schema {
	return s.schema
}

// QueryType returns the root query type. Its field list ends with the
// introspection fields added by validation.
func (s *Schema) QueryType() *ast.Definition {
	return s.schema.Query
}

// RootFields returns the root query fields in declaration order, without
// the introspection fields.
func (s *Schema) RootFields() ast.FieldList {
	var fields ast.FieldList
	for _, f := range s.schema.Query.Fields {
		if !strings.HasPrefix(f.Name, "__") {
			fields = append(fields, f)
		}
	}
	return fields
}

// Type returns the named type definition, or nil.
func (s *Schema) Type(name string) *ast.Definition {
	return s.schema.Types[name]
}

// Types returns the object types compiled from vertex types, in input
// order.
func (s *Schema) Types() []*ast.Definition {
	return append([]*ast.Definition(nil), s.objects...)
}

// VertexType returns the vertex type the named object type was compiled
// from.
func (s *Schema) VertexType(name string) (graph.VertexType, bool) {
	vt, ok := s.vertices[name]
	return vt, ok
}

// VertexTypes returns the vertex types behind Types, in the same order.
func (s *Schema) VertexTypes() []graph.VertexType {
	vts := make([]graph.VertexType, 0, len(s.order))
	for _, name := range s.order {
		vts = append(vts, s.vertices[name])
	}
	return vts
}

// Resolver returns the resolver bound to typeName.fieldName.
func (s *Schema) Resolver(typeName, fieldName string) (Resolver, bool) {
	r, ok := s.bindings[Coordinate{Type: typeName, Field: fieldName}]
	return r, ok
}

// Bindings returns the bound coordinates in root field order.
func (s *Schema) Bindings() []Coordinate {
	return append([]Coordinate(nil), s.coords...)
}

// SDL returns the schema in GraphQL schema definition language, without
// built-in definitions.
func (s *Schema) SDL() string {
	return s.sdl
}

// Hash returns the hex-encoded SHA-256 of SDL. Equal inputs yield equal
// hashes.
func (s *Schema) Hash() string {
	return s.hash
}
