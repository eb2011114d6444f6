package gen

import (
	"fmt"
	"regexp"

	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/parser"
	"github.com/vektah/gqlparser/v2/validator"
	"go.uber.org/zap"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/graph"
)

// IDArgument is the argument of the lookup-by-identifier field.
const IDArgument = "ID"

// idDescription documents IDArgument in the compiled schema.
const idDescription = "Vertex ID"

var nameRE = regexp.MustCompile(`^[_A-Za-z][_0-9A-Za-z]*$`)

// Compile builds a GraphQL schema from vertex type metadata.
//
// For every vertex type T, in input order, Compile adds an object type T
// with one nullable field per property, and two root fields:
//
//	Ts(p1: S1 = null, ..., pn: Sn = null): [T]!
//	T(ID: ID!): T
//
// The bulk lookup field Ts is bound to factory.ListResolver(T). The
// identifier lookup field is bound only under WithNodeResolvers.
//
// Compile either returns a complete, validated schema or an error matching
// vertexql.ErrCompilation (or a *ConfigError for invalid options).
func Compile(vertexTypes []graph.VertexType, factory ResolverFactory, opts ...Option) (*Schema, error) {
	cfg, err := NewConfig(opts...)
	if err != nil {
		return nil, err
	}
	switch {
	case factory == nil:
		return nil, vertexql.NewCompilationError("", "", "resolver factory is required", nil)
	case len(vertexTypes) == 0:
		return nil, vertexql.NewCompilationError("", "", "no vertex types to compile", nil)
	case !validName(cfg.QueryType):
		return nil, vertexql.NewCompilationError("", "", fmt.Sprintf("query type name %q is not a valid GraphQL name", cfg.QueryType), nil)
	}
	c := &compilation{
		cfg:      cfg,
		factory:  factory,
		objectAt: make(map[string]int, len(vertexTypes)),
		vertices: make(map[string]graph.VertexType, len(vertexTypes)),
		rootAt:   make(map[string]int, 2*len(vertexTypes)),
		owner:    make(map[string]string, 2*len(vertexTypes)),
		bindings: make(map[Coordinate]Resolver, len(vertexTypes)),
	}
	if cfg.NodeResolvers {
		nodes, ok := factory.(NodeResolverFactory)
		if !ok {
			return nil, vertexql.NewCompilationError("", "", fmt.Sprintf("node resolvers requested but %T does not implement NodeResolverFactory", factory), nil)
		}
		c.nodes = nodes
	}
	for _, vt := range vertexTypes {
		if err := c.add(vt); err != nil {
			cfg.Logger.Debug("compilation aborted", zap.String("vertex", vt.Name), zap.Error(err))
			return nil, err
		}
	}
	return c.build()
}

// compilation accumulates the output of a single Compile call.
type compilation struct {
	cfg     *Config
	factory ResolverFactory
	nodes   NodeResolverFactory

	objects  []*ast.Definition
	objectAt map[string]int
	vertices map[string]graph.VertexType

	root     ast.FieldList
	rootAt   map[string]int
	owner    map[string]string // root field name to vertex type name
	bindings map[Coordinate]Resolver
}

func (c *compilation) add(vt graph.VertexType) error {
	if err := vt.Validate(); err != nil {
		return vertexql.NewCompilationError(vt.Name, "", "invalid vertex type", err)
	}
	switch {
	case !validName(vt.Name):
		return vertexql.NewCompilationError(vt.Name, "", "vertex type name is not a valid GraphQL name", nil)
	case vt.Name == c.cfg.QueryType:
		return vertexql.NewCompilationError(vt.Name, "", "vertex type name is reserved for the root query type", vertexql.ErrNameCollision)
	case len(vt.Properties) == 0:
		return vertexql.NewCompilationError(vt.Name, "", "vertex type has no properties", nil)
	}
	object, filters, err := c.object(vt)
	if err != nil {
		return err
	}
	plural := c.cfg.Plural(vt.Name)
	switch {
	case !validName(plural):
		return vertexql.NewCompilationError(vt.Name, "", fmt.Sprintf("bulk lookup field name %q is not a valid GraphQL name", plural), nil)
	case plural == vt.Name:
		return vertexql.NewCompilationError(vt.Name, "", fmt.Sprintf("bulk and identifier lookup fields are both named %q", plural), vertexql.ErrNameCollision)
	}
	list, err := c.resolver(vt, c.factory.ListResolver)
	if err != nil {
		return err
	}
	var node Resolver
	if c.nodes != nil {
		if node, err = c.resolver(vt, c.nodes.NodeResolver); err != nil {
			return err
		}
	}
	if err := c.putObject(vt, object); err != nil {
		return err
	}
	err = c.putRoot(vt.Name, &ast.FieldDefinition{
		Name:      plural,
		Arguments: filters,
		Type:      ast.NonNullListType(ast.NamedType(vt.Name, nil), nil),
	}, list)
	if err != nil {
		return err
	}
	err = c.putRoot(vt.Name, &ast.FieldDefinition{
		Name: vt.Name,
		Arguments: ast.ArgumentDefinitionList{{
			Name:        IDArgument,
			Description: idDescription,
			Type:        ast.NonNullNamedType(ID.String(), nil),
		}},
		Type: ast.NamedType(vt.Name, nil),
	}, node)
	if err != nil {
		return err
	}
	c.cfg.Logger.Debug("compiled vertex type",
		zap.String("vertex", vt.Name),
		zap.Int("fields", len(object.Fields)),
		zap.String("list_field", plural),
	)
	return nil
}

// object synthesizes the object type of vt along with the filter arguments
// of its bulk lookup field.
func (c *compilation) object(vt graph.VertexType) (*ast.Definition, ast.ArgumentDefinitionList, error) {
	var (
		def  = &ast.Definition{Kind: ast.Object, Name: vt.Name}
		args = make(ast.ArgumentDefinitionList, 0, len(vt.Properties))
		at   = make(map[string]int, len(vt.Properties))
	)
	for _, p := range vt.Properties {
		if !validName(p.Name) {
			return nil, nil, vertexql.NewCompilationError(vt.Name, p.Name, "property name is not a valid GraphQL name", nil)
		}
		scalar, err := MapType(p.Type)
		if err != nil {
			return nil, nil, vertexql.NewUnsupportedPropertyTypeError(vt.Name, p.Name, string(p.Type))
		}
		field := &ast.FieldDefinition{
			Name:        p.Name,
			Description: p.Description,
			Type:        ast.NamedType(scalar.String(), nil),
		}
		arg := &ast.ArgumentDefinition{
			Name:         p.Name,
			Description:  p.Description,
			Type:         ast.NamedType(scalar.String(), nil),
			DefaultValue: &ast.Value{Kind: ast.NullValue, Raw: "null"},
		}
		if i, ok := at[p.Name]; ok {
			if c.cfg.Collisions == Reject {
				return nil, nil, vertexql.NewCompilationError(vt.Name, p.Name, "duplicate property", vertexql.ErrNameCollision)
			}
			def.Fields[i], args[i] = field, arg
			continue
		}
		at[p.Name] = len(def.Fields)
		def.Fields = append(def.Fields, field)
		args = append(args, arg)
	}
	return def, args, nil
}

func (c *compilation) resolver(vt graph.VertexType, fn func(graph.VertexType) (Resolver, error)) (Resolver, error) {
	r, err := fn(vt)
	switch {
	case err != nil:
		return nil, vertexql.NewCompilationError(vt.Name, "", "resolver factory failed", err)
	case r == nil:
		return nil, vertexql.NewCompilationError(vt.Name, "", "resolver factory returned no resolver", nil)
	}
	return r, nil
}

func (c *compilation) putObject(vt graph.VertexType, def *ast.Definition) error {
	if i, ok := c.objectAt[vt.Name]; ok {
		if c.cfg.Collisions == Reject {
			return vertexql.NewCompilationError(vt.Name, "", "duplicate vertex type", vertexql.ErrNameCollision)
		}
		c.cfg.Logger.Debug("vertex type redefined, later definition wins", zap.String("vertex", vt.Name))
		c.objects[i] = def
	} else {
		c.objectAt[vt.Name] = len(c.objects)
		c.objects = append(c.objects, def)
	}
	c.vertices[vt.Name] = vt
	return nil
}

// putRoot adds a root field. A nil resolver leaves the field unbound.
func (c *compilation) putRoot(vertex string, field *ast.FieldDefinition, r Resolver) error {
	if i, ok := c.rootAt[field.Name]; ok {
		prev := c.owner[field.Name]
		if c.cfg.Collisions == Reject {
			return vertexql.NewCompilationError(vertex, "", fmt.Sprintf("root field %q is already defined for vertex type %s", field.Name, prev), vertexql.ErrNameCollision)
		}
		if prev != vertex {
			c.cfg.Logger.Debug("root field redefined, later definition wins",
				zap.String("field", field.Name),
				zap.String("previous", prev),
				zap.String("vertex", vertex),
			)
		}
		c.root[i] = field
	} else {
		c.rootAt[field.Name] = len(c.root)
		c.root = append(c.root, field)
	}
	c.owner[field.Name] = vertex
	coord := Coordinate{Type: c.cfg.QueryType, Field: field.Name}
	if r != nil {
		c.bindings[coord] = r
	} else {
		delete(c.bindings, coord)
	}
	return nil
}

// build assembles the root query type, merges the GraphQL prelude and
// validates the result.
func (c *compilation) build() (*Schema, error) {
	query := &ast.Definition{
		Kind:   ast.Object,
		Name:   c.cfg.QueryType,
		Fields: append(ast.FieldList(nil), c.root...),
	}
	doc, err := parser.ParseSchema(validator.Prelude)
	if err != nil {
		return nil, vertexql.NewCompilationError("", "", "parsing prelude", err)
	}
	doc.Definitions = append(doc.Definitions, c.objects...)
	doc.Definitions = append(doc.Definitions, query)
	if c.cfg.QueryType != DefaultQueryType {
		doc.Schema = append(doc.Schema, &ast.SchemaDefinition{
			OperationTypes: ast.OperationTypeDefinitionList{{Operation: ast.Query, Type: c.cfg.QueryType}},
		})
	}
	s, err := validator.ValidateSchemaDocument(doc)
	if err != nil {
		return nil, vertexql.NewCompilationError("", "", "schema validation failed", err)
	}
	schema := newSchema(s, c)
	c.cfg.Logger.Debug("schema compiled",
		zap.Int("vertex_types", len(c.objects)),
		zap.Int("root_fields", len(c.root)),
		zap.Int("bindings", len(c.bindings)),
		zap.String("hash", schema.Hash()),
	)
	return schema, nil
}

func validName(name string) bool {
	return nameRE.MatchString(name)
}
