package load

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/dialect/sql"
	"github.com/syssam/vertexql/dialect/sql/schema"
	"github.com/syssam/vertexql/graph"
)

// Catalog derives vertex types from the tables of a SQL database. Every
// table with a "vid" column is a vertex type; its other columns are the
// properties, typed by the inverse of the store column mapping.
type Catalog struct {
	drv         *sql.Driver
	log         *zap.Logger
	spaces      map[string]string
	tables      []string
	skipUnknown bool
}

// CatalogOption configures a Catalog.
type CatalogOption func(*Catalog)

// WithCatalogLogger sets the catalog logger.
func WithCatalogLogger(l *zap.Logger) CatalogOption {
	return func(c *Catalog) {
		if l != nil {
			c.log = l
		}
	}
}

// WithSpace maps a graph space to a database schema. Once a space is
// mapped, loading an unmapped space fails. Without mappings every space
// reads the connected schema.
func WithSpace(space, schemaName string) CatalogOption {
	return func(c *Catalog) {
		c.spaces[space] = schemaName
	}
}

// WithTables restricts inspection to the named tables.
func WithTables(names ...string) CatalogOption {
	return func(c *Catalog) {
		c.tables = append(c.tables, names...)
	}
}

// SkipUnsupported drops columns whose type has no graph-native tag instead
// of reporting them as UNKNOWN properties.
func SkipUnsupported() CatalogOption {
	return func(c *Catalog) {
		c.skipUnknown = true
	}
}

// NewCatalog returns a catalog loader on drv.
func NewCatalog(drv *sql.Driver, opts ...CatalogOption) *Catalog {
	c := &Catalog{drv: drv, log: zap.NewNop(), spaces: make(map[string]string)}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Load inspects the schema mapped to space.
func (c *Catalog) Load(ctx context.Context, space string) ([]graph.VertexType, error) {
	schemaName, ok := c.spaces[space]
	if !ok && len(c.spaces) > 0 {
		return nil, vertexql.NewMetadataError(space, "lookup", fmt.Errorf("space is not mapped to a schema"))
	}
	p, err := schema.NewProvisioner(c.drv, schema.WithLogger(c.log))
	if err != nil {
		return nil, vertexql.NewMetadataError(space, "connect", err)
	}
	tables, err := p.InspectSchema(ctx, schemaName, c.tables...)
	if err != nil {
		return nil, vertexql.NewMetadataError(space, "inspect", err)
	}
	vts := make([]graph.VertexType, 0, len(tables))
	for _, t := range tables {
		if _, ok := t.Column(schema.VIDColumn); !ok {
			c.log.Debug("skipping table without vertex id", zap.String("table", t.Name))
			continue
		}
		vt := schema.VertexType(t)
		if c.skipUnknown {
			props := vt.Properties[:0]
			for _, p := range vt.Properties {
				if !p.Type.Known() {
					c.log.Warn("skipping column with unsupported type",
						zap.String("table", t.Name),
						zap.String("column", p.Name),
						zap.String("type", string(p.Type)),
					)
					continue
				}
				props = append(props, p)
			}
			vt.Properties = props
		}
		vts = append(vts, vt)
	}
	c.log.Debug("catalog loaded", zap.String("space", space), zap.Int("vertex_types", len(vts)))
	return vts, nil
}
