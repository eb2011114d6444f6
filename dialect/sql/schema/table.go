package schema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/postgres"
	"ariga.io/atlas/sql/schema"
	"ariga.io/atlas/sql/sqlite"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/dialect"
	"github.com/syssam/vertexql/graph"
)

// VIDColumn is the primary key column of every vertex table.
const VIDColumn = "vid"

// vidSize is the width of the vid column. Generated ids are UUID strings.
const vidSize = 255

// Table returns the atlas table that stores vertices of the given type:
// a "vid" primary key followed by one nullable column per property, in
// property order. Property descriptions become column comments. A later
// property with the same name replaces the earlier column in place.
func Table(name string, vt graph.VertexType) (*schema.Table, error) {
	if !dialect.Supported(name) {
		return nil, fmt.Errorf("dialect/sql/schema: unsupported dialect %q", name)
	}
	vid := schema.NewStringColumn(VIDColumn, "varchar", schema.StringSize(vidSize))
	t := schema.NewTable(vt.Name).
		AddColumns(vid).
		SetPrimaryKey(schema.NewPrimaryKey(vid))
	for _, p := range vt.Properties {
		if p.Name == VIDColumn {
			return nil, vertexql.NewCompilationError(vt.Name, p.Name, "property name is reserved for the vertex id column", nil)
		}
		typ, err := ColumnType(name, p.Type)
		if err != nil {
			return nil, &vertexql.UnsupportedPropertyTypeError{Vertex: vt.Name, Property: p.Name, RawType: string(p.Type)}
		}
		c := schema.NewColumn(p.Name).
			SetType(typ).
			SetNull(true)
		if p.HasDescription() {
			c.SetComment(p.Description)
		}
		if prev, ok := t.Column(p.Name); ok {
			*prev = *c
			continue
		}
		t.AddColumns(c)
	}
	return t, nil
}

// Tables maps all vertex types to tables. Later types with the same name
// replace earlier ones.
func Tables(name string, vts []graph.VertexType) ([]*schema.Table, error) {
	var (
		tables []*schema.Table
		at     = make(map[string]int, len(vts))
	)
	for _, vt := range vts {
		t, err := Table(name, vt)
		if err != nil {
			return nil, err
		}
		if i, ok := at[vt.Name]; ok {
			tables[i] = t
			continue
		}
		at[vt.Name] = len(tables)
		tables = append(tables, t)
	}
	return tables, nil
}

// ColumnType returns the column type that stores values of the given
// property type in the given dialect.
func ColumnType(name string, t graph.PropertyType) (schema.Type, error) {
	switch t {
	case graph.TypeBool:
		return &schema.BoolType{T: "boolean"}, nil
	case graph.TypeInt8, graph.TypeInt16:
		return &schema.IntegerType{T: "smallint"}, nil
	case graph.TypeInt32:
		if name == dialect.MySQL {
			return &schema.IntegerType{T: "int"}, nil
		}
		return &schema.IntegerType{T: "integer"}, nil
	case graph.TypeInt64, graph.TypeTimestamp:
		return &schema.IntegerType{T: "bigint"}, nil
	case graph.TypeVID:
		return &schema.StringType{T: "varchar", Size: vidSize}, nil
	case graph.TypeFloat:
		if name == dialect.MySQL {
			return &schema.FloatType{T: "float"}, nil
		}
		return &schema.FloatType{T: "real"}, nil
	case graph.TypeDouble:
		if name == dialect.MySQL {
			return &schema.FloatType{T: "double"}, nil
		}
		return &schema.FloatType{T: "double precision"}, nil
	case graph.TypeString, graph.TypeDuration, graph.TypeGeography:
		if name == dialect.MySQL {
			return &schema.StringType{T: "longtext"}, nil
		}
		return &schema.StringType{T: "text"}, nil
	case graph.TypeFixedString:
		return &schema.StringType{T: "char", Size: vidSize}, nil
	case graph.TypeDate:
		return &schema.TimeType{T: "date"}, nil
	case graph.TypeTime:
		return &schema.TimeType{T: "time"}, nil
	case graph.TypeDateTime:
		if name == dialect.Postgres {
			return &schema.TimeType{T: "timestamp"}, nil
		}
		return &schema.TimeType{T: "datetime"}, nil
	default:
		return nil, vertexql.NewUnsupportedPropertyTypeError("", "", string(t))
	}
}

// PropertyType maps an inspected column type back to a graph-native tag.
// The mapping is lossy: VID columns read back as STRING, and time columns
// with zones read back as DATETIME. Types without a tag are returned as
// their upper-cased raw name so that compilation can report them.
func PropertyType(t schema.Type) graph.PropertyType {
	switch t := t.(type) {
	case *schema.BoolType:
		return graph.TypeBool
	case *schema.IntegerType:
		switch strings.ToLower(t.T) {
		case "tinyint":
			return graph.TypeInt8
		case "smallint", "int2":
			return graph.TypeInt16
		case "int", "integer", "int4", "mediumint":
			return graph.TypeInt32
		default:
			return graph.TypeInt64
		}
	case *schema.FloatType:
		switch strings.ToLower(t.T) {
		case "real", "float", "float4":
			return graph.TypeFloat
		default:
			return graph.TypeDouble
		}
	case *schema.DecimalType:
		return graph.TypeDouble
	case *schema.StringType:
		switch strings.ToLower(t.T) {
		case "char", "character", "nchar", "bpchar":
			return graph.TypeFixedString
		default:
			return graph.TypeString
		}
	case *schema.TimeType:
		switch strings.ToLower(t.T) {
		case "date":
			return graph.TypeDate
		case "time", "time without time zone":
			return graph.TypeTime
		default:
			return graph.TypeDateTime
		}
	case *schema.UUIDType:
		return graph.TypeString
	case *schema.SpatialType:
		return graph.TypeGeography
	case *schema.JSONType:
		return graph.PropertyType(strings.ToUpper(t.T))
	case *schema.UnsupportedType:
		return graph.PropertyType(strings.ToUpper(t.T))
	case *sqlite.UserDefinedType:
		return graph.PropertyType(strings.ToUpper(t.T))
	case *postgres.UserDefinedType:
		return graph.PropertyType(strings.ToUpper(t.T))
	case nil:
		return graph.TypeUnknown
	default:
		return graph.TypeUnknown
	}
}

// VertexType maps an inspected table back to a vertex type. The vid column
// is the identifier and is skipped, column comments become descriptions.
func VertexType(t *schema.Table) graph.VertexType {
	vt := graph.VertexType{Name: t.Name}
	for _, c := range t.Columns {
		if c.Name == VIDColumn {
			continue
		}
		p := graph.Property{Name: c.Name}
		if c.Type != nil {
			p.Type = PropertyType(c.Type.Type)
		} else {
			p.Type = graph.TypeUnknown
		}
		var comment schema.Comment
		if hasAttr(c.Attrs, &comment) {
			p.Description = comment.Text
		}
		vt.Properties = append(vt.Properties, p)
	}
	return vt
}

func hasAttr(attrs []schema.Attr, c *schema.Comment) bool {
	for _, a := range attrs {
		if x, ok := a.(*schema.Comment); ok {
			*c = *x
			return true
		}
	}
	return false
}
