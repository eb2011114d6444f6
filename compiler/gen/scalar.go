package gen

import (
	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/graph"
)

// Scalar is a built-in GraphQL scalar type name.
type Scalar string

// Built-in GraphQL scalars.
const (
	Int     Scalar = "Int"
	Float   Scalar = "Float"
	String  Scalar = "String"
	Boolean Scalar = "Boolean"
	ID      Scalar = "ID"
)

// String returns the scalar name.
func (s Scalar) String() string { return string(s) }

// scalars maps every supported property tag to its scalar.
var scalars = map[graph.PropertyType]Scalar{
	graph.TypeBool:        Boolean,
	graph.TypeInt8:        Int,
	graph.TypeInt16:       Int,
	graph.TypeInt32:       Int,
	graph.TypeInt64:       Int,
	graph.TypeTimestamp:   Int,
	graph.TypeVID:         ID,
	graph.TypeFloat:       Float,
	graph.TypeDouble:      Float,
	graph.TypeString:      String,
	graph.TypeFixedString: String,
	graph.TypeDate:        String,
	graph.TypeTime:        String,
	graph.TypeDateTime:    String,
	graph.TypeDuration:    String,
	graph.TypeGeography:   String,
}

// MapType returns the GraphQL scalar for a graph-native property tag.
// Tags outside the supported set yield an error matching
// vertexql.ErrUnsupportedPropertyType.
//
// INT64 and TIMESTAMP map to Int although their values may exceed the
// 32-bit range of Int. The executor writes such values as 64-bit integers
// instead of rejecting them.
func MapType(t graph.PropertyType) (Scalar, error) {
	if s, ok := scalars[t]; ok {
		return s, nil
	}
	return "", vertexql.NewUnsupportedPropertyTypeError("", "", string(t))
}

// PropertyTypes returns the property tags MapType accepts.
func PropertyTypes() []graph.PropertyType {
	return graph.PropertyTypes()
}
