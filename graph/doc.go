// Package graph provides the metadata representation of a property graph
// space consumed by the vertexql schema compiler.
//
// This package holds the input side of compilation: the vertex types of a
// graph space and their typed properties, exactly as a metadata provider
// reports them. It performs no I/O.
//
// # Vertex Types
//
// Each VertexType names a category of graph entities and lists its
// properties in declaration order:
//
//	type VertexType struct {
//	    Name       string      // Vertex type (tag) name, e.g. "Person"
//	    Properties []Property  // Ordered properties
//	}
//
// # Properties
//
// A Property carries a graph-native type tag:
//
//	type Property struct {
//	    Name        string        // Property name, e.g. "age"
//	    Type        PropertyType  // Raw tag, e.g. INT64
//	    Description string        // Optional comment
//	}
//
// # Property Types
//
// PropertyType is a closed enumeration of graph-native tags (BOOL, INT8,
// INT16, INT32, INT64, VID, FLOAT, DOUBLE, STRING, FIXED_STRING, TIMESTAMP,
// DATE, TIME, DATETIME, DURATION, GEOGRAPHY). Decoding normalises tags to
// upper case and keeps unknown tags verbatim, so an unsupported tag reaches
// the compiler and is reported with the vertex and property that carry it:
//
//	var t graph.PropertyType
//	_ = t.UnmarshalText([]byte("int64"))  // graph.TypeInt64
//	_ = t.UnmarshalText([]byte("blob"))   // graph.PropertyType("BLOB"), Known() == false
//
// # Validation
//
// Validate checks the structural requirements of a record (non-empty names)
// using go-playground/validator:
//
//	if err := vt.Validate(); err != nil {
//	    log.Fatal(err)
//	}
package graph
