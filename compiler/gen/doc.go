// Package gen compiles graph metadata into a GraphQL schema.
//
// The compiler walks a list of vertex types and produces, in input order:
//
//   - one object type per vertex type, with one nullable field per property;
//   - two root query fields per vertex type: a bulk lookup ("Persons") whose
//     optional arguments filter on property values, and a lookup by
//     identifier ("Person");
//   - a binding table from root field coordinates to resolvers obtained from
//     a ResolverFactory.
//
// # Type Mapping
//
// MapType translates graph-native property tags into GraphQL scalars:
//
//	BOOL                                          Boolean
//	INT8, INT16, INT32, INT64, TIMESTAMP          Int
//	VID                                           ID
//	FLOAT, DOUBLE                                 Float
//	STRING, FIXED_STRING, DATE, TIME, DATETIME,
//	DURATION, GEOGRAPHY                           String
//
// Any other tag fails compilation with a *vertexql.UnsupportedPropertyTypeError.
//
// # Usage
//
//	schema, err := gen.Compile(vertexTypes, factory,
//		gen.WithCollisionPolicy(gen.Reject),
//		gen.WithLogger(logger),
//	)
//	if err != nil {
//		if vertexql.IsUnsupportedPropertyType(err) {
//			// report the offending vertex and property
//		}
//		return err
//	}
//	fmt.Println(schema.SDL())
//
// # Errors
//
// Every failure is returned as a single structured error matching
// vertexql.ErrCompilation; no partial schema is ever returned. Option
// failures are *ConfigError values.
//
// A compiled Schema is immutable and safe for concurrent use. Compile holds
// no state between calls, so concurrent compilations share nothing.
package gen
