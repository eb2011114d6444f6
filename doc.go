// Package vertexql compiles the vertex types of a property-graph space into
// a GraphQL query schema and serves it.
//
// The root package holds the error vocabulary shared by the metadata
// loaders, the schema compiler and the query executor, plus the Cache
// interface the loaders use to keep metadata snapshots. The pipeline lives
// in subpackages:
//
//	compiler/load     metadata providers (YAML file, SQL catalog, cache)
//	compiler/gen      scalar mapping and schema assembly
//	compiler          Compile, the entry point of the pipeline
//	contrib/graphql   executable schema, hot reload, HTTP router, codegen
//	dialect/sql       drivers, vertex tables and provisioning
//
// Errors can be classified with the Is* helpers:
//
//	if vertexql.IsMetadataUnavailable(err) {
//		// keep serving the previous schema
//	}
package vertexql
