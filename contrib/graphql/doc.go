// Package graphql serves compiled vertexql schemas over HTTP with gqlgen.
//
// A Holder keeps the active *gen.Schema and serves GraphQL requests against
// it. Query operations are executed by an executable schema that runs the
// resolver bound to each root field and projects the returned records onto
// the selection set. Introspection is not served; clients fetch the SDL
// from /schema.graphql instead.
//
// A Reloader recompiles a space from its loader and swaps the result into
// the holder. A failed reload keeps the previous schema. Watch triggers a
// reload whenever a metadata file changes:
//
//	h := graphql.NewHolder()
//	r := graphql.NewReloader(h, load.NewFile("metadata.yaml"), "basketball", factory)
//	if _, err := r.Reload(ctx); err != nil {
//		return err
//	}
//	go r.Watch(ctx, "metadata.yaml")
//	http.ListenAndServe(":8080", graphql.NewRouter(h))
//
// # Code generation
//
// GenerateModels renders Go structs for the vertex object types of a
// schema, and GQLGenConfig.BindVertexModels binds them in a gqlgen.yml for
// services that build a typed server from the SDL.
package graphql
