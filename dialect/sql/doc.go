// Package sql is the SQL driver and statement builder of the graph store.
//
// The builders cover exactly what the store needs: selecting vertices of
// one tag with equality and NULL filters, and inserting vertices.
//
//   - Builder: low-level writer with dialect-aware quoting and placeholders
//   - Selector: SELECT with WHERE, ORDER BY and LIMIT
//   - InsertBuilder: multi-row INSERT
//
// # Dialect Support
//
//	t := sql.Table("Person")
//	q, args := sql.Dialect(dialect.Postgres).
//	    Select(t.C("vid"), t.C("name")).
//	    From(t).
//	    Where(sql.EQ(t.C("age"), 30)).
//	    Query()
//	// SELECT "Person"."vid", "Person"."name" FROM "Person" WHERE "Person"."age" = $1
//
// MySQL quotes identifiers with backticks, SQLite and MySQL use "?" placeholders.
//
// # Predicates
//
//	sql.EQ("name", "john")         // "name" = ?
//	sql.NEQ("status", "deleted")   // "status" <> ?
//	sql.IsNull("bio")              // "bio" IS NULL
//	sql.In("vid", "a", "b")        // "vid" IN (?, ?)
//
// Field predicates (FieldEQ, FieldIsNull, ...) are func(*Selector) options
// bound to the selected table.
//
// # Session Variables
//
// WithVar attaches variables to a context. They are SET on the connection
// before each statement and reset before the connection returns to the pool:
//
//	ctx = sql.WithVar(ctx, "app.space", "social")
//
// # Statistics
//
// StatsDriver counts queries, execs, errors and slow statements, and
// DebugDriver logs every statement through zap.
package sql
