// Package dialect defines the driver abstraction of the graph store.
//
// # Supported Dialects
//
//   - Postgres: PostgreSQL database (github.com/lib/pq)
//   - MySQL: MySQL/MariaDB database (github.com/go-sql-driver/mysql)
//   - SQLite: SQLite database (modernc.org/sqlite)
//
// # Driver Interface
//
//	type Driver interface {
//	    Exec(ctx context.Context, query string, args, v any) error
//	    Query(ctx context.Context, query string, args, v any) error
//	    Tx(ctx context.Context) (Tx, error)
//	    Close() error
//	    Dialect() string
//	}
//
// # Usage
//
//	drv, err := sql.Open(dialect.SQLite, "file:graph.db?_pragma=foreign_keys(1)")
//	if err != nil {
//	    return err
//	}
//	defer drv.Close()
//
//	store := sqlgraph.NewStore(drv)
//
// # Sub-packages
//
//   - dialect/sql: driver implementation and SQL builders
//   - dialect/sql/schema: vertex tables, provisioning and drift checks
//   - dialect/sql/sqlgraph: the graph store and its resolver factory
package dialect
