package sql

import (
	"strconv"
	"strings"

	"github.com/syssam/vertexql/dialect"
)

// Builder is the base query builder. It writes SQL with dialect-aware
// identifier quoting and placeholders, and collects the query arguments.
type Builder struct {
	sb      strings.Builder
	args    []any
	dialect string
}

// SetDialect sets the builder dialect. It's used for garnering dialect specific queries.
func (b *Builder) SetDialect(dialect string) {
	b.dialect = dialect
}

// Dialect returns the dialect of the builder.
func (b *Builder) Dialect() string {
	return b.dialect
}

// WriteString writes a raw string.
func (b *Builder) WriteString(s string) *Builder {
	b.sb.WriteString(s)
	return b
}

// WriteByte writes a raw byte.
func (b *Builder) WriteByte(c byte) *Builder {
	b.sb.WriteByte(c)
	return b
}

// Ident writes a quoted identifier. Dotted identifiers are quoted per part
// and "*" is written as is.
func (b *Builder) Ident(s string) *Builder {
	if s == "*" {
		return b.WriteString(s)
	}
	for i, part := range strings.Split(s, ".") {
		if i > 0 {
			b.WriteByte('.')
		}
		if part == "*" {
			b.WriteString(part)
			continue
		}
		b.WriteString(b.quote(part))
	}
	return b
}

// IdentComma writes a comma separated list of quoted identifiers.
func (b *Builder) IdentComma(s ...string) *Builder {
	for i, ident := range s {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Ident(ident)
	}
	return b
}

// Arg writes a placeholder for a and records it as an argument.
func (b *Builder) Arg(a any) *Builder {
	b.args = append(b.args, a)
	if b.postgres() {
		return b.WriteString("$" + strconv.Itoa(len(b.args)))
	}
	return b.WriteByte('?')
}

// Args writes a comma separated list of placeholders.
func (b *Builder) Args(a ...any) *Builder {
	for i := range a {
		if i > 0 {
			b.WriteString(", ")
		}
		b.Arg(a[i])
	}
	return b
}

// String returns the accumulated string.
func (b *Builder) String() string {
	return b.sb.String()
}

// Query returns the query representation of the builder.
func (b *Builder) Query() (string, []any) {
	return b.String(), b.args
}

func (b *Builder) quote(ident string) string {
	if b.dialect == dialect.MySQL {
		return "`" + strings.ReplaceAll(ident, "`", "``") + "`"
	}
	return `"` + strings.ReplaceAll(ident, `"`, `""`) + `"`
}

func (b *Builder) postgres() bool {
	return b.dialect == dialect.Postgres
}

// Predicate is a where predicate.
type Predicate struct {
	fns      []func(*Builder)
	compound bool
}

// P creates a new predicate.
//
//	P(func(b *Builder) {
//		b.Ident("name").WriteString(" = ").Arg("a8m")
//	})
func P(fns ...func(*Builder)) *Predicate {
	return &Predicate{fns: fns}
}

// Append appends a new function to the predicate callbacks.
func (p *Predicate) Append(f func(*Builder)) *Predicate {
	p.fns = append(p.fns, f)
	return p
}

// Query returns the query representation of the predicate, using the
// default dialect.
func (p *Predicate) Query() (string, []any) {
	var b Builder
	p.build(&b)
	return b.Query()
}

func (p *Predicate) build(b *Builder) {
	for _, f := range p.fns {
		f(b)
	}
}

// EQ returns a "=" predicate.
func EQ(col string, value any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" = ").Arg(value)
	})
}

// NEQ returns a "<>" predicate.
func NEQ(col string, value any) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" <> ").Arg(value)
	})
}

// IsNull returns the `IS NULL` predicate.
func IsNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IS NULL")
	})
}

// NotNull returns the `IS NOT NULL` predicate.
func NotNull(col string) *Predicate {
	return P(func(b *Builder) {
		b.Ident(col).WriteString(" IS NOT NULL")
	})
}

// In returns the `IN` predicate. An empty list matches nothing.
func In(col string, args ...any) *Predicate {
	return P(func(b *Builder) {
		if len(args) == 0 {
			b.WriteString("FALSE")
			return
		}
		b.Ident(col).WriteString(" IN (").Args(args...).WriteByte(')')
	})
}

// And combines all given predicates with AND between them.
func And(preds ...*Predicate) *Predicate {
	return join(" AND ", preds)
}

// Or combines all given predicates with OR between them.
func Or(preds ...*Predicate) *Predicate {
	return join(" OR ", preds)
}

func join(op string, preds []*Predicate) *Predicate {
	if len(preds) == 1 {
		return preds[0]
	}
	p := P(func(b *Builder) {
		for i, pred := range preds {
			if i > 0 {
				b.WriteString(op)
			}
			if pred.compound {
				b.WriteByte('(')
				pred.build(b)
				b.WriteByte(')')
				continue
			}
			pred.build(b)
		}
	})
	p.compound = true
	return p
}

// SelectTable is a table selector.
type SelectTable struct {
	name string
}

// Table returns a new table selector.
//
//	t1 := Table("users")
//	Select(t1.C("name"))
func Table(name string) *SelectTable {
	return &SelectTable{name: name}
}

// C returns a formatted string for the table column.
func (s *SelectTable) C(column string) string {
	return s.name + "." + column
}

// Name returns the table name.
func (s *SelectTable) Name() string {
	return s.name
}

// Selector is a builder for the `SELECT` statement.
type Selector struct {
	dialect string
	columns []string
	from    *SelectTable
	where   *Predicate
	order   []string
	limit   *int
}

// Select returns a new selector for the `SELECT` statement.
//
//	t1 := Table("users")
//	q, args := Select(t1.C("name")).From(t1).Where(EQ(t1.C("age"), 30)).Query()
func Select(columns ...string) *Selector {
	return &Selector{columns: columns}
}

// SetDialect sets the selector dialect.
func (s *Selector) SetDialect(dialect string) *Selector {
	s.dialect = dialect
	return s
}

// From sets the source of `FROM` clause.
func (s *Selector) From(t *SelectTable) *Selector {
	s.from = t
	return s
}

// Table returns the selected table.
func (s *Selector) Table() *SelectTable {
	return s.from
}

// C returns a formatted string for a selected column from this statement.
func (s *Selector) C(column string) string {
	if s.from != nil {
		return s.from.C(column)
	}
	return column
}

// Where sets or appends the given predicate to the statement.
func (s *Selector) Where(p *Predicate) *Selector {
	if s.where != nil {
		s.where = And(s.where, p)
	} else {
		s.where = p
	}
	return s
}

// OrderBy appends the `ORDER BY` clause to the `SELECT` statement.
func (s *Selector) OrderBy(columns ...string) *Selector {
	s.order = append(s.order, columns...)
	return s
}

// Limit adds the `LIMIT` clause to the `SELECT` statement.
func (s *Selector) Limit(limit int) *Selector {
	s.limit = &limit
	return s
}

// Query returns query representation of a `SELECT` statement.
func (s *Selector) Query() (string, []any) {
	b := &Builder{dialect: s.dialect}
	b.WriteString("SELECT ")
	if len(s.columns) == 0 {
		b.WriteByte('*')
	} else {
		b.IdentComma(s.columns...)
	}
	if s.from != nil {
		b.WriteString(" FROM ").Ident(s.from.name)
	}
	if s.where != nil {
		b.WriteString(" WHERE ")
		s.where.build(b)
	}
	if len(s.order) > 0 {
		b.WriteString(" ORDER BY ").IdentComma(s.order...)
	}
	if s.limit != nil {
		b.WriteString(" LIMIT " + strconv.Itoa(*s.limit))
	}
	return b.Query()
}

// InsertBuilder is a builder for `INSERT INTO` statement.
type InsertBuilder struct {
	dialect string
	table   string
	columns []string
	values  [][]any
}

// Insert creates a builder for the `INSERT INTO` statement.
//
//	Insert("users").
//		Columns("name", "age").
//		Values("a8m", 10).
//		Values("foo", 20)
func Insert(table string) *InsertBuilder {
	return &InsertBuilder{table: table}
}

// SetDialect sets the builder dialect.
func (i *InsertBuilder) SetDialect(dialect string) *InsertBuilder {
	i.dialect = dialect
	return i
}

// Columns sets the columns of the insert statement.
func (i *InsertBuilder) Columns(columns ...string) *InsertBuilder {
	i.columns = append(i.columns, columns...)
	return i
}

// Values append a value tuple for the insert statement.
func (i *InsertBuilder) Values(values ...any) *InsertBuilder {
	i.values = append(i.values, values)
	return i
}

// Query returns query representation of an `INSERT INTO` statement.
func (i *InsertBuilder) Query() (string, []any) {
	b := &Builder{dialect: i.dialect}
	b.WriteString("INSERT INTO ").Ident(i.table)
	if len(i.columns) == 0 {
		b.WriteString(" DEFAULT VALUES")
		return b.Query()
	}
	b.WriteString(" (").IdentComma(i.columns...).WriteString(") VALUES ")
	for j, v := range i.values {
		if j > 0 {
			b.WriteString(", ")
		}
		b.WriteByte('(').Args(v...).WriteByte(')')
	}
	return b.Query()
}

// DialectBuilder prefixes all root builders with the `Dialect` constructor.
type DialectBuilder struct {
	dialect string
}

// Dialect creates a new DialectBuilder with the given dialect name.
func Dialect(name string) *DialectBuilder {
	return &DialectBuilder{dialect: name}
}

// Select creates a Selector for the configured dialect.
//
//	Dialect(dialect.Postgres).
//		Select("name").
//		From(Table("users"))
func (d *DialectBuilder) Select(columns ...string) *Selector {
	return Select(columns...).SetDialect(d.dialect)
}

// Insert creates an InsertBuilder for the configured dialect.
//
//	Dialect(dialect.Postgres).
//		Insert("users").Columns("age").Values(1)
func (d *DialectBuilder) Insert(table string) *InsertBuilder {
	return Insert(table).SetDialect(d.dialect)
}
