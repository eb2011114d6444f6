package sqlgraph

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/syssam/vertexql"
	"github.com/syssam/vertexql/compiler/gen"
	"github.com/syssam/vertexql/contrib/dataloader"
	"github.com/syssam/vertexql/dialect"
	"github.com/syssam/vertexql/dialect/sql"
	"github.com/syssam/vertexql/dialect/sql/schema"
	"github.com/syssam/vertexql/graph"
)

// Store is the graph store on a SQL database. Each vertex type lives in its
// own table with a "vid" primary key and one nullable column per property.
type Store struct {
	drv   dialect.Driver
	log   *zap.Logger
	newID func() string
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithStoreLogger sets the store logger.
func WithStoreLogger(l *zap.Logger) StoreOption {
	return func(s *Store) {
		if l != nil {
			s.log = l
		}
	}
}

// WithIDGenerator sets the function that generates ids for vertices
// inserted without one. The default generates random UUIDs.
func WithIDGenerator(fn func() string) StoreOption {
	return func(s *Store) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// NewStore returns a store that executes statements on drv.
func NewStore(drv dialect.Driver, opts ...StoreOption) *Store {
	s := &Store{
		drv:   drv,
		log:   zap.NewNop(),
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Driver returns the underlying driver.
func (s *Store) Driver() dialect.Driver {
	return s.drv
}

// Vertex is a vertex to insert.
type Vertex struct {
	// ID is the vertex id. Empty means generate one.
	ID         string
	Properties map[string]any
}

// row is a decoded vertex with its id.
type row struct {
	vid string
	rec gen.Record
}

// Query describes a bulk lookup.
type Query struct {
	// Filter holds equality constraints keyed by property name. Nil values
	// are no constraint.
	Filter map[string]any
	// Limit caps the number of returned vertices. Zero means no limit.
	Limit int
}

// Find returns the vertices of vt that match all non-nil filter values,
// ordered by vertex id.
func (s *Store) Find(ctx context.Context, vt graph.VertexType, q Query) ([]gen.Record, error) {
	props := properties(vt)
	sel, t := s.selector(vt, props)
	keys := make([]string, 0, len(q.Filter))
	for k := range q.Filter {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, name := range keys {
		v := q.Filter[name]
		if v == nil {
			continue
		}
		p, ok := vt.Property(name)
		if !ok {
			return nil, vertexql.NewExecutionError(vt.Name, "find", fmt.Errorf("unknown property %q", name))
		}
		cv, err := coerce(p, v)
		if err != nil {
			return nil, vertexql.NewExecutionError(vt.Name, "find", err)
		}
		sql.FieldEQ(name, cv)(sel)
	}
	sel.OrderBy(t.C(schema.VIDColumn))
	if q.Limit > 0 {
		sel.Limit(q.Limit)
	}
	rows, err := s.query(ctx, vt, props, sel)
	if err != nil {
		return nil, vertexql.NewExecutionError(vt.Name, "find", err)
	}
	recs := make([]gen.Record, len(rows))
	for i, r := range rows {
		recs[i] = r.rec
	}
	return recs, nil
}

// Lookup returns one record per id, aligned with ids. Missing vertices are nil.
func (s *Store) Lookup(ctx context.Context, vt graph.VertexType, ids ...string) ([]gen.Record, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	props := properties(vt)
	sel, _ := s.selector(vt, props)
	sql.FieldIn(schema.VIDColumn, dataloader.UniqueKeys(ids)...)(sel)
	rows, err := s.query(ctx, vt, props, sel)
	if err != nil {
		return nil, vertexql.NewExecutionError(vt.Name, "lookup", err)
	}
	ordered := dataloader.OrderByKeysNoError(ids, rows, func(r *row) string { return r.vid })
	recs := make([]gen.Record, len(ordered))
	for i, r := range ordered {
		if r != nil {
			recs[i] = r.rec
		}
	}
	return recs, nil
}

// Get returns the vertex with the given id, or an error matching
// vertexql.ErrNotFound.
func (s *Store) Get(ctx context.Context, vt graph.VertexType, id string) (gen.Record, error) {
	recs, err := s.Lookup(ctx, vt, id)
	if err != nil {
		return nil, err
	}
	if recs[0] == nil {
		return nil, vertexql.NewNotFoundError(vt.Name, id)
	}
	return recs[0], nil
}

// Insert inserts vertices of vt in one statement and returns their ids.
// Properties are coerced to their property types; unknown properties fail.
// Duplicate ids fail with a *ConstraintError.
func (s *Store) Insert(ctx context.Context, vt graph.VertexType, vs ...Vertex) ([]string, error) {
	if len(vs) == 0 {
		return nil, nil
	}
	props := properties(vt)
	columns := make([]string, 0, len(props)+1)
	columns = append(columns, schema.VIDColumn)
	for _, p := range props {
		columns = append(columns, p.Name)
	}
	ins := sql.Dialect(s.drv.Dialect()).Insert(vt.Name).Columns(columns...)
	ids := make([]string, len(vs))
	for i, v := range vs {
		for name := range v.Properties {
			if _, ok := vt.Property(name); !ok {
				return nil, vertexql.NewExecutionError(vt.Name, "insert", fmt.Errorf("unknown property %q", name))
			}
		}
		id := v.ID
		if id == "" {
			id = s.newID()
		}
		ids[i] = id
		values := make([]any, 0, len(columns))
		values = append(values, id)
		for _, p := range props {
			cv, err := coerce(p, v.Properties[p.Name])
			if err != nil {
				return nil, vertexql.NewExecutionError(vt.Name, "insert", err)
			}
			values = append(values, cv)
		}
		ins.Values(values...)
	}
	query, args := ins.Query()
	if err := s.drv.Exec(ctx, query, args, nil); err != nil {
		return nil, vertexql.NewExecutionError(vt.Name, "insert", mayWrapConstraint(err))
	}
	s.log.Debug("vertices inserted", zap.String("vertex", vt.Name), zap.Int("count", len(ids)))
	return ids, nil
}

func (s *Store) selector(vt graph.VertexType, props []graph.Property) (*sql.Selector, *sql.SelectTable) {
	t := sql.Table(vt.Name)
	columns := make([]string, 0, len(props)+1)
	columns = append(columns, t.C(schema.VIDColumn))
	for _, p := range props {
		columns = append(columns, t.C(p.Name))
	}
	return sql.Dialect(s.drv.Dialect()).Select(columns...).From(t), t
}

func (s *Store) query(ctx context.Context, vt graph.VertexType, props []graph.Property, sel *sql.Selector) ([]*row, error) {
	query, args := sel.Query()
	s.log.Debug("vertex query", zap.String("vertex", vt.Name), zap.String("query", query))
	rows := &sql.Rows{}
	if err := s.drv.Query(ctx, query, args, rows); err != nil {
		return nil, err
	}
	defer rows.Close()
	var out []*row
	for rows.Next() {
		var vid any
		dest := make([]any, len(props)+1)
		dest[0] = &vid
		values := make([]any, len(props))
		for i := range values {
			dest[i+1] = &values[i]
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan %s: %w", vt.Name, err)
		}
		r := &row{vid: asString(vid), rec: make(gen.Record, len(props))}
		for i, p := range props {
			v, err := decode(p, values[i])
			if err != nil {
				return nil, err
			}
			r.rec[p.Name] = v
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// properties returns the properties of vt with later duplicates replacing
// earlier ones in place, matching the table layout.
func properties(vt graph.VertexType) []graph.Property {
	var (
		out []graph.Property
		at  = make(map[string]int, len(vt.Properties))
	)
	for _, p := range vt.Properties {
		if i, ok := at[p.Name]; ok {
			out[i] = p
			continue
		}
		at[p.Name] = len(out)
		out = append(out, p)
	}
	return out
}

// coerce converts a filter or insert value to the value stored for p.
func coerce(p graph.Property, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	mismatch := func() error {
		return fmt.Errorf("property %q of type %s cannot hold %T", p.Name, p.Type, v)
	}
	switch {
	case p.Type == graph.TypeBool:
		b, ok := v.(bool)
		if !ok {
			return nil, mismatch()
		}
		return b, nil
	case p.Type.Integer():
		n, ok := toInt64(v)
		if !ok {
			return nil, mismatch()
		}
		return n, nil
	case p.Type == graph.TypeFloat || p.Type == graph.TypeDouble:
		f, ok := toFloat64(v)
		if !ok {
			return nil, mismatch()
		}
		return f, nil
	default:
		switch v := v.(type) {
		case string:
			return v, nil
		case time.Time:
			return formatTime(p.Type, v), nil
		case fmt.Stringer:
			return v.String(), nil
		}
		// ID literals may be integers.
		if n, ok := toInt64(v); ok {
			return strconv.FormatInt(n, 10), nil
		}
		return nil, mismatch()
	}
}

// decode converts a scanned column value to the value returned for p.
func decode(p graph.Property, v any) (any, error) {
	if v == nil {
		return nil, nil
	}
	if b, ok := v.([]byte); ok {
		v = string(b)
	}
	switch {
	case p.Type == graph.TypeBool:
		switch v := v.(type) {
		case bool:
			return v, nil
		case int64:
			return v != 0, nil
		case string:
			return strconv.ParseBool(v)
		}
	case p.Type.Integer():
		if n, ok := toInt64(v); ok {
			return n, nil
		}
		if s, ok := v.(string); ok {
			return strconv.ParseInt(s, 10, 64)
		}
	case p.Type == graph.TypeFloat || p.Type == graph.TypeDouble:
		if f, ok := toFloat64(v); ok {
			return f, nil
		}
		if s, ok := v.(string); ok {
			return strconv.ParseFloat(s, 64)
		}
	default:
		if t, ok := v.(time.Time); ok {
			return formatTime(p.Type, t), nil
		}
		return fmt.Sprint(v), nil
	}
	return nil, fmt.Errorf("sqlgraph: cannot decode %T into property %q of type %s", v, p.Name, p.Type)
}

func toInt64(v any) (int64, bool) {
	switch v := v.(type) {
	case int:
		return int64(v), true
	case int8:
		return int64(v), true
	case int16:
		return int64(v), true
	case int32:
		return int64(v), true
	case int64:
		return v, true
	case uint8:
		return int64(v), true
	case uint16:
		return int64(v), true
	case uint32:
		return int64(v), true
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) || v > math.MaxInt64 || v < math.MinInt64 {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func toFloat64(v any) (float64, bool) {
	switch v := v.(type) {
	case float64:
		return v, true
	case float32:
		return float64(v), true
	case json.Number:
		f, err := v.Float64()
		return f, err == nil
	}
	if n, ok := toInt64(v); ok {
		return float64(n), true
	}
	return 0, false
}

func formatTime(t graph.PropertyType, v time.Time) string {
	switch t {
	case graph.TypeDate:
		return v.Format(time.DateOnly)
	case graph.TypeTime:
		return v.Format(time.TimeOnly)
	default:
		return v.Format(time.DateTime)
	}
}

func asString(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	default:
		return fmt.Sprint(v)
	}
}
