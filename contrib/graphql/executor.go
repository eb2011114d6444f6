package graphql

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"time"

	"github.com/99designs/gqlgen/graphql"
	"github.com/vektah/gqlparser/v2/ast"
	"github.com/vektah/gqlparser/v2/gqlerror"
	"go.uber.org/zap"

	"github.com/syssam/vertexql/compiler/gen"
)

// GraphQL field names handled by the executor itself.
const (
	fieldTypeName = "__typename"
	fieldSchema   = "__schema"
	fieldType     = "__type"
)

// Metrics receives serving and reload measurements. Implementations must be
// safe for concurrent use.
type Metrics interface {
	// ObserveResolver records one root field resolution.
	ObserveResolver(field string, took time.Duration, err error)
	// ObserveReload records one reload attempt of a space.
	ObserveReload(space string, took time.Duration, err error)
	// SetVertexTypes records the number of vertex types being served.
	SetVertexTypes(space string, n int)
}

type nopMetrics struct{}

func (nopMetrics) ObserveResolver(string, time.Duration, error) {}
func (nopMetrics) ObserveReload(string, time.Duration, error)   {}
func (nopMetrics) SetVertexTypes(string, int)                    {}

// ExecOption configures an executable schema.
type ExecOption func(*executableSchema)

// WithExecLogger sets the logger of resolver failures.
func WithExecLogger(l *zap.Logger) ExecOption {
	return func(e *executableSchema) {
		if l != nil {
			e.log = l
		}
	}
}

// WithMetrics sets the metrics sink.
func WithMetrics(m Metrics) ExecOption {
	return func(e *executableSchema) {
		if m != nil {
			e.metrics = m
		}
	}
}

// executableSchema serves query operations against a compiled schema.
// Root fields run the resolvers of the binding table; the returned records
// are projected onto the selection set.
type executableSchema struct {
	schema  *gen.Schema
	log     *zap.Logger
	metrics Metrics
}

// NewExecutableSchema returns a gqlgen executable schema for s.
func NewExecutableSchema(s *gen.Schema, opts ...ExecOption) graphql.ExecutableSchema {
	e := &executableSchema{schema: s, log: zap.NewNop(), metrics: nopMetrics{}}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

func (e *executableSchema) Schema() *ast.Schema {
	return e.schema.AST()
}

func (e *executableSchema) Complexity(_ context.Context, _, _ string, _ int, _ map[string]any) (int, bool) {
	return 0, false
}

func (e *executableSchema) Exec(ctx context.Context) graphql.ResponseHandler {
	opCtx := graphql.GetOperationContext(ctx)
	first := true
	return func(ctx context.Context) *graphql.Response {
		if !first {
			return nil
		}
		first = false
		if op := opCtx.Operation.Operation; op != ast.Query {
			return graphql.ErrorResponse(ctx, "unsupported operation type %s", op)
		}
		var (
			ex  = &execution{schema: e, opCtx: opCtx}
			buf bytes.Buffer
		)
		ex.query(ctx).MarshalGQL(&buf)
		return &graphql.Response{Data: buf.Bytes(), Errors: ex.errs}
	}
}

// execution holds the state of one operation.
type execution struct {
	schema *executableSchema
	opCtx  *graphql.OperationContext
	errs   gqlerror.List
}

func (ex *execution) errorf(path ast.Path, format string, args ...any) {
	ex.errs = append(ex.errs, &gqlerror.Error{
		Message: fmt.Sprintf(format, args...),
		Path:    append(ast.Path(nil), path...),
	})
}

// query resolves the root fields. A failed non-null root field nulls the
// whole data object.
func (ex *execution) query(ctx context.Context) graphql.Marshaler {
	root := ex.schema.schema.QueryType()
	fields := graphql.CollectFields(ex.opCtx, ex.opCtx.Operation.SelectionSet, []string{root.Name})
	out := graphql.NewFieldSet(fields)
	invalid := false
	for i, f := range fields {
		path := ast.Path{ast.PathName(f.Alias)}
		switch f.Name {
		case fieldTypeName:
			out.Values[i] = graphql.MarshalString(root.Name)
			continue
		case fieldSchema, fieldType:
			ex.errorf(path, "introspection is not supported, fetch the schema SDL instead")
			out.Values[i] = graphql.Null
			continue
		}
		def := root.Fields.ForName(f.Name)
		if def == nil {
			ex.errorf(path, "unknown field %s.%s", root.Name, f.Name)
			out.Values[i] = graphql.Null
			continue
		}
		v, ok := ex.resolve(ctx, root.Name, f, def, path)
		if !ok && def.Type.NonNull {
			invalid = true
		}
		out.Values[i] = v
	}
	out.Dispatch(ctx)
	if invalid {
		return graphql.Null
	}
	return out
}

// resolve runs the resolver bound to a root field and projects its result.
func (ex *execution) resolve(ctx context.Context, typeName string, f graphql.CollectedField, def *ast.FieldDefinition, path ast.Path) (graphql.Marshaler, bool) {
	coord := gen.Coordinate{Type: typeName, Field: f.Name}
	r, ok := ex.schema.schema.Resolver(typeName, f.Name)
	if !ok {
		ex.errorf(path, "field %s is not bound to a resolver", coord)
		return graphql.Null, false
	}
	args := f.ArgumentMap(ex.opCtx.Variables)
	start := time.Now()
	v, err := r.Resolve(ctx, args)
	ex.schema.metrics.ObserveResolver(coord.String(), time.Since(start), err)
	if err != nil {
		ex.schema.log.Warn("resolver failed", zap.Stringer("field", coord), zap.Error(err))
		ex.errorf(path, "%s", err.Error())
		return graphql.Null, false
	}
	return ex.value(def.Type, f.Selections, v, path)
}

// value marshals v as a value of type t. The boolean result is false when
// a non-null value could not be produced.
func (ex *execution) value(t *ast.Type, sel ast.SelectionSet, v any, path ast.Path) (graphql.Marshaler, bool) {
	if isNil(v) {
		if t.NonNull {
			ex.errorf(path, "non-null field resolved to null")
			return graphql.Null, false
		}
		return graphql.Null, true
	}
	if t.Elem != nil {
		items, err := listOf(v)
		if err != nil {
			ex.errorf(path, "%s", err.Error())
			return graphql.Null, !t.NonNull
		}
		arr := make(graphql.Array, len(items))
		for i, item := range items {
			m, ok := ex.value(t.Elem, sel, item, append(path, ast.PathIndex(i)))
			if !ok {
				return graphql.Null, !t.NonNull
			}
			arr[i] = m
		}
		return arr, true
	}
	def := ex.schema.schema.Type(t.NamedType)
	if def == nil {
		ex.errorf(path, "unknown type %s", t.NamedType)
		return graphql.Null, !t.NonNull
	}
	switch def.Kind {
	case ast.Object:
		rec, err := recordOf(v)
		if err != nil {
			ex.errorf(path, "%s", err.Error())
			return graphql.Null, !t.NonNull
		}
		m, ok := ex.object(def, sel, rec, path)
		if !ok {
			return graphql.Null, !t.NonNull
		}
		return m, true
	case ast.Scalar:
		m, err := scalar(def.Name, v)
		if err != nil {
			ex.errorf(path, "%s", err.Error())
			return graphql.Null, !t.NonNull
		}
		return m, true
	default:
		ex.errorf(path, "type %s of kind %s is not supported", def.Name, def.Kind)
		return graphql.Null, !t.NonNull
	}
}

// object projects a record onto the selection set of an object type.
func (ex *execution) object(def *ast.Definition, sel ast.SelectionSet, rec gen.Record, path ast.Path) (graphql.Marshaler, bool) {
	fields := graphql.CollectFields(ex.opCtx, sel, []string{def.Name})
	out := graphql.NewFieldSet(fields)
	for i, f := range fields {
		if f.Name == fieldTypeName {
			out.Values[i] = graphql.MarshalString(def.Name)
			continue
		}
		fd := def.Fields.ForName(f.Name)
		if fd == nil {
			ex.errorf(append(path, ast.PathName(f.Alias)), "unknown field %s.%s", def.Name, f.Name)
			out.Values[i] = graphql.Null
			continue
		}
		m, ok := ex.value(fd.Type, f.Selections, rec[f.Name], append(path, ast.PathName(f.Alias)))
		if !ok {
			return graphql.Null, false
		}
		out.Values[i] = m
	}
	return out, true
}

// scalar marshals v as a built-in scalar.
func scalar(name string, v any) (graphql.Marshaler, error) {
	switch name {
	case "Int":
		n, ok := toInt64(v)
		if !ok {
			return nil, fmt.Errorf("cannot represent %T as Int", v)
		}
		// INT64 values are written in full, beyond the 32-bit range of Int.
		return graphql.MarshalInt64(n), nil
	case "Float":
		switch v := v.(type) {
		case float64:
			return graphql.MarshalFloat(v), nil
		case float32:
			return graphql.MarshalFloat(float64(v)), nil
		}
		if n, ok := toInt64(v); ok {
			return graphql.MarshalFloat(float64(n)), nil
		}
		return nil, fmt.Errorf("cannot represent %T as Float", v)
	case "Boolean":
		b, ok := v.(bool)
		if !ok {
			return nil, fmt.Errorf("cannot represent %T as Boolean", v)
		}
		return graphql.MarshalBoolean(b), nil
	case "ID":
		return graphql.MarshalID(stringOf(v)), nil
	case "String":
		return graphql.MarshalString(stringOf(v)), nil
	default:
		return nil, fmt.Errorf("unsupported scalar %s", name)
	}
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
	case json.Number:
		n, err := v.Int64()
		return n, err == nil
	case float64:
		if v != math.Trunc(v) {
			return 0, false
		}
		return int64(v), true
	}
	return 0, false
}

func stringOf(v any) string {
	switch v := v.(type) {
	case string:
		return v
	case []byte:
		return string(v)
	case fmt.Stringer:
		return v.String()
	case int64:
		return strconv.FormatInt(v, 10)
	default:
		return fmt.Sprint(v)
	}
}

func listOf(v any) ([]any, error) {
	switch v := v.(type) {
	case []gen.Record:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case []map[string]any:
		out := make([]any, len(v))
		for i := range v {
			out[i] = v[i]
		}
		return out, nil
	case []any:
		return v, nil
	}
	return nil, fmt.Errorf("resolver returned %T, expected a list", v)
}

func recordOf(v any) (gen.Record, error) {
	switch v := v.(type) {
	case gen.Record:
		return v, nil
	case map[string]any:
		return v, nil
	}
	return nil, fmt.Errorf("resolver returned %T, expected a record", v)
}

func isNil(v any) bool {
	switch v := v.(type) {
	case nil:
		return true
	case gen.Record:
		return v == nil
	case map[string]any:
		return v == nil
	}
	return false
}
