package vertexql_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/syssam/vertexql"
)

func TestMetadataError(t *testing.T) {
	t.Run("Error", func(t *testing.T) {
		err := vertexql.NewMetadataError("social", "read", errors.New("connection refused"))
		assert.Equal(t, `vertexql: metadata unavailable for space "social" (read): connection refused`, err.Error())
	})

	t.Run("Is", func(t *testing.T) {
		err := vertexql.NewMetadataError("social", "", nil)
		assert.True(t, errors.Is(err, vertexql.ErrMetadataUnavailable))
		assert.False(t, errors.Is(err, vertexql.ErrCompilation))
	})

	t.Run("IsMetadataUnavailable", func(t *testing.T) {
		err := vertexql.NewMetadataError("social", "lookup", nil)
		assert.True(t, vertexql.IsMetadataUnavailable(fmt.Errorf("wrapper: %w", err)))
		assert.True(t, vertexql.IsMetadataUnavailable(vertexql.ErrMetadataUnavailable))
		assert.False(t, vertexql.IsMetadataUnavailable(errors.New("other error")))
		assert.False(t, vertexql.IsMetadataUnavailable(nil))
	})

	t.Run("Unwrap", func(t *testing.T) {
		cause := errors.New("no such file")
		err := vertexql.NewMetadataError("social", "read", cause)
		assert.ErrorIs(t, err, cause)
	})
}

func TestUnsupportedPropertyTypeError(t *testing.T) {
	err := vertexql.NewUnsupportedPropertyTypeError("Person", "x", "UNKNOWN_TAG")
	assert.Equal(t, `vertexql: unsupported property type "UNKNOWN_TAG" for Person.x`, err.Error())
	assert.True(t, errors.Is(err, vertexql.ErrUnsupportedPropertyType))
	assert.True(t, errors.Is(err, vertexql.ErrCompilation), "unsupported types are compilation failures")
	assert.True(t, vertexql.IsUnsupportedPropertyType(fmt.Errorf("compile: %w", err)))
	assert.True(t, vertexql.IsCompilationError(err))
	assert.False(t, vertexql.IsUnsupportedPropertyType(nil))
}

func TestCompilationError(t *testing.T) {
	tests := []struct {
		name string
		err  *vertexql.CompilationError
		want string
	}{
		{
			name: "message only",
			err:  vertexql.NewCompilationError("", "", "no vertex types", nil),
			want: "vertexql: compilation failed: no vertex types",
		},
		{
			name: "vertex and cause",
			err:  vertexql.NewCompilationError("Person", "", "resolver factory", errors.New("closed")),
			want: "vertexql: compilation failed on vertex Person: resolver factory: closed",
		},
		{
			name: "vertex and property",
			err:  vertexql.NewCompilationError("Person", "age", "duplicate property", vertexql.ErrNameCollision),
			want: "vertexql: compilation failed on vertex Person property age: duplicate property: vertexql: name collision",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
			assert.True(t, errors.Is(tt.err, vertexql.ErrCompilation))
			assert.True(t, vertexql.IsCompilationError(tt.err))
		})
	}
	assert.ErrorIs(t, vertexql.NewCompilationError("A", "", "", vertexql.ErrNameCollision), vertexql.ErrNameCollision)
	assert.False(t, vertexql.IsCompilationError(errors.New("other")))
}

func TestExecutionError(t *testing.T) {
	cause := errors.New("database is locked")
	err := vertexql.NewExecutionError("Person", "find", cause)
	assert.Equal(t, "vertexql: querying Person (find): database is locked", err.Error())
	assert.ErrorIs(t, err, cause)
	assert.True(t, vertexql.IsExecutionError(fmt.Errorf("wrap: %w", err)))

	noOp := vertexql.NewExecutionError("Person", "", cause)
	assert.Equal(t, "vertexql: querying Person: database is locked", noOp.Error())
	assert.False(t, vertexql.IsExecutionError(nil))
}

func TestNotFoundError(t *testing.T) {
	err := vertexql.NewNotFoundError("Person", "v1")
	assert.Equal(t, "vertexql: Person not found (id=v1)", err.Error())
	assert.Equal(t, "Person", err.Label())
	assert.Equal(t, "v1", err.ID())
	assert.True(t, errors.Is(err, vertexql.ErrNotFound))
	assert.True(t, vertexql.IsNotFound(fmt.Errorf("wrap: %w", err)))
	assert.Equal(t, "vertexql: Person not found", vertexql.NewNotFoundError("Person", nil).Error())
	assert.False(t, vertexql.IsNotFound(nil))
}

func TestCacheKey(t *testing.T) {
	k := vertexql.CacheKey{Source: "file", Space: "social"}
	assert.Equal(t, "metadata:file:social", k.String())
}
