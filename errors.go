package vertexql

import (
	"errors"
	"fmt"
	"strings"
)

// Standard sentinel errors for common operations.
var (
	// ErrMetadataUnavailable is returned when the metadata source cannot be
	// reached or the requested space does not exist.
	ErrMetadataUnavailable = errors.New("vertexql: metadata unavailable")

	// ErrUnsupportedPropertyType is returned when a property carries a
	// graph-native type tag that has no scalar mapping.
	ErrUnsupportedPropertyType = errors.New("vertexql: unsupported property type")

	// ErrCompilation is the umbrella error of every failed compile attempt.
	ErrCompilation = errors.New("vertexql: compilation failed")

	// ErrNameCollision is returned when two definitions share a name and the
	// collision policy rejects it.
	ErrNameCollision = errors.New("vertexql: name collision")

	// ErrNotFound is returned when a requested vertex does not exist.
	ErrNotFound = errors.New("vertexql: vertex not found")
)

// MetadataError wraps a failure of a metadata provider.
type MetadataError struct {
	Space string // Graph space being loaded
	Op    string // Operation (e.g., "read", "inspect", "lookup")
	Err   error  // Underlying error
}

// Error returns the error string.
func (e *MetadataError) Error() string {
	var b strings.Builder
	b.WriteString("vertexql: metadata unavailable")
	if e.Space != "" {
		fmt.Fprintf(&b, " for space %q", e.Space)
	}
	if e.Op != "" {
		b.WriteString(" (")
		b.WriteString(e.Op)
		b.WriteString(")")
	}
	if e.Err != nil {
		b.WriteString(": ")
		b.WriteString(e.Err.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *MetadataError) Unwrap() error {
	return e.Err
}

// Is reports whether the target matches ErrMetadataUnavailable.
func (e *MetadataError) Is(target error) bool {
	return target == ErrMetadataUnavailable
}

// NewMetadataError returns a new MetadataError.
func NewMetadataError(space, op string, err error) *MetadataError {
	return &MetadataError{Space: space, Op: op, Err: err}
}

// IsMetadataUnavailable returns true if the error reports an unavailable
// metadata source or an unknown space.
func IsMetadataUnavailable(err error) bool {
	if err == nil {
		return false
	}
	var e *MetadataError
	return errors.As(err, &e) || errors.Is(err, ErrMetadataUnavailable)
}

// UnsupportedPropertyTypeError identifies the property whose raw type tag
// could not be mapped to a scalar.
type UnsupportedPropertyTypeError struct {
	Vertex   string // Vertex type name
	Property string // Property name
	RawType  string // Graph-native type tag as read from metadata
}

// Error returns the error string.
func (e *UnsupportedPropertyTypeError) Error() string {
	return fmt.Sprintf("vertexql: unsupported property type %q for %s.%s", e.RawType, e.Vertex, e.Property)
}

// Is reports whether the target matches ErrUnsupportedPropertyType or the
// ErrCompilation umbrella.
func (e *UnsupportedPropertyTypeError) Is(target error) bool {
	return target == ErrUnsupportedPropertyType || target == ErrCompilation
}

// NewUnsupportedPropertyTypeError returns a new UnsupportedPropertyTypeError.
func NewUnsupportedPropertyTypeError(vertex, property, rawType string) *UnsupportedPropertyTypeError {
	return &UnsupportedPropertyTypeError{Vertex: vertex, Property: property, RawType: rawType}
}

// IsUnsupportedPropertyType returns true if the error is an UnsupportedPropertyTypeError.
func IsUnsupportedPropertyType(err error) bool {
	if err == nil {
		return false
	}
	var e *UnsupportedPropertyTypeError
	return errors.As(err, &e)
}

// CompilationError represents any other invariant violation during schema
// synthesis, such as an invalid vertex record or a resolver factory failure.
type CompilationError struct {
	Vertex   string // Vertex type name (if applicable)
	Property string // Property name (if applicable)
	Message  string
	Cause    error
}

// Error returns the error string.
func (e *CompilationError) Error() string {
	var b strings.Builder
	b.WriteString("vertexql: compilation failed")
	if e.Vertex != "" {
		b.WriteString(" on vertex ")
		b.WriteString(e.Vertex)
	}
	if e.Property != "" {
		b.WriteString(" property ")
		b.WriteString(e.Property)
	}
	if e.Message != "" {
		b.WriteString(": ")
		b.WriteString(e.Message)
	}
	if e.Cause != nil {
		b.WriteString(": ")
		b.WriteString(e.Cause.Error())
	}
	return b.String()
}

// Unwrap returns the underlying error.
func (e *CompilationError) Unwrap() error {
	return e.Cause
}

// Is reports whether the target matches ErrCompilation.
func (e *CompilationError) Is(target error) bool {
	return target == ErrCompilation
}

// NewCompilationError returns a new CompilationError.
func NewCompilationError(vertex, property, message string, cause error) *CompilationError {
	return &CompilationError{
		Vertex:   vertex,
		Property: property,
		Message:  message,
		Cause:    cause,
	}
}

// IsCompilationError returns true if the error aborted a compile attempt.
// Both CompilationError and UnsupportedPropertyTypeError qualify.
func IsCompilationError(err error) bool {
	if err == nil {
		return false
	}
	return errors.Is(err, ErrCompilation)
}

// ExecutionError wraps a resolver failure with the vertex type it ran for.
type ExecutionError struct {
	Vertex string // Vertex type being queried
	Op     string // Operation (e.g., "find", "lookup")
	Err    error  // Underlying error
}

// Error returns the error string.
func (e *ExecutionError) Error() string {
	if e.Op != "" {
		return fmt.Sprintf("vertexql: querying %s (%s): %v", e.Vertex, e.Op, e.Err)
	}
	return fmt.Sprintf("vertexql: querying %s: %v", e.Vertex, e.Err)
}

// Unwrap returns the underlying error.
func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// NewExecutionError returns a new ExecutionError.
func NewExecutionError(vertex, op string, err error) *ExecutionError {
	return &ExecutionError{Vertex: vertex, Op: op, Err: err}
}

// IsExecutionError returns true if the error is an ExecutionError.
func IsExecutionError(err error) bool {
	if err == nil {
		return false
	}
	var e *ExecutionError
	return errors.As(err, &e)
}

// NotFoundError represents an error when a vertex is not found.
type NotFoundError struct {
	label string
	id    any // Optional: the ID that was searched for
}

// Error returns the error string.
func (e *NotFoundError) Error() string {
	if e.id != nil {
		return fmt.Sprintf("vertexql: %s not found (id=%v)", e.label, e.id)
	}
	return fmt.Sprintf("vertexql: %s not found", e.label)
}

// Is reports whether the target error matches ErrNotFound.
func (e *NotFoundError) Is(err error) bool {
	return err == ErrNotFound
}

// Label returns the vertex type name.
func (e *NotFoundError) Label() string {
	return e.label
}

// ID returns the ID that was searched for, if available.
func (e *NotFoundError) ID() any {
	return e.id
}

// NewNotFoundError returns a new NotFoundError for the given vertex type.
func NewNotFoundError(label string, id any) *NotFoundError {
	return &NotFoundError{label: label, id: id}
}

// IsNotFound returns true if the error is a NotFoundError.
func IsNotFound(err error) bool {
	if err == nil {
		return false
	}
	var e *NotFoundError
	return errors.As(err, &e) || errors.Is(err, ErrNotFound)
}
