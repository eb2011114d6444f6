package sqlgraph

import (
	"errors"
	"fmt"
	"testing"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestConstraintErrors(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		unique bool
		check  bool
	}{
		{name: "nil", err: nil},
		{name: "plain", err: errors.New("connection refused")},
		{name: "postgres unique", err: &pq.Error{Code: "23505", Message: "duplicate key"}, unique: true},
		{name: "postgres check", err: &pq.Error{Code: "23514", Message: "check"}, check: true},
		{name: "postgres other", err: &pq.Error{Code: "42P01", Message: "undefined table"}},
		{name: "mysql duplicate", err: &mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}, unique: true},
		{name: "mysql check", err: &mysql.MySQLError{Number: 3819, Message: "Check constraint"}, check: true},
		{name: "wrapped mysql", err: fmt.Errorf("exec: %w", &mysql.MySQLError{Number: 1062}), unique: true},
		{name: "sqlite message", err: errors.New("constraint failed: UNIQUE constraint failed: Person.vid (1555)"), unique: true},
		{name: "sqlite check message", err: errors.New("CHECK constraint failed: age"), check: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.unique, IsUniqueConstraintError(tt.err))
			assert.Equal(t, tt.check, IsCheckConstraintError(tt.err))
			assert.Equal(t, tt.unique || tt.check, IsConstraintError(tt.err))

			wrapped := mayWrapConstraint(tt.err)
			var ce *ConstraintError
			if tt.unique || tt.check {
				assert.ErrorAs(t, wrapped, &ce)
				assert.ErrorIs(t, wrapped, tt.err)
				assert.Contains(t, wrapped.Error(), "constraint failed")
			} else {
				assert.Equal(t, tt.err, wrapped)
			}
		})
	}
}
