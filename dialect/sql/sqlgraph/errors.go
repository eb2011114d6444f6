package sqlgraph

import (
	"errors"
	"strings"

	"github.com/go-sql-driver/mysql"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

// ConstraintError is returned when an insert violates a database
// constraint, typically a duplicate vertex id.
type ConstraintError struct {
	msg  string
	wrap error
}

// Error implements the error interface.
func (e *ConstraintError) Error() string {
	return "sqlgraph: constraint failed: " + e.msg
}

// Unwrap implements the errors.Wrapper interface.
func (e *ConstraintError) Unwrap() error {
	return e.wrap
}

// IsConstraintError returns true if the error resulted from a database constraint violation.
func IsConstraintError(err error) bool {
	var e *ConstraintError
	return errors.As(err, &e) ||
		IsUniqueConstraintError(err) ||
		IsCheckConstraintError(err)
}

// PostgreSQL SQLSTATE codes and MySQL error numbers for constraint violations.
const (
	pgUniqueViolation     = "23505"
	pgCheckViolation      = "23514"
	mysqlDuplicateEntry   = 1062
	mysqlCheckConstraint  = 3819
	sqliteUniqueViolation = sqlite3.SQLITE_CONSTRAINT_UNIQUE
	sqlitePKViolation     = sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY
	sqliteCheckViolation  = sqlite3.SQLITE_CONSTRAINT_CHECK
)

// IsUniqueConstraintError reports if the error resulted from a uniqueness
// or primary key violation, e.g. a vertex id that already exists.
func IsUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var (
		pe *pq.Error
		me *mysql.MySQLError
		se *sqlite.Error
	)
	switch {
	case errors.As(err, &pe) && string(pe.Code) == pgUniqueViolation:
		return true
	case errors.As(err, &me) && me.Number == mysqlDuplicateEntry:
		return true
	case errors.As(err, &se) && (se.Code() == sqliteUniqueViolation || se.Code() == sqlitePKViolation):
		return true
	}
	// Drivers without extended result codes only carry the message.
	return containsAny(err.Error(),
		"Error 1062",
		"violates unique constraint",
		"UNIQUE constraint failed",
	)
}

// IsCheckConstraintError reports if the error resulted from a database check constraint violation.
func IsCheckConstraintError(err error) bool {
	if err == nil {
		return false
	}
	var (
		pe *pq.Error
		me *mysql.MySQLError
		se *sqlite.Error
	)
	switch {
	case errors.As(err, &pe) && string(pe.Code) == pgCheckViolation:
		return true
	case errors.As(err, &me) && me.Number == mysqlCheckConstraint:
		return true
	case errors.As(err, &se) && se.Code() == sqliteCheckViolation:
		return true
	}
	return containsAny(err.Error(),
		"Error 3819",
		"violates check constraint",
		"CHECK constraint failed",
	)
}

// mayWrapConstraint wraps constraint violations in a ConstraintError.
func mayWrapConstraint(err error) error {
	if err != nil && (IsUniqueConstraintError(err) || IsCheckConstraintError(err)) {
		return &ConstraintError{msg: err.Error(), wrap: err}
	}
	return err
}

func containsAny(s string, substrings ...string) bool {
	for _, sub := range substrings {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
