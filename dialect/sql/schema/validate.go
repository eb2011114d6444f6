package schema

import (
	"fmt"
	"strings"

	"ariga.io/atlas/sql/schema"
)

// ValidationError represents a drift between a vertex table in the database
// and the table its vertex type maps to.
type ValidationError struct {
	Table   string
	Column  string
	Message string
	// Breaking indicates the store cannot read or write the table as is.
	Breaking bool
}

func (e *ValidationError) Error() string {
	if e.Column != "" {
		return fmt.Sprintf("%s.%s: %s", e.Table, e.Column, e.Message)
	}
	return fmt.Sprintf("%s: %s", e.Table, e.Message)
}

// ValidationResult holds the results of schema validation.
type ValidationResult struct {
	Errors   []*ValidationError
	Warnings []*ValidationError
}

// HasErrors returns true if there are any validation errors.
func (r *ValidationResult) HasErrors() bool {
	return len(r.Errors) > 0
}

// HasWarnings returns true if there are any validation warnings.
func (r *ValidationResult) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// HasBreakingChanges returns true if there are any breaking changes.
func (r *ValidationResult) HasBreakingChanges() bool {
	for _, e := range r.Errors {
		if e.Breaking {
			return true
		}
	}
	for _, w := range r.Warnings {
		if w.Breaking {
			return true
		}
	}
	return false
}

// String returns a human-readable summary of the validation result.
func (r *ValidationResult) String() string {
	var sb strings.Builder
	write := func(title string, errs []*ValidationError) {
		if len(errs) == 0 {
			return
		}
		sb.WriteString(title)
		sb.WriteString(":\n")
		for _, e := range errs {
			sb.WriteString("  - ")
			sb.WriteString(e.Error())
			if e.Breaking {
				sb.WriteString(" [BREAKING]")
			}
			sb.WriteString("\n")
		}
	}
	write("Errors", r.Errors)
	write("Warnings", r.Warnings)
	if !r.HasErrors() && !r.HasWarnings() {
		sb.WriteString("No issues found")
	}
	return sb.String()
}

func (r *ValidationResult) merge(o *ValidationResult) {
	r.Errors = append(r.Errors, o.Errors...)
	r.Warnings = append(r.Warnings, o.Warnings...)
}

// ValidateOption configures schema validation.
type ValidateOption func(*validateConfig)

type validateConfig struct {
	strictColumns bool
}

// StrictColumns reports columns that no vertex property maps to as errors
// instead of warnings.
func StrictColumns() ValidateOption {
	return func(c *validateConfig) {
		c.strictColumns = true
	}
}

// ValidateDiff compares the tables found in the database with the tables
// the vertex types map to. Tables in the database without a vertex type are
// ignored. Missing tables and columns are warnings, since provisioning adds
// them. Type mismatches and constraints that block inserts are errors.
//
//	result := schema.ValidateDiff(current, desired)
//	if result.HasErrors() {
//	    return fmt.Errorf("incompatible tables:\n%s", result)
//	}
func ValidateDiff(current, desired []*schema.Table, opts ...ValidateOption) *ValidationResult {
	cfg := &validateConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	result := &ValidationResult{}
	currentMap := make(map[string]*schema.Table, len(current))
	for _, t := range current {
		currentMap[t.Name] = t
	}
	for _, want := range desired {
		have, ok := currentMap[want.Name]
		if !ok {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   want.Name,
				Message: "table will be created",
			})
			continue
		}
		validateTableDiff(have, want, cfg, result)
	}
	return result
}

func validateTableDiff(have, want *schema.Table, cfg *validateConfig, result *ValidationResult) {
	result.merge(ValidateTable(have))
	for _, wc := range want.Columns {
		hc, ok := have.Column(wc.Name)
		if !ok {
			result.Warnings = append(result.Warnings, &ValidationError{
				Table:   have.Name,
				Column:  wc.Name,
				Message: "column will be added",
			})
			continue
		}
		if hc.Type == nil || wc.Type == nil {
			continue
		}
		if got, exp := PropertyType(hc.Type.Type), PropertyType(wc.Type.Type); got != exp {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    have.Name,
				Column:   wc.Name,
				Message:  fmt.Sprintf("column stores %s values, vertex property is %s", got, exp),
				Breaking: true,
			})
		}
		if wc.Name != VIDColumn && !hc.Type.Null && hc.Default == nil {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    have.Name,
				Column:   wc.Name,
				Message:  "column is NOT NULL without a default, but vertex properties are optional",
				Breaking: true,
			})
		}
	}
	for _, hc := range have.Columns {
		if _, ok := want.Column(hc.Name); ok {
			continue
		}
		if hc.Type != nil && !hc.Type.Null && hc.Default == nil {
			result.Errors = append(result.Errors, &ValidationError{
				Table:    have.Name,
				Column:   hc.Name,
				Message:  "unmapped NOT NULL column without a default blocks inserts",
				Breaking: true,
			})
			continue
		}
		err := &ValidationError{
			Table:   have.Name,
			Column:  hc.Name,
			Message: "column is not mapped by any vertex property",
		}
		if cfg.strictColumns {
			result.Errors = append(result.Errors, err)
		} else {
			result.Warnings = append(result.Warnings, err)
		}
	}
}

// ValidateTable checks that a table can store vertices: it needs a "vid"
// column as its single-column primary key and unique column names.
func ValidateTable(t *schema.Table) *ValidationResult {
	result := &ValidationResult{}
	if _, ok := t.Column(VIDColumn); !ok {
		result.Errors = append(result.Errors, &ValidationError{
			Table:    t.Name,
			Column:   VIDColumn,
			Message:  "vertex id column is missing",
			Breaking: true,
		})
	} else if !vidPrimaryKey(t) {
		result.Warnings = append(result.Warnings, &ValidationError{
			Table:   t.Name,
			Column:  VIDColumn,
			Message: "vertex id column is not the primary key",
		})
	}
	seen := make(map[string]bool, len(t.Columns))
	for _, c := range t.Columns {
		if seen[c.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Column:  c.Name,
				Message: "duplicate column name",
			})
		}
		seen[c.Name] = true
	}
	return result
}

// ValidateSchema validates all tables and reports duplicate table names.
func ValidateSchema(tables []*schema.Table) *ValidationResult {
	result := &ValidationResult{}
	seen := make(map[string]bool, len(tables))
	for _, t := range tables {
		if seen[t.Name] {
			result.Errors = append(result.Errors, &ValidationError{
				Table:   t.Name,
				Message: "duplicate table name",
			})
		}
		seen[t.Name] = true
		result.merge(ValidateTable(t))
	}
	return result
}

func vidPrimaryKey(t *schema.Table) bool {
	pk := t.PrimaryKey
	if pk == nil || len(pk.Parts) != 1 || pk.Parts[0].C == nil {
		return false
	}
	return pk.Parts[0].C.Name == VIDColumn
}
