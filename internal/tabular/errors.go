package tabular

import "fmt"

// SchemaError reports a structural problem with one row of one input table:
// a missing required column, a bad type, or a negative value where
// non-negative is required (spec §7).
type SchemaError struct {
	Table TableName
	Row   int
	Field string
	Err   error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("table %s, row %d, field %q: %v", e.Table, e.Row, e.Field, e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

func newSchemaError(table TableName, row int, field string, format string, args ...any) *SchemaError {
	return &SchemaError{Table: table, Row: row, Field: field, Err: fmt.Errorf(format, args...)}
}
