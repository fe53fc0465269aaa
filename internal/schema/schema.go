// Package schema declares the expected column layout of each source table.
//
// The validation engine and the data sources both consult these specs: sources
// use them to validate headers and coerce cell values, the engine uses them to
// resolve critical-field names for missing-data probes. Column names are
// canonical lowercase; matching against raw headers is case-insensitive.
package schema

// FieldType represents the expected data type for a table column.
type FieldType int

const (
	FieldText FieldType = iota
	FieldNumeric
	FieldDateTime
	FieldInt
)

// Column defines one expected column of a source table.
type Column struct {
	Name     string    // Canonical column name (lowercase)
	Type     FieldType // Expected data type
	Required bool      // Column must exist in the table header
}

// Names returns the canonical column names in declaration order.
func Names(cols []Column) []string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	return names
}
