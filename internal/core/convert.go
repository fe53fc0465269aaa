package core

// convert.go provides null-safe cell conversion for raw tabular data.
//
// These functions handle the messy reality of exported retail data:
//   - Multiple timestamp formats (ISO, US, date-only, compact)
//   - Currency symbols and thousand separators in amounts
//   - Excel formula prefixes (="value") and stray quotes
//
// All To* functions degrade to a null value (invalid NullDecimal, nil
// pointer) for empty or unparseable input instead of returning an error, so
// the checks downstream can treat missing and malformed cells uniformly.

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// numericRegex validates that a string is a valid numeric format after cleanup.
// Matches integers, decimals, and scientific notation.
var numericRegex = regexp.MustCompile(`^[+-]?(\d+(\.\d*)?|\.\d+)([eE][+-]?\d+)?$`)

// timeLayouts are tried in order when parsing timestamps. Date-only layouts
// come last so a full timestamp is never truncated by a shorter match.
var timeLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05.999999",
	"2006-01-02 15:04:05",
	"1/2/2006 15:04:05",
	"1/2/2006 15:04",
	"2006-01-02",
	"2006/01/02",
	"1/2/2006",
	"01/02/2006",
	"20060102",
}

// HeaderIndex maps canonical column names (lowercase) to their position in a
// raw row.
type HeaderIndex map[string]int

// ToDecimal converts a string to a nullable decimal.
// Handles currency symbols, thousands separators, and accounting format
// (parentheses for negative). Returns an invalid NullDecimal for empty or
// malformed input.
func ToDecimal(s string) decimal.NullDecimal {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.NullDecimal{}
	}

	// Detect negative accounting format "(123.45)"
	isNegative := false
	if strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")") {
		isNegative = true
		s = strings.TrimSpace(s[1 : len(s)-1])
	}

	// Remove common currency symbols and thousands separators
	s = strings.ReplaceAll(s, "$", "")
	s = strings.ReplaceAll(s, "€", "") // Euro
	s = strings.ReplaceAll(s, "£", "") // Pound
	s = strings.ReplaceAll(s, ",", "")
	s = strings.TrimSpace(s)

	if isNegative {
		s = "-" + s
	}

	if !numericRegex.MatchString(s) {
		return decimal.NullDecimal{}
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: d, Valid: true}
}

// ToTime converts a string to a nullable timestamp, trying the supported
// layouts in order. Returns nil for empty or unparseable input.
func ToTime(s string) *time.Time {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}

	for _, layout := range timeLayouts {
		t, err := time.Parse(layout, s)
		if err == nil {
			return &t
		}
	}
	return nil
}

// ToInt converts a string to a nullable integer. Returns nil for empty or
// non-integer input.
func ToInt(s string) *int64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	i, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return nil
	}
	return &i
}

// MakeHeaderIndex creates a HeaderIndex from a header row.
// Keys are lowercased for case-insensitive matching.
func MakeHeaderIndex(header []string) HeaderIndex {
	idx := make(HeaderIndex, len(header))
	for i, h := range header {
		key := strings.ToLower(CleanCell(h))
		idx[key] = i
	}
	return idx
}

// Cell safely retrieves a cleaned cell value from a row by column name.
// Returns the empty string if the column is absent or the row is short.
func Cell(row []string, idx HeaderIndex, name string) string {
	pos, ok := idx[strings.ToLower(name)]
	if !ok || pos >= len(row) {
		return ""
	}
	return CleanCell(row[pos])
}

// CleanCell removes common export artifacts from a cell value:
// - Trims whitespace
// - Removes Excel formula prefix (="...")
// - Removes surrounding quotes
func CleanCell(s string) string {
	s = strings.TrimSpace(s)

	if strings.HasPrefix(s, "=\"") && strings.HasSuffix(s, "\"") {
		s = s[2 : len(s)-1]
	} else if strings.HasPrefix(s, "=") {
		s = s[1:]
	}

	s = strings.Trim(s, `"'`)

	return s
}
