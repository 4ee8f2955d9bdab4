package dax

import (
	"strconv"
	"strings"
)

// reservedWords is the minimum set spec §4.F names that forces a table
// reference to be single-quoted.
var reservedWords = map[string]bool{
	"DATE": true, "TIME": true, "YEAR": true, "MONTH": true, "DAY": true,
	"HOUR": true, "MINUTE": true, "SECOND": true, "TRUE": true, "FALSE": true,
	"ALL": true, "FILTER": true, "VALUES": true, "DISTINCT": true,
}

// needsQuoting reports whether a table name must be wrapped in single
// quotes per spec §4.F's "Group columns" rule.
func needsQuoting(name string) bool {
	if strings.ContainsAny(name, " \t-") {
		return true
	}
	return reservedWords[strings.ToUpper(name)]
}

// quoteTable renders a table reference, quoting it when needsQuoting
// requires it (single-quote doubled to escape, matching the teacher's
// StringConstant-style escaping in schema/generator.go).
func quoteTable(name string) string {
	if !needsQuoting(name) {
		return name
	}
	return "'" + strings.ReplaceAll(name, "'", "''") + "'"
}

// bracketColumn always brackets a column name (spec §4.F "Column names
// are always bracketed").
func bracketColumn(name string) string {
	return "[" + name + "]"
}

// groupColumn renders a dimension's DAX column reference, `<Table>[<Col>]`.
func groupColumn(table, column string) string {
	return quoteTable(table) + bracketColumn(column)
}

// formatString wraps a string literal in double quotes, doubling any
// internal quote (spec §4.F "Literal formatting").
func formatString(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// formatNumber renders a number in canonical decimal form: integers
// without a trailing dot, floats without scientific notation below a
// magnitude threshold (spec §4.F).
func formatNumber(n float64) string {
	if n == float64(int64(n)) && (n < 1e15 && n > -1e15) {
		return strconv.FormatInt(int64(n), 10)
	}
	return strconv.FormatFloat(n, 'f', -1, 64)
}

// formatBool renders TRUE/FALSE.
func formatBool(b bool) string {
	if b {
		return "TRUE"
	}
	return "FALSE"
}

// filterLiteral renders a filter value. ir.Filter carries values as
// plain strings (spec §3), so a value that parses cleanly as a number
// is emitted unquoted (e.g. a calendar year slicer); anything else is a
// quoted string literal.
func filterLiteral(v string) string {
	if n, err := strconv.ParseFloat(v, 64); err == nil {
		return formatNumber(n)
	}
	return formatString(v)
}
