package app

import (
	"regexp"
	"strings"
)

// Upsert statements for the jsonb columns (locale maps, recent-match lists)
// can run long; span attributes keep only the head.
const tracedQueryLimit = 512

var sqlWhitespace = regexp.MustCompile(`\s+`)

// formatDBQueryForTrace flattens a statement onto one line for the db span.
func formatDBQueryForTrace(query string) string {
	flat := sqlWhitespace.ReplaceAllString(strings.TrimSpace(query), " ")
	if len(flat) > tracedQueryLimit {
		return flat[:tracedQueryLimit] + "..."
	}
	return flat
}
