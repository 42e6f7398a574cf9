package normalize

import "strings"

// Description collapses runs of whitespace and trims the ends.
func Description(raw string) string {
	return strings.Join(strings.Fields(raw), " ")
}
