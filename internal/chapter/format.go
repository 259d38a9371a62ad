package chapter

import (
	"regexp"
	"strings"
)

// StructuredHeading matches a heading line of the canonical saved format.
var StructuredHeading = regexp.MustCompile(`(?m)^(Chapter \d+ - .+)$`)

// Format serializes chapters into the canonical saved-document format: each
// chapter is written as "<title>\n<content>\n\n" in list order.
func Format(chapters []Chapter) string {
	var sb strings.Builder
	for _, c := range chapters {
		sb.WriteString(c.Title)
		sb.WriteString("\n")
		sb.WriteString(c.Content)
		sb.WriteString("\n\n")
	}
	return sb.String()
}
