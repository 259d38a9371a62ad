package segment

import (
	"strings"
	"unicode"
)

// EndMarker is the in-text sentinel that forces a segment to end early.
const EndMarker = "---CHAPTER END---"

// Indent is the prefix given to every non-blank body line.
const Indent = "      "

// Clean normalizes a raw segment: end markers are removed, non-blank lines are
// re-indented, runs of blank lines collapse to one, and the result is trimmed.
func Clean(raw string) string {
	raw = strings.ReplaceAll(raw, EndMarker, "")

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	prevBlank := false
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			if !prevBlank {
				out = append(out, "")
			}
			prevBlank = true
			continue
		}
		prevBlank = false
		out = append(out, Indent+strings.TrimLeftFunc(line, unicode.IsSpace))
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}
