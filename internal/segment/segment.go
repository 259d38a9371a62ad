// Package segment turns an unstructured manuscript into an ordered list of
// titled chapters.
package segment

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/dgallion1/storysplit/internal/chapter"
	"github.com/dgallion1/storysplit/internal/heading"
)

// BeginningTitle names the chapter built from text that precedes the first
// heading, or from a whole document with no headings at all.
const BeginningTitle = "Chapter 1 - Beginning"

const (
	maxTitleLineRunes = 100 // First lines this long or longer are not used as titles.
	titleTruncRunes   = 50
)

// Segment parses text in the canonical saved format when it contains at least
// one saved heading, and falls back to heading detection otherwise. The
// result is not renumbered.
func Segment(text string, table *heading.Table) []chapter.Chapter {
	if chapters := ParseStructured(text); len(chapters) > 0 {
		return chapters
	}
	return AutoDetect(text, table)
}

// ParseStructured reads a previously saved document. Each "Chapter <n> - <title>"
// line starts a chapter whose body runs to the next such line or the end of the
// document. Bodies are trimmed but not cleaned. Returns nil if the text has no
// saved headings.
func ParseStructured(text string) []chapter.Chapter {
	text = normalizeNewlines(text)
	locs := chapter.StructuredHeading.FindAllStringSubmatchIndex(text, -1)
	if len(locs) == 0 {
		return nil
	}

	chapters := make([]chapter.Chapter, 0, len(locs))
	for i, loc := range locs {
		end := len(text)
		if i+1 < len(locs) {
			end = locs[i+1][0]
		}
		chapters = append(chapters, chapter.Chapter{
			Title:   strings.TrimSpace(text[loc[2]:loc[3]]),
			Content: strings.TrimSpace(text[loc[1]:end]),
		})
	}
	return chapters
}

// AutoDetect segments text using the heading table. Chapters come first in
// document order, then appendices. A document with no headings becomes a
// single chapter holding the trimmed text.
func AutoDetect(text string, table *heading.Table) []chapter.Chapter {
	text = normalizeNewlines(text)
	res := table.Match(text)
	if res.Empty() {
		return []chapter.Chapter{{Title: BeginningTitle, Content: strings.TrimSpace(text)}}
	}

	// Segments end where the next heading of either kind starts.
	all := res.All()
	nextStart := make(map[int]int, len(all))
	for i, h := range all {
		if i+1 < len(all) {
			nextStart[h.Start] = all[i+1].Start
		} else {
			nextStart[h.Start] = len(text)
		}
	}

	chapters := build(text, res.Chapters, nextStart, "Chapter")
	appendices := build(text, res.Appendices, nextStart, "Appendix")

	first := all[0].Start
	if len(res.Chapters) > 0 {
		first = res.Chapters[0].Start
	}
	if lead := strings.TrimSpace(text[:first]); lead != "" {
		chapters = append([]chapter.Chapter{{Title: BeginningTitle, Content: lead}}, chapters...)
	}

	return append(chapters, appendices...)
}

func build(text string, headings []heading.Heading, nextStart map[int]int, label string) []chapter.Chapter {
	out := make([]chapter.Chapter, 0, len(headings))
	for i, h := range headings {
		n := i + 1
		body := segmentBody(text, h.End(), nextStart[h.Start])

		title := h.Title
		if !h.HasTitle {
			title = firstLineTitle(body)
			if title == "" {
				title = fmt.Sprintf("%s %d", label, n)
			}
		}

		out = append(out, chapter.Chapter{
			Title:   fmt.Sprintf("%s %d - %s", label, n, title),
			Content: Clean(body),
		})
	}
	return out
}

// segmentBody returns text[start:end], cut short at the first end marker.
func segmentBody(text string, start, end int) string {
	if end < start {
		end = start
	}
	body := text[start:end]
	if idx := strings.Index(body, EndMarker); idx >= 0 {
		body = body[:idx]
	}
	return body
}

// firstLineTitle derives a title from the line that follows the heading. It
// returns "" when that line is missing, blank, or too long to be a title.
func firstLineTitle(body string) string {
	rest := strings.TrimLeft(body, " \t")
	if !strings.HasPrefix(rest, "\n") {
		return ""
	}
	rest = rest[1:]
	if idx := strings.IndexByte(rest, '\n'); idx >= 0 {
		rest = rest[:idx]
	}

	line := strings.TrimSpace(rest)
	n := utf8.RuneCountInString(line)
	if line == "" || n >= maxTitleLineRunes {
		return ""
	}
	if n > titleTruncRunes {
		return string([]rune(line)[:titleTruncRunes]) + "..."
	}
	return line
}

func normalizeNewlines(s string) string {
	if !strings.Contains(s, "\r") {
		return s
	}
	s = strings.ReplaceAll(s, "\r\n", "\n")
	return strings.ReplaceAll(s, "\r", "\n")
}
