// Package chapter defines the chapter record shared by the segmenter, the edit
// session and the save path, along with the renumbering pass and the canonical
// saved-document format.
package chapter

import (
	"fmt"
	"regexp"
	"strings"
)

// Chapter is a titled, ordered segment of a document.
type Chapter struct {
	ID      string `json:"id"`
	Title   string `json:"title"`   // "Chapter <n> - <suffix>" or "Appendix <n> - <suffix>"
	Content string `json:"content"` // Cleaned body text
	Editing bool   `json:"isEditing"`
}

// numberPrefix matches the position-derived part of a chapter title.
var numberPrefix = regexp.MustCompile(`^Chapter \d+\s*-?\s*`)

// Suffix returns the free-text part of a title with any "Chapter <n> - "
// prefix removed.
func Suffix(title string) string {
	return numberPrefix.ReplaceAllString(title, "")
}

// Renumber rewrites every title to match its position in the list. The input
// slice is not modified.
func Renumber(chapters []Chapter) []Chapter {
	out := make([]Chapter, len(chapters))
	for i, c := range chapters {
		suffix := Suffix(c.Title)
		if suffix != "" {
			c.Title = fmt.Sprintf("Chapter %d - %s", i+1, suffix)
		} else {
			c.Title = fmt.Sprintf("Chapter %d", i+1)
		}
		out[i] = c
	}
	return out
}

// Index returns the position of the chapter with the given id, or -1.
func Index(chapters []Chapter, id string) int {
	for i := range chapters {
		if chapters[i].ID == id {
			return i
		}
	}
	return -1
}

// Clone returns a copy of the list that shares no backing array with it.
func Clone(chapters []Chapter) []Chapter {
	if chapters == nil {
		return nil
	}
	out := make([]Chapter, len(chapters))
	copy(out, chapters)
	return out
}

// WordCount gives a rough word count for display. Runs of CJK characters have
// no spaces, so each of those characters counts as one word.
func WordCount(text string) int {
	count := 0
	for _, field := range strings.Fields(text) {
		cjk := 0
		other := false
		for _, r := range field {
			if isCJK(r) {
				cjk++
			} else {
				other = true
			}
		}
		count += cjk
		if other {
			count++
		}
	}
	return count
}

func isCJK(r rune) bool {
	return (r >= 0x4E00 && r <= 0x9FFF) || (r >= 0x3400 && r <= 0x4DBF) ||
		(r >= 0x3040 && r <= 0x30FF) || (r >= 0xAC00 && r <= 0xD7AF)
}
