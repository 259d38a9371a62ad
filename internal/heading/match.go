package heading

import (
	"sort"
	"strings"
)

// Heading is one detected heading line.
type Heading struct {
	Start    int    // Byte offset of the heading line
	Length   int    // Byte length of the heading, trailing whitespace excluded
	Title    string // Inline title captured by the family, trimmed
	HasTitle bool
	Kind     Kind
	Family   string
}

// End returns the byte offset just past the heading.
func (h Heading) End() int {
	return h.Start + h.Length
}

// Result partitions detected headings by kind, each in document order.
type Result struct {
	Chapters   []Heading
	Appendices []Heading
}

// Empty reports whether no heading of either kind was found.
func (r Result) Empty() bool {
	return len(r.Chapters) == 0 && len(r.Appendices) == 0
}

// All returns chapter and appendix headings merged by position.
func (r Result) All() []Heading {
	all := make([]Heading, 0, len(r.Chapters)+len(r.Appendices))
	all = append(all, r.Chapters...)
	all = append(all, r.Appendices...)
	sort.SliceStable(all, func(i, j int) bool { return all[i].Start < all[j].Start })
	return all
}

// Match finds heading lines in text. The first chapter family (in priority
// order) with at least one match is used exclusively; every appendix family
// contributes, and when two appendix families match the same line the
// earlier family wins.
func (t *Table) Match(text string) Result {
	var res Result

	for _, f := range t.chapters {
		if hs := f.find(text); len(hs) > 0 {
			res.Chapters = hs
			break
		}
	}

	seen := make(map[int]bool)
	for _, f := range t.appendices {
		for _, h := range f.find(text) {
			if seen[h.Start] {
				continue
			}
			seen[h.Start] = true
			res.Appendices = append(res.Appendices, h)
		}
	}
	sort.SliceStable(res.Appendices, func(i, j int) bool {
		return res.Appendices[i].Start < res.Appendices[j].Start
	})

	return res
}

func (f *Family) find(text string) []Heading {
	matches := f.compiled.FindAllStringSubmatchIndex(text, -1)
	if len(matches) == 0 {
		return nil
	}
	headings := make([]Heading, 0, len(matches))
	for _, m := range matches {
		start, end := m[0], m[1]
		h := Heading{
			Start:  start,
			Length: len(strings.TrimRight(text[start:end], " \t\r\n")),
			Kind:   f.Kind,
			Family: f.Name,
		}
		if f.TitleGroup > 0 {
			gs, ge := m[2*f.TitleGroup], m[2*f.TitleGroup+1]
			if gs >= 0 {
				if title := strings.TrimSpace(text[gs:ge]); title != "" {
					h.Title = title
					h.HasTitle = true
				}
			}
		}
		headings = append(headings, h)
	}
	return headings
}
