// Package session holds the in-memory edit state for one imported document:
// the ordered chapter list, the selected chapter and its edit buffer, pending
// split markers, and buffer history.
package session

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"

	"github.com/dgallion1/storysplit/internal/chapter"
	"github.com/dgallion1/storysplit/internal/heading"
	"github.com/dgallion1/storysplit/internal/segment"
)

// SplitSentinel marks a future split point inside the edit buffer.
const SplitSentinel = "====SPLIT CHAPTER===="

// splitInsert is what InsertSplitMarker places at the cursor.
const splitInsert = "\n" + SplitSentinel + "\n"

// ErrEmptyDocument is returned by Import for empty or whitespace-only input.
var ErrEmptyDocument = errors.New("document is empty")

// Session is the edit state of one document. Every mutator either applies in
// full or leaves the session untouched, and reports which with its bool
// result. A Session is not safe for concurrent use.
type Session struct {
	table  *heading.Table
	logger *slog.Logger
	newID  func() string

	name     string
	chapters []chapter.Chapter
	selected string
	buffer   string
	pending  []int
	history  *History
}

// Option configures a Session.
type Option func(*Session)

// WithHistoryLimit bounds the undo stack.
func WithHistoryLimit(n int) Option {
	return func(s *Session) { s.history = NewHistory(n) }
}

// WithLogger sets the logger used for structural edits.
func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithIDGenerator replaces the chapter id generator.
func WithIDGenerator(fn func() string) Option {
	return func(s *Session) {
		if fn != nil {
			s.newID = fn
		}
	}
}

// New creates an empty session that segments with table, or with the default
// heading table when table is nil.
func New(table *heading.Table, opts ...Option) *Session {
	if table == nil {
		table = heading.Default()
	}
	s := &Session{
		table:   table,
		logger:  slog.Default(),
		newID:   uuid.NewString,
		history: NewHistory(DefaultHistoryLimit),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Import replaces the chapter list with the segmentation of raw and selects
// the first chapter. Saved documents are recognized and parsed verbatim.
func (s *Session) Import(name, raw string) error {
	if strings.TrimSpace(raw) == "" {
		return ErrEmptyDocument
	}

	chapters := segment.Segment(raw, s.table)
	for i := range chapters {
		chapters[i].ID = s.newID()
		chapters[i].Editing = false
	}

	s.name = name
	s.chapters = chapter.Renumber(chapters)
	s.selectIndex(0)

	s.logger.Debug("document imported", "name", name, "chapters", len(s.chapters))
	return nil
}

// Select binds the edit buffer to the chapter with the given id.
func (s *Session) Select(id string) bool {
	idx := chapter.Index(s.chapters, id)
	if idx < 0 {
		return false
	}
	s.selectIndex(idx)
	return true
}

// UpdateContent replaces the edit buffer and the selected chapter's content.
func (s *Session) UpdateContent(text string) bool {
	idx := chapter.Index(s.chapters, s.selected)
	if idx < 0 {
		return false
	}
	s.buffer = text
	s.chapters[idx].Content = text
	s.chapters[idx].Editing = true
	return true
}

// InsertSplitMarker inserts the split sentinel at offset, counted in
// characters and clamped to the buffer. The previous buffer becomes an undo
// step.
func (s *Session) InsertSplitMarker(offset int) bool {
	idx := chapter.Index(s.chapters, s.selected)
	if idx < 0 {
		return false
	}

	runes := []rune(s.buffer)
	offset = max(0, min(offset, len(runes)))

	s.history.Push(s.buffer)
	s.buffer = string(runes[:offset]) + splitInsert + string(runes[offset:])
	s.pending = append(s.pending, offset)
	s.chapters[idx].Editing = true
	return true
}

// Undo restores the buffer to the previous snapshot.
func (s *Session) Undo() bool {
	idx := chapter.Index(s.chapters, s.selected)
	if idx < 0 {
		return false
	}
	snap, err := s.history.Undo(s.buffer)
	if err != nil {
		return false
	}
	s.buffer = snap
	s.chapters[idx].Editing = true
	return true
}

// Redo reapplies the most recently undone buffer change.
func (s *Session) Redo() bool {
	idx := chapter.Index(s.chapters, s.selected)
	if idx < 0 {
		return false
	}
	snap, err := s.history.Redo(s.buffer)
	if err != nil {
		return false
	}
	s.buffer = snap
	s.chapters[idx].Editing = true
	return true
}

// CommitSplit replaces the selected chapter with one chapter per non-empty
// piece of the edit buffer between split sentinels, renumbers the list and
// selects the first new piece.
func (s *Session) CommitSplit() bool {
	idx := chapter.Index(s.chapters, s.selected)
	if idx < 0 || len(s.pending) == 0 || !strings.Contains(s.buffer, SplitSentinel) {
		return false
	}

	var pieces []string
	for _, p := range strings.Split(s.buffer, SplitSentinel) {
		if p = strings.TrimSpace(p); p != "" {
			pieces = append(pieces, p)
		}
	}
	if len(pieces) == 0 {
		return false
	}

	parts := make([]chapter.Chapter, len(pieces))
	for k, p := range pieces {
		parts[k] = chapter.Chapter{
			ID:      s.newID(),
			Title:   fmt.Sprintf("Chapter %d - Part %d", idx+1+k, k+1),
			Content: p,
		}
	}

	next := make([]chapter.Chapter, 0, len(s.chapters)-1+len(parts))
	next = append(next, s.chapters[:idx]...)
	next = append(next, parts...)
	next = append(next, s.chapters[idx+1:]...)

	s.chapters = chapter.Renumber(next)
	s.selectIndex(idx)

	s.logger.Debug("chapter split", "name", s.name, "pieces", len(parts))
	return true
}

// MergeWithNext appends the following chapter's content to the chapter with
// the given id, joined by a blank line, and removes the following chapter.
func (s *Session) MergeWithNext(id string) bool {
	idx := chapter.Index(s.chapters, id)
	if idx < 0 || idx == len(s.chapters)-1 {
		return false
	}

	cur, nxt := s.chapters[idx], s.chapters[idx+1]
	wasSelected := s.selected == cur.ID || s.selected == nxt.ID

	merged := cur
	merged.Content = cur.Content + "\n\n" + nxt.Content
	merged.Editing = false

	next := make([]chapter.Chapter, 0, len(s.chapters)-1)
	next = append(next, s.chapters[:idx]...)
	next = append(next, merged)
	next = append(next, s.chapters[idx+2:]...)

	s.chapters = chapter.Renumber(next)
	if wasSelected {
		s.selectIndex(idx)
	}
	return true
}

// Delete removes the chapter with the given id. If it was selected, the
// selection moves to the first remaining chapter.
func (s *Session) Delete(id string) bool {
	idx := chapter.Index(s.chapters, id)
	if idx < 0 {
		return false
	}

	next := make([]chapter.Chapter, 0, len(s.chapters)-1)
	next = append(next, s.chapters[:idx]...)
	next = append(next, s.chapters[idx+1:]...)
	s.chapters = chapter.Renumber(next)

	if s.selected == id {
		if len(s.chapters) > 0 {
			s.selectIndex(0)
		} else {
			s.clearSelection()
		}
	}
	return true
}

// selectIndex makes chapters[idx] the only editing chapter and resets the
// buffer state to its content.
func (s *Session) selectIndex(idx int) {
	if idx < 0 || idx >= len(s.chapters) {
		s.clearSelection()
		return
	}
	for i := range s.chapters {
		s.chapters[i].Editing = i == idx
	}
	s.selected = s.chapters[idx].ID
	s.buffer = s.chapters[idx].Content
	s.pending = nil
	s.history.Clear()
}

func (s *Session) clearSelection() {
	for i := range s.chapters {
		s.chapters[i].Editing = false
	}
	s.selected = ""
	s.buffer = ""
	s.pending = nil
	s.history.Clear()
}
