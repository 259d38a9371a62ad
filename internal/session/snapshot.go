package session

import (
	"github.com/dgallion1/storysplit/internal/chapter"
)

// Snapshot is a copy of the observable session state.
type Snapshot struct {
	DocumentName  string            `json:"documentName"`
	Chapters      []chapter.Chapter `json:"chapters"`
	SelectedID    string            `json:"selectedId,omitempty"`
	Buffer        string            `json:"editBuffer"`
	PendingSplits []int             `json:"pendingSplitOffsets"`
	CanUndo       bool              `json:"canUndo"`
	CanRedo       bool              `json:"canRedo"`
}

// Snapshot returns the current state. The result shares nothing with the
// session.
func (s *Session) Snapshot() Snapshot {
	chapters := chapter.Clone(s.chapters)
	if chapters == nil {
		chapters = []chapter.Chapter{}
	}
	return Snapshot{
		DocumentName:  s.name,
		Chapters:      chapters,
		SelectedID:    s.selected,
		Buffer:        s.buffer,
		PendingSplits: s.PendingSplits(),
		CanUndo:       s.history.CanUndo(),
		CanRedo:       s.history.CanRedo(),
	}
}

// Chapters returns a copy of the chapter list.
func (s *Session) Chapters() []chapter.Chapter {
	return chapter.Clone(s.chapters)
}

// Selected returns the selected chapter, if any.
func (s *Session) Selected() (chapter.Chapter, bool) {
	idx := chapter.Index(s.chapters, s.selected)
	if idx < 0 {
		return chapter.Chapter{}, false
	}
	return s.chapters[idx], true
}

func (s *Session) Buffer() string       { return s.buffer }
func (s *Session) DocumentName() string { return s.name }
func (s *Session) CanUndo() bool        { return s.history.CanUndo() }
func (s *Session) CanRedo() bool        { return s.history.CanRedo() }

// PendingSplits returns the offsets of split markers inserted since the last
// selection change, in insertion order.
func (s *Session) PendingSplits() []int {
	out := make([]int, len(s.pending))
	copy(out, s.pending)
	return out
}

// Export serializes the chapter list in the saved-document format.
func (s *Session) Export() string {
	return chapter.Format(s.chapters)
}
