package session

import "errors"

// DefaultHistoryLimit bounds the undo stack when no limit is configured.
const DefaultHistoryLimit = 500

// Common errors for history operations.
var (
	ErrNothingToUndo = errors.New("nothing to undo")
	ErrNothingToRedo = errors.New("nothing to redo")
)

// History keeps full edit-buffer snapshots for undo and redo. It is not safe
// for concurrent use; the owning Session serializes access.
type History struct {
	undoStack []string
	redoStack []string

	maxEntries int
}

// NewHistory creates a history holding at most maxEntries undo snapshots.
func NewHistory(maxEntries int) *History {
	if maxEntries <= 0 {
		maxEntries = DefaultHistoryLimit
	}
	return &History{maxEntries: maxEntries}
}

// Push records a snapshot taken before an edit and clears the redo stack.
func (h *History) Push(snapshot string) {
	h.undoStack = append(h.undoStack, snapshot)
	h.redoStack = nil

	if len(h.undoStack) > h.maxEntries {
		excess := len(h.undoStack) - h.maxEntries
		h.undoStack = h.undoStack[excess:]
	}
}

// Undo pops the newest snapshot and parks current on the redo stack.
func (h *History) Undo(current string) (string, error) {
	if len(h.undoStack) == 0 {
		return "", ErrNothingToUndo
	}
	snap := h.undoStack[len(h.undoStack)-1]
	h.undoStack = h.undoStack[:len(h.undoStack)-1]
	h.redoStack = append(h.redoStack, current)
	return snap, nil
}

// Redo pops the newest undone snapshot and parks current on the undo stack.
func (h *History) Redo(current string) (string, error) {
	if len(h.redoStack) == 0 {
		return "", ErrNothingToRedo
	}
	snap := h.redoStack[len(h.redoStack)-1]
	h.redoStack = h.redoStack[:len(h.redoStack)-1]
	h.undoStack = append(h.undoStack, current)
	return snap, nil
}

// Clear drops both stacks.
func (h *History) Clear() {
	h.undoStack = nil
	h.redoStack = nil
}

func (h *History) CanUndo() bool { return len(h.undoStack) > 0 }
func (h *History) CanRedo() bool { return len(h.redoStack) > 0 }

// UndoCount returns the number of undo steps available.
func (h *History) UndoCount() int { return len(h.undoStack) }

// RedoCount returns the number of redo steps available.
func (h *History) RedoCount() int { return len(h.redoStack) }
