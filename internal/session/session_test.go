package session

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/storysplit/internal/chapter"
)

func seqIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("c%d", n)
	}
}

func newSession(t *testing.T, raw string, opts ...Option) *Session {
	t.Helper()
	s := New(nil, append([]Option{WithIDGenerator(seqIDs())}, opts...)...)
	require.NoError(t, s.Import("book.txt", raw))
	return s
}

func titles(chs []chapter.Chapter) []string {
	out := make([]string, len(chs))
	for i, c := range chs {
		out[i] = c.Title
	}
	return out
}

func assertSingleEditor(t *testing.T, s *Session) {
	t.Helper()
	editing := 0
	for _, c := range s.Chapters() {
		if c.Editing {
			editing++
			assert.Equal(t, s.Snapshot().SelectedID, c.ID)
		}
	}
	assert.LessOrEqual(t, editing, 1)
}

const twoChapters = "Chapter 1: Intro\nHello\nChapter 2: Middle\nWorld"

func TestImport_HeadingExample(t *testing.T) {
	s := newSession(t, twoChapters)

	chs := s.Chapters()
	require.Len(t, chs, 2)
	assert.Contains(t, chs[0].Title, "Intro")
	assert.Contains(t, chs[1].Title, "Middle")
	assert.Equal(t, "Hello", chs[0].Content)
	assert.Equal(t, "World", chs[1].Content)

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, chs[0].ID, sel.ID)
	assert.True(t, sel.Editing)
	assert.Equal(t, "Hello", s.Buffer())
	assert.Equal(t, "book.txt", s.DocumentName())
}

func TestImport_Fallback(t *testing.T) {
	s := newSession(t, "Just a single paragraph with no markers.")

	chs := s.Chapters()
	require.Len(t, chs, 1)
	assert.Equal(t, "Chapter 1 - Beginning", chs[0].Title)
	assert.Equal(t, "Just a single paragraph with no markers.", chs[0].Content)
}

func TestImport_RejectsEmpty(t *testing.T) {
	s := newSession(t, twoChapters)
	before := s.Snapshot()

	for _, raw := range []string{"", "   \n\t"} {
		err := s.Import("other.txt", raw)
		assert.ErrorIs(t, err, ErrEmptyDocument)
		assert.Equal(t, before, s.Snapshot())
	}
}

func TestImport_UniqueIDs(t *testing.T) {
	s := New(nil)
	require.NoError(t, s.Import("a", "Chapter 1\none\nChapter 2\ntwo\nChapter 3\nthree"))

	seen := map[string]bool{}
	for _, c := range s.Chapters() {
		require.NotEmpty(t, c.ID)
		assert.False(t, seen[c.ID], "duplicate id %s", c.ID)
		seen[c.ID] = true
	}
}

func TestSelect(t *testing.T) {
	s := newSession(t, twoChapters)
	require.True(t, s.InsertSplitMarker(0))

	assert.False(t, s.Select("missing"))
	assert.Len(t, s.PendingSplits(), 1)

	chs := s.Chapters()
	require.True(t, s.Select(chs[1].ID))
	assert.Equal(t, "World", s.Buffer())
	assert.Empty(t, s.PendingSplits())
	assert.False(t, s.CanUndo())

	chs = s.Chapters()
	assert.False(t, chs[0].Editing)
	assert.True(t, chs[1].Editing)
}

func TestUpdateContent(t *testing.T) {
	empty := New(nil)
	assert.False(t, empty.UpdateContent("text"))

	s := newSession(t, twoChapters)
	require.True(t, s.UpdateContent("Rewritten"))
	assert.Equal(t, "Rewritten", s.Buffer())
	assert.Equal(t, "Rewritten", s.Chapters()[0].Content)
}

func TestInsertSplitMarker(t *testing.T) {
	s := newSession(t, "Chapter 1: A\nabcdef")
	require.Equal(t, "abcdef", s.Buffer())

	require.True(t, s.InsertSplitMarker(3))
	assert.Equal(t, "abc\n====SPLIT CHAPTER====\ndef", s.Buffer())
	assert.Equal(t, []int{3}, s.PendingSplits())
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	// The chapter content is only replaced on commit.
	assert.Equal(t, "abcdef", s.Chapters()[0].Content)
}

func TestInsertSplitMarker_ClampsOffset(t *testing.T) {
	s := newSession(t, "Chapter 1: A\nab")

	require.True(t, s.InsertSplitMarker(100))
	assert.Equal(t, "ab\n====SPLIT CHAPTER====\n", s.Buffer())
	assert.Equal(t, []int{2}, s.PendingSplits())

	require.True(t, s.InsertSplitMarker(-4))
	assert.Equal(t, []int{2, 0}, s.PendingSplits())
	assert.Equal(t, "\n====SPLIT CHAPTER====\nab\n====SPLIT CHAPTER====\n", s.Buffer())
}

func TestInsertSplitMarker_CountsCharacters(t *testing.T) {
	s := newSession(t, "第一章：开始\n你好世界")
	require.Equal(t, "你好世界", s.Buffer())

	require.True(t, s.InsertSplitMarker(2))
	assert.Equal(t, "你好\n====SPLIT CHAPTER====\n世界", s.Buffer())
}

func TestInsertSplitMarker_RequiresSelection(t *testing.T) {
	s := New(nil)
	assert.False(t, s.InsertSplitMarker(0))
	assert.Empty(t, s.PendingSplits())
}

func TestUndoRedo(t *testing.T) {
	s := newSession(t, "Chapter 1: A\nabcdef")

	assert.False(t, s.Undo())
	assert.False(t, s.Redo())

	require.True(t, s.InsertSplitMarker(3))
	marked := s.Buffer()

	require.True(t, s.Undo())
	assert.Equal(t, "abcdef", s.Buffer())
	assert.True(t, s.CanRedo())
	assert.False(t, s.CanUndo())
	assert.True(t, s.Chapters()[0].Editing)

	require.True(t, s.Redo())
	assert.Equal(t, marked, s.Buffer())
	assert.True(t, s.CanUndo())
	assert.False(t, s.CanRedo())

	// A new edit discards the redo stack.
	require.True(t, s.Undo())
	require.True(t, s.InsertSplitMarker(1))
	assert.False(t, s.CanRedo())
}

func TestHistoryLimit(t *testing.T) {
	s := newSession(t, "Chapter 1: A\nabcdef", WithHistoryLimit(2))

	for i := 0; i < 3; i++ {
		require.True(t, s.InsertSplitMarker(0))
	}
	assert.True(t, s.Undo())
	assert.True(t, s.Undo())
	assert.False(t, s.Undo())
}

func TestCommitSplit(t *testing.T) {
	s := newSession(t, "Chapter 1: A\none\nChapter 2: B\ntwo")
	require.True(t, s.UpdateContent("First\n\nSecond"))
	require.True(t, s.InsertSplitMarker(5))

	require.True(t, s.CommitSplit())

	chs := s.Chapters()
	assert.Equal(t, []string{
		"Chapter 1 - Part 1",
		"Chapter 2 - Part 2",
		"Chapter 3 - B",
	}, titles(chs))
	assert.Equal(t, "First", chs[0].Content)
	assert.Equal(t, "Second", chs[1].Content)
	assert.Equal(t, "two", chs[2].Content)

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, chs[0].ID, sel.ID)
	assert.Equal(t, "First", s.Buffer())
	assert.Empty(t, s.PendingSplits())
	assert.False(t, s.CanUndo())
	assert.False(t, s.CanRedo())
	assertSingleEditor(t, s)
}

func TestCommitSplit_SplicesInPlace(t *testing.T) {
	s := newSession(t, "Chapter 1: A\none\nChapter 2: B\ntwo\nChapter 3: C\nthree")
	chs := s.Chapters()
	require.True(t, s.Select(chs[1].ID))
	require.True(t, s.UpdateContent("x y z"))
	require.True(t, s.InsertSplitMarker(1))
	require.True(t, s.InsertSplitMarker(3+len(splitInsert)))

	require.True(t, s.CommitSplit())
	assert.Equal(t, []string{
		"Chapter 1 - A",
		"Chapter 2 - Part 1",
		"Chapter 3 - Part 2",
		"Chapter 4 - Part 3",
		"Chapter 5 - C",
	}, titles(s.Chapters()))
	assert.Equal(t, "x", s.Buffer())
}

func TestCommitSplit_NoOps(t *testing.T) {
	s := newSession(t, twoChapters)
	before := s.Snapshot()

	// Nothing pending.
	assert.False(t, s.CommitSplit())
	assert.Equal(t, before, s.Snapshot())

	// Marker undone.
	require.True(t, s.InsertSplitMarker(2))
	require.True(t, s.Undo())
	assert.False(t, s.CommitSplit())
	assert.Len(t, s.Chapters(), 2)

	// Only empty pieces.
	require.True(t, s.UpdateContent("   "))
	require.True(t, s.InsertSplitMarker(1))
	assert.False(t, s.CommitSplit())
	assert.Len(t, s.Chapters(), 2)
}

func TestCommitSplit_SkipsEmptyPieces(t *testing.T) {
	s := newSession(t, "Chapter 1: A\nabc")
	require.True(t, s.InsertSplitMarker(0))
	require.True(t, s.InsertSplitMarker(100))

	require.True(t, s.CommitSplit())
	chs := s.Chapters()
	require.Len(t, chs, 1)
	assert.Equal(t, "Chapter 1 - Part 1", chs[0].Title)
	assert.Equal(t, "abc", chs[0].Content)
}

func TestSplitThenMerge_JoinContract(t *testing.T) {
	s := newSession(t, "Chapter 1: A\nx")
	require.True(t, s.UpdateContent("A\n\nB"))
	require.True(t, s.InsertSplitMarker(1))
	require.True(t, s.CommitSplit())

	chs := s.Chapters()
	require.Len(t, chs, 2)
	assert.Equal(t, "A", chs[0].Content)
	assert.Equal(t, "B", chs[1].Content)

	require.True(t, s.MergeWithNext(chs[0].ID))
	chs = s.Chapters()
	require.Len(t, chs, 1)
	assert.Equal(t, "A\n\nB", chs[0].Content)
}

func TestMergeWithNext(t *testing.T) {
	s := newSession(t, "Chapter 1: A\none\nChapter 2: B\ntwo\nChapter 3: C\nthree")
	chs := s.Chapters()

	// Select the chapter that gets absorbed.
	require.True(t, s.Select(chs[2].ID))
	require.True(t, s.MergeWithNext(chs[1].ID))

	got := s.Chapters()
	assert.Equal(t, []string{"Chapter 1 - A", "Chapter 2 - B"}, titles(got))
	assert.Equal(t, chs[1].ID, got[1].ID)
	assert.Equal(t, "two\n\nthree", got[1].Content)

	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, chs[1].ID, sel.ID)
	assert.Equal(t, "two\n\nthree", s.Buffer())
	assertSingleEditor(t, s)
}

func TestMergeWithNext_KeepsUnrelatedSelection(t *testing.T) {
	s := newSession(t, "Chapter 1: A\none\nChapter 2: B\ntwo\nChapter 3: C\nthree")
	chs := s.Chapters()
	require.True(t, s.InsertSplitMarker(1))

	require.True(t, s.MergeWithNext(chs[1].ID))
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, chs[0].ID, sel.ID)
	assert.Equal(t, []int{1}, s.PendingSplits())
}

func TestMergeWithNext_NoOps(t *testing.T) {
	s := newSession(t, twoChapters)
	chs := s.Chapters()
	before := s.Snapshot()

	assert.False(t, s.MergeWithNext(chs[1].ID))
	assert.False(t, s.MergeWithNext("missing"))
	assert.Equal(t, before, s.Snapshot())
}

func TestDelete(t *testing.T) {
	s := newSession(t, "Chapter 1: A\none\nChapter 2: B\ntwo\nChapter 3: C\nthree")
	chs := s.Chapters()

	require.True(t, s.Select(chs[1].ID))
	require.True(t, s.Delete(chs[1].ID))

	got := s.Chapters()
	assert.Equal(t, []string{"Chapter 1 - A", "Chapter 2 - C"}, titles(got))
	sel, ok := s.Selected()
	require.True(t, ok)
	assert.Equal(t, chs[0].ID, sel.ID)
	assert.Equal(t, "one", s.Buffer())

	assert.False(t, s.Delete("missing"))
}

func TestDelete_LastChapterClearsSelection(t *testing.T) {
	s := newSession(t, "Only text.")
	chs := s.Chapters()

	require.True(t, s.Delete(chs[0].ID))
	assert.Empty(t, s.Chapters())
	_, ok := s.Selected()
	assert.False(t, ok)
	assert.Equal(t, "", s.Buffer())
	assert.False(t, s.UpdateContent("x"))
}

func TestSingleEditorInvariant(t *testing.T) {
	s := newSession(t, "Chapter 1: A\none two\nChapter 2: B\nthree\nChapter 3: C\nfour\nChapter 4: D\nfive")
	assertSingleEditor(t, s)

	steps := []func(){
		func() { s.Select(s.Chapters()[2].ID) },
		func() { s.MergeWithNext(s.Chapters()[0].ID) },
		func() { s.InsertSplitMarker(2) },
		func() { s.CommitSplit() },
		func() { s.Delete(s.Chapters()[0].ID) },
		func() { s.Select(s.Chapters()[len(s.Chapters())-1].ID) },
		func() { s.MergeWithNext(s.Chapters()[len(s.Chapters())-2].ID) },
		func() { s.Delete(s.Chapters()[len(s.Chapters())-1].ID) },
	}
	for i, step := range steps {
		step()
		t.Run(fmt.Sprintf("step-%d", i), func(t *testing.T) {
			assertSingleEditor(t, s)
		})
	}
}

func TestExportRoundTrip(t *testing.T) {
	s := newSession(t, "Prologue here.\nChapter 1: A\none\n\n  two\nAppendix: Notes\nn")
	exported := s.Export()

	r := New(nil, WithIDGenerator(seqIDs()))
	require.NoError(t, r.Import("book.txt", exported))

	orig, got := s.Chapters(), r.Chapters()
	require.Len(t, got, len(orig))
	for i := range orig {
		assert.Equal(t, orig[i].Title, got[i].Title)
		assert.Equal(t, orig[i].Content, got[i].Content)
	}
}

func TestSnapshot_IsACopy(t *testing.T) {
	s := newSession(t, twoChapters)
	snap := s.Snapshot()
	snap.Chapters[0].Title = "changed"

	assert.Equal(t, "Chapter 1 - Intro", s.Chapters()[0].Title)
}
