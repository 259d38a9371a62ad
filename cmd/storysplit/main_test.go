package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dgallion1/storysplit/internal/chapter"
)

func run(t *testing.T, args ...string) string {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	require.NoError(t, cmd.Execute())
	return out.String()
}

func TestSplit_JSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novel.txt")
	require.NoError(t, os.WriteFile(path, []byte("Chapter 1: Intro\nHello\nChapter 2: Middle\nWorld"), 0o644))

	var chapters []chapter.Chapter
	require.NoError(t, json.Unmarshal([]byte(run(t, "split", path, "--json")), &chapters))
	require.Len(t, chapters, 2)
	assert.Equal(t, "Chapter 1 - Intro", chapters[0].Title)
	assert.Equal(t, "World", chapters[1].Content)
}

func TestSplit_Out(t *testing.T) {
	dir := t.TempDir()
	in := filepath.Join(dir, "novel.txt")
	out := filepath.Join(dir, "story", "novel.txt")
	require.NoError(t, os.WriteFile(in, []byte("Chapter 1: Intro\nHello"), 0o644))

	run(t, "split", in, "--out", out)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "Chapter 1 - Intro\nHello\n\n", string(data))
}

func TestSplit_Table(t *testing.T) {
	path := filepath.Join(t.TempDir(), "novel.txt")
	require.NoError(t, os.WriteFile(path, []byte("Chapter 1: Intro\nHello there"), 0o644))

	got := run(t, "split", path)
	assert.Contains(t, got, "novel.txt: 1 chapters")
	assert.Contains(t, got, "Chapter 1 - Intro")
	assert.Contains(t, got, "Hello there")
}

func TestLs(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(root, "story"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "story", "a.txt"), []byte("x"), 0o644))

	got := run(t, "ls", "story", "--root", root)
	assert.Contains(t, got, "a.txt")
	assert.Contains(t, got, "/story/a.txt")
}

func TestPatterns(t *testing.T) {
	got := run(t, "patterns")
	assert.Contains(t, got, "chapter-number-titled")
	assert.Contains(t, got, "zh-appendix-number")
}
