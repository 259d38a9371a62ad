// Package library manages the folder of plain-text manuscripts: listing,
// reading with encoding detection, bulk loading, and saving chapter lists in
// the canonical format.
package library

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/dgallion1/storysplit/internal/chapter"
	"github.com/dgallion1/storysplit/internal/parser"
)

var (
	ErrFolderNotFound = errors.New("folder not found")
	ErrFileNotFound   = errors.New("file not found")
	ErrInvalidName    = errors.New("invalid story name")
)

// FileInfo describes one manuscript in a listing.
type FileInfo struct {
	Name     string    `json:"name"`
	Size     int64     `json:"size"`
	Path     string    `json:"path"` // Slash path relative to the store root, with a leading "/"
	Modified time.Time `json:"modifiedTime"`
}

// Document is a listed file together with its decoded text.
type Document struct {
	File FileInfo `json:"file"`
	Text string   `json:"text"`
}

// SaveResult is the outcome of a successful save.
type SaveResult struct {
	FileName string `json:"fileName"`
	Path     string `json:"path"`
}

// Mirror receives a copy of every saved story.
type Mirror interface {
	PutStory(ctx context.Context, name, text string) error
}

// Store reads and writes manuscripts under a root directory. Saved stories go
// to a fixed folder beneath the root.
type Store struct {
	root        string
	folder      string
	concurrency int
	log         *slog.Logger
	mirror      Mirror
}

func NewStore(root, folder string, concurrency int, log *slog.Logger) *Store {
	if concurrency <= 0 {
		concurrency = 4
	}
	if log == nil {
		log = slog.Default()
	}
	return &Store{
		root:        root,
		folder:      strings.Trim(path.Clean("/"+filepath.ToSlash(folder)), "/"),
		concurrency: concurrency,
		log:         log,
	}
}

// SetMirror attaches a mirror that is written after each save.
func (s *Store) SetMirror(m Mirror) {
	s.mirror = m
}

// Folder returns the folder that saved stories are written to.
func (s *Store) Folder() string {
	return s.folder
}

// resolve maps a slash path onto the filesystem. ".." segments cannot climb
// above the root.
func (s *Store) resolve(p string) string {
	clean := path.Clean("/" + filepath.ToSlash(p))
	return filepath.Join(s.root, filepath.FromSlash(clean))
}

func (s *Store) publicPath(full string) string {
	rel, err := filepath.Rel(s.root, full)
	if err != nil {
		rel = filepath.Base(full)
	}
	return "/" + filepath.ToSlash(rel)
}

// List returns the .txt files in folder ordered by name, descending into
// subfolders when recursive is set. An empty folder name means the story
// folder.
func (s *Store) List(folder string, recursive bool) ([]FileInfo, error) {
	if folder == "" {
		folder = s.folder
	}
	dir := s.resolve(folder)
	st, err := os.Stat(dir)
	if err != nil || !st.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrFolderNotFound, folder)
	}

	var files []FileInfo
	err = filepath.WalkDir(dir, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if p != dir && !recursive {
				return filepath.SkipDir
			}
			return nil
		}
		if !strings.EqualFold(filepath.Ext(d.Name()), ".txt") {
			return nil
		}
		info, err := d.Info()
		if err != nil {
			return err
		}
		files = append(files, FileInfo{
			Name:     d.Name(),
			Size:     info.Size(),
			Path:     s.publicPath(p),
			Modified: info.ModTime(),
		})
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", folder, err)
	}

	sort.SliceStable(files, func(i, j int) bool {
		if files[i].Name != files[j].Name {
			return files[i].Name < files[j].Name
		}
		return files[i].Path < files[j].Path
	})
	return files, nil
}

// Read returns the text of the file at p, a slash path relative to the root.
func (s *Store) Read(p string) (string, error) {
	full := s.resolve(p)
	f, err := os.Open(full)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return "", fmt.Errorf("%w: %s", ErrFileNotFound, p)
		}
		return "", fmt.Errorf("open %s: %w", p, err)
	}
	defer f.Close()

	text, err := parser.Extract(f, full, parser.Options{})
	if err != nil {
		return "", fmt.Errorf("read %s: %w", p, err)
	}
	return text, nil
}

// LoadAll reads every file concurrently and waits for all of them. Documents
// come back in listing order; files that fail to load are logged and left out.
func (s *Store) LoadAll(ctx context.Context, files []FileInfo) []Document {
	results := make([]*Document, len(files))
	sem := make(chan struct{}, s.concurrency)
	var wg sync.WaitGroup

	for i, fi := range files {
		select {
		case sem <- struct{}{}:
		case <-ctx.Done():
			s.log.Warn("load cancelled", "remaining", len(files)-i)
			wg.Wait()
			return collect(results)
		}
		wg.Add(1)
		go func(i int, fi FileInfo) {
			defer wg.Done()
			defer func() { <-sem }()

			text, err := s.Read(fi.Path)
			if err != nil {
				s.log.Warn("load failed", "path", fi.Path, "error", err)
				return
			}
			results[i] = &Document{File: fi, Text: text}
		}(i, fi)
	}
	wg.Wait()
	return collect(results)
}

func collect(results []*Document) []Document {
	docs := make([]Document, 0, len(results))
	for _, d := range results {
		if d != nil {
			docs = append(docs, *d)
		}
	}
	return docs
}

var extension = regexp.MustCompile(`\.[^/.]+$`)

// FileName derives the stored file name for a story: any extension is
// replaced by ".txt".
func FileName(storyName string) string {
	return extension.ReplaceAllString(storyName, "") + ".txt"
}

// Save writes chapters in the canonical format to the story folder, creating
// it if needed. A configured mirror is updated afterwards; mirror failures are
// logged and do not fail the save.
func (s *Store) Save(ctx context.Context, storyName string, chapters []chapter.Chapter) (SaveResult, error) {
	name := strings.TrimSpace(storyName)
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return SaveResult{}, fmt.Errorf("%w: %q", ErrInvalidName, storyName)
	}
	fileName := FileName(name)

	dir := s.resolve(s.folder)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return SaveResult{}, fmt.Errorf("create story folder: %w", err)
	}

	text := chapter.Format(chapters)
	full := filepath.Join(dir, fileName)
	if err := os.WriteFile(full, []byte(text), 0o644); err != nil {
		return SaveResult{}, fmt.Errorf("write %s: %w", fileName, err)
	}

	s.log.Info("story saved", "file", fileName, "chapters", len(chapters), "bytes", len(text))

	if s.mirror != nil {
		if err := s.mirror.PutStory(ctx, fileName, text); err != nil {
			s.log.Warn("story mirror failed", "file", fileName, "error", err)
		}
	}

	return SaveResult{FileName: fileName, Path: s.publicPath(full)}, nil
}
