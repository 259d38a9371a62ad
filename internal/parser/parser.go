package parser

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"
)

// ErrUnsupportedType is returned for files whose extension has no parser.
var ErrUnsupportedType = errors.New("unsupported file type")

// Parser converts raw document bytes into plain manuscript text. Block
// elements become lines separated by blank lines, so heading lines stay on
// their own line for segmentation.
type Parser interface {
	Parse(r io.Reader, filename string) (string, error)
}

// Options tunes parser selection.
type Options struct {
	PDFFallbackPdftotext bool
}

// SupportedExtensions lists file extensions this service can handle.
var SupportedExtensions = map[string]bool{
	".txt":      true,
	".md":       true,
	".markdown": true,
	".html":     true,
	".htm":      true,
	".pdf":      true,
	".docx":     true,
	".epub":     true,
}

// ForFile returns the appropriate parser for a filename.
func ForFile(filename string, opts Options) (Parser, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".txt":
		return &TextParser{}, nil
	case ".md", ".markdown":
		return &MarkdownParser{}, nil
	case ".html", ".htm":
		return &HTMLParser{}, nil
	case ".pdf":
		return &PDFParser{FallbackPdftotext: opts.PDFFallbackPdftotext}, nil
	case ".docx":
		return &DOCXParser{}, nil
	case ".epub":
		return &EPUBParser{}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedType, ext)
	}
}

// Extract picks a parser by extension and runs it.
func Extract(r io.Reader, filename string, opts Options) (string, error) {
	p, err := ForFile(filename, opts)
	if err != nil {
		return "", err
	}
	return p.Parse(r, filename)
}

// IsSupportedExtension checks if a file extension is supported.
func IsSupportedExtension(filename string) bool {
	ext := strings.ToLower(filepath.Ext(filename))
	return SupportedExtensions[ext]
}

// blocks accumulates block-level text separated by blank lines.
type blocks struct {
	sb strings.Builder
}

func (b *blocks) add(text string) {
	text = strings.TrimSpace(text)
	if text == "" {
		return
	}
	if b.sb.Len() > 0 {
		b.sb.WriteString("\n\n")
	}
	b.sb.WriteString(text)
}

func (b *blocks) String() string { return b.sb.String() }
