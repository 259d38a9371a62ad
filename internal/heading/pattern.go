// Package heading recognizes chapter and appendix heading lines. Heading
// families are described as data (see patterns.yaml) and compiled into a
// priority-ordered Table, so new formats and locales can be added without
// touching the segmentation algorithm.
package heading

import (
	_ "embed"
	"fmt"
	"os"
	"regexp"
	"strings"
	"sync"

	"gopkg.in/yaml.v3"
)

//go:embed patterns.yaml
var defaultPatterns []byte

// Kind distinguishes chapter headings from appendix headings.
type Kind string

const (
	KindChapter  Kind = "chapter"
	KindAppendix Kind = "appendix"
)

// Family is one pattern variant for recognizing a heading line.
type Family struct {
	Name            string `yaml:"name" json:"name"`
	Kind            Kind   `yaml:"kind" json:"kind"`
	Pattern         string `yaml:"pattern" json:"pattern"`
	CaseInsensitive bool   `yaml:"case_insensitive" json:"case_insensitive"`
	TitleGroup      int    `yaml:"title_group" json:"title_group"` // Capture group holding an inline title, 0 if none

	compiled *regexp.Regexp
}

// File is the on-disk layout of a heading table.
type File struct {
	Version  int      `yaml:"version"`
	Families []Family `yaml:"families"`
}

// Table is a compiled, priority-ordered set of heading families.
type Table struct {
	chapters   []*Family
	appendices []*Family
}

// ValidationError describes a problem with one family definition.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Compile validates and compiles a family in place.
func (f *Family) Compile() error {
	if f.Name == "" {
		return ValidationError{Field: "name", Message: "required field is missing"}
	}
	if f.Kind != KindChapter && f.Kind != KindAppendix {
		return ValidationError{Field: f.Name + ".kind", Message: fmt.Sprintf("must be %q or %q, got %q", KindChapter, KindAppendix, f.Kind)}
	}
	if strings.TrimSpace(f.Pattern) == "" {
		return ValidationError{Field: f.Name + ".pattern", Message: "pattern is required"}
	}

	flags := "(?m)"
	if f.CaseInsensitive {
		flags = "(?mi)"
	}
	re, err := regexp.Compile(flags + f.Pattern)
	if err != nil {
		return fmt.Errorf("compiling family %q: %w", f.Name, err)
	}
	if f.TitleGroup < 0 || f.TitleGroup > re.NumSubexp() {
		return ValidationError{
			Field:   f.Name + ".title_group",
			Message: fmt.Sprintf("must be between 0 and %d", re.NumSubexp()),
		}
	}
	f.compiled = re
	return nil
}

// NewTable compiles families into a table, keeping their relative order.
func NewTable(families []Family) (*Table, error) {
	t := &Table{}
	seen := make(map[string]bool, len(families))
	for i := range families {
		f := families[i]
		if seen[f.Name] {
			return nil, ValidationError{Field: f.Name, Message: "duplicate family name"}
		}
		seen[f.Name] = true
		if err := f.Compile(); err != nil {
			return nil, err
		}
		if f.Kind == KindChapter {
			t.chapters = append(t.chapters, &f)
		} else {
			t.appendices = append(t.appendices, &f)
		}
	}
	if len(t.chapters) == 0 && len(t.appendices) == 0 {
		return nil, fmt.Errorf("heading table has no families")
	}
	return t, nil
}

// Parse builds a table from YAML.
func Parse(data []byte) (*Table, error) {
	var file File
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("parse heading table: %w", err)
	}
	return NewTable(file.Families)
}

// LoadFile builds a table from a YAML file on disk.
func LoadFile(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read heading table: %w", err)
	}
	return Parse(data)
}

var (
	defaultOnce  sync.Once
	defaultTable *Table
)

// Default returns the built-in table. It panics if the embedded definitions
// are invalid, which only a broken build can cause.
func Default() *Table {
	defaultOnce.Do(func() {
		t, err := Parse(defaultPatterns)
		if err != nil {
			panic("heading: invalid built-in patterns: " + err.Error())
		}
		defaultTable = t
	})
	return defaultTable
}

// Families lists the table's families, chapters first, in priority order.
func (t *Table) Families() []Family {
	out := make([]Family, 0, len(t.chapters)+len(t.appendices))
	for _, f := range t.chapters {
		out = append(out, *f)
	}
	for _, f := range t.appendices {
		out = append(out, *f)
	}
	return out
}
