package parser

import (
	"fmt"
	"io"
)

// TextParser handles plain text files in UTF-8 or a detectable legacy
// encoding.
type TextParser struct{}

func (p *TextParser) Parse(r io.Reader, filename string) (string, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return "", fmt.Errorf("read %s: %w", filename, err)
	}
	return DecodeText(data), nil
}
