package parser

import (
	"fmt"
	"io"
	"os"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
)

// EPUBParser handles .epub files, reading spine documents in order.
type EPUBParser struct{}

func (p *EPUBParser) Parse(r io.Reader, filename string) (string, error) {
	// goreader opens by path, so spool to a temp file.
	tmp, err := os.CreateTemp("", "storysplit-epub-*.epub")
	if err != nil {
		return "", fmt.Errorf("create temp file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	if _, err := io.Copy(tmp, r); err != nil {
		tmp.Close()
		return "", fmt.Errorf("write temp file: %w", err)
	}
	tmp.Close()

	rc, err := epub.OpenReader(tmpPath)
	if err != nil {
		return "", fmt.Errorf("open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return "", fmt.Errorf("open epub: no rootfiles")
	}

	var out blocks
	for _, ref := range rc.Rootfiles[0].Spine.Itemrefs {
		if ref.Item == nil {
			continue
		}
		item, err := ref.Item.Open()
		if err != nil {
			continue
		}
		doc, err := html.Parse(item)
		item.Close()
		if err != nil {
			continue
		}
		out.add(htmlText(doc))
	}
	return out.String(), nil
}
