package parser

import (
	"bytes"
	"io"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/japanese"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/encoding/simplifiedchinese"
	"golang.org/x/text/encoding/traditionalchinese"
	xunicode "golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
)

// legacyEncodings are tried in order when the input is not valid UTF-8.
var legacyEncodings = []encoding.Encoding{
	simplifiedchinese.GBK,
	simplifiedchinese.GB18030,
	traditionalchinese.Big5,
	japanese.ShiftJIS,
	japanese.EUCJP,
	korean.EUCKR,
	charmap.Windows1252,
	charmap.ISO8859_1,
}

// DecodeText converts manuscript bytes to UTF-8. A byte-order mark selects the
// encoding; otherwise valid UTF-8 is returned as is and common legacy
// encodings are tried before giving up and returning the bytes unchanged.
func DecodeText(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	switch {
	case bytes.HasPrefix(data, []byte{0xEF, 0xBB, 0xBF}):
		return string(data[3:])
	case bytes.HasPrefix(data, []byte{0xFF, 0xFE}):
		if s, ok := decodeWith(xunicode.UTF16(xunicode.LittleEndian, xunicode.IgnoreBOM), data[2:]); ok {
			return s
		}
	case bytes.HasPrefix(data, []byte{0xFE, 0xFF}):
		if s, ok := decodeWith(xunicode.UTF16(xunicode.BigEndian, xunicode.IgnoreBOM), data[2:]); ok {
			return s
		}
	}

	if utf8.Valid(data) {
		return string(data)
	}

	for _, enc := range legacyEncodings {
		if s, ok := decodeWith(enc, data); ok && isReasonableText(s) {
			return s
		}
	}
	return string(data)
}

func decodeWith(enc encoding.Encoding, data []byte) (string, bool) {
	res, err := io.ReadAll(transform.NewReader(bytes.NewReader(data), enc.NewDecoder()))
	if err != nil || !utf8.Valid(res) {
		return "", false
	}
	return string(res), true
}

// isReasonableText reports whether more than 90% of the runes are printable.
func isReasonableText(text string) bool {
	if text == "" {
		return false
	}
	printable, total := 0, 0
	for _, r := range text {
		total++
		if r != utf8.RuneError && (unicode.IsPrint(r) || unicode.IsSpace(r)) {
			printable++
		}
	}
	return float64(printable)/float64(total) > 0.9
}
