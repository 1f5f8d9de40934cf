package survey

import (
	"bytes"
	"fmt"
	"os"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// newlines folds CRLF and the bare CR of classic Mac OS tools into LF.
var newlines = strings.NewReplacer("\r\n", "\n", "\r", "\n")

// decodeSample turns a detection sample into text. A sample cut from the
// middle of a file may end inside a multi-byte rune; that tail is dropped
// before deciding the bytes are not UTF-8.
func decodeSample(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}
	if trimmed := trimPartialRune(b); utf8.Valid(trimmed) {
		return string(trimmed)
	}
	return latin1(b)
}

// decodeText decodes a whole file: UTF-8 when valid, Latin-1 otherwise.
// A leading byte order mark is removed and line endings become "\n".
func decodeText(b []byte) string {
	b = bytes.TrimPrefix(b, utf8BOM)
	if utf8.Valid(b) {
		return newlines.Replace(string(b))
	}
	return newlines.Replace(latin1(b))
}

func readText(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("reading %s: %w", path, err)
	}
	return decodeText(data), nil
}

// latin1 cannot fail: every byte maps to a rune.
func latin1(b []byte) string {
	out, err := charmap.ISO8859_1.NewDecoder().Bytes(b)
	if err != nil {
		return string(b)
	}
	return string(out)
}

func trimPartialRune(b []byte) []byte {
	for i := len(b) - 1; i >= 0 && i >= len(b)-utf8.UTFMax; i-- {
		if utf8.RuneStart(b[i]) {
			if !utf8.FullRune(b[i:]) {
				return b[:i]
			}
			break
		}
	}
	return b
}
