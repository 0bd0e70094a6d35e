package invoice

import (
	"bytes"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
)

// Encoding names reported by Decode
const (
	EncodingUTF8        = "utf-8"
	EncodingWindows1250 = "windows-1250"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Decode converts raw invoice bytes to text and reports the encoding used.
// UTF-8 (with or without BOM) is tried first, anything else is read as Windows-1250.
func Decode(data []byte) (string, string, error) {
	if bytes.HasPrefix(data, utf8BOM) {
		out, err := unicode.UTF8BOM.NewDecoder().Bytes(data)
		if err != nil {
			return "", "", err
		}
		return string(out), EncodingUTF8, nil
	}
	if utf8.Valid(data) {
		return string(data), EncodingUTF8, nil
	}
	out, err := charmap.Windows1250.NewDecoder().Bytes(data)
	if err != nil {
		return "", "", err
	}
	return string(out), EncodingWindows1250, nil
}

// DetectDelimiter picks the most frequent of ';', tab and ',' on the first
// non-empty line. Ties go to the earlier candidate; no hits means ';'.
func DetectDelimiter(text string) rune {
	for _, line := range strings.Split(text, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		best, bestCount := ';', 0
		for _, c := range []rune{';', '\t', ','} {
			if n := strings.Count(line, string(c)); n > bestCount {
				best, bestCount = c, n
			}
		}
		return best
	}
	return ';'
}
