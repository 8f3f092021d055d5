package pdfwriter

import (
	"encoding/hex"
	"math"
	"strconv"
	"strings"

	"golang.org/x/text/encoding/unicode"
)

// EscapeLiteral escapes the characters that delimit a literal string: \ ( and ).
// The result is meant to be wrapped in parentheses by the caller.
func EscapeLiteral(s string) string {
	if !strings.ContainsAny(s, `\()`) {
		return s
	}
	var b strings.Builder
	b.Grow(len(s) + 8)
	for i := 0; i < len(s); i++ {
		switch c := s[i]; c {
		case '\\', '(', ')':
			b.WriteByte('\\')
			b.WriteByte(c)
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// TextString encodes s as a PDF text string for the document information dictionary:
// a literal string when s is printable ASCII, otherwise UTF-16BE with a byte order mark
// written as a hex string.
func TextString(s string) string {
	if isPrintableASCII(s) {
		return "(" + EscapeLiteral(s) + ")"
	}
	enc := unicode.UTF16(unicode.BigEndian, unicode.UseBOM).NewEncoder()
	utf16, err := enc.String(strings.ToValidUTF8(s, "\uFFFD"))
	if err != nil {
		return "(" + EscapeLiteral(strings.Map(asciiOnly, s)) + ")"
	}
	return "<" + strings.ToUpper(hex.EncodeToString([]byte(utf16))) + ">"
}

func isPrintableASCII(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < 0x20 || s[i] > 0x7e {
			return false
		}
	}
	return true
}

func asciiOnly(r rune) rune {
	if r < 0x20 || r > 0x7e {
		return '?'
	}
	return r
}

// FormatNumber writes a real number with at most four decimals and no exponent.
func FormatNumber(f float64) string {
	f = math.Round(f*1e4) / 1e4
	if f == 0 {
		return "0"
	}
	return strconv.FormatFloat(f, 'f', -1, 64)
}
