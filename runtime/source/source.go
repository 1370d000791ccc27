// Package source turns raw COBOL source bytes into numbered logical lines.
//
// Two layouts are recognised. FIXED layout reserves columns 1-6 for a
// sequence number, column 7 for an indicator and columns 8-72 for program
// text. FREE layout has no column discipline and uses *> for inline comments.
package source

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/aledsdavies/cobolscope/core/document"
)

const (
	detectSampleSize = 20  // non-blank lines examined by DetectFormat
	fixedThreshold   = 0.8 // share of matching lines needed for FIXED

	sequenceWidth = 6  // columns 1-6
	indicatorCol  = 6  // column 7, zero-based
	bodyStart     = 7  // column 8, zero-based
	bodyEnd       = 72 // last body column, exclusive zero-based end
)

// Line is one normalized source line. Number is 1-based in the raw input.
type Line struct {
	Number int
	Text   string
}

// SplitLines decodes data as UTF-8, replacing invalid bytes with U+FFFD,
// and splits it on \n, \r\n or \r. A trailing line terminator does not
// produce an extra empty line.
func SplitLines(data []byte) []string {
	text := decodeUTF8(data)
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	if text == "" {
		return nil
	}
	text = strings.TrimSuffix(text, "\n")
	return strings.Split(text, "\n")
}

func decodeUTF8(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	var b strings.Builder
	b.Grow(len(data))
	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			b.WriteRune(utf8.RuneError)
		} else {
			b.Write(data[:size])
		}
		data = data[size:]
	}
	return b.String()
}

// DetectFormat classifies raw lines as FIXED or FREE layout.
//
// The first 20 non-blank lines are examined. A line counts as fixed when it
// is longer than 6 characters, its indicator column holds one of
// '*', '/', '-', ' ', 'D' and its sequence area is all digits or all blanks.
// Input with no non-blank lines is FIXED.
func DetectFormat(lines []string) document.Format {
	examined, matches := 0, 0
	for _, line := range lines {
		if examined == detectSampleSize {
			break
		}
		if strings.TrimSpace(line) == "" {
			continue
		}
		examined++

		runes := []rune(line)
		if len(runes) <= sequenceWidth {
			continue
		}
		if isIndicator(runes[indicatorCol]) && isSequenceArea(runes[:sequenceWidth]) {
			matches++
		}
	}

	if examined == 0 {
		return document.FormatFixed
	}
	if float64(matches)/float64(examined) >= fixedThreshold {
		return document.FormatFixed
	}
	return document.FormatFree
}

func isIndicator(r rune) bool {
	switch r {
	case '*', '/', '-', ' ', 'D':
		return true
	}
	return false
}

func isSequenceArea(area []rune) bool {
	allDigits, allBlank := true, true
	for _, r := range area {
		if !unicode.IsDigit(r) {
			allDigits = false
		}
		if !unicode.IsSpace(r) {
			allBlank = false
		}
	}
	return allDigits || allBlank
}

// Normalize strips layout-specific regions and comments and drops lines
// that end up blank. Returned lines are never blank after trimming.
func Normalize(lines []string, format document.Format) []Line {
	out := make([]Line, 0, len(lines))
	for i, raw := range lines {
		var text string
		var ok bool
		if format == document.FormatFixed {
			text, ok = fixedBody(raw)
		} else {
			text, ok = freeBody(raw)
		}
		if !ok || strings.TrimSpace(text) == "" {
			continue
		}
		out = append(out, Line{Number: i + 1, Text: text})
	}
	return out
}

// fixedBody returns columns 8-72 of a fixed-format line, or false for short
// lines and comment lines (indicator '*' or '/').
func fixedBody(line string) (string, bool) {
	runes := []rune(line)
	if len(runes) <= indicatorCol {
		return "", false
	}
	if ind := runes[indicatorCol]; ind == '*' || ind == '/' {
		return "", false
	}
	end := min(len(runes), bodyEnd)
	return string(runes[bodyStart:end]), true
}

// freeBody cuts a free-format line at its first inline comment marker.
func freeBody(line string) (string, bool) {
	if i := strings.Index(line, "*>"); i >= 0 {
		line = line[:i]
	}
	return line, true
}
