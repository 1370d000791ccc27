package divisions

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/aledsdavies/cobolscope/core/document"
)

// Each clause is found independently anywhere in the text after the name.
var (
	pictureRegex = regexp.MustCompile(`(?i)\b(PIC|PICTURE)\s+(IS\s+)?([A-Z0-9()V9S]+)`)
	usageRegex   = regexp.MustCompile(`(?i)\b(COMP|COMP-3|BINARY|DISPLAY|PACKED-DECIMAL)\b`)

	// VALUE captures the rest of the line, so a USAGE clause written after
	// it ends up inside the value text as well.
	valueRegex = regexp.MustCompile(`(?i)\bVALUE\s+(IS\s+)?(.+)`)
)

// ParseDataEntry extracts a level-numbered entry from one trimmed DATA
// DIVISION line. It reports false when the line does not start with a
// numeric level (FD, SD, COPY and similar lines). The Section field is left
// for the caller.
func ParseDataEntry(line string) (document.DataItem, bool) {
	parts := strings.Fields(strings.TrimRight(line, "."))
	if len(parts) == 0 || !isLevel(parts[0]) {
		return document.DataItem{}, false
	}

	item := document.DataItem{Level: parts[0]}
	if len(parts) > 1 {
		item.Name = parts[1]
	}

	var rest string
	if len(parts) > 2 {
		rest = strings.Join(parts[2:], " ")
	}
	item.Picture = pictureClause(rest)
	item.Value = valueClause(rest)
	item.Usage = usageClause(rest)
	return item, true
}

func isLevel(s string) bool {
	for _, r := range s {
		if !unicode.IsDigit(r) {
			return false
		}
	}
	return s != ""
}

func pictureClause(rest string) *string {
	m := pictureRegex.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}
	return &m[3]
}

func valueClause(rest string) *string {
	m := valueRegex.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}
	v := strings.TrimSpace(m[2])
	return &v
}

func usageClause(rest string) *string {
	m := usageRegex.FindStringSubmatch(rest)
	if m == nil {
		return nil
	}
	return &m[1]
}
