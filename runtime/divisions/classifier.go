// Package divisions routes normalized source lines to the division that owns
// them and extracts the IDENTIFICATION, ENVIRONMENT and DATA content.
// PROCEDURE DIVISION lines are only buffered; their structure is resolved by
// the lexer and parser packages.
package divisions

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
	"github.com/aledsdavies/cobolscope/runtime/source"
)

var (
	divisionRegex = regexp.MustCompile(`(?i)^\s*(IDENTIFICATION|ENVIRONMENT|DATA|PROCEDURE)\s+DIVISION\s*\.?`)
	sectionRegex  = regexp.MustCompile(`(?i)^\s*([\w-]+)\s+SECTION\s*\.?`)
)

// Division identifies one of the four COBOL divisions.
type Division int

const (
	NoDivision Division = iota
	Identification
	Environment
	Data
	Procedure
)

func (d Division) String() string {
	switch d {
	case Identification:
		return "IDENTIFICATION"
	case Environment:
		return "ENVIRONMENT"
	case Data:
		return "DATA"
	case Procedure:
		return "PROCEDURE"
	default:
		return "NONE"
	}
}

func parseDivision(name string) Division {
	switch strings.ToUpper(name) {
	case "IDENTIFICATION":
		return Identification
	case "ENVIRONMENT":
		return Environment
	case "DATA":
		return Data
	case "PROCEDURE":
		return Procedure
	}
	return NoDivision
}

// Result holds everything Classify extracted. Procedure keeps the raw
// PROCEDURE DIVISION lines (section headers included) in source order.
type Result struct {
	Identification document.OrderedMap[string]
	Environment    document.OrderedMap[[]string]
	Data           []document.DataItem
	Procedure      []source.Line
	Diagnostics    []errors.Diagnostic
}

// state is the scanner position within the program's division structure.
type state struct {
	division Division
	section  string // "" when no section header has been seen
}

// Classify scans normalized lines in order, tracking the current division
// and section, and routes each line to its division handler.
func Classify(lines []source.Line) *Result {
	res := &Result{Data: []document.DataItem{}}
	var st state
	for _, line := range lines {
		st = res.classify(st, line)
	}
	return res
}

// classify handles one line and returns the state for the next.
func (res *Result) classify(st state, line source.Line) state {
	trimmed := strings.TrimSpace(line.Text)

	if m := divisionRegex.FindStringSubmatch(trimmed); m != nil {
		return state{division: parseDivision(m[1])}
	}

	if m := sectionRegex.FindStringSubmatch(trimmed); m != nil {
		st.section = strings.ToUpper(m[1])
		if st.division == Procedure {
			res.Procedure = append(res.Procedure, line)
		}
		return st
	}

	switch st.division {
	case Identification:
		res.identification(trimmed)
	case Environment:
		res.environment(st, trimmed)
	case Data:
		res.data(st, line.Number, trimmed)
	case Procedure:
		res.Procedure = append(res.Procedure, line)
	}
	return st
}

// identification stores "KEY. value." paragraphs. Later keys overwrite.
func (res *Result) identification(line string) {
	key, value, _ := strings.Cut(line, ".")
	key = strings.TrimSpace(key)
	value = strings.TrimRight(strings.TrimSpace(value), ".")
	if key == "" || value == "" {
		return
	}
	res.Identification.Set(key, value)
}

// environment keeps lines verbatim under their section. Lines before the
// first section header have nowhere to go and are dropped.
func (res *Result) environment(st state, line string) {
	if st.section == "" {
		return
	}
	existing, _ := res.Environment.Get(st.section)
	res.Environment.Set(st.section, append(existing, line))
}

func (res *Result) data(st state, number int, line string) {
	item, ok := ParseDataEntry(line)
	if !ok {
		res.Diagnostics = append(res.Diagnostics, errors.Diagnostic{
			Kind:    errors.MalformedDataEntry,
			Line:    number,
			Message: fmt.Sprintf("no level number in %q", line),
		})
		return
	}
	if st.section != "" {
		section := st.section
		item.Section = &section
	}
	res.Data = append(res.Data, item)
}
