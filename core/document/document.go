// Package document defines the structured result of parsing one COBOL
// program and its JSON and CBOR encodings.
//
// A Program is built once per parse and then treated as immutable. Encoding
// is deterministic: map-like sections keep source order and every object has
// a fixed field order, so the same Program always encodes to the same bytes.
package document

import (
	"bytes"
	"encoding/json"
)

// RootParagraph holds statements that appear before the first paragraph label.
const RootParagraph = "_ROOT_"

// Format is the source layout detected for a program.
type Format string

const (
	FormatFixed Format = "FIXED" // columns 1-6 sequence, 7 indicator, 8-72 body
	FormatFree  Format = "FREE"
)

// Metadata describes where a Program came from.
type Metadata struct {
	File   string
	Format Format
}

// DataItem is one level-numbered entry from the DATA DIVISION.
// Optional clauses are nil when absent.
type DataItem struct {
	Level   string
	Name    string
	Picture *string
	Usage   *string
	Value   *string
	Section *string
}

// Program is the document produced for one source file.
type Program struct {
	Metadata       Metadata
	Identification OrderedMap[string]
	Environment    OrderedMap[[]string]
	Data           []DataItem
	Procedure      OrderedMap[[]Statement]
}

// NewProgram returns an empty Program with the root paragraph in place.
func NewProgram(file string, format Format) *Program {
	p := &Program{
		Metadata: Metadata{File: file, Format: format},
		Data:     []DataItem{},
	}
	p.Procedure.Set(RootParagraph, []Statement{})
	return p
}

// Paragraph returns the statements recorded under name.
func (p *Program) Paragraph(name string) ([]Statement, bool) {
	return p.Procedure.Get(name)
}

func (m Metadata) record() record {
	return record{
		{"file", m.File},
		{"format", string(m.Format)},
	}
}

func (d DataItem) record() record {
	return record{
		{"level", d.Level},
		{"name", d.Name},
		{"picture", d.Picture},
		{"usage", d.Usage},
		{"value", d.Value},
		{"section", d.Section},
	}
}

func (d DataItem) MarshalJSON() ([]byte, error) { return d.record().MarshalJSON() }
func (d DataItem) MarshalCBOR() ([]byte, error) { return d.record().MarshalCBOR() }

func (p *Program) record() record {
	data := p.Data
	if data == nil {
		data = []DataItem{}
	}
	var procedure OrderedMap[[]Statement]
	for _, name := range p.Procedure.Keys() {
		stmts, _ := p.Procedure.Get(name)
		procedure.Set(name, statementList(stmts))
	}
	return record{
		{"metadata", p.Metadata.record()},
		{"identification_division", p.Identification},
		{"environment_division", p.Environment},
		{"data_division", data},
		{"procedure_division", procedure},
	}
}

// MarshalJSON writes the document shape consumed by existing tooling.
func (p *Program) MarshalJSON() ([]byte, error) { return p.record().MarshalJSON() }

// MarshalCBOR writes the same shape as MarshalJSON in CBOR.
func (p *Program) MarshalCBOR() ([]byte, error) { return p.record().MarshalCBOR() }

// EncodeJSON returns the compact JSON encoding of p.
func EncodeJSON(p *Program) ([]byte, error) {
	return p.MarshalJSON()
}

// EncodeJSONIndent returns the JSON encoding of p indented by indent spaces.
func EncodeJSONIndent(p *Program, indent int) ([]byte, error) {
	raw, err := p.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", string(bytes.Repeat([]byte{' '}, indent))); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}
