package main

import (
	"fmt"
	"io"

	"github.com/aledsdavies/cobolscope/core/document"
	"github.com/aledsdavies/cobolscope/core/errors"
	"github.com/aledsdavies/cobolscope/core/formatter"
	"github.com/aledsdavies/cobolscope/runtime/cobol"
)

// DisplayParagraph renders one paragraph as a tree structure
// This is a thin wrapper around formatter.FormatTree
func DisplayParagraph(w io.Writer, name string, stmts []document.Statement, useColor bool) {
	formatter.FormatTree(w, name, stmts, useColor)
}

// DisplayDiagnostics prints non-fatal diagnostics as warnings
func DisplayDiagnostics(w io.Writer, diags []errors.Diagnostic, useColor bool) {
	for _, d := range diags {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Warning: ", ColorYellow, useColor), d.String())
	}
}

// DisplaySummary prints a one-line summary of a written document
func DisplaySummary(w io.Writer, dest string, result *cobol.Result, data []byte, useColor bool) {
	prog := result.Program
	statements := 0
	for _, name := range prog.Procedure.Keys() {
		stmts, _ := prog.Paragraph(name)
		statements += document.Count(stmts)
	}

	_, _ = fmt.Fprintf(w, "%s %s (%s, %d data items, %d paragraphs, %d statements)\n",
		Colorize("Wrote", ColorGreen, useColor),
		dest,
		prog.Metadata.Format,
		len(prog.Data),
		prog.Procedure.Len(),
		statements)
	_, _ = fmt.Fprintf(w, "%s\n", Colorize("blake2b-256 "+document.DigestString(data), ColorGray, useColor))
}
