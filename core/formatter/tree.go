// Package formatter renders parsed paragraphs for humans.
package formatter

import (
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/cobolscope/core/document"
)

// ANSI color codes
const (
	ColorReset  = "\033[0m"
	ColorRed    = "\033[31m"
	ColorGreen  = "\033[32m"
	ColorYellow = "\033[33m"
	ColorBlue   = "\033[34m"
	ColorCyan   = "\033[36m"
	ColorGray   = "\033[90m"
)

// Colorize wraps text in ANSI color codes if color is enabled
func Colorize(text, color string, useColor bool) string {
	if !useColor {
		return text
	}
	return color + text + ColorReset
}

// FormatTree renders one paragraph as a statement tree. Nested blocks of
// IF, EVALUATE and inline PERFORM are indented under their statement.
func FormatTree(w io.Writer, paragraph string, stmts []document.Statement, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s:\n", Colorize(paragraph, ColorGreen, useColor))

	if len(stmts) == 0 {
		_, _ = fmt.Fprintf(w, "(no statements)\n")
		return
	}
	renderBlock(w, stmts, "", useColor)
}

// FormatProgram renders every paragraph in document order.
func FormatProgram(w io.Writer, prog *document.Program, useColor bool) {
	for i, name := range prog.Procedure.Keys() {
		if i > 0 {
			_, _ = fmt.Fprintln(w)
		}
		stmts, _ := prog.Paragraph(name)
		FormatTree(w, name, stmts, useColor)
	}
}

// renderBlock renders statements with tree characters at the given indent
func renderBlock(w io.Writer, stmts []document.Statement, indent string, useColor bool) {
	for i, stmt := range stmts {
		prefix := indent + "├─ "
		if i == len(stmts)-1 {
			prefix = indent + "└─ "
		}
		_, _ = fmt.Fprintf(w, "%s%s\n", prefix, renderStatement(stmt, useColor))
		renderChildren(w, stmt, indent+"   ", useColor)
	}
}

// renderChildren renders the nested blocks of a compound statement
func renderChildren(w io.Writer, stmt document.Statement, indent string, useColor bool) {
	switch s := stmt.(type) {
	case document.If:
		renderBlock(w, s.Then, indent, useColor)
		if len(s.Else) > 0 {
			_, _ = fmt.Fprintf(w, "%s%s\n", indent, Colorize("ELSE", ColorCyan, useColor))
			renderBlock(w, s.Else, indent, useColor)
		}
	case document.Evaluate:
		for _, c := range s.Cases {
			_, _ = fmt.Fprintf(w, "%s%s %s\n", indent, Colorize("WHEN", ColorCyan, useColor), c.Condition)
			renderBlock(w, c.Body, indent+"   ", useColor)
		}
	case document.Perform:
		renderBlock(w, s.Body, indent, useColor)
	}
}

// renderStatement renders the one-line label of a statement
func renderStatement(stmt document.Statement, useColor bool) string {
	switch s := stmt.(type) {
	case document.If:
		return join(Colorize("IF", ColorCyan, useColor), s.Condition)
	case document.Evaluate:
		return join(Colorize("EVALUATE", ColorCyan, useColor), s.Subject)
	case document.Perform:
		return join(Colorize("PERFORM", ColorCyan, useColor), s.Header)
	case document.Call:
		return join(Colorize("CALL", ColorBlue, useColor), s.Target, s.Arguments)
	case document.GoTo:
		return join(Colorize("GO TO", ColorBlue, useColor), s.Target)
	case document.Move:
		return strings.TrimSpace(s.Text)
	case document.Generic:
		return s.Text
	default:
		return fmt.Sprintf("(unknown statement type: %T)", stmt)
	}
}

// join joins the non-empty parts with single spaces
func join(parts ...string) string {
	var kept []string
	for _, p := range parts {
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, " ")
}
