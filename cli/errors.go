package main

import (
	"fmt"
	"io"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/aledsdavies/cobolscope/core/errors"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Type    string // "usage", "input", "parse", "output", "show"
	Message string
	Details string // Additional context
	Hint    string // How to fix it
}

// Error implements the error interface
func (e *CLIError) Error() string {
	var b strings.Builder
	b.WriteString(e.Message)
	if e.Details != "" {
		b.WriteString("\n")
		b.WriteString(e.Details)
	}
	if e.Hint != "" {
		b.WriteString("\n")
		b.WriteString(e.Hint)
	}
	return b.String()
}

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	switch e := err.(type) {
	case *CLIError:
		formatCLIError(w, e, useColor)
	case *errors.Error:
		formatCLIError(w, fromError(e), useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatCLIError formats CLI errors
func formatCLIError(w io.Writer, err *CLIError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Message)

	if err.Details != "" {
		_, _ = fmt.Fprintf(w, "\n%s\n", err.Details)
	}

	if err.Hint != "" {
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Hint: ", ColorYellow, useColor), err.Hint)
	}
}

// fromError attaches a hint to a typed pipeline error
func fromError(err *errors.Error) *CLIError {
	cliErr := &CLIError{Message: err.Message}
	if err.Cause != nil {
		cliErr.Details = err.Cause.Error()
	}

	switch err.Type {
	case errors.ErrFileNotFound:
		cliErr.Type = "input"
		cliErr.Hint = "Check the path; relative paths are resolved from the current directory"
	case errors.ErrInputRead:
		cliErr.Type = "input"
		cliErr.Hint = "Make sure the path is a readable file, not a directory"
	case errors.ErrNestingTooDeep:
		cliErr.Type = "parse"
		cliErr.Hint = "Raise the limit with --max-depth if the source is trusted"
	case errors.ErrOutputWrite:
		cliErr.Type = "output"
		cliErr.Hint = "Check that the output directory exists and is writable, or use --stdout"
	case errors.ErrSchemaValidation:
		cliErr.Type = "output"
		cliErr.Hint = "The generated document does not match its schema; please report this with the source file"
	default:
		cliErr.Type = strings.ToLower(err.Type)
	}
	return cliErr
}

// findClosestMatch finds the closest string match using fuzzy matching
func findClosestMatch(target string, candidates []string) string {
	if len(candidates) == 0 {
		return ""
	}

	ranks := fuzzy.RankFindFold(target, candidates)
	if len(ranks) > 0 {
		best := ranks[0]
		for _, r := range ranks[1:] {
			if r.Distance < best.Distance {
				best = r
			}
		}
		return best.Target
	}

	return ""
}
