package main

import (
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aledsdavies/cadence/runtime/parser"
)

// CLIError represents a formatted CLI error with context
type CLIError struct {
	Type    string // "parse", "config", "program", "run", "history"
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

	var sourceErr *SourceError
	var parseErr *parser.ParseError
	var cliErr *CLIError
	switch {
	case errors.As(err, &sourceErr):
		formatParseError(w, sourceErr.File, sourceErr.Err, useColor)
	case errors.As(err, &cliErr):
		formatCLIError(w, cliErr, useColor)
	case errors.As(err, &parseErr):
		formatParseError(w, "", parseErr, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatParseError prints the summary line followed by the source snippet
// with its caret.
func formatParseError(w io.Writer, file string, err *parser.ParseError, useColor bool) {
	summary := err.Summary()
	if file != "" {
		summary = file + ":" + summary
	}
	_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), summary)

	snippet := err.Snippet()
	if snippet == "" {
		return
	}
	for _, line := range strings.Split(strings.TrimRight(snippet, "\n"), "\n") {
		if strings.HasPrefix(strings.TrimSpace(line), "|") && strings.Contains(line, "^") {
			line = Colorize(line, ColorRed, useColor)
		} else {
			line = Colorize(line, ColorGray, useColor)
		}
		_, _ = fmt.Fprintln(w, line)
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

// SourceError is a parse failure in a named file.
type SourceError struct {
	File string
	Err  *parser.ParseError
}

func (e *SourceError) Error() string { return e.File + ": " + e.Err.Error() }

func (e *SourceError) Unwrap() error { return e.Err }
