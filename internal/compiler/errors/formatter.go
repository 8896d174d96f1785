package errors

import (
	"fmt"
	"strings"
)

// FormatError returns a human-readable error message for terminal output
func FormatError(e *CompilerError) string {
	var b strings.Builder

	file := e.File
	if file == "" {
		file = "<source>"
	}

	fmt.Fprintf(&b, "%s in %s\n", categoryDisplayName(e.Category), file)
	fmt.Fprintf(&b, "Line %d, Column %d: %s\n", e.Location.Line, e.Location.Column, e.Message)

	if e.SourceLine != "" {
		fmt.Fprintf(&b, "%s  %s\n", formatLineNumber(e.Location.Line), e.SourceLine)
		col := e.Location.Column
		if col < 1 {
			col = 1
		}
		fmt.Fprintf(&b, "%s  %s^\n", strings.Repeat(" ", len(formatLineNumber(e.Location.Line))), caretPadding(e.SourceLine, col))
	}

	if e.Suggestion != "" {
		fmt.Fprintf(&b, "\n💡 %s\n", e.Suggestion)
	}

	return b.String()
}

// FormatCompact returns a compact one-line error format
func FormatCompact(e *CompilerError) string {
	file := e.File
	if file == "" {
		file = "<source>"
	}
	msg := fmt.Sprintf("%s:%d:%d: %s [%s]",
		file, e.Location.Line, e.Location.Column, e.Message, e.Code)
	if e.Near != "" {
		msg += fmt.Sprintf(" (near '%s')", e.Near)
	}
	return msg
}

// caretPadding reproduces tabs from the source line so the caret lines up
func caretPadding(line string, col int) string {
	var b strings.Builder
	for i := 0; i < col-1 && i < len(line); i++ {
		if line[i] == '\t' {
			b.WriteByte('\t')
		} else {
			b.WriteByte(' ')
		}
	}
	return b.String()
}

// categoryDisplayName returns a human-readable category name
func categoryDisplayName(category ErrorCategory) string {
	switch category {
	case CategorySyntax:
		return "Syntax Error"
	case CategoryExport:
		return "Unsupported Config"
	case CategoryCodeGen:
		return "Code Generation Error"
	default:
		return "Error"
	}
}

// formatLineNumber formats a line number for display
func formatLineNumber(lineNum int) string {
	return fmt.Sprintf("%3d |", lineNum)
}
