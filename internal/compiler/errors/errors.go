// Package errors provides structured error handling for the config rewriter.
// It defines error codes and categories for the failures the rewrite pipeline
// can report, and formatting for terminal output.
package errors

import (
	"fmt"
	"strings"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
)

// ErrorCode represents a unique error code
type ErrorCode string

// ErrorCategory represents the category of an error
type ErrorCategory string

const (
	// CategorySyntax represents source that is not valid JavaScript (SYN001-099)
	CategorySyntax ErrorCategory = "syntax"
	// CategoryExport represents valid source whose export cannot be rewritten (EXP100-199)
	CategoryExport ErrorCategory = "export"
	// CategoryCodeGen represents failures while printing the result (GEN200-299)
	CategoryCodeGen ErrorCategory = "codegen"
)

// Syntax error codes
const (
	// ErrUnexpectedToken indicates an unexpected token was encountered
	ErrUnexpectedToken ErrorCode = "SYN001"
	// ErrExpectedToken indicates a specific token was expected but not found
	ErrExpectedToken ErrorCode = "SYN002"
	// ErrUnexpectedEOF indicates the input ended in the middle of a construct
	ErrUnexpectedEOF ErrorCode = "SYN003"
	// ErrInvalidAssignmentTarget indicates the left side of an assignment
	// cannot be assigned to
	ErrInvalidAssignmentTarget ErrorCode = "SYN004"
	// ErrLexical indicates a malformed token (string, number, comment, regexp)
	ErrLexical ErrorCode = "SYN005"
)

// Export error codes
const (
	// ErrNoExport indicates the module has no default or module.exports export
	ErrNoExport ErrorCode = "EXP101"
	// ErrUnsupportedShape indicates the exported value has a form the
	// rewriter does not handle
	ErrUnsupportedShape ErrorCode = "EXP102"
)

// Code generation error codes
const (
	// ErrUnprintableNode indicates a synthesized node the printer cannot emit
	ErrUnprintableNode ErrorCode = "GEN201"
)

// Sentinels for errors.Is. ErrParse matches every syntax error regardless of
// its code.
var (
	ErrParse                  = &CompilerError{Category: CategorySyntax}
	ErrNoExportFound          = &CompilerError{Category: CategoryExport, Code: ErrNoExport}
	ErrUnsupportedExportShape = &CompilerError{Category: CategoryExport, Code: ErrUnsupportedShape}
)

// CompilerError represents a structured error with its location in the
// config file
type CompilerError struct {
	// Code is the unique error code (e.g., "SYN001", "EXP101")
	Code ErrorCode
	// Category is the error category
	Category ErrorCategory
	// Message is the primary error message
	Message string
	// Location is the source location of the error
	Location ast.SourceLocation
	// File is the source file name (optional)
	File string
	// Near is the source text at the error position (optional)
	Near string
	// SourceLine is the full line the error points into (optional)
	SourceLine string
	// Suggestion provides a hint for fixing the error (optional)
	Suggestion string
}

// Error implements the error interface
func (e *CompilerError) Error() string {
	return FormatCompact(e)
}

// Is matches sentinel errors by code, or by category when the sentinel has
// no code
func (e *CompilerError) Is(target error) bool {
	t, ok := target.(*CompilerError)
	if !ok {
		return false
	}
	if t.Code != "" {
		return t.Code == e.Code
	}
	return t.Category != "" && t.Category == e.Category
}

// WithFile sets the source file name for the error
func (e *CompilerError) WithFile(file string) *CompilerError {
	e.File = file
	return e
}

// WithSource attaches the offending source line for display
func (e *CompilerError) WithSource(source string) *CompilerError {
	lines := strings.Split(source, "\n")
	if e.Location.Line >= 1 && e.Location.Line <= len(lines) {
		e.SourceLine = strings.TrimRight(lines[e.Location.Line-1], "\r")
	}
	return e
}

// WithSuggestion sets a suggestion for fixing the error
func (e *CompilerError) WithSuggestion(suggestion string) *CompilerError {
	e.Suggestion = suggestion
	return e
}

// NewSyntaxError creates a syntax error at loc
func NewSyntaxError(code ErrorCode, loc ast.SourceLocation, message, near string) *CompilerError {
	return &CompilerError{
		Code:     code,
		Category: CategorySyntax,
		Message:  message,
		Location: loc,
		Near:     near,
	}
}

// NewNoExportFound creates an EXP101 error for a module of the given kind
func NewNoExportFound(kind ast.ModuleKind) *CompilerError {
	want := "module.exports = ..."
	if kind == ast.ESModule {
		want = "export default ..."
	}
	return &CompilerError{
		Code:       ErrNoExport,
		Category:   CategoryExport,
		Message:    fmt.Sprintf("no configuration export found (expected %s)", want),
		Location:   ast.SourceLocation{Line: 1, Column: 1},
		Suggestion: fmt.Sprintf("Export your Next.js config with %s", want),
	}
}

// NewUnsupportedExportShape creates an EXP102 error describing the
// expression that could not be rewritten
func NewUnsupportedExportShape(loc ast.SourceLocation, shape string) *CompilerError {
	return &CompilerError{
		Code:     ErrUnsupportedShape,
		Category: CategoryExport,
		Message:  fmt.Sprintf("cannot rewrite exported %s", shape),
		Location: loc,
	}
}

// NewUnprintableNode creates a GEN201 error
func NewUnprintableNode(node ast.Node) *CompilerError {
	return &CompilerError{
		Code:     ErrUnprintableNode,
		Category: CategoryCodeGen,
		Message:  fmt.Sprintf("cannot print synthesized %T", node),
		Location: node.Location(),
	}
}
