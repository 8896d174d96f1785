package ui

import (
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"
)

// ErrorLevel represents the severity of a message
type ErrorLevel int

const (
	ErrorLevelError ErrorLevel = iota
	ErrorLevelWarning
	ErrorLevelInfo
)

// ErrorOptions configures the message formatting
type ErrorOptions struct {
	Level   ErrorLevel
	Context string
	Problem string
	// Details is printed indented below the problem, line by line
	Details      []string
	Suggestions  []string
	HelpCommands []string
	NoColor      bool
}

// FormatError creates a standardized message with suggestions and help commands
//
// Example output:
//
//	❌ NOT A NEXT.JS PROJECT: could not find "next" as a dependency
//	   could not find "next" as a dependency
//
//	   → Create a Next.js app: npx create-next-app@latest
//	   → Get help: create-fuse-app --help
func FormatError(opts ErrorOptions) string {
	var b strings.Builder

	var headerColor, bodyColor *color.Color
	var symbol string

	switch opts.Level {
	case ErrorLevelError:
		headerColor = color.New(color.FgRed, color.Bold)
		bodyColor = color.New(color.FgRed)
		symbol = "❌"
	case ErrorLevelWarning:
		headerColor = color.New(color.FgYellow, color.Bold)
		bodyColor = color.New(color.FgYellow)
		symbol = "⚠️"
	default:
		headerColor = color.New(color.FgCyan, color.Bold)
		bodyColor = color.New(color.FgCyan)
		symbol = "ℹ️"
	}

	if opts.NoColor {
		headerColor.DisableColor()
		bodyColor.DisableColor()
	}

	if opts.Context != "" {
		headerColor.Fprintf(&b, "%s %s: %s\n", symbol, strings.ToUpper(opts.Context), firstLine(opts.Problem))
		bodyColor.Fprintf(&b, "   %s\n", indent(opts.Problem, "   "))
	} else {
		headerColor.Fprintf(&b, "%s %s\n", symbol, indent(opts.Problem, "   "))
	}

	for _, detail := range opts.Details {
		if strings.TrimSpace(detail) == "" {
			continue
		}
		b.WriteString("\n")
		fmt.Fprintf(&b, "   %s\n", indent(strings.TrimRight(detail, "\n"), "   "))
	}

	if len(opts.Suggestions) > 0 {
		b.WriteString("\n")
		yellow := color.New(color.FgYellow)
		if opts.NoColor {
			yellow.DisableColor()
		}
		yellow.Fprintf(&b, "   Did you mean: %s?\n", strings.Join(opts.Suggestions, ", "))
	}

	if len(opts.HelpCommands) > 0 {
		b.WriteString("\n")
		cyan := color.New(color.FgCyan)
		if opts.NoColor {
			cyan.DisableColor()
		}
		for _, cmd := range opts.HelpCommands {
			cyan.Fprintf(&b, "   → %s\n", cmd)
		}
	}

	return b.String()
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// indent prefixes every line after the first
func indent(s, prefix string) string {
	return strings.ReplaceAll(s, "\n", "\n"+prefix)
}

// WriteError writes a formatted message to the writer
func WriteError(w io.Writer, opts ErrorOptions) {
	fmt.Fprint(w, FormatError(opts))
}

// FormatSuccess creates a success message
func FormatSuccess(message string, noColor bool) string {
	green := color.New(color.FgGreen, color.Bold)
	if noColor {
		green.DisableColor()
	}
	return green.Sprintf("✓ %s", message)
}

// WriteSuccess writes a success message to the writer
func WriteSuccess(w io.Writer, message string, noColor bool) {
	fmt.Fprintln(w, FormatSuccess(message, noColor))
}

// NotNextProjectError is shown when package.json has no next dependency
func NotNextProjectError(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "NOT A NEXT.JS PROJECT",
		Problem: message,
		HelpCommands: []string{
			"Create a Next.js app: npx create-next-app@latest",
			"Get help: create-fuse-app --help",
		},
		NoColor: noColor,
	})
}

// InstallError is shown when the package manager fails
func InstallError(message string, packageManager string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "INSTALL FAILED",
		Problem: message,
		HelpCommands: []string{
			"Retry with another package manager: create-fuse-app --package-manager <npm|yarn|pnpm|bun>",
			fmt.Sprintf("Install with %s yourself, then run: create-fuse-app --skip-install", packageManager),
		},
		NoColor: noColor,
	})
}

// RewriteError is shown when a Next.js config cannot be rewritten
func RewriteError(file, message, manual string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelError,
		Context: "CONFIG NOT REWRITTEN",
		Problem: fmt.Sprintf("%s: %s", file, message),
		Details: []string{manual},
		HelpCommands: []string{
			"Preview a rewrite: create-fuse-app rewrite-config --dry-run",
		},
		NoColor: noColor,
	})
}

// ConfigError creates a standardized configuration error
func ConfigError(message string, suggestions []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:       ErrorLevelError,
		Context:     "CONFIGURATION ERROR",
		Problem:     message,
		Suggestions: suggestions,
		HelpCommands: []string{
			"View config: cat create-fuse-app.yaml",
			"Get help: create-fuse-app --help",
		},
		NoColor: noColor,
	})
}

// Warning creates a standardized warning message
func Warning(message string, details []string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelWarning,
		Problem: message,
		Details: details,
		NoColor: noColor,
	})
}

// Info creates a standardized info message
func Info(message string, noColor bool) string {
	return FormatError(ErrorOptions{
		Level:   ErrorLevelInfo,
		Problem: message,
		NoColor: noColor,
	})
}
