// Package format renders before/after views of rewritten files.
package format

import (
	"fmt"
	"strings"

	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
)

// DiffResult represents the difference between a file and its rewrite
type DiffResult struct {
	Original  string
	Rewritten string
	Changed   bool
}

// Diff compares original and rewritten source
func Diff(original, rewritten string) *DiffResult {
	return &DiffResult{
		Original:  original,
		Rewritten: rewritten,
		Changed:   original != rewritten,
	}
}

// UnifiedDiff returns a unified diff with three lines of context, or "" when
// nothing changed
func (d *DiffResult) UnifiedDiff(fromFile, toFile string) (string, error) {
	if !d.Changed {
		return "", nil
	}
	return difflib.GetUnifiedDiffString(difflib.UnifiedDiff{
		A:        splitLines(d.Original),
		B:        splitLines(d.Rewritten),
		FromFile: "a/" + fromFile,
		ToFile:   "b/" + toFile,
		Context:  3,
	})
}

// Colorize highlights a unified diff for the terminal
func Colorize(diff string, noColor bool) string {
	red := color.New(color.FgRed)
	green := color.New(color.FgGreen)
	cyan := color.New(color.FgCyan)
	bold := color.New(color.Bold)
	if noColor {
		for _, c := range []*color.Color{red, green, cyan, bold} {
			c.DisableColor()
		}
	}

	var b strings.Builder
	for _, line := range strings.SplitAfter(diff, "\n") {
		if line == "" {
			continue
		}
		text := strings.TrimSuffix(line, "\n")
		switch {
		case strings.HasPrefix(text, "---"), strings.HasPrefix(text, "+++"):
			bold.Fprintln(&b, text)
		case strings.HasPrefix(text, "@@"):
			cyan.Fprintln(&b, text)
		case strings.HasPrefix(text, "-"):
			red.Fprintln(&b, text)
		case strings.HasPrefix(text, "+"):
			green.Fprintln(&b, text)
		default:
			b.WriteString(line)
		}
	}
	return b.String()
}

// Stats summarizes the change as added and removed line counts
func (d *DiffResult) Stats() string {
	if !d.Changed {
		return "No changes"
	}

	added, removed := 0, 0
	matcher := difflib.NewMatcher(splitLines(d.Original), splitLines(d.Rewritten))
	for _, op := range matcher.GetOpCodes() {
		switch op.Tag {
		case 'r':
			removed += op.I2 - op.I1
			added += op.J2 - op.J1
		case 'd':
			removed += op.I2 - op.I1
		case 'i':
			added += op.J2 - op.J1
		}
	}
	return fmt.Sprintf("%d lines added, %d removed", added, removed)
}

// splitLines splits text into newline-terminated lines. A trailing newline
// does not start another line and a missing one is added.
func splitLines(text string) []string {
	if text == "" {
		return nil
	}
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	if last := lines[len(lines)-1]; !strings.HasSuffix(last, "\n") {
		lines[len(lines)-1] = last + "\n"
	}
	return lines
}
