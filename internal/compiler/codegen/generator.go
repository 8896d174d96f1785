// Package codegen turns an edited AST back into source text. Parsed nodes
// are copied byte for byte from the original source; only nodes created by
// a transform are printed, so comments, spacing and quoting outside the
// edited ranges survive unchanged.
package codegen

import (
	"bytes"
	"fmt"
	"sort"
	"strings"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
)

// Options controls how synthesized nodes are printed
type Options struct {
	// Quote is the quote character for synthesized strings
	Quote byte
	// Semicolons terminates synthesized statements with ';'
	Semicolons bool
}

// DefaultOptions prints single-quoted strings without semicolons
func DefaultOptions() Options {
	return Options{Quote: '\''}
}

// Edit replaces the source range [Start, End) with Node, wrapped in Prefix
// and Suffix. An edit with Start == End is an insertion.
type Edit struct {
	Start  int
	End    int
	Node   ast.Node
	Prefix string
	Suffix string
}

// Generator prints nodes against the source they were parsed from
type Generator struct {
	buf    *bytes.Buffer
	source string
	opts   Options
}

// NewGenerator creates a generator for source
func NewGenerator(source string, opts Options) *Generator {
	if opts.Quote == 0 {
		opts.Quote = '\''
	}
	return &Generator{
		buf:    &bytes.Buffer{},
		source: source,
		opts:   opts,
	}
}

// Splice applies edits to the source and returns the new text. Edits may
// be given in any order but must not overlap; insertions at the same
// offset keep their relative order.
func (g *Generator) Splice(edits []Edit) (string, error) {
	sorted := make([]Edit, len(edits))
	copy(sorted, edits)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Start < sorted[j].Start
	})

	var out strings.Builder
	cursor := 0
	for _, e := range sorted {
		if e.Start < cursor || e.End < e.Start || e.End > len(g.source) {
			return "", fmt.Errorf("edit [%d,%d) overlaps a previous edit or lies outside the source", e.Start, e.End)
		}
		out.WriteString(g.source[cursor:e.Start])
		text, err := g.Print(e.Node)
		if err != nil {
			return "", err
		}
		out.WriteString(e.Prefix)
		out.WriteString(text)
		out.WriteString(e.Suffix)
		cursor = e.End
	}
	out.WriteString(g.source[cursor:])
	return out.String(), nil
}

// Print returns the text of node. Parsed nodes come straight from the
// source; synthesized ones are printed structurally.
func (g *Generator) Print(node ast.Node) (string, error) {
	g.buf.Reset()
	if node == nil {
		return "", nil
	}
	if err := g.write(node); err != nil {
		return "", err
	}
	return g.buf.String(), nil
}

func (g *Generator) write(node ast.Node) error {
	span := node.Pos()
	if !span.Synthetic() && span.End <= len(g.source) {
		g.buf.WriteString(g.source[span.Start:span.End])
		return nil
	}

	switch n := node.(type) {
	case *ast.Identifier:
		g.buf.WriteString(n.Name)

	case *ast.Literal:
		if s, ok := n.StringValue(); ok && n.Raw == "" {
			g.buf.WriteString(Quote(s, g.opts.Quote))
		} else {
			g.buf.WriteString(n.Raw)
		}

	case *ast.CallExpr:
		if err := g.writeOperand(n.Callee); err != nil {
			return err
		}
		if n.Optional {
			g.buf.WriteString("?.")
		}
		g.buf.WriteByte('(')
		for i, arg := range n.Arguments {
			if i > 0 {
				g.buf.WriteString(", ")
			}
			if err := g.writeArgument(arg); err != nil {
				return err
			}
		}
		g.buf.WriteByte(')')

	case *ast.MemberExpr:
		if err := g.writeOperand(n.Object); err != nil {
			return err
		}
		if n.Computed {
			if n.Optional {
				g.buf.WriteString("?.")
			}
			g.buf.WriteByte('[')
			if err := g.write(n.Property); err != nil {
				return err
			}
			g.buf.WriteByte(']')
			break
		}
		if n.Optional {
			g.buf.WriteString("?.")
		} else {
			g.buf.WriteByte('.')
		}
		if err := g.write(n.Property); err != nil {
			return err
		}

	case *ast.SequenceExpr:
		for i, expr := range n.Exprs {
			if i > 0 {
				g.buf.WriteString(", ")
			}
			if err := g.write(expr); err != nil {
				return err
			}
		}

	case *ast.ParenExpr:
		g.buf.WriteByte('(')
		if err := g.write(n.Expr); err != nil {
			return err
		}
		g.buf.WriteByte(')')

	case *ast.ImportDecl:
		return g.writeImport(n)

	case *ast.VarDecl:
		return g.writeVarDecl(n)

	case *ast.ObjectPattern:
		return g.writeObjectPattern(n)

	default:
		return errors.NewUnprintableNode(node)
	}
	return nil
}

// writeOperand prints the callee or object of a call or member access,
// parenthesizing expressions that would otherwise bind differently
func (g *Generator) writeOperand(expr ast.Expr) error {
	switch expr.(type) {
	case *ast.Identifier, *ast.MemberExpr, *ast.CallExpr, *ast.ParenExpr,
		*ast.Literal, *ast.ThisExpr, *ast.ArrayLiteral, *ast.TemplateLiteral,
		*ast.TaggedTemplate, *ast.MetaProperty, *ast.ImportCall, *ast.SuperExpr:
		return g.write(expr)
	}
	g.buf.WriteByte('(')
	if err := g.write(expr); err != nil {
		return err
	}
	g.buf.WriteByte(')')
	return nil
}

// writeArgument prints one call argument; only a comma expression needs
// parentheses there
func (g *Generator) writeArgument(expr ast.Expr) error {
	if _, ok := expr.(*ast.SequenceExpr); ok {
		g.buf.WriteByte('(')
		if err := g.write(expr); err != nil {
			return err
		}
		g.buf.WriteByte(')')
		return nil
	}
	return g.write(expr)
}

func (g *Generator) writeImport(n *ast.ImportDecl) error {
	g.buf.WriteString("import ")
	wrote := false
	if n.Default != nil {
		g.buf.WriteString(n.Default.Name)
		wrote = true
	}
	if n.Namespace != nil {
		if wrote {
			g.buf.WriteString(", ")
		}
		g.buf.WriteString("* as ")
		g.buf.WriteString(n.Namespace.Name)
		wrote = true
	}
	if len(n.Specifiers) > 0 {
		if wrote {
			g.buf.WriteString(", ")
		}
		g.buf.WriteString("{ ")
		for i, spec := range n.Specifiers {
			if i > 0 {
				g.buf.WriteString(", ")
			}
			g.buf.WriteString(spec.Imported)
			if spec.Local != nil && spec.Local.Name != spec.Imported {
				g.buf.WriteString(" as ")
				g.buf.WriteString(spec.Local.Name)
			}
		}
		g.buf.WriteString(" }")
		wrote = true
	}
	if wrote {
		g.buf.WriteString(" from ")
	}
	if err := g.write(n.Source); err != nil {
		return err
	}
	g.endStatement()
	return nil
}

func (g *Generator) writeVarDecl(n *ast.VarDecl) error {
	g.buf.WriteString(string(n.Kind))
	g.buf.WriteByte(' ')
	for i, d := range n.Declarations {
		if i > 0 {
			g.buf.WriteString(", ")
		}
		if err := g.write(d.Target); err != nil {
			return err
		}
		if d.Init != nil {
			g.buf.WriteString(" = ")
			if err := g.write(d.Init); err != nil {
				return err
			}
		}
	}
	g.endStatement()
	return nil
}

func (g *Generator) writeObjectPattern(n *ast.ObjectPattern) error {
	g.buf.WriteString("{ ")
	for i, prop := range n.Properties {
		if i > 0 {
			g.buf.WriteString(", ")
		}
		if err := g.write(prop.Key); err != nil {
			return err
		}
		if !prop.Shorthand {
			g.buf.WriteString(": ")
			if err := g.write(prop.Value); err != nil {
				return err
			}
		}
	}
	g.buf.WriteString(" }")
	return nil
}

func (g *Generator) endStatement() {
	if g.opts.Semicolons {
		g.buf.WriteByte(';')
	}
}

// Quote renders s as a JavaScript string literal using quote
func Quote(s string, quote byte) string {
	var b strings.Builder
	b.WriteByte(quote)
	for _, r := range s {
		switch r {
		case '\\':
			b.WriteString(`\\`)
		case '\n':
			b.WriteString(`\n`)
		case '\r':
			b.WriteString(`\r`)
		case '\t':
			b.WriteString(`\t`)
		case '\u2028':
			b.WriteString(`\u2028`)
		case '\u2029':
			b.WriteString(`\u2029`)
		default:
			if r == rune(quote) {
				b.WriteByte('\\')
			}
			b.WriteRune(r)
		}
	}
	b.WriteByte(quote)
	return b.String()
}
