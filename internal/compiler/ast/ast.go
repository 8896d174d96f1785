// Package ast defines the Abstract Syntax Tree (AST) node types for JavaScript
// configuration modules. Every node parsed from source carries its byte span,
// which lets the code generator copy untouched regions verbatim.
package ast

import "github.com/fusejs/create-fuse-app/internal/compiler/lexer"

// SourceLocation tracks the position of an AST node in source code
type SourceLocation struct {
	Line   int // Line number (1-indexed)
	Column int // Column number (1-indexed)
}

// TokenLocation returns the location of a token
func TokenLocation(tok lexer.Token) SourceLocation {
	return SourceLocation{Line: tok.Line, Column: tok.Column}
}

// Span is the half-open byte range [Start, End) a node occupies in the
// source. Nodes built by a transform have an empty span.
type Span struct {
	Start int
	End   int
	Loc   SourceLocation
}

// Pos returns the node's span
func (s Span) Pos() Span {
	return s
}

// Location returns the line and column where the node starts
func (s Span) Location() SourceLocation {
	return s.Loc
}

// Synthetic reports whether the node was created rather than parsed
func (s Span) Synthetic() bool {
	return s.End <= s.Start
}

// Node is the base interface for all AST nodes
type Node interface {
	Location() SourceLocation
	Pos() Span
	node()
}

// Stmt is a statement or declaration
type Stmt interface {
	Node
	stmtNode()
}

// Expr is an expression
type Expr interface {
	Node
	exprNode()
}

// Pattern is a binding or assignment target
type Pattern interface {
	Node
	patternNode()
}

// ModuleKind distinguishes the two module systems a config file may use
type ModuleKind int

const (
	// CommonJS modules export through module.exports
	CommonJS ModuleKind = iota
	// ESModule modules use import/export declarations
	ESModule
)

// String returns the display name of the module kind
func (k ModuleKind) String() string {
	if k == ESModule {
		return "esm"
	}
	return "commonjs"
}

// Module is the root node of the AST
type Module struct {
	Kind       ModuleKind
	Source     string
	Statements []Stmt
}

func (m *Module) node() {}

// Pos returns the span of the whole source
func (m *Module) Pos() Span {
	return Span{Start: 0, End: len(m.Source), Loc: SourceLocation{Line: 1, Column: 1}}
}

// Location returns the source location of the module node in the AST.
func (m *Module) Location() SourceLocation {
	return SourceLocation{Line: 1, Column: 1}
}

// Text returns the original source text of a parsed node
func (m *Module) Text(n Node) string {
	s := n.Pos()
	if s.Synthetic() || s.End > len(m.Source) {
		return ""
	}
	return m.Source[s.Start:s.End]
}

// VarKind is the keyword of a variable declaration
type VarKind string

const (
	// VarKindVar is a var declaration
	VarKindVar VarKind = "var"
	// VarKindLet is a let declaration
	VarKindLet VarKind = "let"
	// VarKindConst is a const declaration
	VarKindConst VarKind = "const"
)

// VarDecl represents var, let and const declarations
type VarDecl struct {
	Span
	Kind         VarKind
	Declarations []*Declarator
}

func (v *VarDecl) node()     {}
func (v *VarDecl) stmtNode() {}

// Declarator is a single `target = init` entry of a declaration
type Declarator struct {
	Span
	Target Pattern
	Init   Expr // nil when there is no initializer
}

func (d *Declarator) node() {}

// FunctionDecl represents a function declaration statement
type FunctionDecl struct {
	Span
	Function *FunctionExpr
}

func (f *FunctionDecl) node()     {}
func (f *FunctionDecl) stmtNode() {}

// ClassDecl represents a class declaration statement
type ClassDecl struct {
	Span
	Class *ClassExpr
}

func (c *ClassDecl) node()     {}
func (c *ClassDecl) stmtNode() {}

// ExprStmt represents an expression used as a statement
type ExprStmt struct {
	Span
	Expr Expr
}

func (e *ExprStmt) node()     {}
func (e *ExprStmt) stmtNode() {}

// BlockStmt represents a braced statement list
type BlockStmt struct {
	Span
	Body []Stmt
}

func (b *BlockStmt) node()     {}
func (b *BlockStmt) stmtNode() {}

// EmptyStmt represents a lone semicolon
type EmptyStmt struct {
	Span
}

func (e *EmptyStmt) node()     {}
func (e *EmptyStmt) stmtNode() {}

// IfStmt represents if/else
type IfStmt struct {
	Span
	Test       Expr
	Consequent Stmt
	Alternate  Stmt // nil without else
}

func (i *IfStmt) node()     {}
func (i *IfStmt) stmtNode() {}

// ForStmt represents the classic three-clause for loop
type ForStmt struct {
	Span
	Init   Node // *VarDecl, Expr or nil
	Test   Expr
	Update Expr
	Body   Stmt
}

func (f *ForStmt) node()     {}
func (f *ForStmt) stmtNode() {}

// ForInStmt represents for-in, for-of and for-await-of loops
type ForInStmt struct {
	Span
	Left  Node // *VarDecl or Pattern
	Right Expr
	Body  Stmt
	Of    bool
	Await bool
}

func (f *ForInStmt) node()     {}
func (f *ForInStmt) stmtNode() {}

// WhileStmt represents a while loop
type WhileStmt struct {
	Span
	Test Expr
	Body Stmt
}

func (w *WhileStmt) node()     {}
func (w *WhileStmt) stmtNode() {}

// DoWhileStmt represents a do-while loop
type DoWhileStmt struct {
	Span
	Body Stmt
	Test Expr
}

func (d *DoWhileStmt) node()     {}
func (d *DoWhileStmt) stmtNode() {}

// ReturnStmt represents a return statement
type ReturnStmt struct {
	Span
	Value Expr // nil for a bare return
}

func (r *ReturnStmt) node()     {}
func (r *ReturnStmt) stmtNode() {}

// BranchStmt represents break and continue
type BranchStmt struct {
	Span
	Keyword string // "break" or "continue"
	Label   string
}

func (b *BranchStmt) node()     {}
func (b *BranchStmt) stmtNode() {}

// ThrowStmt represents a throw statement
type ThrowStmt struct {
	Span
	Value Expr
}

func (t *ThrowStmt) node()     {}
func (t *ThrowStmt) stmtNode() {}

// TryStmt represents try/catch/finally
type TryStmt struct {
	Span
	Block     *BlockStmt
	Param     Pattern // nil for `catch {` or without catch
	Handler   *BlockStmt
	Finalizer *BlockStmt
}

func (t *TryStmt) node()     {}
func (t *TryStmt) stmtNode() {}

// SwitchStmt represents a switch statement
type SwitchStmt struct {
	Span
	Discriminant Expr
	Cases        []*SwitchCase
}

func (s *SwitchStmt) node()     {}
func (s *SwitchStmt) stmtNode() {}

// SwitchCase is one case (or default when Test is nil)
type SwitchCase struct {
	Span
	Test Expr
	Body []Stmt
}

func (s *SwitchCase) node() {}

// LabeledStmt represents `label: statement`
type LabeledStmt struct {
	Span
	Label string
	Body  Stmt
}

func (l *LabeledStmt) node()     {}
func (l *LabeledStmt) stmtNode() {}

// WithStmt represents the legacy with statement
type WithStmt struct {
	Span
	Object Expr
	Body   Stmt
}

func (w *WithStmt) node()     {}
func (w *WithStmt) stmtNode() {}

// DebuggerStmt represents the debugger statement
type DebuggerStmt struct {
	Span
}

func (d *DebuggerStmt) node()     {}
func (d *DebuggerStmt) stmtNode() {}

// ImportDecl represents an import declaration.
//
//	import def, { a as b } from 'mod'
//	import * as ns from 'mod'
//	import 'mod'
type ImportDecl struct {
	Span
	Default    *Identifier // nil when absent
	Namespace  *Identifier // nil when absent
	Specifiers []*ImportSpecifier
	Source     *Literal
}

func (i *ImportDecl) node()     {}
func (i *ImportDecl) stmtNode() {}

// ImportSpecifier is one `imported as local` entry of a named import
type ImportSpecifier struct {
	Span
	Imported string
	Local    *Identifier
}

func (i *ImportSpecifier) node() {}

// ExportDefaultDecl represents `export default ...`. Value is a
// *FunctionExpr or *ClassExpr when Declaration is set.
type ExportDefaultDecl struct {
	Span
	Value       Expr
	Declaration bool
}

func (e *ExportDefaultDecl) node()     {}
func (e *ExportDefaultDecl) stmtNode() {}

// ExportNamedDecl represents `export const x = ...`, `export { a as b }`
// and `export { a } from 'mod'`.
type ExportNamedDecl struct {
	Span
	Declaration Stmt // *VarDecl, *FunctionDecl or *ClassDecl, or nil
	Specifiers  []*ExportSpecifier
	Source      *Literal // nil unless re-exporting
}

func (e *ExportNamedDecl) node()     {}
func (e *ExportNamedDecl) stmtNode() {}

// ExportSpecifier is one `local as exported` entry
type ExportSpecifier struct {
	Span
	Local    string
	Exported string
}

func (e *ExportSpecifier) node() {}

// ExportAllDecl represents `export * from 'mod'` and `export * as ns from 'mod'`
type ExportAllDecl struct {
	Span
	Exported string
	Source   *Literal
}

func (e *ExportAllDecl) node()     {}
func (e *ExportAllDecl) stmtNode() {}
