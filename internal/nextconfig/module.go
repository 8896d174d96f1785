// Package nextconfig rewrites a Next.js configuration module so that its
// exported config is passed through a build plugin. The rewrite is static:
// the module is parsed, never executed, and only the statement that defines
// the exported value changes, plus at most one inserted import.
package nextconfig

import (
	"fmt"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/codegen"
	"github.com/fusejs/create-fuse-app/internal/compiler/parser"
)

// Slot names the expression position a Path points at
type Slot int

const (
	// SlotAssignValue is the right-hand side of `module.exports = value`
	SlotAssignValue Slot = iota
	// SlotExportDefault is the value of `export default value`
	SlotExportDefault
	// SlotDeclaratorInit is the initializer of `const name = value`, also
	// when the declaration is exported
	SlotDeclaratorInit
)

// String returns a display name for the slot
func (s Slot) String() string {
	switch s {
	case SlotAssignValue:
		return "module.exports"
	case SlotExportDefault:
		return "export default"
	case SlotDeclaratorInit:
		return "declaration"
	default:
		return fmt.Sprintf("Slot(%d)", int(s))
	}
}

// Path locates an expression slot among the module's top-level statements.
// It is a position descriptor resolved against the module on use, never a
// live pointer held across edits.
type Path struct {
	Stmt       int
	Declarator int // only for SlotDeclaratorInit
	Slot       Slot
}

// ConfigModule is a parsed configuration file together with the edits
// applied to it. Edits mutate the tree and are journaled as source ranges
// so the emitter can copy everything else verbatim.
type ConfigModule struct {
	*ast.Module
	edits []codegen.Edit
}

// Parse parses source into a ConfigModule
func Parse(source string, isModuleSyntax bool) (*ConfigModule, error) {
	mod, err := parser.ParseModule(source, isModuleSyntax)
	if err != nil {
		return nil, err
	}
	return &ConfigModule{Module: mod}, nil
}

// Resolve returns the expression currently in the slot at path
func (m *ConfigModule) Resolve(path Path) (ast.Expr, error) {
	if path.Stmt < 0 || path.Stmt >= len(m.Statements) {
		return nil, fmt.Errorf("statement %d out of range", path.Stmt)
	}
	stmt := m.Statements[path.Stmt]

	switch path.Slot {
	case SlotAssignValue:
		if es, ok := stmt.(*ast.ExprStmt); ok {
			if assign, ok := es.Expr.(*ast.AssignExpr); ok {
				return assign.Value, nil
			}
		}
	case SlotExportDefault:
		if exp, ok := stmt.(*ast.ExportDefaultDecl); ok {
			return exp.Value, nil
		}
	case SlotDeclaratorInit:
		if d := declaratorAt(stmt, path.Declarator); d != nil && d.Init != nil {
			return d.Init, nil
		}
	}
	return nil, fmt.Errorf("statement %d has no %s slot", path.Stmt, path.Slot)
}

// ReplaceExpr puts expr into the slot at path and journals the replaced
// source range. A default-exported function declaration becomes an
// expression statement, so it gains a terminating semicolon.
func (m *ConfigModule) ReplaceExpr(path Path, expr ast.Expr) error {
	old, err := m.Resolve(path)
	if err != nil {
		return err
	}
	span := old.Pos()
	edit := codegen.Edit{Start: span.Start, End: span.End, Node: expr}

	stmt := m.Statements[path.Stmt]
	switch path.Slot {
	case SlotAssignValue:
		stmt.(*ast.ExprStmt).Expr.(*ast.AssignExpr).Value = expr
	case SlotExportDefault:
		exp := stmt.(*ast.ExportDefaultDecl)
		if exp.Declaration {
			exp.Declaration = false
			edit.Suffix = ";"
		}
		exp.Value = expr
	case SlotDeclaratorInit:
		declaratorAt(stmt, path.Declarator).Init = expr
	}

	m.edits = append(m.edits, edit)
	return nil
}

// InsertStatement adds stmt before the statement at index and journals
// its text at offset
func (m *ConfigModule) InsertStatement(index, offset int, stmt ast.Stmt, prefix, suffix string) {
	m.Statements = append(m.Statements, nil)
	copy(m.Statements[index+1:], m.Statements[index:])
	m.Statements[index] = stmt

	m.edits = append(m.edits, codegen.Edit{Start: offset, End: offset, Node: stmt, Prefix: prefix, Suffix: suffix})
}

// Changed reports whether any edit has been applied
func (m *ConfigModule) Changed() bool {
	return len(m.edits) > 0
}

// Emit serializes the module. Without edits it returns the source as is.
func (m *ConfigModule) Emit(opts codegen.Options) (string, error) {
	if len(m.edits) == 0 {
		return m.Source, nil
	}
	return codegen.NewGenerator(m.Source, opts).Splice(m.edits)
}

// declaratorAt returns declarator i of a variable declaration, looking
// through `export const`
func declaratorAt(stmt ast.Stmt, i int) *ast.Declarator {
	decl := varDecl(stmt)
	if decl == nil || i < 0 || i >= len(decl.Declarations) {
		return nil
	}
	return decl.Declarations[i]
}

func varDecl(stmt ast.Stmt) *ast.VarDecl {
	switch s := stmt.(type) {
	case *ast.VarDecl:
		return s
	case *ast.ExportNamedDecl:
		if d, ok := s.Declaration.(*ast.VarDecl); ok {
			return d
		}
	}
	return nil
}
