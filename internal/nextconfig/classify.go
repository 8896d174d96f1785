package nextconfig

import (
	"fmt"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
)

// ExportKind is the shape of the exported configuration value
type ExportKind int

const (
	// Literal is an object literal exported directly
	Literal ExportKind = iota
	// Function is a function or arrow expression exported directly
	Function
	// Indirect is an identifier whose top-level declarator holds the value
	Indirect
	// Reference is an identifier bound without a rewritable initializer
	Reference
	// Wrapped is a call to some other config wrapper
	Wrapped
	// AlreadyTarget is a call whose outermost callee is the plugin
	AlreadyTarget
)

var exportKindNames = map[ExportKind]string{
	Literal:       "literal",
	Function:      "function",
	Indirect:      "indirect",
	Reference:     "reference",
	Wrapped:       "wrapped",
	AlreadyTarget: "already-target",
}

func (k ExportKind) String() string {
	if name, ok := exportKindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ExportKind(%d)", int(k))
}

// ExportSite describes where the exported config lives and how to rewrite it
type ExportSite struct {
	Kind ExportKind
	// Path is the slot the wrapper goes into
	Path Path
	// Export is the slot of the export statement itself; it equals Path
	// except for Indirect sites
	Export Path
	// Binding is the exported identifier for Indirect and Reference sites
	Binding string
	// Location is where the rewritten expression starts
	Location ast.SourceLocation
}

// Classify finds the module's primary export and determines its shape.
// CommonJS modules are searched for module.exports, ES modules for a
// default export.
func Classify(m *ConfigModule, plugin Plugin) (*ExportSite, error) {
	c := &classifier{
		module:   m,
		plugin:   plugin,
		bindings: topLevelBindings(m.Module),
		refs:     findPluginRefs(m.Module, plugin),
	}
	if m.Kind == ast.ESModule {
		return c.classifyDefaultExport()
	}
	return c.classifyModuleExports()
}

type classifier struct {
	module   *ConfigModule
	plugin   Plugin
	bindings map[string]binding
	refs     pluginRefs
}

func (c *classifier) classifyModuleExports() (*ExportSite, error) {
	index := -1
	for i, stmt := range c.module.Statements {
		if isModuleExportsAssignment(stmt) {
			index = i
		}
	}
	if index < 0 {
		return nil, errors.NewNoExportFound(ast.CommonJS)
	}

	path := Path{Stmt: index, Slot: SlotAssignValue}
	value, _ := c.module.Resolve(path)
	return c.classifyExpr(value, path, map[string]bool{})
}

func (c *classifier) classifyDefaultExport() (*ExportSite, error) {
	for i, stmt := range c.module.Statements {
		switch s := stmt.(type) {
		case *ast.ExportDefaultDecl:
			path := Path{Stmt: i, Slot: SlotExportDefault}
			if s.Declaration {
				return c.classifyDeclaration(s, path)
			}
			return c.classifyExpr(s.Value, path, map[string]bool{})

		case *ast.ExportNamedDecl:
			for _, spec := range s.Specifiers {
				if spec.Exported != "default" {
					continue
				}
				if s.Source != nil {
					return nil, errors.NewUnsupportedExportShape(stmt.Location(),
						"default re-exported from another module")
				}
				return c.classifyNamedDefault(spec.Local, stmt)
			}
		}
	}
	return nil, errors.NewNoExportFound(ast.ESModule)
}

// classifyDeclaration handles `export default function () {}` and
// `export default class {}`
func (c *classifier) classifyDeclaration(s *ast.ExportDefaultDecl, path Path) (*ExportSite, error) {
	fn, ok := s.Value.(*ast.FunctionExpr)
	if !ok {
		return nil, errors.NewUnsupportedExportShape(s.Value.Location(), "class declaration")
	}
	if fn.Name != nil {
		return nil, errors.NewUnsupportedExportShape(fn.Location(),
			fmt.Sprintf("function declaration %q", fn.Name.Name)).
			WithSuggestion("Export an anonymous function or a variable holding the config")
	}
	return c.site(Function, path, path, "", fn), nil
}

// classifyNamedDefault handles `export { name as default }`. There is no
// expression slot at the export site, so the binding's initializer is
// rewritten instead.
func (c *classifier) classifyNamedDefault(local string, stmt ast.Stmt) (*ExportSite, error) {
	b, ok := c.bindings[local]
	if !ok || b.kind != bindingVariable {
		return nil, c.unsupportedBinding(local, stmt.Location())
	}
	if b.init == nil {
		return nil, errors.NewUnsupportedExportShape(stmt.Location(),
			fmt.Sprintf("binding %q without an initializer", local))
	}

	site, err := c.classifyExpr(b.init, b.path, map[string]bool{local: true})
	if err != nil {
		return nil, err
	}
	if site.Kind != AlreadyTarget && site.Kind != Indirect {
		site.Kind = Indirect
		site.Binding = local
	}
	site.Export = b.path
	return site, nil
}

// classifyExpr classifies the expression in slot path. seen guards
// identifier chains against cycles.
func (c *classifier) classifyExpr(expr ast.Expr, path Path, seen map[string]bool) (*ExportSite, error) {
	switch e := ast.Unparen(expr).(type) {
	case *ast.ObjectLiteral:
		return c.site(Literal, path, path, "", expr), nil

	case *ast.FunctionExpr, *ast.ArrowFunction:
		return c.site(Function, path, path, "", expr), nil

	case *ast.CallExpr:
		if c.refs.isPluginCall(e) {
			return c.site(AlreadyTarget, path, path, "", expr), nil
		}
		return c.site(Wrapped, path, path, "", expr), nil

	case *ast.Identifier:
		return c.classifyIdentifier(e, path, seen)
	}
	return nil, errors.NewUnsupportedExportShape(expr.Location(), describeShape(expr))
}

func (c *classifier) classifyIdentifier(id *ast.Identifier, path Path, seen map[string]bool) (*ExportSite, error) {
	if seen[id.Name] {
		return nil, errors.NewUnsupportedExportShape(id.Location(),
			fmt.Sprintf("identifier %q that refers to itself", id.Name))
	}

	b, ok := c.bindings[id.Name]
	if !ok {
		return nil, c.unsupportedBinding(id.Name, id.Location())
	}
	switch b.kind {
	case bindingFunction:
		return c.site(Reference, path, path, id.Name, id), nil
	case bindingVariable:
		if b.init == nil {
			return c.site(Reference, path, path, id.Name, id), nil
		}
	default:
		return nil, c.unsupportedBinding(id.Name, id.Location())
	}

	seen[id.Name] = true
	inner, err := c.classifyExpr(b.init, b.path, seen)
	if err != nil {
		return nil, err
	}

	// the innermost declarator with a rewritable value is the target
	if inner.Kind != AlreadyTarget && inner.Kind != Indirect {
		inner.Kind = Indirect
		inner.Binding = id.Name
	}
	inner.Export = path
	return inner, nil
}

func (c *classifier) unsupportedBinding(name string, loc ast.SourceLocation) *errors.CompilerError {
	b, ok := c.bindings[name]
	switch {
	case !ok:
		return errors.NewUnsupportedExportShape(loc,
			fmt.Sprintf("identifier %q that is not declared at the top level", name))
	case b.kind == bindingImport:
		return errors.NewUnsupportedExportShape(loc,
			fmt.Sprintf("imported binding %q", name)).
			WithSuggestion("Wrap the imported config where it is defined")
	case b.kind == bindingClass:
		return errors.NewUnsupportedExportShape(loc, fmt.Sprintf("class %q", name))
	case b.kind == bindingFunction:
		return errors.NewUnsupportedExportShape(loc,
			fmt.Sprintf("function declaration %q exported by name", name)).
			WithSuggestion("Assign the function to a const and export that instead")
	default:
		return errors.NewUnsupportedExportShape(loc,
			fmt.Sprintf("destructured binding %q", name))
	}
}

func (c *classifier) site(kind ExportKind, path, export Path, binding string, at ast.Expr) *ExportSite {
	return &ExportSite{
		Kind:     kind,
		Path:     path,
		Export:   export,
		Binding:  binding,
		Location: at.Location(),
	}
}

type bindingKind int

const (
	bindingVariable bindingKind = iota
	bindingDestructured
	bindingFunction
	bindingClass
	bindingImport
)

type binding struct {
	kind bindingKind
	init ast.Expr
	path Path
}

// topLevelBindings maps each module-scope name to how it is bound. A later
// declaration of the same name replaces an earlier one, as `var` and
// function redeclaration do at runtime.
func topLevelBindings(m *ast.Module) map[string]binding {
	bindings := map[string]binding{}
	for i, stmt := range m.Statements {
		if exp, ok := stmt.(*ast.ExportNamedDecl); ok && exp.Declaration != nil {
			stmt = exp.Declaration
		}

		switch s := stmt.(type) {
		case *ast.VarDecl:
			for j, d := range s.Declarations {
				if id, ok := d.Target.(*ast.Identifier); ok {
					bindings[id.Name] = binding{
						kind: bindingVariable,
						init: d.Init,
						path: Path{Stmt: i, Declarator: j, Slot: SlotDeclaratorInit},
					}
					continue
				}
				for _, name := range ast.BoundNames(d.Target) {
					bindings[name] = binding{kind: bindingDestructured}
				}
			}
		case *ast.FunctionDecl:
			if s.Function.Name != nil {
				bindings[s.Function.Name.Name] = binding{kind: bindingFunction}
			}
		case *ast.ClassDecl:
			if s.Class.Name != nil {
				bindings[s.Class.Name.Name] = binding{kind: bindingClass}
			}
		case *ast.ImportDecl:
			for _, name := range ast.DeclaredNames(s) {
				bindings[name] = binding{kind: bindingImport}
			}
		case *ast.ExportDefaultDecl:
			for _, name := range ast.DeclaredNames(s) {
				if _, isFn := s.Value.(*ast.FunctionExpr); isFn {
					bindings[name] = binding{kind: bindingFunction}
				} else {
					bindings[name] = binding{kind: bindingClass}
				}
			}
		}
	}
	return bindings
}

// isModuleExportsAssignment matches `module.exports = value` and
// `module["exports"] = value` at statement level
func isModuleExportsAssignment(stmt ast.Stmt) bool {
	es, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return false
	}
	assign, ok := es.Expr.(*ast.AssignExpr)
	if !ok || assign.Operator != "=" {
		return false
	}
	return isModuleExports(assign.Target)
}

func isModuleExports(target ast.Pattern) bool {
	member, ok := target.(*ast.MemberExpr)
	if !ok || member.Optional {
		return false
	}
	obj, ok := ast.Unparen(member.Object).(*ast.Identifier)
	if !ok || obj.Name != "module" {
		return false
	}
	name, ok := member.PropertyName()
	return ok && name == "exports"
}

// describeShape names an expression form for error messages
func describeShape(expr ast.Expr) string {
	switch e := ast.Unparen(expr).(type) {
	case *ast.ConditionalExpr:
		return "conditional expression"
	case *ast.MemberExpr:
		return "member expression"
	case *ast.BinaryExpr:
		return fmt.Sprintf("%q expression", e.Operator)
	case *ast.ClassExpr:
		return "class expression"
	case *ast.NewExpr:
		return "new expression"
	case *ast.AwaitExpr:
		return "await expression"
	case *ast.AssignExpr:
		return "assignment expression"
	case *ast.SequenceExpr:
		return "comma expression"
	case *ast.Literal:
		return "literal value"
	case *ast.ArrayLiteral:
		return "array literal"
	case *ast.TemplateLiteral, *ast.TaggedTemplate:
		return "template literal"
	case *ast.ImportCall:
		return "dynamic import"
	}
	return fmt.Sprintf("%T", expr)
}
