package nextconfig

import (
	"fmt"
	"strings"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/codegen"
	"github.com/fusejs/create-fuse-app/internal/compiler/lexer"
)

// Plugin identifies the build plugin the config is wrapped with
type Plugin struct {
	// Name is the exported name of the plugin factory
	Name string `mapstructure:"name"`
	// Module is the import path the plugin is loaded from
	Module string `mapstructure:"module"`
	// Curried plugins are applied as name()(config)
	Curried bool `mapstructure:"curried"`
}

// DefaultPlugin returns the Fuse Next.js plugin
func DefaultPlugin() Plugin {
	return Plugin{
		Name:    "nextFusePlugin",
		Module:  "fuse/next/plugin",
		Curried: true,
	}
}

// Call returns the source form of applying the plugin to arg
func (p Plugin) Call(arg string) string {
	if p.Curried {
		return fmt.Sprintf("%s()(%s)", p.Name, arg)
	}
	return fmt.Sprintf("%s(%s)", p.Name, arg)
}

// wrap builds the call that applies the plugin reference to arg
func (p Plugin) wrap(ref ast.Expr, arg ast.Expr) *ast.CallExpr {
	callee := ref
	if p.Curried {
		callee = &ast.CallExpr{Callee: ref}
	}
	return &ast.CallExpr{Callee: callee, Arguments: []ast.Expr{ast.Unparen(arg)}}
}

// pluginRefs records how the module can already reach the plugin
type pluginRefs struct {
	plugin Plugin
	// locals are identifiers bound directly to the plugin factory
	locals map[string]bool
	// namespaces are identifiers bound to the plugin module itself
	namespaces map[string]bool
	// defaults are ESM default imports of the module. The module may have
	// no default export carrying the factory, so they are recognized in
	// existing calls but never reused for a new one.
	defaults map[string]bool
	// imported is true when any import or require of the module exists
	imported bool
	// bound holds every top-level name
	bound map[string]bool
}

// findPluginRefs collects top-level imports and requires of the plugin
// module
func findPluginRefs(m *ast.Module, plugin Plugin) pluginRefs {
	refs := pluginRefs{
		plugin:     plugin,
		locals:     map[string]bool{},
		namespaces: map[string]bool{},
		defaults:   map[string]bool{},
		bound:      map[string]bool{},
	}

	for _, stmt := range m.Statements {
		for _, name := range ast.DeclaredNames(stmt) {
			refs.bound[name] = true
		}
		switch s := stmt.(type) {
		case *ast.ImportDecl:
			if value, _ := s.Source.StringValue(); value != plugin.Module {
				continue
			}
			refs.imported = true
			if s.Default != nil {
				refs.defaults[s.Default.Name] = true
			}
			if s.Namespace != nil {
				refs.namespaces[s.Namespace.Name] = true
			}
			for _, spec := range s.Specifiers {
				switch spec.Imported {
				case plugin.Name:
					refs.locals[spec.Local.Name] = true
				case "default":
					refs.defaults[spec.Local.Name] = true
				}
			}

		case *ast.VarDecl:
			for _, d := range s.Declarations {
				refs.addRequire(d)
			}
		}
	}
	return refs
}

// addRequire records `const { name } = require(module)`,
// `const ns = require(module)` and `const x = require(module).name`
func (r *pluginRefs) addRequire(d *ast.Declarator) {
	if d.Init == nil {
		return
	}
	init := ast.Unparen(d.Init)

	if r.isRequire(init) {
		r.imported = true
		switch target := d.Target.(type) {
		case *ast.Identifier:
			r.namespaces[target.Name] = true
		case *ast.ObjectPattern:
			for _, prop := range target.Properties {
				if key, ok := prop.KeyName(); !ok || key != r.plugin.Name {
					continue
				}
				if local := patternIdentifier(prop.Value); local != "" {
					r.locals[local] = true
				}
			}
		}
		return
	}

	if member, ok := init.(*ast.MemberExpr); ok && r.isRequire(ast.Unparen(member.Object)) {
		r.imported = true
		name, ok := member.PropertyName()
		if id, isIdent := d.Target.(*ast.Identifier); ok && isIdent && name == r.plugin.Name {
			r.locals[id.Name] = true
		}
	}
}

func (r *pluginRefs) isRequire(expr ast.Expr) bool {
	call, ok := expr.(*ast.CallExpr)
	if !ok || len(call.Arguments) != 1 {
		return false
	}
	if callee, ok := call.Callee.(*ast.Identifier); !ok || callee.Name != "require" {
		return false
	}
	lit, ok := call.Arguments[0].(*ast.Literal)
	if !ok {
		return false
	}
	value, ok := lit.StringValue()
	return ok && value == r.plugin.Module
}

// isPluginCall reports whether call applies the plugin, as plugin(x) or
// plugin()(x). Only the outermost call is inspected.
func (r *pluginRefs) isPluginCall(call *ast.CallExpr) bool {
	if r.isPluginRef(call.Callee) {
		return true
	}
	if inner, ok := ast.Unparen(call.Callee).(*ast.CallExpr); ok {
		return r.isPluginRef(inner.Callee)
	}
	return false
}

func (r *pluginRefs) isPluginRef(expr ast.Expr) bool {
	switch e := ast.Unparen(expr).(type) {
	case *ast.Identifier:
		if r.locals[e.Name] {
			return true
		}
		// an unbound global of the plugin's name counts, as after a hand
		// edit that lost the import
		return !r.imported && !r.bound[e.Name] && e.Name == r.plugin.Name
	case *ast.MemberExpr:
		name, ok := e.PropertyName()
		if !ok || name != r.plugin.Name {
			return false
		}
		switch obj := ast.Unparen(e.Object).(type) {
		case *ast.Identifier:
			return r.namespaces[obj.Name] || r.defaults[obj.Name]
		case *ast.CallExpr:
			return r.isRequire(obj)
		}
	}
	return false
}

// reference returns an expression naming the plugin through an existing
// binding, or nil when none exists
func (r *pluginRefs) reference() ast.Expr {
	if len(r.locals) > 0 {
		return &ast.Identifier{Name: firstKey(r.locals)}
	}
	if len(r.namespaces) > 0 {
		return &ast.MemberExpr{
			Object:   &ast.Identifier{Name: firstKey(r.namespaces)},
			Property: &ast.Identifier{Name: r.plugin.Name},
		}
	}
	return nil
}

// TransformResult reports what Transform changed
type TransformResult struct {
	// Callee is the source text used to reach the plugin
	Callee string
	// ImportAdded is true when an import or require was inserted
	ImportAdded bool
}

// Transform wraps the value at site with the plugin and makes sure the
// module imports it. A pre-existing wrapper ends up nested inside the new
// call.
func Transform(m *ConfigModule, site *ExportSite, plugin Plugin) (*TransformResult, error) {
	refs := findPluginRefs(m.Module, plugin)
	result := &TransformResult{}

	ref := refs.reference()
	var local string
	if ref == nil {
		local = freshName(m.Module, plugin.Name)
		ref = &ast.Identifier{Name: local}
	}
	result.Callee = calleeText(ref)

	value, err := m.Resolve(site.Path)
	if err != nil {
		return nil, err
	}
	if err := m.ReplaceExpr(site.Path, plugin.wrap(ref, value)); err != nil {
		return nil, err
	}

	// inserted last so the site's statement index stays valid above
	if local != "" {
		insertImport(m, plugin, local)
		result.ImportAdded = true
	}
	return result, nil
}

// insertImport adds the import (ESM) or require (CommonJS) of the plugin
// ahead of every other statement, after a hashbang line and any directive
// prologue
func insertImport(m *ConfigModule, plugin Plugin, local string) {
	source := &ast.Literal{Kind: ast.LiteralString, Value: plugin.Module}

	var stmt ast.Stmt
	if m.Kind == ast.ESModule {
		stmt = &ast.ImportDecl{
			Specifiers: []*ast.ImportSpecifier{{Imported: plugin.Name, Local: &ast.Identifier{Name: local}}},
			Source:     source,
		}
	} else {
		prop := &ast.PatternProperty{
			Key:       &ast.Identifier{Name: plugin.Name},
			Shorthand: local == plugin.Name,
			Value:     &ast.Identifier{Name: local},
		}
		stmt = &ast.VarDecl{
			Kind: ast.VarKindConst,
			Declarations: []*ast.Declarator{{
				Target: &ast.ObjectPattern{Properties: []*ast.PatternProperty{prop}},
				Init:   &ast.CallExpr{Callee: &ast.Identifier{Name: "require"}, Arguments: []ast.Expr{source}},
			}},
		}
	}

	newline := lineEnding(m.Source)

	directives := 0
	for _, s := range m.Statements {
		if !isDirective(s) {
			break
		}
		directives++
	}

	if directives > 0 {
		last := m.Statements[directives-1]
		m.InsertStatement(directives, last.Pos().End, stmt, newline, "")
		return
	}

	offset := 0
	if strings.HasPrefix(m.Source, byteOrderMark) {
		offset = len(byteOrderMark)
	}
	if strings.HasPrefix(m.Source[offset:], "#!") {
		nl := strings.IndexByte(m.Source[offset:], '\n')
		if nl < 0 {
			m.InsertStatement(0, len(m.Source), stmt, newline, "")
			return
		}
		offset += nl + 1
	}
	m.InsertStatement(0, offset, stmt, "", newline)
}

const byteOrderMark = "\ufeff"

// lineEnding returns the line ending of the first line break in source
func lineEnding(source string) string {
	if nl := strings.IndexByte(source, '\n'); nl > 0 && source[nl-1] == '\r' {
		return "\r\n"
	}
	return "\n"
}

// isDirective matches a prologue entry such as 'use strict'
func isDirective(stmt ast.Stmt) bool {
	es, ok := stmt.(*ast.ExprStmt)
	if !ok {
		return false
	}
	lit, ok := es.Expr.(*ast.Literal)
	return ok && lit.Kind == ast.LiteralString
}

// freshName returns name, or name with a numeric suffix when the module
// already binds name at top level
func freshName(m *ast.Module, name string) string {
	taken := map[string]bool{}
	for _, stmt := range m.Statements {
		for _, n := range ast.DeclaredNames(stmt) {
			taken[n] = true
		}
	}
	candidate := name
	for i := 2; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s%d", name, i)
	}
	return candidate
}

// printOptions derives quoting and semicolon style for inserted code from
// the surrounding module
func printOptions(m *ast.Module) codegen.Options {
	opts := codegen.DefaultOptions()

	// the source already parsed, so lexing it again cannot fail
	single, double := 0, 0
	tokens, _ := lexer.New(m.Source).ScanTokens()
	for _, tok := range tokens {
		if tok.Type != lexer.TOKEN_STRING {
			continue
		}
		if strings.HasPrefix(tok.Lexeme, `"`) {
			double++
		} else {
			single++
		}
	}

	withSemi, withoutSemi := 0, 0
	for _, stmt := range m.Statements {
		if !takesSemicolon(stmt) {
			continue
		}
		if strings.HasSuffix(m.Text(stmt), ";") {
			withSemi++
		} else {
			withoutSemi++
		}
	}

	if double > single {
		opts.Quote = '"'
	}
	opts.Semicolons = withSemi > withoutSemi
	return opts
}

func takesSemicolon(stmt ast.Stmt) bool {
	switch s := stmt.(type) {
	case *ast.VarDecl, *ast.ExprStmt, *ast.ImportDecl, *ast.ExportAllDecl:
		return true
	case *ast.ExportDefaultDecl:
		return !s.Declaration
	case *ast.ExportNamedDecl:
		_, isVar := s.Declaration.(*ast.VarDecl)
		return s.Declaration == nil || isVar
	}
	return false
}

func calleeText(ref ast.Expr) string {
	switch r := ref.(type) {
	case *ast.Identifier:
		return r.Name
	case *ast.MemberExpr:
		if obj, ok := r.Object.(*ast.Identifier); ok {
			if name, ok := r.PropertyName(); ok {
				return obj.Name + "." + name
			}
		}
	}
	return ""
}

func firstKey(set map[string]bool) string {
	first := ""
	for k := range set {
		if first == "" || k < first {
			first = k
		}
	}
	return first
}

// patternIdentifier returns the name bound by `name` or `name = default`
func patternIdentifier(p ast.Pattern) string {
	switch t := p.(type) {
	case *ast.Identifier:
		return t.Name
	case *ast.AssignPattern:
		return patternIdentifier(t.Target)
	}
	return ""
}
