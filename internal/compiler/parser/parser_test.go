package parser

import (
	stderrors "errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
)

// Helper function to parse source that must be valid
func parseSource(t *testing.T, source string) *ast.Module {
	t.Helper()

	mod, err := ParseModule(source, false)
	require.NoError(t, err)
	return mod
}

func TestParseModuleExports(t *testing.T) {
	source := `/** @type {import('next').NextConfig} */
const nextConfig = {
  reactStrictMode: true,
}

module.exports = nextConfig
`
	mod := parseSource(t, source)

	assert.Equal(t, ast.CommonJS, mod.Kind)
	require.Len(t, mod.Statements, 2)

	decl, ok := mod.Statements[0].(*ast.VarDecl)
	require.True(t, ok, "expected VarDecl, got %T", mod.Statements[0])
	assert.Equal(t, ast.VarKindConst, decl.Kind)
	require.Len(t, decl.Declarations, 1)

	obj, ok := decl.Declarations[0].Init.(*ast.ObjectLiteral)
	require.True(t, ok)
	require.Len(t, obj.Properties, 1)
	name, _ := obj.Properties[0].KeyName()
	assert.Equal(t, "reactStrictMode", name)

	stmt, ok := mod.Statements[1].(*ast.ExprStmt)
	require.True(t, ok)
	assign, ok := stmt.Expr.(*ast.AssignExpr)
	require.True(t, ok)
	assert.Equal(t, "=", assign.Operator)
	assert.Equal(t, "module.exports", mod.Text(assign.Target))
	assert.Equal(t, "nextConfig", mod.Text(assign.Value))
}

func TestParseExportDefault(t *testing.T) {
	mod := parseSource(t, "export default { images: { domains: ['a.com'] } };\n")

	assert.Equal(t, ast.ESModule, mod.Kind)
	require.Len(t, mod.Statements, 1)
	exp, ok := mod.Statements[0].(*ast.ExportDefaultDecl)
	require.True(t, ok)
	assert.False(t, exp.Declaration)
	assert.Equal(t, "{ images: { domains: ['a.com'] } }", mod.Text(exp.Value))
	assert.Equal(t, "export default { images: { domains: ['a.com'] } };", mod.Text(exp))
}

func TestParseModuleSyntaxFlag(t *testing.T) {
	mod, err := ParseModule("const a = 1\n", true)
	require.NoError(t, err)
	assert.Equal(t, ast.ESModule, mod.Kind)

	mod, err = ParseModule("const a = 1\n", false)
	require.NoError(t, err)
	assert.Equal(t, ast.CommonJS, mod.Kind)
}

func TestParseSpans(t *testing.T) {
	source := "module.exports = withBundleAnalyzer( { a: 1 } )  // trailing\n"
	mod := parseSource(t, source)

	stmt := mod.Statements[0].(*ast.ExprStmt)
	assign := stmt.Expr.(*ast.AssignExpr)
	call, ok := assign.Value.(*ast.CallExpr)
	require.True(t, ok)

	assert.Equal(t, "withBundleAnalyzer( { a: 1 } )", mod.Text(call))
	assert.Equal(t, "withBundleAnalyzer", mod.Text(call.Callee))
	require.Len(t, call.Arguments, 1)
	assert.Equal(t, "{ a: 1 }", mod.Text(call.Arguments[0]))
	assert.Equal(t, ast.SourceLocation{Line: 1, Column: 18}, call.Location())
}

func TestParseImports(t *testing.T) {
	source := `import def, { a, b as c, 'd' as e } from 'mod'
import * as ns from "ns"
import 'side-effect'
import json from './data.json' with { type: 'json' }
`
	mod := parseSource(t, source)
	require.Len(t, mod.Statements, 4)

	first := mod.Statements[0].(*ast.ImportDecl)
	assert.Equal(t, "def", first.Default.Name)
	require.Len(t, first.Specifiers, 3)
	assert.Equal(t, "a", first.Specifiers[0].Imported)
	assert.Equal(t, "a", first.Specifiers[0].Local.Name)
	assert.Equal(t, "b", first.Specifiers[1].Imported)
	assert.Equal(t, "c", first.Specifiers[1].Local.Name)
	assert.Equal(t, "d", first.Specifiers[2].Imported)
	assert.Equal(t, "e", first.Specifiers[2].Local.Name)
	src, _ := first.Source.StringValue()
	assert.Equal(t, "mod", src)

	second := mod.Statements[1].(*ast.ImportDecl)
	assert.Equal(t, "ns", second.Namespace.Name)

	third := mod.Statements[2].(*ast.ImportDecl)
	assert.Nil(t, third.Default)
	assert.Empty(t, third.Specifiers)

	assert.Equal(t, []string{"def", "a", "c", "e"}, ast.DeclaredNames(first))
}

func TestParseExportForms(t *testing.T) {
	source := `const config = {}
export { config as default, config as named }
export const x = 1, y = 2
export function helper() {}
export class Thing {}
export * from './all'
export * as everything from './all'
export { a } from './re'
`
	mod := parseSource(t, source)
	require.Len(t, mod.Statements, 8)

	specs := mod.Statements[1].(*ast.ExportNamedDecl)
	require.Len(t, specs.Specifiers, 2)
	assert.Equal(t, "config", specs.Specifiers[0].Local)
	assert.Equal(t, "default", specs.Specifiers[0].Exported)

	vars := mod.Statements[2].(*ast.ExportNamedDecl)
	assert.Equal(t, []string{"x", "y"}, ast.DeclaredNames(vars))

	fn := mod.Statements[3].(*ast.ExportNamedDecl)
	assert.IsType(t, &ast.FunctionDecl{}, fn.Declaration)

	all := mod.Statements[6].(*ast.ExportAllDecl)
	assert.Equal(t, "everything", all.Exported)

	re := mod.Statements[7].(*ast.ExportNamedDecl)
	require.NotNil(t, re.Source)
}

func TestParseExportDefaultDeclarations(t *testing.T) {
	tests := []struct {
		name     string
		source   string
		decl     bool
		expected interface{}
	}{
		{"anonymous function", "export default function () { return {} }", true, &ast.FunctionExpr{}},
		{"named function", "export default function config() { return {} }", true, &ast.FunctionExpr{}},
		{"async function", "export default async function () {}", true, &ast.FunctionExpr{}},
		{"class", "export default class {}", true, &ast.ClassExpr{}},
		{"arrow", "export default (phase) => ({})", false, &ast.ArrowFunction{}},
		{"async arrow", "export default async (phase) => ({})", false, &ast.ArrowFunction{}},
		{"call", "export default withPlugins([], {})", false, &ast.CallExpr{}},
		{"identifier", "export default nextConfig", false, &ast.Identifier{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := parseSource(t, tt.source)
			exp := mod.Statements[0].(*ast.ExportDefaultDecl)
			assert.Equal(t, tt.decl, exp.Declaration)
			assert.IsType(t, tt.expected, exp.Value)
		})
	}
}

func TestParseArrowFunctions(t *testing.T) {
	tests := []struct {
		name   string
		source string
		params int
		async  bool
	}{
		{"single param", "f = x => x", 1, false},
		{"parens", "f = (a, b) => a + b", 2, false},
		{"no params", "f = () => {}", 0, false},
		{"defaults and rest", "f = (a = 1, { b }, [c], ...rest) => a", 4, false},
		{"async single", "f = async x => x", 1, true},
		{"async parens", "f = async (a) => { await a }", 1, true},
		{"object body", "f = () => ({ a: 1 })", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mod := parseSource(t, tt.source)
			assign := mod.Statements[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
			arrow, ok := assign.Value.(*ast.ArrowFunction)
			require.True(t, ok, "expected arrow, got %T", assign.Value)
			assert.Len(t, arrow.Params, tt.params)
			assert.Equal(t, tt.async, arrow.Async)
		})
	}
}

func TestParseAsyncIsStillAnIdentifier(t *testing.T) {
	mod := parseSource(t, "async(1)\nconst async = 2")
	call := mod.Statements[0].(*ast.ExprStmt).Expr.(*ast.CallExpr)
	assert.Equal(t, "async", call.Callee.(*ast.Identifier).Name)
}

func TestParseParenthesizedIsNotArrow(t *testing.T) {
	mod := parseSource(t, "module.exports = (a, b)\n(c)")
	assign := mod.Statements[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	// no ASI before a parenthesis: this is a call of the sequence
	call, ok := assign.Value.(*ast.CallExpr)
	require.True(t, ok, "expected call, got %T", assign.Value)
	assert.IsType(t, &ast.ParenExpr{}, call.Callee)
}

func TestParseOperatorPrecedence(t *testing.T) {
	mod := parseSource(t, "x = a || b && c + d * e ** f ** g")
	assign := mod.Statements[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)

	or := assign.Value.(*ast.BinaryExpr)
	assert.Equal(t, "||", or.Operator)
	and := or.Right.(*ast.BinaryExpr)
	assert.Equal(t, "&&", and.Operator)
	plus := and.Right.(*ast.BinaryExpr)
	assert.Equal(t, "+", plus.Operator)
	mul := plus.Right.(*ast.BinaryExpr)
	assert.Equal(t, "*", mul.Operator)
	pow := mul.Right.(*ast.BinaryExpr)
	assert.Equal(t, "**", pow.Operator)
	// right associative
	assert.Equal(t, "f ** g", mod.Text(pow.Right))
}

func TestParseConditionalAndNullish(t *testing.T) {
	mod := parseSource(t, "module.exports = process.env.ANALYZE ? withAnalyzer(config) : config ?? {}")
	assign := mod.Statements[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr)
	cond, ok := assign.Value.(*ast.ConditionalExpr)
	require.True(t, ok)
	assert.Equal(t, "process.env.ANALYZE", mod.Text(cond.Test))
	assert.Equal(t, "config ?? {}", mod.Text(cond.Alternate))
}

func TestParseMemberAndCallChains(t *testing.T) {
	mod := parseSource(t, "a.b?.c[d]?.(e)`t${f}`.g")
	expr := mod.Statements[0].(*ast.ExprStmt).Expr

	member, ok := expr.(*ast.MemberExpr)
	require.True(t, ok)
	name, _ := member.PropertyName()
	assert.Equal(t, "g", name)

	tagged, ok := member.Object.(*ast.TaggedTemplate)
	require.True(t, ok)
	assert.Equal(t, []string{"t", ""}, tagged.Quasi.Quasis)

	call, ok := tagged.Tag.(*ast.CallExpr)
	require.True(t, ok)
	assert.True(t, call.Optional)
}

func TestParseRequireForms(t *testing.T) {
	source := `const { nextFusePlugin: fuse } = require('fuse/next/plugin')
const plugin = require("fuse/next/plugin")
const direct = require('fuse/next/plugin').nextFusePlugin
`
	mod := parseSource(t, source)
	require.Len(t, mod.Statements, 3)

	first := mod.Statements[0].(*ast.VarDecl)
	pattern, ok := first.Declarations[0].Target.(*ast.ObjectPattern)
	require.True(t, ok)
	key, _ := pattern.Properties[0].KeyName()
	assert.Equal(t, "nextFusePlugin", key)
	assert.Equal(t, "fuse", pattern.Properties[0].Value.(*ast.Identifier).Name)

	third := mod.Statements[2].(*ast.VarDecl)
	member := third.Declarations[0].Init.(*ast.MemberExpr)
	assert.IsType(t, &ast.CallExpr{}, member.Object)
}

func TestParseDestructuringAssignment(t *testing.T) {
	mod := parseSource(t, "({ a, b: [c, d = 1], ...rest } = obj)")
	paren := mod.Statements[0].(*ast.ExprStmt).Expr.(*ast.ParenExpr)
	assign := paren.Expr.(*ast.AssignExpr)

	pattern, ok := assign.Target.(*ast.ObjectPattern)
	require.True(t, ok)
	require.Len(t, pattern.Properties, 2)
	assert.NotNil(t, pattern.Rest)
	assert.Equal(t, []string{"a", "c", "d", "rest"}, ast.BoundNames(pattern))
}

func TestParseASI(t *testing.T) {
	source := `const a = 1
const b = a
++b
function f() {
  return
  42
}
let c = 'x'
module.exports = { a, b, c }`
	mod := parseSource(t, source)
	require.Len(t, mod.Statements, 6)

	// ++ on a new line applies to the following operand
	update := mod.Statements[2].(*ast.ExprStmt).Expr.(*ast.UpdateExpr)
	assert.True(t, update.Prefix)

	fn := mod.Statements[3].(*ast.FunctionDecl)
	require.Len(t, fn.Function.Body.Body, 2)
	ret := fn.Function.Body.Body[0].(*ast.ReturnStmt)
	assert.Nil(t, ret.Value)
}

func TestParseStatements(t *testing.T) {
	source := `
if (a) { b() } else c()
for (let i = 0; i < 3; i++) {}
for (const k in obj) {}
for (const v of list) {}
for (x of list);
while (false) break
do { continue } while (false)
outer: for (;;) { break outer }
try { risky() } catch { } finally { done() }
try { risky() } catch (err) { throw err }
switch (phase) { case 'a': case 'b': x(); break; default: y() }
class A extends B { static #count = 0; get value() { return 1 } static { init() } async *gen() {} }
label: {}
debugger
`
	mod := parseSource(t, source)
	assert.Len(t, mod.Statements, 14)

	forIn := mod.Statements[2].(*ast.ForInStmt)
	assert.False(t, forIn.Of)
	forOf := mod.Statements[3].(*ast.ForInStmt)
	assert.True(t, forOf.Of)
	assert.IsType(t, &ast.Identifier{}, mod.Statements[4].(*ast.ForInStmt).Left)

	class := mod.Statements[11].(*ast.ClassDecl)
	require.Len(t, class.Class.Members, 4)
	assert.Equal(t, ast.PropertyGet, class.Class.Members[1].Kind)
	assert.NotNil(t, class.Class.Members[2].Block)
	assert.Equal(t, ast.PropertyMethod, class.Class.Members[3].Kind)
}

func TestParseObjectMembers(t *testing.T) {
	mod := parseSource(t, `x = {
  a,
  'b-c': 1,
  [key]: 2,
  3: 'three',
  get d() { return 1 },
  set d(v) {},
  async e() {},
  *f() {},
  get: 1,
  async: true,
  ...rest,
}`)
	obj := mod.Statements[0].(*ast.ExprStmt).Expr.(*ast.AssignExpr).Value.(*ast.ObjectLiteral)
	require.Len(t, obj.Properties, 11)

	kinds := make([]ast.PropertyKind, 0, len(obj.Properties))
	for _, prop := range obj.Properties {
		kinds = append(kinds, prop.Kind)
	}
	assert.Equal(t, []ast.PropertyKind{
		ast.PropertyInit, ast.PropertyInit, ast.PropertyInit, ast.PropertyInit,
		ast.PropertyGet, ast.PropertySet, ast.PropertyMethod, ast.PropertyMethod,
		ast.PropertyInit, ast.PropertyInit, ast.PropertySpread,
	}, kinds)
	assert.True(t, obj.Properties[0].Shorthand)
	assert.True(t, obj.Properties[2].Computed)
}

func TestParseRegexAndTemplates(t *testing.T) {
	source := "module.exports = { webpack(config) { config.module.rules.push({ test: /\\.svg$/i, use: `${a}/b` }); return config } }"
	mod := parseSource(t, source)
	assert.Len(t, mod.Statements, 1)
}

func TestParseTopLevelAwait(t *testing.T) {
	mod := parseSource(t, "const cfg = await loadConfig()\nexport default cfg")
	decl := mod.Statements[0].(*ast.VarDecl)
	assert.IsType(t, &ast.AwaitExpr{}, decl.Declarations[0].Init)
}

func TestParseGenerators(t *testing.T) {
	mod := parseSource(t, "function* g() { yield 1; yield* other(); yield }")
	fn := mod.Statements[0].(*ast.FunctionDecl)
	assert.True(t, fn.Function.Generator)
	require.Len(t, fn.Function.Body.Body, 3)
	y := fn.Function.Body.Body[1].(*ast.ExprStmt).Expr.(*ast.YieldExpr)
	assert.True(t, y.Delegate)
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name   string
		source string
		code   errors.ErrorCode
		line   int
	}{
		{"unclosed object", "module.exports = {", errors.ErrUnexpectedEOF, 1},
		{"missing comma", "module.exports = { a: 1 b: 2 }", errors.ErrExpectedToken, 1},
		{"bad token", "const = 5", errors.ErrExpectedToken, 1},
		{"two statements on a line", "const a = 1 const b = 2", errors.ErrUnexpectedToken, 1},
		{"invalid assignment target", "a + b = c", errors.ErrInvalidAssignmentTarget, 1},
		{"unterminated string", "const a = 'x\n", errors.ErrLexical, 1},
		{"nested import", "function f() {\n  import x from 'y'\n}", errors.ErrUnexpectedToken, 2},
		{"try without handler", "try {}", errors.ErrUnexpectedEOF, 1},
		{"typescript annotation", "const config: NextConfig = {}", errors.ErrUnexpectedToken, 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseModule(tt.source, false)
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrParse), "expected a parse error, got %v", err)

			var compErr *errors.CompilerError
			require.True(t, stderrors.As(err, &compErr))
			assert.Equal(t, tt.code, compErr.Code)
			assert.Equal(t, tt.line, compErr.Location.Line)
		})
	}
}

func TestParseExpression(t *testing.T) {
	expr, err := ParseExpression(`{
  // comment
  "compilerOptions": { "plugins": [], },
}`)
	require.NoError(t, err)
	assert.IsType(t, &ast.ObjectLiteral{}, expr)

	_, err = ParseExpression("{} {}")
	assert.Error(t, err)
}
