package nextconfig

import (
	stderrors "errors"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
)

// wrapPlugin is a non-curried plugin, applied as pluginWrap(config)
var wrapPlugin = Plugin{Name: "pluginWrap", Module: "plugin-wrap"}

func rewrite(t *testing.T, source string, opts Options) *Result {
	t.Helper()
	result, err := Rewrite(source, opts)
	require.NoError(t, err)
	return result
}

func assertOutput(t *testing.T, want, got string) {
	t.Helper()
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("Rewrite() output mismatch (-want +got):\n%s", diff)
	}
}

func TestRewriteObjectLiteral(t *testing.T) {
	result := rewrite(t, "module.exports = { reactStrictMode: true }\n", Options{Plugin: wrapPlugin})

	assert.True(t, result.Changed)
	assert.True(t, result.ImportAdded)
	assert.Equal(t, Literal, result.Site.Kind)
	assert.Equal(t, ast.CommonJS, result.Kind)
	assertOutput(t,
		"const { pluginWrap } = require('plugin-wrap')\n"+
			"module.exports = pluginWrap({ reactStrictMode: true })\n",
		result.Output)
}

func TestRewriteIndirectLeavesExportUntouched(t *testing.T) {
	result := rewrite(t, "const config = {}; module.exports = config\n", Options{Plugin: wrapPlugin})

	assert.Equal(t, Indirect, result.Site.Kind)
	assert.Equal(t, "config", result.Site.Binding)
	assertOutput(t,
		"const { pluginWrap } = require('plugin-wrap')\n"+
			"const config = pluginWrap({}); module.exports = config\n",
		result.Output)
}

func TestRewriteNestsExistingWrapper(t *testing.T) {
	source := "export default withBundleAnalyzer({ output: 'standalone' })\n"
	result := rewrite(t, source, Options{Plugin: wrapPlugin, IsModuleSyntax: true})

	assert.Equal(t, Wrapped, result.Site.Kind)
	assert.Equal(t, ast.ESModule, result.Kind)
	assertOutput(t,
		"import { pluginWrap } from 'plugin-wrap'\n"+
			"export default pluginWrap(withBundleAnalyzer({ output: 'standalone' }))\n",
		result.Output)
}

func TestRewriteAlreadyWrappedIsNoop(t *testing.T) {
	source := "module.exports = pluginWrap({ reactStrictMode: true })\n"
	result := rewrite(t, source, Options{Plugin: wrapPlugin})

	assert.False(t, result.Changed)
	assert.Equal(t, AlreadyWrapped, result.Decision)
	assert.Equal(t, source, result.Output)
}

func TestRewriteNoExport(t *testing.T) {
	_, err := Rewrite("export const config = {}\n", Options{IsModuleSyntax: true})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrNoExportFound))

	_, err = Rewrite("const config = {}\n", Options{})
	assert.True(t, stderrors.Is(err, errors.ErrNoExportFound))
}

func TestRewriteParseError(t *testing.T) {
	_, err := Rewrite("module.exports = {\n", Options{Filename: "next.config.js"})
	require.Error(t, err)
	assert.True(t, stderrors.Is(err, errors.ErrParse))

	var compErr *errors.CompilerError
	require.True(t, stderrors.As(err, &compErr))
	assert.Equal(t, "next.config.js", compErr.File)
}

func TestRewriteIsIdempotent(t *testing.T) {
	tests := []struct {
		name   string
		source string
		module bool
	}{
		{"commonjs literal", "module.exports = {}\n", false},
		{"esm literal", "export default { reactStrictMode: true }\n", true},
		{"indirect", "const nextConfig = {}\nmodule.exports = nextConfig\n", false},
		{"wrapped", "const withMDX = require('@next/mdx')()\nmodule.exports = withMDX({})\n", false},
		{"arrow", "export default (phase) => ({})\n", true},
		{"function declaration", "export default function () {\n  return {}\n}\n", true},
		{"reference", "function config() { return {} }\nmodule.exports = config\n", false},
		{"named default", "const config = {}\nexport { config as default }\n", true},
		{"directive", "'use strict'\nmodule.exports = {}\n", false},
		{"name collision", "const nextFusePlugin = 1\nmodule.exports = {}\n", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := rewrite(t, tt.source, Options{IsModuleSyntax: tt.module})
			require.True(t, first.Changed)

			second := rewrite(t, first.Output, Options{IsModuleSyntax: tt.module})
			assert.False(t, second.Changed)
			assert.Equal(t, AlreadyWrapped, second.Decision)
			assert.Equal(t, first.Output, second.Output)
		})
	}
}

func TestRewriteShapes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		module bool
		kind   ExportKind
		want   string
	}{
		{
			name:   "arrow function",
			source: "export default (phase) => ({ reactStrictMode: phase === 'x' })\n",
			module: true,
			kind:   Function,
			want: "import { nextFusePlugin } from 'fuse/next/plugin'\n" +
				"export default nextFusePlugin()((phase) => ({ reactStrictMode: phase === 'x' }))\n",
		},
		{
			name:   "anonymous default function",
			source: "export default function () {\n  return {}\n}\n",
			module: true,
			kind:   Function,
			want: "import { nextFusePlugin } from 'fuse/next/plugin'\n" +
				"export default nextFusePlugin()(function () {\n  return {}\n});\n",
		},
		{
			name:   "async function expression",
			source: "module.exports = async (phase) => {\n  return {}\n}\n",
			kind:   Function,
			want: "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
				"module.exports = nextFusePlugin()(async (phase) => {\n  return {}\n})\n",
		},
		{
			name:   "parenthesized literal",
			source: "module.exports = ({ a: 1 })\n",
			kind:   Literal,
			want: "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
				"module.exports = nextFusePlugin()({ a: 1 })\n",
		},
		{
			name:   "function declaration reference",
			source: "function config() { return {} }\nmodule.exports = config\n",
			kind:   Reference,
			want: "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
				"function config() { return {} }\nmodule.exports = nextFusePlugin()(config)\n",
		},
		{
			name:   "binding assigned later",
			source: "let config\nconfig = { a: 1 }\nmodule.exports = config\n",
			kind:   Reference,
			want: "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
				"let config\nconfig = { a: 1 }\nmodule.exports = nextFusePlugin()(config)\n",
		},
		{
			name:   "identifier chain",
			source: "const base = { a: 1 }\nconst config = base\nmodule.exports = config\n",
			kind:   Indirect,
			want: "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
				"const base = nextFusePlugin()({ a: 1 })\nconst config = base\nmodule.exports = config\n",
		},
		{
			name:   "named default export",
			source: "const config = { a: 1 }\nexport { config as default }\n",
			kind:   Indirect,
			want: "import { nextFusePlugin } from 'fuse/next/plugin'\n" +
				"const config = nextFusePlugin()({ a: 1 })\nexport { config as default }\n",
		},
		{
			name:   "exported const",
			source: "export const config = withA({})\nexport default config\n",
			kind:   Indirect,
			want: "import { nextFusePlugin } from 'fuse/next/plugin'\n" +
				"export const config = nextFusePlugin()(withA({}))\nexport default config\n",
		},
		{
			name:   "last module.exports wins",
			source: "module.exports = { a: 1 }\nmodule.exports = { b: 2 }\n",
			kind:   Literal,
			want: "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
				"module.exports = { a: 1 }\nmodule.exports = nextFusePlugin()({ b: 2 })\n",
		},
		{
			name:   "computed module exports",
			source: "module['exports'] = {}\n",
			kind:   Literal,
			want: "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
				"module['exports'] = nextFusePlugin()({})\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rewrite(t, tt.source, Options{IsModuleSyntax: tt.module})
			assert.Equal(t, tt.kind, result.Site.Kind)
			assertOutput(t, tt.want, result.Output)
		})
	}
}

func TestRewritePreservesSurroundingSource(t *testing.T) {
	source := `/** @type {import('next').NextConfig} */
const nextConfig = {
  // images are served from the CDN
  images: { unoptimized:true },

  async redirects() {
    return [/* none yet */]
  },
}

module.exports = nextConfig
`
	want := `const { nextFusePlugin } = require('fuse/next/plugin')
/** @type {import('next').NextConfig} */
const nextConfig = nextFusePlugin()({
  // images are served from the CDN
  images: { unoptimized:true },

  async redirects() {
    return [/* none yet */]
  },
})

module.exports = nextConfig
`
	result := rewrite(t, source, Options{})
	assertOutput(t, want, result.Output)
}

func TestRewriteReusesExistingImport(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
		callee string
	}{
		{
			name:   "aliased named import",
			source: "import { nextFusePlugin as fuse } from 'fuse/next/plugin'\nexport default { a: 1 }\n",
			want:   "import { nextFusePlugin as fuse } from 'fuse/next/plugin'\nexport default fuse()({ a: 1 })\n",
			callee: "fuse",
		},
		{
			name:   "namespace import",
			source: "import * as plugins from 'fuse/next/plugin'\nexport default {}\n",
			want:   "import * as plugins from 'fuse/next/plugin'\nexport default plugins.nextFusePlugin()({})\n",
			callee: "plugins.nextFusePlugin",
		},
		{
			name:   "require namespace",
			source: "const fuse = require('fuse/next/plugin')\nmodule.exports = {}\n",
			want:   "const fuse = require('fuse/next/plugin')\nmodule.exports = fuse.nextFusePlugin()({})\n",
			callee: "fuse.nextFusePlugin",
		},
		{
			name:   "require destructuring with alias",
			source: "const { nextFusePlugin: wrap } = require('fuse/next/plugin');\nmodule.exports = {};\n",
			want:   "const { nextFusePlugin: wrap } = require('fuse/next/plugin');\nmodule.exports = wrap()({});\n",
			callee: "wrap",
		},
		{
			name:   "require member",
			source: "const wrap = require('fuse/next/plugin').nextFusePlugin\nmodule.exports = {}\n",
			want:   "const wrap = require('fuse/next/plugin').nextFusePlugin\nmodule.exports = wrap()({})\n",
			callee: "wrap",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rewrite(t, tt.source, Options{})
			assert.False(t, result.ImportAdded)
			assert.Equal(t, tt.callee, result.Callee)
			assertOutput(t, tt.want, result.Output)
		})
	}
}

func TestRewriteDoesNotReuseDefaultImport(t *testing.T) {
	source := "import fuse from 'fuse/next/plugin'\nexport default {}\n"
	result := rewrite(t, source, Options{})
	assert.True(t, result.ImportAdded)
	assert.Equal(t, "nextFusePlugin", result.Callee)
	assertOutput(t, "import { nextFusePlugin } from 'fuse/next/plugin'\n"+
		"import fuse from 'fuse/next/plugin'\nexport default nextFusePlugin()({})\n", result.Output)

	// a call through the default import is still recognized
	wrapped := "import fuse from 'fuse/next/plugin'\nexport default fuse.nextFusePlugin()({})\n"
	result = rewrite(t, wrapped, Options{})
	assert.False(t, result.Changed)
	assert.Equal(t, wrapped, result.Output)
}

func TestRewriteImportPlacement(t *testing.T) {
	tests := []struct {
		name   string
		source string
		want   string
	}{
		{
			name:   "after directive",
			source: "'use strict'\n\nmodule.exports = {}\n",
			want:   "'use strict'\nconst { nextFusePlugin } = require('fuse/next/plugin')\n\nmodule.exports = nextFusePlugin()({})\n",
		},
		{
			name:   "after hashbang",
			source: "#!/usr/bin/env node\nmodule.exports = {}\n",
			want:   "#!/usr/bin/env node\nconst { nextFusePlugin } = require('fuse/next/plugin')\nmodule.exports = nextFusePlugin()({})\n",
		},
		{
			name:   "keeps crlf line endings",
			source: "// config\r\nmodule.exports = {}\r\n",
			want:   "const { nextFusePlugin } = require('fuse/next/plugin')\r\n// config\r\nmodule.exports = nextFusePlugin()({})\r\n",
		},
		{
			name:   "crlf after directive",
			source: "'use strict'\r\nmodule.exports = {}\r\n",
			want:   "'use strict'\r\nconst { nextFusePlugin } = require('fuse/next/plugin')\r\nmodule.exports = nextFusePlugin()({})\r\n",
		},
		{
			name:   "after byte order mark",
			source: "\ufeffmodule.exports = {}\n",
			want:   "\ufeffconst { nextFusePlugin } = require('fuse/next/plugin')\nmodule.exports = nextFusePlugin()({})\n",
		},
		{
			name:   "after byte order mark and hashbang",
			source: "\ufeff#!/usr/bin/env node\nmodule.exports = {}\n",
			want:   "\ufeff#!/usr/bin/env node\nconst { nextFusePlugin } = require('fuse/next/plugin')\nmodule.exports = nextFusePlugin()({})\n",
		},
		{
			name:   "matches quotes and semicolons",
			source: "const path = require(\"path\");\nmodule.exports = { dir: path.join(__dirname, \"x\") };\n",
			want: "const { nextFusePlugin } = require(\"fuse/next/plugin\");\n" +
				"const path = require(\"path\");\nmodule.exports = nextFusePlugin()({ dir: path.join(__dirname, \"x\") });\n",
		},
		{
			name:   "fresh alias on collision",
			source: "const nextFusePlugin = 1\nmodule.exports = {}\n",
			want: "const { nextFusePlugin: nextFusePlugin2 } = require('fuse/next/plugin')\n" +
				"const nextFusePlugin = 1\nmodule.exports = nextFusePlugin2()({})\n",
		},
		{
			name:   "esm alias on collision",
			source: "import { nextFusePlugin } from './local.mjs'\nexport default {}\n",
			want: "import { nextFusePlugin as nextFusePlugin2 } from 'fuse/next/plugin'\n" +
				"import { nextFusePlugin } from './local.mjs'\nexport default nextFusePlugin2()({})\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := rewrite(t, tt.source, Options{})
			assert.True(t, result.ImportAdded)
			assertOutput(t, tt.want, result.Output)
		})
	}
}

// Only the outermost call is checked, so a plugin applied inside another
// wrapper gets applied a second time.
func TestRewriteWrapsAroundInnerPluginCall(t *testing.T) {
	source := "const { nextFusePlugin } = require('fuse/next/plugin')\nmodule.exports = withA(nextFusePlugin()({}))\n"
	result := rewrite(t, source, Options{})

	assert.Equal(t, Wrapped, result.Site.Kind)
	assertOutput(t,
		"const { nextFusePlugin } = require('fuse/next/plugin')\nmodule.exports = nextFusePlugin()(withA(nextFusePlugin()({})))\n",
		result.Output)
}

func TestRewriteUnsupportedShapes(t *testing.T) {
	tests := []struct {
		name   string
		source string
		module bool
	}{
		{"conditional", "module.exports = process.env.X ? a : b\n", false},
		{"member", "module.exports = require('./base').config\n", false},
		{"unbound identifier", "module.exports = missing\n", false},
		{"imported binding", "import cfg from './base.mjs'\nexport default cfg\n", true},
		{"destructured binding", "const { config } = require('./base')\nmodule.exports = config\n", false},
		{"cycle", "var a = b\nvar b = a\nmodule.exports = a\n", false},
		{"named function declaration", "export default function config() { return {} }\n", true},
		{"class declaration", "export default class {}\n", true},
		{"re-exported default", "export { default } from './base.mjs'\n", true},
		{"function exported by name", "function config() {}\nexport { config as default }\n", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Rewrite(tt.source, Options{IsModuleSyntax: tt.module})
			require.Error(t, err)
			assert.True(t, stderrors.Is(err, errors.ErrUnsupportedExportShape), "got %v", err)
		})
	}
}

func TestRewriteDetectsModuleSyntax(t *testing.T) {
	result := rewrite(t, "import path from 'path'\nexport default {}\n", Options{})
	assert.Equal(t, ast.ESModule, result.Kind)

	// a forced module only looks for a default export
	_, err := Rewrite("module.exports = {}\n", Options{IsModuleSyntax: true})
	assert.True(t, stderrors.Is(err, errors.ErrNoExportFound))
}

func TestRewriteConcurrently(t *testing.T) {
	sources := []string{
		"module.exports = {}\n",
		"export default { a: 1 }\n",
		"const c = {}\nmodule.exports = c\n",
	}

	var wg sync.WaitGroup
	for i := 0; i < 30; i++ {
		wg.Add(1)
		go func(source string) {
			defer wg.Done()
			result, err := Rewrite(source, Options{})
			assert.NoError(t, err)
			assert.True(t, result.Changed)
		}(sources[i%len(sources)])
	}
	wg.Wait()
}

func TestManualInstructions(t *testing.T) {
	got := ManualInstructions(DefaultPlugin(), ast.CommonJS)
	assert.Contains(t, got, "const { nextFusePlugin } = require('fuse/next/plugin')")
	assert.Contains(t, got, "module.exports = nextFusePlugin()(nextConfig)")

	got = ManualInstructions(wrapPlugin, ast.ESModule)
	assert.Contains(t, got, "import { pluginWrap } from 'plugin-wrap'")
	assert.Contains(t, got, "export default pluginWrap(nextConfig)")
}
