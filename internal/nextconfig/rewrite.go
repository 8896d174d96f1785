package nextconfig

import (
	stderrors "errors"
	"fmt"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
)

// Options configures a rewrite
type Options struct {
	// IsModuleSyntax forces ES module parsing, as for .mjs files. A file
	// with import or export declarations is parsed as a module either way.
	IsModuleSyntax bool
	// Plugin is applied to the exported config; zero means DefaultPlugin
	Plugin Plugin
	// Filename is attached to errors for display
	Filename string
}

// Result is the outcome of a rewrite
type Result struct {
	// Output is the rewritten source, or the input when nothing changed
	Output  string
	Changed bool
	Kind    ast.ModuleKind
	// Decision tells a no-op apart from a rewrite
	Decision Decision
	// Site is the rewritten export
	Site *ExportSite
	// Callee is how the output refers to the plugin
	Callee string
	// ImportAdded is true when an import or require was inserted
	ImportAdded bool
}

// Rewrite wraps the config exported by source with the plugin. Running it
// on its own output is a no-op. Parse errors, a missing export and
// unsupported export shapes come back as *errors.CompilerError and leave
// nothing half-done.
func Rewrite(source string, opts Options) (*Result, error) {
	plugin := opts.Plugin
	if plugin.Name == "" || plugin.Module == "" {
		plugin = DefaultPlugin()
	}

	m, err := Parse(source, opts.IsModuleSyntax)
	if err != nil {
		return nil, withFile(err, opts.Filename)
	}

	site, err := Classify(m, plugin)
	if err != nil {
		return nil, withFile(err, opts.Filename)
	}

	decision := Decide(site)
	if decision.Decision == AlreadyWrapped {
		return &Result{
			Output:   source,
			Kind:     m.Kind,
			Decision: AlreadyWrapped,
			Site:     site,
		}, nil
	}

	printOpts := printOptions(m.Module)
	transformed, err := Transform(m, decision.Site, plugin)
	if err != nil {
		return nil, fmt.Errorf("failed to wrap %s export: %w", site.Kind, err)
	}

	output, err := m.Emit(printOpts)
	if err != nil {
		return nil, withFile(err, opts.Filename)
	}

	return &Result{
		Output:      output,
		Changed:     m.Changed(),
		Kind:        m.Kind,
		Decision:    NeedsWrap,
		Site:        site,
		Callee:      transformed.Callee,
		ImportAdded: transformed.ImportAdded,
	}, nil
}

// ManualInstructions tells the user how to register the plugin by hand
// when the config could not be rewritten
func ManualInstructions(plugin Plugin, kind ast.ModuleKind) string {
	if plugin.Name == "" || plugin.Module == "" {
		plugin = DefaultPlugin()
	}
	importLine := fmt.Sprintf("import { %s } from '%s'", plugin.Name, plugin.Module)
	exportLine := fmt.Sprintf("export default %s", plugin.Call("nextConfig"))
	if kind == ast.CommonJS {
		importLine = fmt.Sprintf("const { %s } = require('%s')", plugin.Name, plugin.Module)
		exportLine = fmt.Sprintf("module.exports = %s", plugin.Call("nextConfig"))
	}
	return fmt.Sprintf("Add the plugin to your Next.js config:\n\n  %s\n\n  %s\n", importLine, exportLine)
}

func withFile(err error, filename string) error {
	var compErr *errors.CompilerError
	if filename != "" && stderrors.As(err, &compErr) {
		return compErr.WithFile(filename)
	}
	return err
}
