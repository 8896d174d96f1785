package commands

import (
	stderrors "errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/fusejs/create-fuse-app/internal/cli/config"
	"github.com/fusejs/create-fuse-app/internal/cli/ui"
	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
	"github.com/fusejs/create-fuse-app/internal/format"
	"github.com/fusejs/create-fuse-app/internal/nextconfig"
	"github.com/fusejs/create-fuse-app/internal/scaffold"
)

type rewriteConfigOptions struct {
	dryRun            bool
	module            bool
	preserveExtension bool
}

// NewRewriteConfigCommand creates the rewrite-config command
func NewRewriteConfigCommand(global *globalOptions) *cobra.Command {
	opts := &rewriteConfigOptions{}

	cmd := &cobra.Command{
		Use:   "rewrite-config [file]",
		Short: "Wrap the Next.js config with the Fuse plugin",
		Long: `Wrap the exported Next.js config with the Fuse plugin, adding the import
when it is missing. Running it again on a wrapped config changes nothing.

Without a file argument, next.config.js is used, then next.config.mjs.
The result is written to next.config.js unless --preserve-extension is set.

Examples:
  create-fuse-app rewrite-config --dry-run        # Show the change as a diff
  create-fuse-app rewrite-config                  # Rewrite in place
  create-fuse-app rewrite-config config/next.mjs  # Rewrite a specific file`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			file := ""
			if len(args) == 1 {
				file = args[0]
			}
			return runRewriteConfig(cmd, global, opts, file)
		},
	}

	cmd.Flags().BoolVarP(&opts.dryRun, "dry-run", "n", false, "Print a diff instead of writing")
	cmd.Flags().BoolVar(&opts.module, "module", false, "Parse the file as an ES module")
	cmd.Flags().BoolVar(&opts.preserveExtension, "preserve-extension", false, "Write back to the source file instead of next.config.js")

	return cmd
}

func runRewriteConfig(cmd *cobra.Command, global *globalOptions, opts *rewriteConfigOptions, file string) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	noColor := global.noColor || color.NoColor

	dir := global.dir
	if file == "" {
		file = scaffold.FindNextConfig(dir)
		if file == "" {
			return fmt.Errorf("no %s or %s found in %s", scaffold.NextConfigJS, scaffold.NextConfigMJS, dir)
		}
	} else {
		dir = filepath.Dir(file)
	}

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), nil, noColor))
		return &reportedError{err}
	}
	for _, warning := range cfg.Warnings {
		fmt.Fprint(errOut, ui.Warning(warning, nil, noColor))
	}

	data, err := os.ReadFile(file)
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", file, err)
	}
	source := string(data)

	isModule := opts.module || scaffold.IsModuleConfig(file, scaffold.PackageIsESM(dir))
	name := filepath.Base(file)

	result, err := nextconfig.Rewrite(source, nextconfig.Options{
		IsModuleSyntax: isModule,
		Plugin:         cfg.Plugin,
		Filename:       name,
	})
	if err != nil {
		kind := ast.CommonJS
		if isModule {
			kind = ast.ESModule
		}
		message := err.Error()
		var compErr *errors.CompilerError
		if stderrors.As(err, &compErr) {
			message = errors.FormatError(compErr.WithSource(source))
		}
		fmt.Fprint(errOut, ui.RewriteError(name, message, nextconfig.ManualInstructions(cfg.Plugin, kind), noColor))
		return &reportedError{err}
	}

	if !result.Changed {
		fmt.Fprint(out, ui.Info(fmt.Sprintf("%s already uses %s, nothing to do", name, cfg.Plugin.Name), noColor))
		return nil
	}

	preserve := opts.preserveExtension || cfg.NextConfig.PreserveExtension
	target := scaffold.ConfigTarget(file, preserve)

	if opts.dryRun {
		d := format.Diff(source, result.Output)
		diff, err := d.UnifiedDiff(name, filepath.Base(target))
		if err != nil {
			return err
		}
		fmt.Fprint(out, format.Colorize(diff, noColor))
		fmt.Fprintln(out, d.Stats())
		return nil
	}

	if err := os.WriteFile(target, []byte(result.Output), 0644); err != nil {
		return fmt.Errorf("failed to write %s: %w", target, err)
	}
	ui.WriteSuccess(out, fmt.Sprintf("Added %s to %s", cfg.Plugin.Name, filepath.Base(target)), noColor)
	return nil
}
