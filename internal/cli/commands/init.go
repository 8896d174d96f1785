package commands

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/AlecAivazis/survey/v2"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fusejs/create-fuse-app/internal/cli/config"
	"github.com/fusejs/create-fuse-app/internal/cli/logging"
	"github.com/fusejs/create-fuse-app/internal/cli/ui"
	"github.com/fusejs/create-fuse-app/internal/scaffold"
)

type initOptions struct {
	yes            bool
	skipInstall    bool
	packageManager string
}

// stdinIsTerminal is replaced in tests
var stdinIsTerminal = func() bool {
	fd := os.Stdin.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}

func runInit(cmd *cobra.Command, global *globalOptions, opts *initOptions) error {
	out := cmd.OutOrStdout()
	errOut := cmd.ErrOrStderr()
	noColor := global.noColor || color.NoColor

	dir, err := config.ProjectRoot(global.dir)
	if err != nil {
		fmt.Fprint(errOut, ui.NotNextProjectError(err.Error(), noColor))
		return &reportedError{err}
	}

	cfg, err := loadConfig(cmd, dir, opts)
	if err != nil {
		return err
	}

	logger := logging.New(global.verbose)
	defer func() { _ = logger.Sync() }()
	logger.Debug("loaded config",
		zap.String("dir", dir),
		zap.String("plugin", cfg.Plugin.Name),
		zap.String("plugin_module", cfg.Plugin.Module))

	s := &scaffold.Scaffolder{
		Options: scaffold.Options{
			Dir:                     dir,
			PackageManager:          cfg.PackageManager,
			UserAgent:               os.Getenv("npm_config_user_agent"),
			SkipInstall:             cfg.SkipInstall,
			ProdPackages:            cfg.Packages.Prod,
			DevPackages:             cfg.Packages.Dev,
			Plugin:                  cfg.Plugin,
			PreserveConfigExtension: cfg.NextConfig.PreserveExtension,
			GraphQLSPSchema:         cfg.GraphQLSP.Schema,
		},
		Logger:    logger,
		Installer: &scaffold.ExecInstaller{Logger: logger},
		Reporter:  ui.NewStepReporter(errOut, noColor),
	}
	if !opts.yes && stdinIsTerminal() {
		s.Confirm = confirmOverwrite
	}

	report, err := s.Run(cmd.Context())
	if err != nil {
		var installErr *scaffold.InstallError
		switch {
		case errors.Is(err, scaffold.ErrNextNotFound):
			fmt.Fprint(errOut, ui.NotNextProjectError(err.Error(), noColor))
		case errors.As(err, &installErr):
			fmt.Fprint(errOut, ui.InstallError(installErr.Err.Error(), string(installErr.PackageManager), noColor))
		default:
			return err
		}
		return &reportedError{err}
	}

	printSummary(out, report, noColor)
	return nil
}

// loadConfig reads the project config and applies command line overrides
func loadConfig(cmd *cobra.Command, dir string, opts *initOptions) (*config.Config, error) {
	errOut := cmd.ErrOrStderr()
	noColor := color.NoColor

	cfg, err := config.Load(dir)
	if err != nil {
		fmt.Fprint(errOut, ui.ConfigError(err.Error(), nil, noColor))
		return nil, &reportedError{err}
	}
	for _, warning := range cfg.Warnings {
		fmt.Fprint(errOut, ui.Warning(warning, nil, noColor))
	}

	if cmd.Flags().Changed("package-manager") {
		if err := validatePackageManager(opts.packageManager); err != nil {
			fmt.Fprint(errOut, ui.ConfigError(err.Error(), ui.FindSimilar(opts.packageManager, config.PackageManagers, 0), noColor))
			return nil, &reportedError{err}
		}
		cfg.PackageManager = opts.packageManager
	}
	if opts.skipInstall {
		cfg.SkipInstall = true
	}
	return cfg, nil
}

func validatePackageManager(name string) error {
	for _, pm := range config.PackageManagers {
		if pm == name {
			return nil
		}
	}
	return fmt.Errorf("unknown package manager %q", name)
}

func confirmOverwrite(path string) (bool, error) {
	overwrite := false
	prompt := &survey.Confirm{
		Message: fmt.Sprintf("%s already exists. Overwrite it?", filepath.ToSlash(path)),
		Default: false,
	}
	if err := survey.AskOne(prompt, &overwrite); err != nil {
		return false, err
	}
	return overwrite, nil
}

func printSummary(w io.Writer, report *scaffold.Report, noColor bool) {
	project := report.Project

	fmt.Fprintln(w)
	ui.Header(w, "Fuse is ready", noColor)

	router := "pages"
	if project.HasAppDir {
		router = "app"
	}
	if project.HasSrcDir {
		router += " (src/)"
	}
	info := ui.NewKeyValueTable(w, noColor)
	if project.Name != "" {
		info.AddRow("Project", project.Name)
	}
	info.AddRow("Next.js", project.NextVersion)
	info.AddRow("Router", router)
	info.AddRow("Package manager", string(report.PackageManager))
	info.Render()
	fmt.Fprintln(w)

	files := ui.NewTable(w, noColor, "File", "Status")
	for _, f := range report.Files {
		files.AddRow(filepath.ToSlash(f.Path), f.Status.String())
	}
	if nc := report.NextConfig; nc != nil && nc.Source != "" {
		name := filepath.Base(nc.Source)
		if nc.Target != "" {
			name = filepath.Base(nc.Target)
		}
		files.AddRow(name, nc.Status.String())
	}
	vscode := "unchanged"
	if report.VSCodeChanged {
		vscode = "updated"
	}
	files.AddRow(".vscode/settings.json", vscode)
	files.AddRow("tsconfig.json", report.TSConfig.String())
	files.Render()
	fmt.Fprintln(w)

	userNode := "types/User.ts"
	if project.HasSrcDir {
		userNode = "src/" + userNode
	}
	fmt.Fprintln(w, "Next steps:")
	ui.List(w, []string{
		fmt.Sprintf("Start the dev server: %s", devCommand(report.PackageManager)),
		fmt.Sprintf("Add your own nodes next to %s", userNode),
		"Restart the TypeScript server in your editor to load the GraphQL plugin",
	}, noColor)
}

func devCommand(pm scaffold.PackageManager) string {
	if pm == scaffold.NPM {
		return "npm run dev"
	}
	return string(pm) + " dev"
}
