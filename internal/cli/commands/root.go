package commands

import (
	"context"
	"errors"
	"fmt"
	"runtime"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// globalOptions holds the flags shared by every command
type globalOptions struct {
	dir     string
	verbose bool
	noColor bool
}

// reportedError marks an error that was already shown to the user
type reportedError struct {
	err error
}

func (e *reportedError) Error() string { return e.err.Error() }
func (e *reportedError) Unwrap() error { return e.err }

// NewRootCommand creates the root command. Run without a subcommand it sets
// up Fuse in the Next.js project found at --dir.
func NewRootCommand() *cobra.Command {
	global := &globalOptions{}
	initOpts := &initOptions{}

	rootCmd := &cobra.Command{
		Use:   "create-fuse-app",
		Short: "Add Fuse to an existing Next.js project",
		Long: color.CyanString(`create-fuse-app - set up Fuse in a Next.js project

Run it from a Next.js project. It will:
  • Install fuse and the GraphQL editor tooling
  • Add the Fuse API route and a sample node
  • Wrap your Next.js config with the Fuse plugin
  • Point VS Code at the workspace TypeScript
  • Register the GraphQL language service in tsconfig.json`),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if global.noColor {
				color.NoColor = true
			}
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runInit(cmd, global, initOpts)
		},
	}

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&global.dir, "dir", "C", ".", "Project directory")
	pf.BoolVarP(&global.verbose, "verbose", "v", false, "Show debug logging")
	pf.BoolVar(&global.noColor, "no-color", false, "Disable colored output")

	f := rootCmd.Flags()
	f.BoolVarP(&initOpts.yes, "yes", "y", false, "Overwrite existing files without asking")
	f.BoolVar(&initOpts.skipInstall, "skip-install", false, "Do not install packages")
	f.StringVar(&initOpts.packageManager, "package-manager", "", "Package manager to use (npm, yarn, pnpm, bun)")

	rootCmd.AddCommand(NewVersionCommand())
	rootCmd.AddCommand(NewRewriteConfigCommand(global))
	rootCmd.AddCommand(NewCompletionCommand())

	return rootCmd
}

// NewVersionCommand creates the version command
func NewVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Long:  "Display the create-fuse-app version, Git commit, build date, and Go version",
		Run: func(cmd *cobra.Command, args []string) {
			goVer := GoVersion
			if goVer == "unknown" {
				goVer = runtime.Version()
			}

			titleColor := color.New(color.FgCyan, color.Bold)
			out := cmd.OutOrStdout()

			for _, row := range [][2]string{
				{"create-fuse-app version: ", Version},
				{"Git commit: ", GitCommit},
				{"Build date: ", BuildDate},
				{"Go version: ", goVer},
			} {
				titleColor.Fprint(out, row[0])
				fmt.Fprintln(out, row[1])
			}
		},
	}
}

// Execute runs the root command
func Execute() error {
	return ExecuteContext(context.Background())
}

// ExecuteContext runs the root command; cancelling ctx stops a running
// package install
func ExecuteContext(ctx context.Context) error {
	rootCmd := NewRootCommand()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		var reported *reportedError
		if !errors.As(err, &reported) {
			errorColor := color.New(color.FgRed, color.Bold)
			errorColor.Fprintf(rootCmd.ErrOrStderr(), "Error: %v\n", err)
		}
		return err
	}
	return nil
}
