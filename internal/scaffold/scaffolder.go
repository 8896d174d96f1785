package scaffold

import (
	"context"
	"fmt"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fusejs/create-fuse-app/internal/compiler/ast"
	"github.com/fusejs/create-fuse-app/internal/nextconfig"
)

// Step names reported while a run progresses
const (
	StepDetect     = "Detecting project"
	StepInstall    = "Installing packages"
	StepFiles      = "Writing API route"
	StepNextConfig = "Adding the Next.js plugin"
	StepVSCode     = "Updating VS Code settings"
	StepTSConfig   = "Updating tsconfig.json"
)

// Options configure a run
type Options struct {
	Dir string
	// PackageManager overrides detection when set
	PackageManager string
	// UserAgent is npm_config_user_agent from the environment
	UserAgent    string
	SkipInstall  bool
	ProdPackages []string
	DevPackages  []string
	Plugin       nextconfig.Plugin
	// PreserveConfigExtension writes next.config.mjs back to itself
	PreserveConfigExtension bool
	GraphQLSPSchema         string
}

// Reporter is told about each step of a run
type Reporter interface {
	StepStarted(step string)
	StepFinished(step string, err error)
	Warn(message string, details ...string)
}

type nopReporter struct{}

func (nopReporter) StepStarted(string)         {}
func (nopReporter) StepFinished(string, error) {}
func (nopReporter) Warn(string, ...string)     {}

// Report summarizes a completed run
type Report struct {
	Project        *Project
	PackageManager PackageManager
	Installed      bool
	Files          []FileResult
	NextConfig     *NextConfigResult
	VSCodeChanged  bool
	TSConfig       TSConfigStatus
	Warnings       []string
}

// Scaffolder adds Fuse to an existing Next.js project
type Scaffolder struct {
	Options   Options
	Logger    *zap.Logger
	Installer Installer
	// Confirm is asked before an existing file is overwritten; nil
	// overwrites without asking
	Confirm  ConfirmFunc
	Reporter Reporter
}

func (s *Scaffolder) logger() *zap.Logger {
	if s.Logger == nil {
		return zap.NewNop()
	}
	return s.Logger
}

func (s *Scaffolder) reporter() Reporter {
	if s.Reporter == nil {
		return nopReporter{}
	}
	return s.Reporter
}

// step runs fn between the reporter's start and finish callbacks
func (s *Scaffolder) step(name string, fn func() error) error {
	r := s.reporter()
	r.StepStarted(name)
	err := fn()
	r.StepFinished(name, err)
	return err
}

// Run performs the whole setup. Detection, install and file errors stop the
// run. Problems with the Next.js config or the editor settings are collected
// as warnings, since the user can fix those by hand.
func (s *Scaffolder) Run(ctx context.Context) (*Report, error) {
	report := &Report{}

	err := s.step(StepDetect, func() error {
		project, err := Detect(s.Options.Dir)
		if err != nil {
			return err
		}
		report.Project = project
		report.PackageManager = DetectPackageManager(project.Dir, s.Options.PackageManager, s.Options.UserAgent)
		return nil
	})
	if err != nil {
		return nil, err
	}
	project := report.Project
	s.logger().Info("detected project",
		zap.String("dir", project.Dir),
		zap.String("next", project.NextVersion),
		zap.Bool("app_dir", project.HasAppDir),
		zap.Bool("src_dir", project.HasSrcDir),
		zap.String("package_manager", string(report.PackageManager)))

	if !s.Options.SkipInstall {
		if s.Installer == nil {
			return nil, fmt.Errorf("no installer configured")
		}
		err := s.step(StepInstall, func() error {
			if err := s.Installer.Install(ctx, project.Dir, report.PackageManager, false, s.Options.ProdPackages); err != nil {
				return err
			}
			return s.Installer.Install(ctx, project.Dir, report.PackageManager, true, s.Options.DevPackages)
		})
		if err != nil {
			return nil, &InstallError{PackageManager: report.PackageManager, Err: err}
		}
		report.Installed = true
	}

	err = s.step(StepFiles, func() error {
		files, err := s.writeTemplateFiles(project)
		report.Files = files
		return err
	})
	if err != nil {
		return nil, err
	}

	err = s.step(StepNextConfig, func() error {
		result, err := s.wireNextConfig(project)
		report.NextConfig = result
		return err
	})
	if err != nil {
		return nil, err
	}
	s.warnNextConfig(report)

	err = s.step(StepVSCode, func() error {
		changed, err := MergeVSCodeSettings(project.Dir)
		report.VSCodeChanged = changed
		return err
	})
	if err != nil {
		s.warn(report, "Could not update VS Code settings", err.Error())
	}

	err = s.step(StepTSConfig, func() error {
		status, err := AddGraphQLSPPlugin(project.Dir, s.Options.GraphQLSPSchema)
		report.TSConfig = status
		return err
	})
	if err != nil {
		s.warn(report, "Could not add the GraphQL plugin to tsconfig.json", err.Error())
	}

	return report, nil
}

func (s *Scaffolder) warnNextConfig(report *Report) {
	result := report.NextConfig
	switch result.Status {
	case NextConfigMissing:
		s.warn(report, fmt.Sprintf("No next config found, you can add the fuse plugin yourself by importing it from %q!",
			s.Options.Plugin.Module))
	case NextConfigFailed:
		kind := ast.CommonJS
		if IsModuleConfig(result.Source, report.Project.IsESM()) {
			kind = ast.ESModule
		}
		s.warn(report,
			fmt.Sprintf("Could not add the fuse plugin to %s", filepath.Base(result.Source)),
			result.Err.Error(),
			nextconfig.ManualInstructions(s.Options.Plugin, kind))
	}
}

func (s *Scaffolder) warn(report *Report, message string, details ...string) {
	report.Warnings = append(report.Warnings, message)
	s.logger().Warn(message, zap.Strings("details", details))
	s.reporter().Warn(message, details...)
}
