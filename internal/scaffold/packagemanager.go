package scaffold

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
)

// PackageManager names a JavaScript package manager
type PackageManager string

const (
	NPM  PackageManager = "npm"
	Yarn PackageManager = "yarn"
	PNPM PackageManager = "pnpm"
	Bun  PackageManager = "bun"
)

var lockfiles = []struct {
	name string
	pm   PackageManager
}{
	{"pnpm-lock.yaml", PNPM},
	{"yarn.lock", Yarn},
	{"bun.lockb", Bun},
	{"bun.lock", Bun},
	{"package-lock.json", NPM},
}

// DetectPackageManager picks the package manager for the project in dir:
// an explicit override wins, then the manager that launched us (from
// npm_config_user_agent), then the lockfile present in dir, then npm
func DetectPackageManager(dir, override, userAgent string) PackageManager {
	if override != "" {
		return PackageManager(override)
	}

	switch {
	case strings.HasPrefix(userAgent, "pnpm"):
		return PNPM
	case strings.HasPrefix(userAgent, "yarn"):
		return Yarn
	case strings.HasPrefix(userAgent, "bun"):
		return Bun
	case strings.HasPrefix(userAgent, "npm"):
		return NPM
	}

	for _, lf := range lockfiles {
		if fileExists(filepath.Join(dir, lf.name)) {
			return lf.pm
		}
	}
	return NPM
}

// InstallArgs returns the command line that adds packages
func (pm PackageManager) InstallArgs(dev bool, packages []string) []string {
	var args []string
	switch pm {
	case Yarn:
		args = []string{"add"}
		if dev {
			args = append(args, "--dev")
		}
	case PNPM:
		args = []string{"add"}
		if dev {
			args = append(args, "--save-dev")
		}
	case Bun:
		args = []string{"add"}
		if dev {
			args = append(args, "--dev")
		}
	default:
		args = []string{"install"}
		if dev {
			args = append(args, "--save-dev")
		}
	}
	return append(args, packages...)
}

// InstallError reports a failed package install
type InstallError struct {
	PackageManager PackageManager
	Err            error
}

func (e *InstallError) Error() string {
	return fmt.Sprintf("failed to install packages with %s: %v", e.PackageManager, e.Err)
}

func (e *InstallError) Unwrap() error {
	return e.Err
}

// Installer adds packages to a project
type Installer interface {
	Install(ctx context.Context, dir string, pm PackageManager, dev bool, packages []string) error
}

// ExecInstaller runs the package manager binary
type ExecInstaller struct {
	Logger *zap.Logger
}

// Install runs the package manager in dir. Its output is only shown when
// the command fails.
func (i *ExecInstaller) Install(ctx context.Context, dir string, pm PackageManager, dev bool, packages []string) error {
	if len(packages) == 0 {
		return nil
	}
	args := pm.InstallArgs(dev, packages)

	logger := i.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	logger.Debug("running package manager",
		zap.String("command", string(pm)),
		zap.Strings("args", args),
		zap.String("dir", dir))

	var output bytes.Buffer
	cmd := exec.CommandContext(ctx, string(pm), args...)
	cmd.Dir = dir
	cmd.Stdout = &output
	cmd.Stderr = &output

	if err := cmd.Run(); err != nil {
		return fmt.Errorf("%s %s failed: %w\n%s", pm, strings.Join(args, " "), err,
			strings.TrimSpace(output.String()))
	}
	return nil
}
