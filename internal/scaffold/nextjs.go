package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fusejs/create-fuse-app/internal/nextconfig"
)

// Next.js config file names, in lookup order
const (
	NextConfigJS  = "next.config.js"
	NextConfigMJS = "next.config.mjs"
)

// NextConfigStatus tells how the Next.js config was handled
type NextConfigStatus int

const (
	// NextConfigMissing means the project has no config file to rewrite
	NextConfigMissing NextConfigStatus = iota
	NextConfigRewritten
	NextConfigAlreadyWrapped
	// NextConfigFailed means the file could not be rewritten; it is left
	// untouched and the user wires the plugin by hand
	NextConfigFailed
)

func (s NextConfigStatus) String() string {
	switch s {
	case NextConfigMissing:
		return "missing"
	case NextConfigRewritten:
		return "rewritten"
	case NextConfigAlreadyWrapped:
		return "already-wrapped"
	default:
		return "failed"
	}
}

// NextConfigResult reports the Next.js config step
type NextConfigResult struct {
	Status NextConfigStatus
	// Source is the file that was read
	Source string
	// Target is the file that was written
	Target string
	Result *nextconfig.Result
	// Err is why the rewrite failed, for NextConfigFailed
	Err error
}

// FindNextConfig returns the config file in dir, preferring next.config.js
// over next.config.mjs, or "" when there is none
func FindNextConfig(dir string) string {
	for _, name := range []string{NextConfigJS, NextConfigMJS} {
		if path := filepath.Join(dir, name); fileExists(path) {
			return path
		}
	}
	return ""
}

// ConfigTarget returns where the rewritten config is written. The result
// always goes to next.config.js unless preserveExtension is set.
func ConfigTarget(source string, preserveExtension bool) string {
	if preserveExtension {
		return source
	}
	return filepath.Join(filepath.Dir(source), NextConfigJS)
}

// IsModuleConfig reports whether the config file at path holds ES module
// syntax: .mjs always does, .js when the package is "type": "module"
func IsModuleConfig(path string, packageIsESM bool) bool {
	return filepath.Ext(path) == ".mjs" || packageIsESM
}

// wireNextConfig registers the plugin in the project's Next.js config.
// Rewrite failures are reported in the result, not returned, since the
// rest of the setup is still useful without them.
func (s *Scaffolder) wireNextConfig(project *Project) (*NextConfigResult, error) {
	source := FindNextConfig(project.Dir)
	if source == "" {
		return &NextConfigResult{Status: NextConfigMissing}, nil
	}

	data, err := os.ReadFile(source)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filepath.Base(source), err)
	}

	result, err := nextconfig.Rewrite(string(data), nextconfig.Options{
		IsModuleSyntax: IsModuleConfig(source, project.IsESM()),
		Plugin:         s.Options.Plugin,
		Filename:       filepath.Base(source),
	})
	if err != nil {
		s.logger().Debug("next config rewrite failed", zap.String("file", source), zap.Error(err))
		return &NextConfigResult{Status: NextConfigFailed, Source: source, Err: err}, nil
	}

	if !result.Changed {
		return &NextConfigResult{Status: NextConfigAlreadyWrapped, Source: source, Result: result}, nil
	}

	target := ConfigTarget(source, s.Options.PreserveConfigExtension)
	if err := os.WriteFile(target, []byte(result.Output), 0644); err != nil {
		return nil, fmt.Errorf("failed to write %s: %w", filepath.Base(target), err)
	}
	s.logger().Debug("rewrote next config",
		zap.String("source", source),
		zap.String("target", target),
		zap.Stringer("kind", result.Site.Kind),
		zap.Bool("import_added", result.ImportAdded))

	return &NextConfigResult{Status: NextConfigRewritten, Source: source, Target: target, Result: result}, nil
}
