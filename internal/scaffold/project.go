// Package scaffold wires Fuse into an existing Next.js project: it installs
// the packages, writes the API route and sample node, rewrites the Next.js
// config and merges the editor and TypeScript settings.
package scaffold

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/goccy/go-json"
)

// ErrNextNotFound means package.json does not depend on Next.js
var ErrNextNotFound = errors.New(`could not find "next" as a dependency in your package.json. Please install Next.js first`)

// Project describes the Next.js project being set up
type Project struct {
	Dir         string
	Name        string
	NextVersion string
	// ModuleType is the package.json "type" field
	ModuleType string
	HasSrcDir  bool
	HasAppDir  bool
}

type packageJSON struct {
	Name            string            `json:"name"`
	Type            string            `json:"type"`
	Dependencies    map[string]string `json:"dependencies"`
	DevDependencies map[string]string `json:"devDependencies"`
}

func readPackageJSON(dir string) (*packageJSON, error) {
	data, err := os.ReadFile(filepath.Join(dir, "package.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to read package.json: %w", err)
	}

	var pkg packageJSON
	if err := json.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("failed to parse package.json: %w", err)
	}
	return &pkg, nil
}

// PackageIsESM reports whether dir/package.json declares "type": "module".
// A missing or unreadable package.json counts as CommonJS.
func PackageIsESM(dir string) bool {
	pkg, err := readPackageJSON(dir)
	return err == nil && pkg.Type == "module"
}

// Detect reads dir/package.json and inspects the project layout
func Detect(dir string) (*Project, error) {
	pkg, err := readPackageJSON(dir)
	if err != nil {
		return nil, err
	}

	deps := make(map[string]string, len(pkg.Dependencies)+len(pkg.DevDependencies))
	for name, version := range pkg.Dependencies {
		deps[name] = version
	}
	for name, version := range pkg.DevDependencies {
		deps[name] = version
	}

	nextVersion := deps["next"]
	if nextVersion == "" {
		return nil, ErrNextNotFound
	}

	project := &Project{
		Dir:         dir,
		Name:        pkg.Name,
		NextVersion: nextVersion,
		ModuleType:  pkg.Type,
		HasSrcDir:   isDir(filepath.Join(dir, "src")),
	}
	project.HasAppDir = isDir(filepath.Join(dir, "app")) ||
		(project.HasSrcDir && isDir(filepath.Join(dir, "src", "app")))

	return project, nil
}

// IsESM reports whether .js files in the project are ES modules
func (p *Project) IsESM() bool {
	return p.ModuleType == "module"
}

// Path joins elem onto the project directory
func (p *Project) Path(elem ...string) string {
	return filepath.Join(append([]string{p.Dir}, elem...)...)
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
