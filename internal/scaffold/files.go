package scaffold

import (
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/fusejs/create-fuse-app/internal/templates"
)

// FileStatus tells what happened to a generated file
type FileStatus int

const (
	FileCreated FileStatus = iota
	FileOverwritten
	// FileKept means the file existed and the user chose to keep it
	FileKept
)

func (s FileStatus) String() string {
	switch s {
	case FileCreated:
		return "created"
	case FileOverwritten:
		return "overwritten"
	default:
		return "kept"
	}
}

// FileResult reports one generated file, with Path relative to the project
type FileResult struct {
	Name   string
	Path   string
	Status FileStatus
}

// ConfirmFunc asks whether an existing file may be overwritten
type ConfirmFunc func(path string) (bool, error)

// writeTemplateFiles writes the API route and the sample node
func (s *Scaffolder) writeTemplateFiles(project *Project) ([]FileResult, error) {
	tmpl, err := templates.Builtin().Get("fuse")
	if err != nil {
		return nil, err
	}

	rendered, err := templates.NewEngine().Render(tmpl, &templates.TemplateContext{
		Variables: map[string]interface{}{
			"src_dir": project.HasSrcDir,
			"app_dir": project.HasAppDir,
		},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to render files: %w", err)
	}

	results := make([]FileResult, 0, len(rendered))
	for _, file := range rendered {
		status, err := s.writeFile(project.Path(file.Path), file.Path, []byte(file.Content))
		if err != nil {
			return results, err
		}
		s.logger().Debug("wrote template file",
			zap.String("path", file.Path),
			zap.Stringer("status", status))
		results = append(results, FileResult{Name: file.Name, Path: file.Path, Status: status})
	}
	return results, nil
}

// writeFile writes data to path, creating parent directories. An existing
// file is only replaced when the confirm hook agrees.
func (s *Scaffolder) writeFile(path, display string, data []byte) (FileStatus, error) {
	status := FileCreated
	if fileExists(path) {
		status = FileOverwritten
		if s.Confirm != nil {
			ok, err := s.Confirm(display)
			if err != nil {
				return status, err
			}
			if !ok {
				return FileKept, nil
			}
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return status, fmt.Errorf("failed to create directory for %s: %w", display, err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return status, fmt.Errorf("failed to write %s: %w", display, err)
	}
	return status, nil
}
