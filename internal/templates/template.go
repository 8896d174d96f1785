package templates

import (
	"bytes"
	"embed"
	"fmt"
	"path"
	"path/filepath"
	"strings"
	"text/template"
)

//go:embed files
var files embed.FS

// VariableType represents the type of template variable
type VariableType string

const (
	VariableTypeString VariableType = "string"
	VariableTypeBool   VariableType = "bool"
)

// Template is a set of files written into an existing project
type Template struct {
	Name        string
	Description string
	Version     string
	Variables   []*TemplateVariable
	Files       []*TemplateFile
}

// TemplateVariable represents a variable the files are rendered with
type TemplateVariable struct {
	Name        string
	Description string
	Type        VariableType
	Default     interface{}
	Required    bool
}

// TemplateFile represents a file in a template
type TemplateFile struct {
	// Name identifies the file within the template, e.g. "route"
	Name       string
	TargetPath string
	Content    string
	Template   bool   // Use template engine
	Condition  string // Conditional file generation
}

// TemplateContext contains all data for template execution
type TemplateContext struct {
	Variables map[string]interface{}
}

// RenderedFile is a template file ready to be written, relative to the
// project directory
type RenderedFile struct {
	Name    string
	Path    string
	Content string
}

// Engine is the template rendering engine
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates a new template engine
func NewEngine() *Engine {
	return &Engine{
		funcs: template.FuncMap{
			"join": path.Join,
			"default": func(def, val interface{}) interface{} {
				if val == nil {
					return def
				}
				return val
			},
		},
	}
}

// Render renders every file of tmpl whose condition holds. Variables
// missing from ctx take their declared defaults.
func (e *Engine) Render(tmpl *Template, ctx *TemplateContext) ([]*RenderedFile, error) {
	ctx = e.withDefaults(tmpl, ctx)
	if err := e.validateContext(tmpl, ctx); err != nil {
		return nil, fmt.Errorf("invalid template context: %w", err)
	}

	var rendered []*RenderedFile
	for _, file := range tmpl.Files {
		if file.Condition != "" {
			shouldCreate, err := e.evaluateCondition(file.Condition, ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to evaluate condition for %s: %w", file.TargetPath, err)
			}
			if !shouldCreate {
				continue
			}
		}

		targetPath, err := e.renderString(file.TargetPath, ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to render target path %s: %w", file.TargetPath, err)
		}

		// Sanitize path to prevent directory traversal
		targetPath = filepath.Clean(filepath.FromSlash(targetPath))
		if filepath.IsAbs(targetPath) || targetPath == ".." ||
			strings.HasPrefix(targetPath, ".."+string(filepath.Separator)) {
			return nil, fmt.Errorf("invalid target path: %s attempts to write outside project directory", file.TargetPath)
		}

		content := file.Content
		if file.Template {
			content, err = e.renderString(file.Content, ctx)
			if err != nil {
				return nil, fmt.Errorf("failed to render template %s: %w", file.TargetPath, err)
			}
		}

		rendered = append(rendered, &RenderedFile{Name: file.Name, Path: targetPath, Content: content})
	}
	return rendered, nil
}

// renderString renders a template string with the given context
func (e *Engine) renderString(tmplStr string, ctx *TemplateContext) (string, error) {
	tmpl, err := template.New("").Funcs(e.funcs).Option("missingkey=error").Parse(tmplStr)
	if err != nil {
		return "", err
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, ctx); err != nil {
		return "", err
	}

	return buf.String(), nil
}

func (e *Engine) withDefaults(tmpl *Template, ctx *TemplateContext) *TemplateContext {
	vars := make(map[string]interface{}, len(tmpl.Variables))
	for _, v := range tmpl.Variables {
		if v.Default != nil {
			vars[v.Name] = v.Default
		}
	}
	if ctx != nil {
		for k, v := range ctx.Variables {
			vars[k] = v
		}
	}
	return &TemplateContext{Variables: vars}
}

// validateContext validates that all required variables are provided
func (e *Engine) validateContext(tmpl *Template, ctx *TemplateContext) error {
	for _, v := range tmpl.Variables {
		value, ok := ctx.Variables[v.Name]
		if !ok {
			if v.Required {
				return fmt.Errorf("required variable %s not provided", v.Name)
			}
			continue
		}
		switch v.Type {
		case VariableTypeBool:
			if _, isBool := value.(bool); !isBool {
				return fmt.Errorf("variable %s must be a bool, got %T", v.Name, value)
			}
		case VariableTypeString:
			if _, isString := value.(string); !isString {
				return fmt.Errorf("variable %s must be a string, got %T", v.Name, value)
			}
		}
	}
	return nil
}

// evaluateCondition evaluates a simple boolean condition such as
// {{.Variables.name}}
func (e *Engine) evaluateCondition(condition string, ctx *TemplateContext) (bool, error) {
	result, err := e.renderString(condition, ctx)
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(result) == "true", nil
}

// fileContent reads an embedded template file
func fileContent(name string) string {
	data, err := files.ReadFile("files/" + name)
	if err != nil {
		panic(fmt.Sprintf("templates: missing embedded file %s", name))
	}
	return string(data)
}

// Validate validates a template structure
func (t *Template) Validate() error {
	if t.Name == "" {
		return fmt.Errorf("template name is required")
	}
	if t.Version == "" {
		return fmt.Errorf("template version is required")
	}
	if len(t.Files) == 0 {
		return fmt.Errorf("template must have at least one file")
	}

	varNames := make(map[string]bool)
	for _, v := range t.Variables {
		if v.Name == "" {
			return fmt.Errorf("variable name is required")
		}
		if varNames[v.Name] {
			return fmt.Errorf("duplicate variable name: %s", v.Name)
		}
		varNames[v.Name] = true
	}

	for _, f := range t.Files {
		if f.TargetPath == "" {
			return fmt.Errorf("file target path is required")
		}
		if f.Content == "" {
			return fmt.Errorf("file content is required for %s", f.TargetPath)
		}
	}

	return nil
}
