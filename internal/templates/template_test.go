package templates

import (
	"path/filepath"
	"strings"
	"testing"
)

func TestTemplateValidation(t *testing.T) {
	tests := []struct {
		name    string
		tmpl    *Template
		wantErr bool
	}{
		{
			name: "valid template",
			tmpl: &Template{
				Name:    "test",
				Version: "1.0.0",
				Files: []*TemplateFile{
					{TargetPath: "test.txt", Content: "test"},
				},
			},
			wantErr: false,
		},
		{
			name: "missing name",
			tmpl: &Template{
				Version: "1.0.0",
				Files: []*TemplateFile{
					{TargetPath: "test.txt", Content: "test"},
				},
			},
			wantErr: true,
		},
		{
			name: "missing version",
			tmpl: &Template{
				Name: "test",
				Files: []*TemplateFile{
					{TargetPath: "test.txt", Content: "test"},
				},
			},
			wantErr: true,
		},
		{
			name: "no files",
			tmpl: &Template{
				Name:    "test",
				Version: "1.0.0",
			},
			wantErr: true,
		},
		{
			name: "duplicate variable",
			tmpl: &Template{
				Name:    "test",
				Version: "1.0.0",
				Variables: []*TemplateVariable{
					{Name: "a", Type: VariableTypeString},
					{Name: "a", Type: VariableTypeString},
				},
				Files: []*TemplateFile{{TargetPath: "test.txt", Content: "test"}},
			},
			wantErr: true,
		},
		{
			name: "file without content",
			tmpl: &Template{
				Name:    "test",
				Version: "1.0.0",
				Files:   []*TemplateFile{{TargetPath: "test.txt"}},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tmpl.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestEngineRenderString(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name     string
		template string
		context  *TemplateContext
		want     string
		wantErr  bool
	}{
		{
			name:     "variable from context",
			template: "Module: {{.Variables.module}}",
			context: &TemplateContext{
				Variables: map[string]interface{}{"module": "fuse/next"},
			},
			want: "Module: fuse/next",
		},
		{
			name:     "conditional",
			template: "{{if .Variables.enabled}}yes{{else}}no{{end}}",
			context: &TemplateContext{
				Variables: map[string]interface{}{"enabled": true},
			},
			want: "yes",
		},
		{
			name:     "join function",
			template: `{{join "src" "app"}}`,
			context:  &TemplateContext{},
			want:     "src/app",
		},
		{
			name:     "missing variable",
			template: "{{.Variables.nope}}",
			context:  &TemplateContext{Variables: map[string]interface{}{}},
			wantErr:  true,
		},
		{
			name:     "parse error",
			template: "{{.Variables.x",
			context:  &TemplateContext{},
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := engine.renderString(tt.template, tt.context)
			if (err != nil) != tt.wantErr {
				t.Errorf("renderString() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if got != tt.want {
				t.Errorf("renderString() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestRenderFuseTemplate(t *testing.T) {
	engine := NewEngine()
	tmpl := NewFuseTemplate()

	tests := []struct {
		name      string
		vars      map[string]interface{}
		routePath string
		userPath  string
		contains  []string
	}{
		{
			name:      "pages router",
			vars:      map[string]interface{}{},
			routePath: "pages/api/fuse.ts",
			userPath:  "types/User.ts",
			contains:  []string{"import { createPagesRouteHandler } from 'fuse/next'", "export default handler"},
		},
		{
			name:      "app router",
			vars:      map[string]interface{}{"app_dir": true},
			routePath: "app/api/fuse/route.ts",
			userPath:  "types/User.ts",
			contains: []string{
				"import { createAPIRouteHandler } from 'fuse/next'",
				"const handler = createAPIRouteHandler()",
				"export const GET = handler\nexport const POST = handler\n",
			},
		},
		{
			name:      "app router under src",
			vars:      map[string]interface{}{"app_dir": true, "src_dir": true},
			routePath: "src/app/api/fuse/route.ts",
			userPath:  "src/types/User.ts",
			contains:  []string{"createAPIRouteHandler"},
		},
		{
			name:      "pages router under src",
			vars:      map[string]interface{}{"src_dir": true},
			routePath: "src/pages/api/fuse.ts",
			userPath:  "src/types/User.ts",
			contains:  []string{"createPagesRouteHandler"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			files, err := engine.Render(tmpl, &TemplateContext{Variables: tt.vars})
			if err != nil {
				t.Fatalf("Render() error = %v", err)
			}
			if len(files) != 2 {
				t.Fatalf("Render() produced %d files, want 2", len(files))
			}

			route, user := files[0], files[1]
			if route.Name != FileRoute || user.Name != FileUserNode {
				t.Fatalf("unexpected file order: %s, %s", route.Name, user.Name)
			}
			if route.Path != filepath.FromSlash(tt.routePath) {
				t.Errorf("route path = %s, want %s", route.Path, tt.routePath)
			}
			if user.Path != filepath.FromSlash(tt.userPath) {
				t.Errorf("user path = %s, want %s", user.Path, tt.userPath)
			}
			for _, want := range tt.contains {
				if !strings.Contains(route.Content, want) {
					t.Errorf("route content missing %q:\n%s", want, route.Content)
				}
			}
			if !strings.Contains(user.Content, "export const UserNode = node<UserSource>({") {
				t.Errorf("user node content unexpected:\n%s", user.Content)
			}
			// the user node is copied, not rendered
			if !strings.Contains(user.Content, "name: `Peter #${id}`,") {
				t.Errorf("user node template literal was altered:\n%s", user.Content)
			}
		})
	}
}

func TestRenderCustomRuntimeModule(t *testing.T) {
	files, err := NewEngine().Render(NewFuseTemplate(), &TemplateContext{
		Variables: map[string]interface{}{"runtime_module": "@acme/fuse/next"},
	})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if !strings.HasPrefix(files[0].Content, "import { createPagesRouteHandler } from '@acme/fuse/next'") {
		t.Errorf("unexpected route content:\n%s", files[0].Content)
	}
}

func TestEngineValidateContext(t *testing.T) {
	engine := NewEngine()
	tmpl := &Template{
		Name:    "typed",
		Version: "1.0.0",
		Variables: []*TemplateVariable{
			{Name: "flag", Type: VariableTypeBool, Required: true},
			{Name: "name", Type: VariableTypeString},
		},
		Files: []*TemplateFile{{TargetPath: "a.txt", Content: "a"}},
	}

	if _, err := engine.Render(tmpl, &TemplateContext{}); err == nil {
		t.Error("Render() should fail without a required variable")
	}
	if _, err := engine.Render(tmpl, &TemplateContext{Variables: map[string]interface{}{"flag": "yes"}}); err == nil {
		t.Error("Render() should fail for a string bool")
	}
	if _, err := engine.Render(tmpl, &TemplateContext{Variables: map[string]interface{}{"flag": true, "name": 3}}); err == nil {
		t.Error("Render() should fail for a non-string name")
	}
	if _, err := engine.Render(tmpl, &TemplateContext{Variables: map[string]interface{}{"flag": true}}); err != nil {
		t.Errorf("Render() error = %v", err)
	}
}

func TestEvaluateCondition(t *testing.T) {
	engine := NewEngine()
	ctx := &TemplateContext{Variables: map[string]interface{}{"on": true, "off": false}}

	tests := []struct {
		condition string
		want      bool
	}{
		{"{{.Variables.on}}", true},
		{"{{.Variables.off}}", false},
		{"{{not .Variables.off}}", true},
		{" {{.Variables.on}} ", true},
	}

	for _, tt := range tests {
		got, err := engine.evaluateCondition(tt.condition, ctx)
		if err != nil {
			t.Fatalf("evaluateCondition(%q) error = %v", tt.condition, err)
		}
		if got != tt.want {
			t.Errorf("evaluateCondition(%q) = %v, want %v", tt.condition, got, tt.want)
		}
	}
}

func TestRenderPathTraversalProtection(t *testing.T) {
	engine := NewEngine()

	paths := []string{"../../etc/passwd", "/etc/passwd", "a/../../outside.txt", ".."}
	for _, p := range paths {
		t.Run(p, func(t *testing.T) {
			tmpl := &Template{
				Name:    "traversal",
				Version: "1.0.0",
				Files:   []*TemplateFile{{TargetPath: p, Content: "malicious content"}},
			}
			_, err := engine.Render(tmpl, &TemplateContext{})
			if err == nil {
				t.Fatal("Render() should reject paths outside the project")
			}
			if !strings.Contains(err.Error(), "outside project directory") {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}

	// a path that only looks like traversal stays inside
	tmpl := &Template{
		Name:    "inside",
		Version: "1.0.0",
		Files:   []*TemplateFile{{TargetPath: "a/../b..txt", Content: "ok"}},
	}
	files, err := engine.Render(tmpl, &TemplateContext{})
	if err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	if files[0].Path != "b..txt" {
		t.Errorf("path = %s, want b..txt", files[0].Path)
	}
}
