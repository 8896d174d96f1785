package templates

// File names within the fuse template
const (
	FileRoute    = "route"
	FileUserNode = "user-node"
)

// NewFuseTemplate creates the files a Fuse setup adds to a Next.js
// project: the API route serving the data layer and a sample node
func NewFuseTemplate() *Template {
	return &Template{
		Name:        "fuse",
		Description: "Fuse data layer for a Next.js project",
		Version:     "1.0.0",
		Variables: []*TemplateVariable{
			{
				Name:        "src_dir",
				Description: "Project keeps its code under src/",
				Type:        VariableTypeBool,
				Default:     false,
			},
			{
				Name:        "app_dir",
				Description: "Project uses the App Router",
				Type:        VariableTypeBool,
				Default:     false,
			},
			{
				Name:        "runtime_module",
				Description: "Module the route handlers are imported from",
				Type:        VariableTypeString,
				Default:     "fuse/next",
			},
		},
		Files: []*TemplateFile{
			{
				Name:       FileRoute,
				TargetPath: "{{if .Variables.src_dir}}src/{{end}}app/api/fuse/route.ts",
				Content:    fileContent("route_app.ts.tmpl"),
				Template:   true,
				Condition:  "{{.Variables.app_dir}}",
			},
			{
				Name:       FileRoute,
				TargetPath: "{{if .Variables.src_dir}}src/{{end}}pages/api/fuse.ts",
				Content:    fileContent("route_pages.ts.tmpl"),
				Template:   true,
				Condition:  "{{not .Variables.app_dir}}",
			},
			{
				Name:       FileUserNode,
				TargetPath: "{{if .Variables.src_dir}}src/{{end}}types/User.ts",
				Content:    fileContent("user_node.ts"),
			},
		},
	}
}
