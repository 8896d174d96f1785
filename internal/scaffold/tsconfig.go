package scaffold

import (
	"fmt"
	"os"
	"path/filepath"
)

// GraphQLSPName is the TypeScript language service plugin that type-checks
// GraphQL documents in the editor
const GraphQLSPName = "@0no-co/graphqlsp"

// TSConfigStatus tells how tsconfig.json was handled
type TSConfigStatus int

const (
	TSConfigMissing TSConfigStatus = iota
	TSConfigUnchanged
	TSConfigUpdated
)

func (s TSConfigStatus) String() string {
	switch s {
	case TSConfigMissing:
		return "missing"
	case TSConfigUnchanged:
		return "unchanged"
	default:
		return "updated"
	}
}

// graphQLSPPlugin builds the compilerOptions.plugins entry
func graphQLSPPlugin(schema string) *Object {
	plugin := NewObject()
	plugin.Set("name", GraphQLSPName)
	plugin.Set("schema", schema)
	plugin.Set("disableTypegen", true)
	plugin.Set("templateIsCallExpression", true)
	plugin.Set("template", "graphql")
	return plugin
}

// AddGraphQLSPPlugin appends the GraphQL language service plugin to
// compilerOptions.plugins in dir/tsconfig.json. A missing tsconfig.json
// is left alone, as is one that already lists the plugin.
func AddGraphQLSPPlugin(dir, schema string) (TSConfigStatus, error) {
	path := filepath.Join(dir, "tsconfig.json")
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return TSConfigMissing, nil
	}
	if err != nil {
		return TSConfigMissing, fmt.Errorf("failed to read tsconfig.json: %w", err)
	}

	config, err := ParseJSONC(data)
	if err != nil {
		return TSConfigUnchanged, fmt.Errorf("failed to parse tsconfig.json: %w", err)
	}

	compilerOptions := NewObject()
	if value, ok := config.Get("compilerOptions"); ok && value != nil {
		obj, isObj := value.(*Object)
		if !isObj {
			return TSConfigUnchanged, fmt.Errorf("tsconfig.json: compilerOptions must be an object")
		}
		compilerOptions = obj
	}

	var plugins []interface{}
	if value, ok := compilerOptions.Get("plugins"); ok && value != nil {
		list, isList := value.([]interface{})
		if !isList {
			return TSConfigUnchanged, fmt.Errorf("tsconfig.json: compilerOptions.plugins must be an array")
		}
		plugins = list
	}

	for _, p := range plugins {
		if obj, ok := p.(*Object); ok {
			if name, _ := obj.Get("name"); name == GraphQLSPName {
				return TSConfigUnchanged, nil
			}
		}
	}

	compilerOptions.Set("plugins", append(plugins, graphQLSPPlugin(schema)))
	config.Set("compilerOptions", compilerOptions)

	out, err := MarshalIndented(config)
	if err != nil {
		return TSConfigUnchanged, err
	}
	if err := os.WriteFile(path, out, 0644); err != nil {
		return TSConfigUnchanged, fmt.Errorf("failed to write tsconfig.json: %w", err)
	}
	return TSConfigUpdated, nil
}
