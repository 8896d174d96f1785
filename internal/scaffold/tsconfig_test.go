package scaffold

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const graphQLSPEntry = `      {
        "name": "@0no-co/graphqlsp",
        "schema": "./schema.graphql",
        "disableTypegen": true,
        "templateIsCallExpression": true,
        "template": "graphql"
      }`

func TestAddGraphQLSPPlugin(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tsconfig.json": `{
  "compilerOptions": {
    "strict": true,
    // next adds this
    "plugins": [{ "name": "next" }],
    "paths": { "@/*": ["./src/*"] }
  },
  "include": ["next-env.d.ts", "**/*.ts", "**/*.tsx"],
}`})

	status, err := AddGraphQLSPPlugin(dir, "./schema.graphql")
	require.NoError(t, err)
	assert.Equal(t, TSConfigUpdated, status)
	assert.Equal(t, `{
  "compilerOptions": {
    "strict": true,
    "plugins": [
      {
        "name": "next"
      },
`+graphQLSPEntry+`
    ],
    "paths": {
      "@/*": [
        "./src/*"
      ]
    }
  },
  "include": [
    "next-env.d.ts",
    "**/*.ts",
    "**/*.tsx"
  ]
}
`, readFile(t, dir, "tsconfig.json"))

	// a second run finds the plugin
	status, err = AddGraphQLSPPlugin(dir, "./schema.graphql")
	require.NoError(t, err)
	assert.Equal(t, TSConfigUnchanged, status)
}

func TestAddGraphQLSPPluginCreatesSections(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tsconfig.json": `{ "include": ["src"] }`})

	status, err := AddGraphQLSPPlugin(dir, "./schema.graphql")
	require.NoError(t, err)
	assert.Equal(t, TSConfigUpdated, status)
	assert.Equal(t, `{
  "include": [
    "src"
  ],
  "compilerOptions": {
    "plugins": [
`+graphQLSPEntry+`
    ]
  }
}
`, readFile(t, dir, "tsconfig.json"))
}

func TestAddGraphQLSPPluginCustomSchema(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tsconfig.json": `{}`})

	_, err := AddGraphQLSPPlugin(dir, "./graphql/schema.graphql")
	require.NoError(t, err)
	assert.Contains(t, readFile(t, dir, "tsconfig.json"), `"schema": "./graphql/schema.graphql"`)
}

func TestAddGraphQLSPPluginMissing(t *testing.T) {
	status, err := AddGraphQLSPPlugin(t.TempDir(), "./schema.graphql")
	require.NoError(t, err)
	assert.Equal(t, TSConfigMissing, status)
}

func TestAddGraphQLSPPluginErrors(t *testing.T) {
	tests := map[string]string{
		"malformed":               `{"compilerOptions": `,
		"compilerOptions not obj": `{"compilerOptions": []}`,
		"plugins not an array":    `{"compilerOptions": {"plugins": {}}}`,
	}
	for name, content := range tests {
		t.Run(name, func(t *testing.T) {
			dir := t.TempDir()
			writeFiles(t, dir, map[string]string{"tsconfig.json": content})
			_, err := AddGraphQLSPPlugin(dir, "./schema.graphql")
			assert.Error(t, err)
			assert.Equal(t, content, readFile(t, dir, "tsconfig.json"))
		})
	}
}

func TestAddGraphQLSPPluginKeepsHTMLCharacters(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"tsconfig.json": `{"exclude": ["a&b<c>"]}`})

	status, err := AddGraphQLSPPlugin(dir, "./schema.graphql")
	require.NoError(t, err)
	assert.Equal(t, TSConfigUpdated, status)

	out := readFile(t, dir, "tsconfig.json")
	assert.Contains(t, out, `"a&b<c>"`)
	assert.NotContains(t, out, `\u00`)
}
