package scaffold

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fusejs/create-fuse-app/internal/compiler/errors"
	"github.com/fusejs/create-fuse-app/internal/nextconfig"
)

func nextConfigScaffolder(preserve bool) *Scaffolder {
	return &Scaffolder{Options: Options{
		Plugin:                  nextconfig.DefaultPlugin(),
		PreserveConfigExtension: preserve,
	}}
}

func detectProject(t *testing.T, dir string) *Project {
	t.Helper()
	project, err := Detect(dir)
	require.NoError(t, err)
	return project
}

func TestFindNextConfig(t *testing.T) {
	dir := t.TempDir()
	assert.Empty(t, FindNextConfig(dir))

	writeFiles(t, dir, map[string]string{"next.config.mjs": ""})
	assert.Equal(t, filepath.Join(dir, NextConfigMJS), FindNextConfig(dir))

	writeFiles(t, dir, map[string]string{"next.config.js": ""})
	assert.Equal(t, filepath.Join(dir, NextConfigJS), FindNextConfig(dir))
}

func TestConfigTarget(t *testing.T) {
	source := filepath.Join("app", NextConfigMJS)
	assert.Equal(t, filepath.Join("app", NextConfigJS), ConfigTarget(source, false))
	assert.Equal(t, source, ConfigTarget(source, true))
}

func TestIsModuleConfig(t *testing.T) {
	assert.True(t, IsModuleConfig("next.config.mjs", false))
	assert.False(t, IsModuleConfig("next.config.js", false))
	assert.True(t, IsModuleConfig("next.config.js", true))
}

func TestWireNextConfigCommonJS(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json":   nextPackageJSON,
		"next.config.js": "/** @type {import('next').NextConfig} */\nmodule.exports = { reactStrictMode: true }\n",
	})

	result, err := nextConfigScaffolder(false).wireNextConfig(detectProject(t, dir))
	require.NoError(t, err)
	assert.Equal(t, NextConfigRewritten, result.Status)
	assert.Equal(t, filepath.Join(dir, NextConfigJS), result.Target)
	assert.Equal(t,
		"const { nextFusePlugin } = require('fuse/next/plugin')\n"+
			"/** @type {import('next').NextConfig} */\n"+
			"module.exports = nextFusePlugin()({ reactStrictMode: true })\n",
		readFile(t, dir, NextConfigJS))

	// running again leaves the file alone
	result, err = nextConfigScaffolder(false).wireNextConfig(detectProject(t, dir))
	require.NoError(t, err)
	assert.Equal(t, NextConfigAlreadyWrapped, result.Status)
	assert.Empty(t, result.Target)
}

func TestWireNextConfigModuleWritesJS(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json":    nextPackageJSON,
		"next.config.mjs": "const nextConfig = {}\n\nexport default nextConfig\n",
	})

	result, err := nextConfigScaffolder(false).wireNextConfig(detectProject(t, dir))
	require.NoError(t, err)
	assert.Equal(t, NextConfigRewritten, result.Status)
	assert.Equal(t, nextconfig.Indirect, result.Result.Site.Kind)
	assert.Equal(t,
		"import { nextFusePlugin } from 'fuse/next/plugin'\n"+
			"const nextConfig = nextFusePlugin()({})\n\nexport default nextConfig\n",
		readFile(t, dir, NextConfigJS))
	// the source is not touched
	assert.Equal(t, "const nextConfig = {}\n\nexport default nextConfig\n", readFile(t, dir, NextConfigMJS))
}

func TestWireNextConfigPreserveExtension(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json":    nextPackageJSON,
		"next.config.mjs": "export default {}\n",
	})

	result, err := nextConfigScaffolder(true).wireNextConfig(detectProject(t, dir))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, NextConfigMJS), result.Target)
	assert.Contains(t, readFile(t, dir, NextConfigMJS), "export default nextFusePlugin()({})")
	assert.NoFileExists(t, filepath.Join(dir, NextConfigJS))
}

func TestWireNextConfigModulePackage(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{
		"package.json":   `{"type": "module", "dependencies": {"next": "14"}}`,
		"next.config.js": "export default { output: 'export' }\n",
	})

	result, err := nextConfigScaffolder(false).wireNextConfig(detectProject(t, dir))
	require.NoError(t, err)
	assert.Equal(t, NextConfigRewritten, result.Status)
	assert.Contains(t, readFile(t, dir, NextConfigJS), "import { nextFusePlugin } from 'fuse/next/plugin'")
}

func TestWireNextConfigMissing(t *testing.T) {
	dir := t.TempDir()
	writeFiles(t, dir, map[string]string{"package.json": nextPackageJSON})

	result, err := nextConfigScaffolder(false).wireNextConfig(detectProject(t, dir))
	require.NoError(t, err)
	assert.Equal(t, NextConfigMissing, result.Status)
}

func TestWireNextConfigUnsupported(t *testing.T) {
	dir := t.TempDir()
	source := "module.exports = process.env.X ? a : b\n"
	writeFiles(t, dir, map[string]string{"package.json": nextPackageJSON, "next.config.js": source})

	result, err := nextConfigScaffolder(false).wireNextConfig(detectProject(t, dir))
	require.NoError(t, err)
	assert.Equal(t, NextConfigFailed, result.Status)
	assert.ErrorIs(t, result.Err, errors.ErrUnsupportedExportShape)
	assert.Equal(t, source, readFile(t, dir, NextConfigJS))
}
