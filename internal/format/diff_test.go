package format

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUnifiedDiff(t *testing.T) {
	original := "/** @type {import('next').NextConfig} */\nmodule.exports = { reactStrictMode: true }\n"
	rewritten := "const { nextFusePlugin } = require('fuse/next/plugin')\n" +
		"/** @type {import('next').NextConfig} */\n" +
		"module.exports = nextFusePlugin()({ reactStrictMode: true })\n"

	d := Diff(original, rewritten)
	require.True(t, d.Changed)

	out, err := d.UnifiedDiff("next.config.js", "next.config.js")
	require.NoError(t, err)
	assert.Equal(t, "--- a/next.config.js\n"+
		"+++ b/next.config.js\n"+
		"@@ -1,2 +1,3 @@\n"+
		"+const { nextFusePlugin } = require('fuse/next/plugin')\n"+
		" /** @type {import('next').NextConfig} */\n"+
		"-module.exports = { reactStrictMode: true }\n"+
		"+module.exports = nextFusePlugin()({ reactStrictMode: true })\n", out)

	assert.Equal(t, "2 lines added, 1 removed", d.Stats())
}

func TestUnifiedDiffWithoutTrailingNewline(t *testing.T) {
	d := Diff("a\nb", "a\nc")

	out, err := d.UnifiedDiff("f", "f")
	require.NoError(t, err)
	assert.Equal(t, "--- a/f\n+++ b/f\n@@ -1,2 +1,2 @@\n a\n-b\n+c\n", out)
	assert.Equal(t, "1 lines added, 1 removed", d.Stats())
}

func TestSplitLines(t *testing.T) {
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb\n"))
	assert.Equal(t, []string{"a\n", "b\n"}, splitLines("a\nb"))
	assert.Equal(t, []string{"\n"}, splitLines("\n"))
	assert.Nil(t, splitLines(""))
}

func TestDiffUnchanged(t *testing.T) {
	d := Diff("a\n", "a\n")
	assert.False(t, d.Changed)

	out, err := d.UnifiedDiff("x", "x")
	require.NoError(t, err)
	assert.Empty(t, out)
	assert.Equal(t, "No changes", d.Stats())
}

func TestColorizeWithoutColor(t *testing.T) {
	diff := "--- a/f\n+++ b/f\n@@ -1 +1 @@\n-old\n+new\n same\n"
	assert.Equal(t, diff, Colorize(diff, true))
}

func TestColorize(t *testing.T) {
	out := Colorize("-old\n+new\n", false)
	lines := strings.Split(strings.TrimSuffix(out, "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Contains(t, lines[0], "-old")
	assert.Contains(t, lines[1], "+new")
}
