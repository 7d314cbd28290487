package commands

import (
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wolfeidau/webinline/internal/bundler"
	"github.com/wolfeidau/webinline/internal/inline"
)

func writeFile(t *testing.T, path, contents string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(data)
}

func TestInlineCmd_Run(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"),
		`<html><head><script defer src="/app.js"></script><link href="/app.css" rel="stylesheet"></head><body></body></html>`)
	writeFile(t, filepath.Join(dir, "app.js"), "start()")
	writeFile(t, filepath.Join(dir, "app.css"), "body{margin:0}")

	cmd := &InlineCmd{Dir: dir, Pattern: "*.html", Ignore: inline.DefaultIgnore}
	require.NoError(t, cmd.Run(context.Background(), &Globals{}))

	out := readFile(t, filepath.Join(dir, "index.html"))
	assert.Contains(t, out, "<script>start()</script></body>")
	assert.Contains(t, out, "<style>body{margin:0}</style>")
}

func TestInlineCmd_MissingAsset(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "index.html"), `<script src="/app.js"></script>`)

	cmd := &InlineCmd{Dir: dir}
	err := cmd.Run(context.Background(), &Globals{})
	require.ErrorIs(t, err, inline.ErrAssetNotFound)
}

func TestConfigCmd_write(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundler.yaml")
	writeFile(t, path, "optimization:\n  splitChunks:\n    chunks: all\n  runtimeChunk: single\n")

	cfg, err := loadConfig(path, false)
	require.NoError(t, err)

	var buf bytes.Buffer
	cmd := &ConfigCmd{Format: "json"}
	require.NoError(t, cmd.write(&buf, cfg))
	assert.Contains(t, buf.String(), `"runtimeChunk": false`)
	assert.Contains(t, buf.String(), `"default": false`)

	buf.Reset()
	cmd.Format = "yaml"
	require.NoError(t, cmd.write(&buf, cfg))
	assert.Contains(t, buf.String(), "runtimeChunk: false")
}

func TestLoadConfig_noOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bundler.yaml")
	writeFile(t, path, "entryPoints: [src/index.js]\n")

	cfg, err := loadConfig(path, true)
	require.NoError(t, err)
	assert.Nil(t, cfg.Optimization)

	_, err = loadConfig(path, false)
	require.ErrorIs(t, err, bundler.ErrInvalidConfig)
}

func TestBundleCmd_RunWithInline(t *testing.T) {
	dir := t.TempDir()
	buildDir := filepath.Join(dir, "build")
	writeFile(t, filepath.Join(dir, "src", "greet.js"), "export const greet = (name) => `hello ${name}`\n")
	writeFile(t, filepath.Join(dir, "src", "app.js"), "import { greet } from './greet.js'\ndocument.title = greet('inline')\n")
	writeFile(t, filepath.Join(buildDir, "index.html"),
		`<html><head><script defer="defer" src="app.js"></script></head><body><div id="root"></div></body></html>`)

	configPath := filepath.Join(dir, "bundler.yaml")
	writeFile(t, configPath, fmt.Sprintf(`entryPoints:
  - %q
outputDir: %q
optimization:
  splitChunks:
    chunks: all
  runtimeChunk: true
`, filepath.Join(dir, "src", "app.js"), buildDir))

	cmd := &BundleCmd{Config: configPath, Inline: true}
	require.NoError(t, cmd.Run(context.Background(), &Globals{}))

	assert.FileExists(t, filepath.Join(buildDir, "meta.json"))

	out := readFile(t, filepath.Join(buildDir, "index.html"))
	assert.NotContains(t, out, `src="app.js"`)
	assert.Contains(t, out, "hello ")
}
