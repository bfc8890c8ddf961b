package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()
	assert.Equal(t, 4, cfg.Document.TabWidth)
	assert.Equal(t, 10, cfg.Document.UndoPeriod)
	assert.False(t, cfg.Document.ReadOnly)
	assert.NotEmpty(t, cfg.Theme.Foreground)
	assert.NotEmpty(t, cfg.Theme.SyntaxKeyword)
}

func TestLoadMissingConfigUsesDefaults(t *testing.T) {
	t.Setenv("OKRA_CONFIG_HOME", t.TempDir())

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)
}

func TestLoadMergesTomlOverDefaults(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OKRA_CONFIG_HOME", dir)
	toml := `
[document]
tab-width = 8

[theme]
syntax-keyword = "#FF0000"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8, cfg.Document.TabWidth)
	assert.Equal(t, "#FF0000", cfg.Theme.SyntaxKeyword)
	// Unset keys keep their defaults.
	assert.Equal(t, 10, cfg.Document.UndoPeriod)
	assert.True(t, cfg.Document.LineNumbers)
	assert.Equal(t, Default().Theme.SyntaxString, cfg.Theme.SyntaxString)
}

func TestLoadHonoursExplicitFalseBool(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OKRA_CONFIG_HOME", dir)
	toml := `
[document]
line-numbers = false
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.False(t, cfg.Document.LineNumbers)
	// An omitted bool keeps its default.
	assert.False(t, cfg.Document.ReadOnly)
}

func TestLoadRejectsBrokenToml(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OKRA_CONFIG_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte("[document\n"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestLuaOverlayOverridesToml(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OKRA_CONFIG_HOME", dir)
	toml := `
[document]
tab-width = 8
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.toml"), []byte(toml), 0o644))
	script := `
-- the script sees the merged values and can override them
if okra.document.tab_width == 8 then
  okra.document.tab_width = 2
end
okra.theme.syntax_comment = "#123456"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.lua"), []byte(script), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.Document.TabWidth)
	assert.Equal(t, "#123456", cfg.Theme.SyntaxComment)
}

func TestLuaErrorPropagates(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("OKRA_CONFIG_HOME", dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "init.lua"), []byte("this is not lua"), 0o644))

	_, err := Load()
	assert.Error(t, err)
}

func TestConfigDirPrecedence(t *testing.T) {
	t.Setenv("OKRA_CONFIG_HOME", "/tmp/okra-test")
	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")

	dir, err := ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, "/tmp/okra-test", dir)

	t.Setenv("OKRA_CONFIG_HOME", "")
	dir, err = ConfigDir()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "okra"), dir)
}
