package app

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/five82/tmplplay/internal/prefs"
	"github.com/five82/tmplplay/internal/share"
	"github.com/five82/tmplplay/internal/state"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func setupMemory(t *testing.T, extra string) *Env {
	t.Helper()
	logFile := filepath.Join(t.TempDir(), "tmplplay.log")
	cfgPath := writeConfig(t, "[store]\nbackend = \"memory\"\n[log]\nfile = \""+filepath.ToSlash(logFile)+"\"\n"+extra)
	env, err := Setup(Options{ConfigPath: cfgPath})
	require.NoError(t, err)
	t.Cleanup(func() { _ = env.Close() })
	return env
}

func TestSetup_MemoryStoreAndCatalog(t *testing.T) {
	env := setupMemory(t, "")
	require.NotNil(t, env.Store)
	require.Greater(t, env.Catalog.Len(), 1)
	require.Equal(t, "monokai", env.Theme(prefs.State{}).ID)
	require.Equal(t, "dracula", env.Theme(prefs.State{prefs.ThemeKey: "dracula"}).ID)
	require.Equal(t, "monokai", env.Theme(prefs.State{prefs.ThemeKey: "no-such-theme"}).ID)
}

func TestSetup_ThemeFlagOverridesConfig(t *testing.T) {
	logFile := filepath.Join(t.TempDir(), "tmplplay.log")
	cfgPath := writeConfig(t, "theme = \"dracula\"\n[store]\nbackend = \"memory\"\n[log]\nfile = \""+filepath.ToSlash(logFile)+"\"\n")
	env, err := Setup(Options{ConfigPath: cfgPath, Theme: "github"})
	require.NoError(t, err)
	defer env.Close()
	require.Equal(t, "github", env.Config.Theme)
}

func TestSetup_BadConfig(t *testing.T) {
	_, err := Setup(Options{ConfigPath: writeConfig(t, "theme = [")})
	require.ErrorContains(t, err, "parse config")
}

func TestSources_PersistedThenOverrides(t *testing.T) {
	env := setupMemory(t, "")

	structSrc, tmplSrc, err := env.Sources(Options{})
	require.NoError(t, err)
	require.Equal(t, state.DefaultStruct, structSrc)
	require.Equal(t, state.DefaultTemplate, tmplSrc)

	require.NoError(t, prefs.Save(env.Store, prefs.TemplateKey, "{{.User}}"))
	_, tmplSrc, err = env.Sources(Options{})
	require.NoError(t, err)
	require.Equal(t, "{{.User}}", tmplSrc)

	link, err := share.Link(share.DefaultBase, "type L struct{}", "linked")
	require.NoError(t, err)
	structSrc, tmplSrc, err = env.Sources(Options{Saved: link})
	require.NoError(t, err)
	require.Equal(t, "type L struct{}", structSrc)
	require.Equal(t, "linked", tmplSrc)

	file := filepath.Join(t.TempDir(), "view.tmpl")
	require.NoError(t, os.WriteFile(file, []byte("from file"), 0o644))
	structSrc, tmplSrc, err = env.Sources(Options{Saved: link, TemplateFile: file})
	require.NoError(t, err)
	require.Equal(t, "type L struct{}", structSrc)
	require.Equal(t, "from file", tmplSrc)
}

func TestSources_MalformedLinkIgnored(t *testing.T) {
	env := setupMemory(t, "")
	structSrc, _, err := env.Sources(Options{Saved: "https://tmplplay.local/?saved=%%%"})
	require.NoError(t, err)
	require.Equal(t, state.DefaultStruct, structSrc)
}

func TestSources_MissingFile(t *testing.T) {
	env := setupMemory(t, "")
	_, _, err := env.Sources(Options{StructFile: filepath.Join(t.TempDir(), "missing.go")})
	require.ErrorContains(t, err, "read source")
}
