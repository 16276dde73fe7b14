package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestVersionCommandSkipsConfig(t *testing.T) {
	SetVersion("1.2.3")
	t.Cleanup(func() { SetVersion("dev") })

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs([]string{"--config", filepath.Join(t.TempDir(), "missing.yaml"), "version"})
	t.Cleanup(func() {
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
		cfgFile = ""
	})

	require.NoError(t, rootCmd.Execute())
	require.Equal(t, "1.2.3\n", out.String())
}

func TestLoadConfigFromFlag(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("data_dir: "+dir+"\nclipboard:\n  backend: sqlite\n"), 0o644))

	cfgFile = path
	t.Cleanup(func() { cfgFile = "" })

	require.NoError(t, loadConfig(nil, nil))
	require.Equal(t, "sqlite", cfg.Clipboard.Backend)
	require.Equal(t, filepath.Join(dir, "whiteboard.db"), cfg.DBPath)
	require.Equal(t, path, configPath())
}

func TestLoadConfigRejectsMissingFile(t *testing.T) {
	cfgFile = filepath.Join(t.TempDir(), "missing.yaml")
	t.Cleanup(func() { cfgFile = "" })

	require.Error(t, loadConfig(nil, nil))
}

func TestDesktopRequiresFrontend(t *testing.T) {
	cfg.FrontendDir = ""
	require.ErrorContains(t, runDesktop(nil, nil), "frontend_dir")

	cfg.FrontendDir = filepath.Join(t.TempDir(), "dist")
	require.ErrorContains(t, runDesktop(nil, nil), "frontend assets")
}
