package paths

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSDKRootHonoursOverride(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("FLUTTERKIT_SDK_ROOT", dir)

	require.Equal(t, filepath.Clean(dir), SDKRoot())
	require.Equal(t, filepath.Join(dir, "bin"), SDKBin())
}

func TestSDKRootDefaultsToHome(t *testing.T) {
	t.Setenv("FLUTTERKIT_SDK_ROOT", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, "development", "flutter"), SDKRoot())
}

func TestShellProfileHonoursOverride(t *testing.T) {
	profile := filepath.Join(t.TempDir(), "profile")
	t.Setenv("FLUTTERKIT_PROFILE", profile)

	require.Equal(t, profile, ShellProfile())
}

func TestShellProfileDefaultsToZprofile(t *testing.T) {
	t.Setenv("FLUTTERKIT_PROFILE", "")
	home := t.TempDir()
	t.Setenv("HOME", home)

	require.Equal(t, filepath.Join(home, ".zprofile"), ShellProfile())
}

func TestDataDirPrecedence(t *testing.T) {
	explicit := t.TempDir()
	t.Setenv("FLUTTERKIT_DATA_DIR", explicit)
	t.Setenv("XDG_DATA_HOME", t.TempDir())

	require.Equal(t, filepath.Clean(explicit), DataDir())

	t.Setenv("FLUTTERKIT_DATA_DIR", "")
	xdg := t.TempDir()
	t.Setenv("XDG_DATA_HOME", xdg)

	require.Equal(t, filepath.Join(xdg, "flutterkit"), DataDir())
	require.Equal(t, filepath.Join(xdg, "flutterkit", "journal.db"), JournalPath())
}

func TestEnsureDataDirCreatesDirectory(t *testing.T) {
	base := filepath.Join(t.TempDir(), "nested", "data")
	t.Setenv("FLUTTERKIT_DATA_DIR", base)

	dir, err := EnsureDataDir()
	require.NoError(t, err)
	require.DirExists(t, dir)
}

func TestSettingsPathPrecedence(t *testing.T) {
	explicit := filepath.Join(t.TempDir(), "custom.yaml")
	t.Setenv("FLUTTERKIT_CONFIG", explicit)

	require.Equal(t, explicit, SettingsPath())

	t.Setenv("FLUTTERKIT_CONFIG", "")
	xdg := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", xdg)

	require.Equal(t, filepath.Join(xdg, "flutterkit", "config.yaml"), SettingsPath())
}
