// Package paths centralises flutterkit directory resolution.
package paths

import (
	"os"
	"path/filepath"
)

// EnvSDKRoot overrides the SDK checkout location. Exported so the CLI can
// seed it from the settings file when the environment leaves it unset.
const EnvSDKRoot = "FLUTTERKIT_SDK_ROOT"

const (
	appDirName = "flutterkit"

	envProfile    = "FLUTTERKIT_PROFILE"
	envDataDir    = "FLUTTERKIT_DATA_DIR"
	envConfigFile = "FLUTTERKIT_CONFIG"

	envXDGDataHome   = "XDG_DATA_HOME"
	envXDGConfigHome = "XDG_CONFIG_HOME"
)

// SDKRoot returns the directory that holds the Flutter SDK checkout.
// Order of precedence:
//  1. FLUTTERKIT_SDK_ROOT environment variable.
//  2. ~/development/flutter
//  3. Fallback: ./flutter under the current working directory.
func SDKRoot() string {
	if dir := os.Getenv(EnvSDKRoot); dir != "" {
		return filepath.Clean(dir)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, "development", "flutter")
	}

	if cwd, err := os.Getwd(); err == nil && cwd != "" {
		return filepath.Join(cwd, "flutter")
	}

	return filepath.Join(os.TempDir(), "flutter")
}

// SDKBin returns the SDK's executable directory.
func SDKBin() string {
	return filepath.Join(SDKRoot(), "bin")
}

// ShellProfile returns the shell startup file that receives the PATH export
// line. FLUTTERKIT_PROFILE overrides the default ~/.zprofile.
func ShellProfile() string {
	if path := os.Getenv(envProfile); path != "" {
		return filepath.Clean(path)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".zprofile")
	}

	return filepath.Join(os.TempDir(), ".zprofile")
}

// DataDir returns the absolute directory flutterkit should use for
// persistence (the run journal lives here).
// Order of precedence:
//  1. FLUTTERKIT_DATA_DIR environment variable.
//  2. $XDG_DATA_HOME/flutterkit, or ~/.local/share/flutterkit
//  3. Fallback: current working directory ./flutterkit
func DataDir() string {
	if dir := os.Getenv(envDataDir); dir != "" {
		return filepath.Clean(dir)
	}

	if xdg := os.Getenv(envXDGDataHome); xdg != "" {
		return filepath.Join(xdg, appDirName)
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".local", "share", appDirName)
	}

	if cwd, err := os.Getwd(); err == nil && cwd != "" {
		return filepath.Join(cwd, appDirName)
	}

	return filepath.Join(os.TempDir(), appDirName)
}

// DataPath joins the flutterkit data directory with the supplied path elements.
func DataPath(elem ...string) string {
	parts := append([]string{DataDir()}, elem...)
	return filepath.Join(parts...)
}

// EnsureDataDir ensures the data directory exists and returns it.
func EnsureDataDir() (string, error) {
	dir := DataDir()
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", err
	}
	return dir, nil
}

// JournalPath returns the sqlite run-journal location.
func JournalPath() string {
	return DataPath("journal.db")
}

// SettingsPath returns the optional defaults file consulted before flags.
// FLUTTERKIT_CONFIG overrides the default $XDG_CONFIG_HOME/flutterkit/config.yaml.
func SettingsPath() string {
	if path := os.Getenv(envConfigFile); path != "" {
		return filepath.Clean(path)
	}

	if xdg := os.Getenv(envXDGConfigHome); xdg != "" {
		return filepath.Join(xdg, appDirName, "config.yaml")
	}

	if home, err := os.UserHomeDir(); err == nil && home != "" {
		return filepath.Join(home, ".config", appDirName, "config.yaml")
	}

	return filepath.Join(os.TempDir(), appDirName, "config.yaml")
}
