// Package prereq ensures OS-level toolchains exist before the SDK and
// project stages run: the Xcode Command Line Tools, Homebrew, and the brew
// packages the generated project depends on.
package prereq

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/flutterkit/flutterkit/internal/config"
	"github.com/flutterkit/flutterkit/internal/execx"
	"github.com/flutterkit/flutterkit/internal/logger"
	"github.com/flutterkit/flutterkit/internal/report"
	kiterrors "github.com/flutterkit/flutterkit/pkg/errors"
)

const homebrewInstallScript = "https://raw.githubusercontent.com/Homebrew/install/HEAD/install.sh"

var (
	requiredPackages = []string{"git", "cocoapods"}
	androidCasks     = []string{"temurin", "android-commandlinetools"}
)

// Manager checks and installs prerequisites. The first three steps (Xcode
// tools, Homebrew, required packages) are fatal on failure; platform extras
// only warn.
type Manager struct {
	runner *execx.Runner
	rep    report.Reporter
	log    *logger.Logger

	// brewBinDir is where an Apple Silicon Homebrew lives when present.
	brewBinDir string
}

// NewManager creates a prerequisites manager.
func NewManager(runner *execx.Runner, rep report.Reporter, log *logger.Logger) *Manager {
	if rep == nil {
		rep = report.Silent{}
	}
	return &Manager{
		runner:     runner,
		rep:        rep,
		log:        log,
		brewBinDir: "/opt/homebrew/bin",
	}
}

// CheckAndInstall runs every prerequisite step in order.
func (m *Manager) CheckAndInstall(ctx context.Context, cfg *config.Config) error {
	if cfg.DryRun {
		m.rep.Dry("would check and install prerequisites")
		return nil
	}

	if err := m.checkXcodeTools(ctx); err != nil {
		return err
	}

	if err := m.checkHomebrew(ctx); err != nil {
		return err
	}

	if err := m.installPackages(ctx); err != nil {
		return err
	}

	m.setupPlatformTools(ctx, cfg)
	return nil
}

func (m *Manager) checkXcodeTools(ctx context.Context) error {
	m.rep.Info("checking Xcode Command Line Tools")

	if _, err := m.runner.Capture(ctx, execx.Command{Name: "xcode-select", Args: []string{"-p"}}); err == nil {
		m.rep.Success("Xcode Command Line Tools found")
		return nil
	}

	m.rep.Warn("Xcode Command Line Tools not found, requesting install")
	m.log.Debug("launching xcode-select --install")

	if _, err := m.runner.Run(ctx, execx.Command{Name: "xcode-select", Args: []string{"--install"}}); err != nil {
		return kiterrors.NewPrerequisitesError("xcode", fmt.Errorf("failed to launch installer: %w", err))
	}

	// The GUI installer runs outside this process; the run cannot block on
	// it, so surface a retryable precondition instead.
	m.rep.Info("complete the installation in the popup window, then re-run setup")
	return kiterrors.NewRetryablePrerequisitesError("xcode", "Xcode Command Line Tools installation required")
}

func (m *Manager) checkHomebrew(ctx context.Context) error {
	m.rep.Info("checking Homebrew")

	if _, err := m.runner.Capture(ctx, execx.Command{Name: "brew", Args: []string{"--version"}}); err == nil {
		m.rep.Success("Homebrew found")
		m.ensureHomebrewPath()
		return nil
	}

	m.rep.Warn("Homebrew not found, installing")

	script := fmt.Sprintf(`curl -fsSL "%s" | bash`, homebrewInstallScript)
	res, err := m.runner.RunShell(ctx, script, map[string]string{"NONINTERACTIVE": "1"})
	if err != nil {
		if out := res.Primary(); out != "" {
			err = fmt.Errorf("%w: %s", err, out)
		}
		return kiterrors.NewPrerequisitesError("homebrew", err)
	}

	m.rep.Success("Homebrew installed")
	m.ensureHomebrewPath()
	return nil
}

// ensureHomebrewPath makes an Apple Silicon brew visible to this process so
// later stages can shell out to it. Best-effort only.
func (m *Manager) ensureHomebrewPath() {
	if _, err := os.Stat(filepath.Join(m.brewBinDir, "brew")); err != nil {
		return
	}

	path := os.Getenv("PATH")
	if strings.Contains(path, m.brewBinDir) {
		return
	}

	if err := os.Setenv("PATH", m.brewBinDir+string(os.PathListSeparator)+path); err != nil {
		m.rep.Warn("Homebrew path configuration failed (may need manual setup)")
		return
	}
	m.rep.Success("Homebrew path configured")
}

func (m *Manager) installPackages(ctx context.Context) error {
	for _, pkg := range requiredPackages {
		m.rep.Info(fmt.Sprintf("installing %s", pkg))

		res, err := m.runner.Capture(ctx, execx.Command{Name: "brew", Args: []string{"install", pkg}})
		if err == nil {
			m.rep.Success(fmt.Sprintf("%s installed", pkg))
			continue
		}

		// brew install exits non-zero for packages that are already
		// present; a list query disambiguates.
		if _, listErr := m.runner.Capture(ctx, execx.Command{Name: "brew", Args: []string{"list", pkg}}); listErr == nil {
			m.rep.Success(fmt.Sprintf("%s already installed", pkg))
			continue
		}

		if out := res.Primary(); out != "" {
			err = fmt.Errorf("%w: %s", err, out)
		}
		return kiterrors.NewPrerequisitesError(pkg, err)
	}

	return nil
}

func (m *Manager) setupPlatformTools(ctx context.Context, cfg *config.Config) {
	if cfg.HasPlatform("android") {
		m.setupAndroidTools(ctx)
	}
	if cfg.HasPlatform("ios") {
		m.setupIOSTools(ctx)
	}
}

// setupAndroidTools installs the Android toolchain casks. Failures only
// affect Android buildability, so they never abort the run.
func (m *Manager) setupAndroidTools(ctx context.Context) {
	m.rep.Info("setting up Android development tools")

	for _, cask := range androidCasks {
		res, err := m.runner.Capture(ctx, execx.Command{Name: "brew", Args: []string{"install", "--cask", cask}})
		if err == nil {
			m.rep.Success(fmt.Sprintf("%s installed", cask))
			continue
		}

		if _, listErr := m.runner.Capture(ctx, execx.Command{Name: "brew", Args: []string{"list", "--cask", cask}}); listErr == nil {
			m.rep.Success(fmt.Sprintf("%s already installed", cask))
			continue
		}

		if out := res.Primary(); out != "" {
			err = fmt.Errorf("%w: %s", err, out)
		}
		m.rep.Warn(fmt.Sprintf("failed to install %s: %v", cask, err))
	}
}

func (m *Manager) setupIOSTools(ctx context.Context) {
	m.rep.Info("setting up iOS development tools")

	if _, err := m.runner.Capture(ctx, execx.Command{Name: "pod", Args: []string{"repo", "update"}}); err != nil {
		m.rep.Warn(fmt.Sprintf("CocoaPods repo update failed: %v", err))
		return
	}
	m.rep.Success("iOS tools configured")
}
