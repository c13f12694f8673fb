// Package bootstrap fills a freshly generated project with developer tooling:
// editor config, a task runner, test skeletons, CI, env loading and a final
// formatting pass.
package bootstrap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"github.com/flutterkit/flutterkit/internal/config"
	"github.com/flutterkit/flutterkit/internal/execx"
	"github.com/flutterkit/flutterkit/internal/logger"
	"github.com/flutterkit/flutterkit/internal/paths"
	"github.com/flutterkit/flutterkit/internal/report"
)

// Bootstrapper writes the auxiliary files a generated project does not ship
// with. Every step is best-effort polish: failures become warnings, never
// stage errors.
type Bootstrapper struct {
	runner *execx.Runner
	rep    report.Reporter
	log    *logger.Logger

	flutterBin string
	dartBin    string
}

// NewBootstrapper builds a Bootstrapper using the SDK checkout's binaries.
func NewBootstrapper(runner *execx.Runner, rep report.Reporter, log *logger.Logger) *Bootstrapper {
	if rep == nil {
		rep = report.Silent{}
	}
	return &Bootstrapper{
		runner:     runner,
		rep:        rep,
		log:        log,
		flutterBin: filepath.Join(paths.SDKBin(), "flutter"),
		dartBin:    filepath.Join(paths.SDKBin(), "dart"),
	}
}

type step struct {
	name string
	run  func(ctx context.Context, cfg *config.Config) error
}

// Bootstrap applies every step in order. A failing step is reported as a
// warning and the remaining steps still run.
func (b *Bootstrapper) Bootstrap(ctx context.Context, cfg *config.Config) error {
	if cfg.DryRun {
		b.rep.Dry("would bootstrap development & testing helpers")
		return nil
	}

	b.rep.Info("bootstrapping development & testing helpers")

	steps := []step{
		{"editor config", b.writeEditorConfig},
		{"task runner", b.writeMakefile},
		{"test skeletons", b.writeTestSkeletons},
		{"analysis options", b.writeAnalysisOptions},
		{"ci workflow", b.writeCIWorkflow},
		{"dependencies", b.addDependencies},
		{"environment support", b.writeEnvSupport},
		{"readme", b.writeReadme},
		{"formatting", b.formatSources},
	}

	for _, s := range steps {
		if err := s.run(ctx, cfg); err != nil {
			b.rep.Warn(fmt.Sprintf("%s failed: %v", s.name, err))
			b.log.WithFields(map[string]any{"step": s.name, "error": err.Error()}).Warn("bootstrap step failed")
		}
	}
	return nil
}

func (b *Bootstrapper) writeEditorConfig(_ context.Context, cfg *config.Config) error {
	vscodeDir := filepath.Join(cfg.ProjectPath(), ".vscode")
	if err := os.MkdirAll(vscodeDir, 0o755); err != nil {
		return err
	}

	settings := map[string]any{
		"dart.flutterHotReloadOnSave": "all",
		"dart.lineLength":             100,
		"editor.formatOnSave":         true,
		"editor.defaultFormatter":     "Dart-Code.dart-code",
		"files.exclude": map[string]bool{
			"**/.dart_tool": true,
			"**/build":      true,
		},
	}
	if err := writeJSON(filepath.Join(vscodeDir, "settings.json"), settings); err != nil {
		return err
	}

	launch := map[string]any{
		"version": "0.2.0",
		"configurations": []map[string]string{
			{"name": "Flutter Debug", "request": "launch", "type": "dart"},
		},
	}
	if err := writeJSON(filepath.Join(vscodeDir, "launch.json"), launch); err != nil {
		return err
	}

	b.rep.Success("VS Code configuration created")
	return nil
}

func (b *Bootstrapper) writeMakefile(_ context.Context, cfg *config.Config) error {
	if err := os.WriteFile(filepath.Join(cfg.ProjectPath(), "Makefile"), []byte(makefileContent), 0o644); err != nil {
		return err
	}
	b.rep.Success("Makefile created")
	return nil
}

func (b *Bootstrapper) writeTestSkeletons(_ context.Context, cfg *config.Config) error {
	root := cfg.ProjectPath()
	pkg := cfg.PackageName()

	files := map[string]string{
		filepath.Join(root, "test", "unit", "sanity_test.dart"):       unitTestContent,
		filepath.Join(root, "test", "widget", "app_widget_test.dart"): fmt.Sprintf(widgetTestTemplate, pkg),
		filepath.Join(root, "integration_test", "app_test.dart"):      fmt.Sprintf(integrationTestTemplate, pkg),
	}

	for path, contents := range files {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return err
		}
		if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
			return err
		}
	}

	b.rep.Success("test skeletons created")
	return nil
}

func (b *Bootstrapper) writeAnalysisOptions(_ context.Context, cfg *config.Config) error {
	path := filepath.Join(cfg.ProjectPath(), "analysis_options.yaml")
	if err := os.WriteFile(path, []byte(analysisOptionsContent), 0o644); err != nil {
		return err
	}
	b.rep.Success("analysis options created")
	return nil
}

func (b *Bootstrapper) writeCIWorkflow(_ context.Context, cfg *config.Config) error {
	dir := filepath.Join(cfg.ProjectPath(), ".github", "workflows")
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(dir, "flutter-ci.yml"), []byte(ciWorkflowContent), 0o644); err != nil {
		return err
	}
	b.rep.Success("CI workflow created")
	return nil
}

// addDependencies runs the SDK's dependency manager. A non-zero exit usually
// means the package is already declared, so only spawn failures bubble up.
func (b *Bootstrapper) addDependencies(ctx context.Context, cfg *config.Config) error {
	commands := []execx.Command{
		{Name: b.flutterBin, Args: []string{"pub", "add", "flutter_dotenv"}, Dir: cfg.ProjectPath()},
		{Name: b.flutterBin, Args: []string{"pub", "add", "--dev", "flutter_lints", "integration_test"}, Dir: cfg.ProjectPath()},
	}

	for _, cmd := range commands {
		if _, err := b.runner.Capture(ctx, cmd); err != nil {
			if !isExitError(err) {
				return err
			}
			b.log.WithFields(map[string]any{"command": cmd.String(), "error": err.Error()}).Debug("pub add reported failure")
		}
	}

	b.rep.Success("dependencies added")
	return nil
}

func (b *Bootstrapper) writeEnvSupport(_ context.Context, cfg *config.Config) error {
	envPath := filepath.Join(cfg.ProjectPath(), ".env")
	if err := os.WriteFile(envPath, []byte(envFileContent), 0o644); err != nil {
		return err
	}

	if err := b.patchMainDart(cfg); err != nil {
		return err
	}

	b.rep.Success("environment support created")
	return nil
}

// patchMainDart injects dotenv loading into the generated entry point: the
// import goes right after the first framework import and main() gains an
// await of the env load. A file that already mentions flutter_dotenv is left
// alone, so the edit survives re-runs.
func (b *Bootstrapper) patchMainDart(cfg *config.Config) error {
	mainPath := filepath.Join(cfg.ProjectPath(), "lib", "main.dart")

	data, err := os.ReadFile(mainPath)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	content := string(data)
	if strings.Contains(content, "flutter_dotenv") {
		return nil
	}

	lines := strings.Split(content, "\n")
	insertAt := 0
	for i, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "import ") && strings.Contains(line, "package:flutter") {
			insertAt = i + 1
			break
		}
	}

	patched := make([]string, 0, len(lines)+1)
	patched = append(patched, lines[:insertAt]...)
	patched = append(patched, dotenvImport)
	patched = append(patched, lines[insertAt:]...)

	content = strings.Join(patched, "\n")
	content = strings.Replace(content, "void main() {", dotenvMainPrelude, 1)

	return os.WriteFile(mainPath, []byte(content), 0o644)
}

func (b *Bootstrapper) writeReadme(_ context.Context, cfg *config.Config) error {
	contents := fmt.Sprintf(readmeTemplate, cfg.ProjectName)
	if err := os.WriteFile(filepath.Join(cfg.ProjectPath(), "README.md"), []byte(contents), 0o644); err != nil {
		return err
	}
	b.rep.Success("README created")
	return nil
}

func (b *Bootstrapper) formatSources(ctx context.Context, cfg *config.Config) error {
	cmd := execx.Command{Name: b.dartBin, Args: []string{"format", "."}, Dir: cfg.ProjectPath()}
	if _, err := b.runner.Capture(ctx, cmd); err != nil {
		return err
	}
	b.rep.Success("sources formatted")
	return nil
}

func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(path, append(data, '\n'), 0o644)
}

func isExitError(err error) bool {
	var exitErr *exec.ExitError
	return errors.As(err, &exitErr)
}
