package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/flutterkit/flutterkit/internal/bootstrap"
	"github.com/flutterkit/flutterkit/internal/config"
	"github.com/flutterkit/flutterkit/internal/execx"
	"github.com/flutterkit/flutterkit/internal/journal"
	"github.com/flutterkit/flutterkit/internal/logger"
	"github.com/flutterkit/flutterkit/internal/model"
	"github.com/flutterkit/flutterkit/internal/paths"
	"github.com/flutterkit/flutterkit/internal/pipeline"
	"github.com/flutterkit/flutterkit/internal/prereq"
	"github.com/flutterkit/flutterkit/internal/project"
	"github.com/flutterkit/flutterkit/internal/report"
	"github.com/flutterkit/flutterkit/internal/sdk"
)

// errInterrupted replaces the stage error when the operator cancels the run,
// so the failure prints as a single line without the diagnostic chain.
var errInterrupted = errors.New("setup interrupted")

type setupOptions struct {
	ProjectName     string
	Platforms       []string
	Org             string
	Channel         string
	OutputDir       string
	Template        string
	IOSLanguage     string
	AndroidLanguage string
	UpdateMode      string
	SettingsPath    string
	DryRun          bool
	Verbose         bool
	NoColor         bool
	NonInteractive  bool
	Out             io.Writer
}

var setupCmdRunner = runSetup

func newSetupCmd(root *rootFlags) *cobra.Command {
	opts := setupOptions{}

	cmd := &cobra.Command{
		Use:   "setup NAME PLATFORM...",
		Short: "Install the Flutter toolchain and scaffold a project",
		Long: fmt.Sprintf(`Setup checks macOS prerequisites, installs or updates the Flutter SDK,
creates a Flutter project and bootstraps it with editor, test and CI
configuration. Stages run strictly in order; the first fatal error stops
the run.

Platforms: %s.`, strings.Join(config.ValidPlatforms, ", ")),
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.ProjectName = args[0]
			opts.Platforms = args[1:]
			opts.DryRun = root.dryRun
			opts.Verbose = root.verbose
			opts.NoColor = root.noColor
			opts.NonInteractive = !term.IsTerminal(int(os.Stdout.Fd()))
			opts.Out = cmd.OutOrStdout()

			return setupCmdRunner(cmd.Context(), opts)
		},
	}

	cmd.Flags().StringVar(&opts.Org, "org", "", `Organization identifier (default "com.example")`)
	cmd.Flags().StringVar(&opts.Channel, "channel", "", `Flutter channel, stable or beta (default "stable")`)
	cmd.Flags().StringVar(&opts.OutputDir, "dir", "", `Output directory (default ".")`)
	cmd.Flags().StringVar(&opts.Template, "template", "", `Project template, app or plugin (default "app")`)
	cmd.Flags().StringVar(&opts.IOSLanguage, "ios-language", "", `iOS language for plugin templates, swift or objc (default "swift")`)
	cmd.Flags().StringVar(&opts.AndroidLanguage, "android-language", "", `Android language for plugin templates, kotlin or java (default "kotlin")`)
	cmd.Flags().StringVar(&opts.UpdateMode, "flutter-update", "", `SDK update policy, reset, reclone or skip (default "reset")`)
	cmd.Flags().StringVar(&opts.SettingsPath, "settings", "", "Defaults file (default ~/.config/flutterkit/config.yaml)")

	return cmd
}

func runSetup(ctx context.Context, opts setupOptions) error {
	rep := newReporter(opts)
	rep.Banner("Flutter Development Environment Setup", "Automated Flutter development environment setup for macOS")

	cfg, err := buildConfig(opts)
	if err != nil {
		rep.Error(err.Error())
		return err
	}

	level := "info"
	if cfg.Verbose {
		level = "debug"
	}
	log, err := logger.New(logger.Options{Level: level, HumanReadable: true})
	if err != nil {
		return err
	}

	printRunHeader(rep, cfg)

	runner := execx.New()
	if !cfg.Verbose {
		runner = &execx.Runner{Stdout: io.Discard, Stderr: io.Discard}
	}

	pipe := pipeline.New(log, rep,
		pipeline.Stage{
			Name:  "prerequisites",
			Title: "Checking prerequisites",
			Run:   prereq.NewManager(runner, rep, log).CheckAndInstall,
		},
		pipeline.Stage{
			Name:  "sdk",
			Title: "Installing/updating the Flutter SDK",
			Run:   sdk.NewManager(runner, rep, log).Ensure,
		},
		pipeline.Stage{
			Name:  "project",
			Title: "Creating the Flutter project",
			Run:   project.NewCreator(runner, rep, log).Create,
		},
		pipeline.Stage{
			Name:  "bootstrap",
			Title: "Bootstrapping the development environment",
			Run:   bootstrap.NewBootstrapper(runner, rep, log).Bootstrap,
		},
	)

	summary, runErr := pipe.Run(ctx, cfg)
	rep.Summary(summary)
	recordRun(summary, cfg, rep, log)

	if runErr != nil {
		if ctx.Err() != nil {
			rep.Warn("setup interrupted")
			if cfg.Verbose {
				log.Error(runErr, "setup interrupted")
			}
			return errInterrupted
		}

		rep.Error(fmt.Sprintf("setup failed: %v", runErr))
		if cfg.Verbose {
			log.Error(runErr, "setup failed")
		}
		return runErr
	}

	rep.Success("Flutter setup completed successfully")
	rep.NextSteps("Ready to Code!", nextStepsLines(cfg))

	return nil
}

func newReporter(opts setupOptions) *report.Console {
	if opts.NoColor || opts.NonInteractive {
		return report.NewPlainConsole(opts.Out)
	}
	return report.NewConsole(opts.Out)
}

// buildConfig merges flags over the settings file over built-in defaults and
// validates the result.
func buildConfig(opts setupOptions) (*config.Config, error) {
	settingsPath := opts.SettingsPath
	if settingsPath == "" {
		settingsPath = paths.SettingsPath()
	}

	settings, err := config.LoadSettings(settingsPath)
	if err != nil {
		return nil, err
	}

	if settings.SDKRoot != "" && os.Getenv(paths.EnvSDKRoot) == "" {
		_ = os.Setenv(paths.EnvSDKRoot, settings.SDKRoot)
	}

	return config.New(config.Options{
		ProjectName:     opts.ProjectName,
		Platforms:       opts.Platforms,
		Org:             firstNonEmpty(opts.Org, settings.Org),
		Channel:         firstNonEmpty(opts.Channel, settings.Channel),
		OutputDir:       firstNonEmpty(opts.OutputDir, settings.OutputDir),
		Template:        firstNonEmpty(opts.Template, settings.Template),
		IOSLanguage:     firstNonEmpty(opts.IOSLanguage, settings.IOSLanguage),
		AndroidLanguage: firstNonEmpty(opts.AndroidLanguage, settings.AndroidLanguage),
		UpdateMode:      firstNonEmpty(opts.UpdateMode, settings.UpdateMode),
		DryRun:          opts.DryRun,
		Verbose:         opts.Verbose || settings.Verbose,
	})
}

func printRunHeader(rep *report.Console, cfg *config.Config) {
	rep.Info(fmt.Sprintf("starting Flutter setup for %s", cfg.ProjectName))
	rep.Info(fmt.Sprintf("template %s | org %s | channel %s", cfg.Template, cfg.Org, cfg.Channel))
	rep.Info(fmt.Sprintf("platforms %s | package %s", cfg.PlatformsCSV(), cfg.PackageName()))
	rep.Info(fmt.Sprintf("output %s", cfg.ProjectPath()))
	if cfg.DryRun {
		rep.Warn("dry-run mode: no changes will be made")
	}
}

// recordRun persists the summary to the run journal. Journal problems are
// warnings; they never change the run outcome. Dry runs leave no trace.
func recordRun(summary *model.RunSummary, cfg *config.Config, rep *report.Console, log *logger.Logger) {
	if summary == nil || len(summary.Results) == 0 || cfg.DryRun {
		return
	}

	// The journal write is local housekeeping and proceeds even when the
	// run context was cancelled.
	ctx := context.Background()

	jr, err := journal.OpenDefault(ctx)
	if err != nil {
		rep.Warn(fmt.Sprintf("run journal unavailable: %v", err))
		return
	}
	defer jr.Close()

	if err := jr.Record(ctx, summary); err != nil {
		rep.Warn(fmt.Sprintf("could not record run: %v", err))
		log.WithFields(map[string]any{"error": err.Error()}).Warn("journal write failed")
	}
}

func nextStepsLines(cfg *config.Config) []string {
	return []string{
		"1. Activate Flutter in your shell:",
		fmt.Sprintf("   source %s", paths.ShellProfile()),
		"2. Navigate to your project:",
		fmt.Sprintf("   cd %q", cfg.ProjectPath()),
		"3. Run your Flutter app:",
		"   make run           # Chrome by default",
		"   make run_ios       # iOS simulator",
		"   make run_android   # Android emulator",
		"4. Test your setup:",
		"   make test          # unit + widget tests",
		"   make analyze       # check lints",
		`5. Open VS Code and hit F5 ("Flutter Debug") to start debugging`,
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
