// Package project invokes the SDK's project generator.
package project

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/flutterkit/flutterkit/internal/config"
	"github.com/flutterkit/flutterkit/internal/execx"
	"github.com/flutterkit/flutterkit/internal/logger"
	"github.com/flutterkit/flutterkit/internal/paths"
	"github.com/flutterkit/flutterkit/internal/report"
	kiterrors "github.com/flutterkit/flutterkit/pkg/errors"
)

// Creator runs flutter create with arguments derived from the run descriptor.
type Creator struct {
	runner *execx.Runner
	rep    report.Reporter
	log    *logger.Logger

	flutterBin string
}

// NewCreator builds a Creator that uses the SDK checkout's flutter binary.
func NewCreator(runner *execx.Runner, rep report.Reporter, log *logger.Logger) *Creator {
	if rep == nil {
		rep = report.Silent{}
	}
	return &Creator{
		runner:     runner,
		rep:        rep,
		log:        log,
		flutterBin: filepath.Join(paths.SDKBin(), "flutter"),
	}
}

// Create generates the project unless its directory already exists. Re-runs
// after a failure further down the pipeline skip straight past generation.
func (c *Creator) Create(ctx context.Context, cfg *config.Config) error {
	if cfg.DryRun {
		c.rep.Dry(fmt.Sprintf("would create Flutter project at %s", cfg.ProjectPath()))
		return nil
	}

	if _, err := os.Stat(cfg.ProjectPath()); err == nil {
		c.rep.Skip(fmt.Sprintf("directory %s exists, skipping create", cfg.ProjectPath()))
		return nil
	}

	if err := os.MkdirAll(cfg.OutputDir, 0o755); err != nil {
		return kiterrors.NewProjectCreationError("", err)
	}

	c.rep.Info(fmt.Sprintf("creating Flutter project at %s", cfg.ProjectPath()))
	c.log.WithFields(map[string]any{"package": cfg.PackageName()}).Debug("running flutter create")

	res, err := c.runner.Run(ctx, c.createCommand(cfg))
	if err != nil {
		return kiterrors.NewProjectCreationError(res.Primary(), err)
	}

	c.rep.Success(fmt.Sprintf("project created at %s", cfg.ProjectPath()))
	return nil
}

func (c *Creator) createCommand(cfg *config.Config) execx.Command {
	args := []string{
		"create",
		"--org", cfg.Org,
		"--project-name", cfg.PackageName(),
		"--platforms", cfg.PlatformsCSV(),
		"--template", cfg.Template,
	}
	if cfg.Template == config.TemplatePlugin {
		args = append(args,
			"--ios-language", cfg.IOSLanguage,
			"--android-language", cfg.AndroidLanguage,
		)
	}
	args = append(args, cfg.ProjectPath())

	return execx.Command{Name: c.flutterBin, Args: args}
}
