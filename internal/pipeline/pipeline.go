// Package pipeline runs the setup stages strictly in order. There is no
// concurrency here: each stage is a blocking call and the first fatal error
// aborts the run.
package pipeline

import (
	"context"
	"fmt"
	"time"

	"github.com/flutterkit/flutterkit/internal/config"
	"github.com/flutterkit/flutterkit/internal/logger"
	"github.com/flutterkit/flutterkit/internal/model"
	"github.com/flutterkit/flutterkit/internal/report"
	kiterrors "github.com/flutterkit/flutterkit/pkg/errors"
)

// Stage is one sequential phase of the setup run.
type Stage struct {
	// Name is the short identifier recorded in results and the journal.
	Name string
	// Title is the user-facing announcement line.
	Title string
	// Run performs the stage's work against the shared descriptor. The
	// descriptor is read-only; stages must not mutate it.
	Run func(ctx context.Context, cfg *config.Config) error
}

// Pipeline executes stages in declaration order.
type Pipeline struct {
	stages   []Stage
	log      *logger.Logger
	reporter report.Reporter
}

// New assembles a pipeline over the given stages.
func New(log *logger.Logger, rep report.Reporter, stages ...Stage) *Pipeline {
	if rep == nil {
		rep = report.Silent{}
	}
	return &Pipeline{stages: stages, log: log, reporter: rep}
}

// Run executes every stage in order against cfg. The returned summary holds
// one result per attempted stage. Execution stops at the first fatal error,
// which is returned wrapped with the failing stage's name, or when ctx is
// cancelled.
func (p *Pipeline) Run(ctx context.Context, cfg *config.Config) (*model.RunSummary, error) {
	if cfg == nil {
		return nil, kiterrors.NewSetupError("", fmt.Errorf("configuration is nil"))
	}

	summary := &model.RunSummary{
		RunID:     NewRunID(),
		Project:   cfg.ProjectName,
		StartedAt: time.Now(),
	}

	for _, stage := range p.stages {
		if err := ctx.Err(); err != nil {
			return summary, err
		}

		p.reporter.StageStart(stage.Name, stage.Title)
		log := p.log.WithStage(stage.Name)
		log.Debug("stage starting")

		start := time.Now()
		err := stage.Run(ctx, cfg)
		duration := time.Since(start)

		result := model.StageResult{
			Stage:     stage.Name,
			Status:    model.StatusSuccess,
			Duration:  duration,
			Timestamp: time.Now(),
		}

		if err != nil {
			result.Status = model.StatusFailed
			result.Error = err
			result.Message = err.Error()
			summary.Append(result)
			log.Error(err, "stage failed")
			return summary, kiterrors.NewSetupError(stage.Name, err)
		}

		if cfg.DryRun {
			result.Status = model.StatusDryRun
			result.Message = "dry-run"
		}

		summary.Append(result)
		log.Debug("stage complete")
	}

	return summary, nil
}

// NewRunID returns an identifier unique enough to key journal entries.
func NewRunID() string {
	return fmt.Sprintf("run-%d", time.Now().UnixNano())
}
