// Package report carries user-facing progress output for the setup pipeline.
// Stages never print directly; they receive a Reporter, so tests can inject a
// silent one.
package report

// Reporter receives progress events from pipeline stages.
type Reporter interface {
	// StageStart announces a stage beginning work.
	StageStart(stage, title string)
	// Info reports a neutral progress line.
	Info(msg string)
	// Success reports a completed action.
	Success(msg string)
	// Warn reports a downgraded, non-fatal failure.
	Warn(msg string)
	// Error reports a fatal condition.
	Error(msg string)
	// Skip reports work found already done.
	Skip(msg string)
	// Dry reports an intention suppressed by dry-run mode.
	Dry(msg string)
}

// Silent discards every event.
type Silent struct{}

func (Silent) StageStart(string, string) {}
func (Silent) Info(string)               {}
func (Silent) Success(string)            {}
func (Silent) Warn(string)               {}
func (Silent) Error(string)              {}
func (Silent) Skip(string)               {}
func (Silent) Dry(string)                {}

var _ Reporter = Silent{}
