package report

import "strings"

// Event is one recorded reporter call.
type Event struct {
	Kind    string
	Stage   string
	Message string
}

// Recorder captures events in order so tests can assert on what a stage
// reported.
type Recorder struct {
	Events []Event
}

var _ Reporter = (*Recorder)(nil)

func (r *Recorder) StageStart(stage, title string) {
	r.Events = append(r.Events, Event{Kind: "stage", Stage: stage, Message: title})
}

func (r *Recorder) Info(msg string)    { r.record("info", msg) }
func (r *Recorder) Success(msg string) { r.record("success", msg) }
func (r *Recorder) Warn(msg string)    { r.record("warn", msg) }
func (r *Recorder) Error(msg string)   { r.record("error", msg) }
func (r *Recorder) Skip(msg string)    { r.record("skip", msg) }
func (r *Recorder) Dry(msg string)     { r.record("dry", msg) }

func (r *Recorder) record(kind, msg string) {
	r.Events = append(r.Events, Event{Kind: kind, Message: msg})
}

// Messages returns every recorded message of the given kind, in order.
func (r *Recorder) Messages(kind string) []string {
	var out []string
	for _, ev := range r.Events {
		if ev.Kind == kind {
			out = append(out, ev.Message)
		}
	}
	return out
}

// Has reports whether any message of the given kind contains substr.
func (r *Recorder) Has(kind, substr string) bool {
	for _, msg := range r.Messages(kind) {
		if strings.Contains(msg, substr) {
			return true
		}
	}
	return false
}
