package report

import (
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/flutterkit/flutterkit/internal/model"
)

// Console renders progress lines and panels to a terminal writer.
type Console struct {
	out   io.Writer
	plain bool
}

// NewConsole creates a Console writing to out, defaulting to stdout.
func NewConsole(out io.Writer) *Console {
	if out == nil {
		out = os.Stdout
	}
	return &Console{out: out}
}

// NewPlainConsole creates a Console that renders without ANSI styling or
// panel borders. Used when stdout is not a terminal or color is disabled.
func NewPlainConsole(out io.Writer) *Console {
	c := NewConsole(out)
	c.plain = true
	return c
}

var _ Reporter = (*Console)(nil)

func (c *Console) render(style lipgloss.Style, text string) string {
	if c.plain {
		return text
	}
	return style.Render(text)
}

// Banner prints the application banner panel.
func (c *Console) Banner(title, subtitle string) {
	if c.plain {
		fmt.Fprintf(c.out, "%s\n%s\n", title, subtitle)
		return
	}

	body := lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render(title),
		subtitleStyle.Render(subtitle),
	)
	fmt.Fprintln(c.out, panelStyle.Render(body))
}

// StageStart announces a stage beginning work.
func (c *Console) StageStart(stage, title string) {
	fmt.Fprintln(c.out, c.render(stageStyle, fmt.Sprintf("▸ %s", title)))
}

// Info reports a neutral progress line.
func (c *Console) Info(msg string) {
	fmt.Fprintf(c.out, "  %s %s\n", c.render(pendingStyle, "•"), msg)
}

// Success reports a completed action.
func (c *Console) Success(msg string) {
	fmt.Fprintf(c.out, "  %s %s\n", c.render(successStyle, "✓"), msg)
}

// Warn reports a downgraded, non-fatal failure.
func (c *Console) Warn(msg string) {
	fmt.Fprintf(c.out, "  %s %s\n", c.render(warnStyle, "⚠"), msg)
}

// Error reports a fatal condition.
func (c *Console) Error(msg string) {
	fmt.Fprintf(c.out, "  %s %s\n", c.render(failureStyle, "✗"), msg)
}

// Skip reports work found already done.
func (c *Console) Skip(msg string) {
	fmt.Fprintf(c.out, "  %s %s\n", c.render(skippedStyle, "⊘"), msg)
}

// Dry reports an intention suppressed by dry-run mode.
func (c *Console) Dry(msg string) {
	fmt.Fprintf(c.out, "  %s %s\n", c.render(dryStyle, "✱"), msg)
}

// Summary renders one line per recorded stage result.
func (c *Console) Summary(summary *model.RunSummary) {
	if summary == nil || len(summary.Results) == 0 {
		return
	}

	fmt.Fprintln(c.out, c.render(stageStyle, "Summary"))
	for _, res := range summary.Results {
		icon := statusGlyph(res.Status)
		if !c.plain {
			icon = StatusIcon(res.Status)
		}
		line := fmt.Sprintf(" %s %s", icon, res.Stage)
		if strings.TrimSpace(res.Message) != "" {
			line = fmt.Sprintf("%s — %s", line, res.Message)
		}
		if res.Duration > 0 {
			line = fmt.Sprintf("%s (%s)", line, res.Duration.Truncate(10*time.Millisecond))
		}
		fmt.Fprintln(c.out, line)
	}
}

// NextSteps prints a closing panel with follow-up instructions.
func (c *Console) NextSteps(title string, lines []string) {
	if c.plain {
		fmt.Fprintln(c.out, title)
		for _, line := range lines {
			fmt.Fprintln(c.out, line)
		}
		return
	}

	rendered := make([]string, 0, len(lines)+1)
	rendered = append(rendered, titleStyle.Render(title))
	rendered = append(rendered, lines...)

	body := lipgloss.JoinVertical(lipgloss.Left, rendered...)
	fmt.Fprintln(c.out, panelStyle.Render(body))
}

// StatusIcon returns the styled glyph representing a stage status.
func StatusIcon(status string) string {
	switch status {
	case model.StatusSuccess:
		return successStyle.Render(statusGlyph(status))
	case model.StatusFailed:
		return failureStyle.Render(statusGlyph(status))
	case model.StatusSkipped:
		return skippedStyle.Render(statusGlyph(status))
	case model.StatusWarning:
		return warnStyle.Render(statusGlyph(status))
	case model.StatusDryRun:
		return dryStyle.Render(statusGlyph(status))
	default:
		return pendingStyle.Render(statusGlyph(status))
	}
}

func statusGlyph(status string) string {
	switch status {
	case model.StatusSuccess:
		return "✓"
	case model.StatusRunning:
		return "⏳"
	case model.StatusFailed:
		return "✗"
	case model.StatusSkipped:
		return "⊘"
	case model.StatusWarning:
		return "⚠"
	case model.StatusDryRun:
		return "✱"
	default:
		return "…"
	}
}
