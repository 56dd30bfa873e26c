package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"

	"timesheetbot/internal/pipeline"
)

var (
	previewStyle = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("63")).
			Padding(0, 1)

	captionStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")).
			Italic(true)

	okStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("42")).Bold(true)
	warnStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("214")).Bold(true)
	errStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// renderPreview boxes a report message with a caption underneath.
func renderPreview(msg, caption string) string {
	return lipgloss.JoinVertical(
		lipgloss.Left,
		previewStyle.Render(msg),
		captionStyle.Render(caption),
	)
}

// printOutcome writes a one-screen summary of a run.
func printOutcome(w io.Writer, out pipeline.Outcome) {
	switch out.Kind {
	case pipeline.KindReported:
		status := okStyle.Render("sent")
		if out.DryRun {
			status = warnStyle.Render("dry run, not sent")
		} else if !out.Delivery.Delivered {
			status = errStyle.Render(out.Delivery.String())
		}
		fmt.Fprintln(w, renderPreview(out.Message, "run "+out.RunID))
		fmt.Fprintln(w, "LINE:", status)
	case pipeline.KindNoTableFound:
		fmt.Fprintln(w, warnStyle.Render("summary table not found"), "screenshot:", screenshotOrNone(out.Screenshot))
	case pipeline.KindNoRowsMatched:
		fmt.Fprintln(w, warnStyle.Render("no rows matched a known label"), "screenshot:", screenshotOrNone(out.Screenshot))
	default:
		fmt.Fprintln(w, errStyle.Render("run failed:"), out.Err)
	}
}

func screenshotOrNone(path string) string {
	if path == "" {
		return "(none)"
	}
	return path
}
