package ops

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"safetasks/internal/achievement"
	"safetasks/internal/stats"
	"safetasks/internal/xp"
)

var (
	colorAccent = lipgloss.Color("#7C5CFF")
	colorOK     = lipgloss.Color("#3ECF8E")
	colorMuted  = lipgloss.Color("#8B95A3")
)

var styles = struct {
	Title  lipgloss.Style
	Label  lipgloss.Style
	Value  lipgloss.Style
	Muted  lipgloss.Style
	Done   lipgloss.Style
	Box    lipgloss.Style
	BarOn  lipgloss.Style
	BarOff lipgloss.Style
}{
	Title: lipgloss.NewStyle().Bold(true).Foreground(colorAccent),
	Label: lipgloss.NewStyle().Width(14).Foreground(colorMuted),
	Value: lipgloss.NewStyle().Bold(true),
	Muted: lipgloss.NewStyle().Foreground(colorMuted),
	Done:  lipgloss.NewStyle().Foreground(colorOK),

	Box: lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(colorAccent).
		Padding(0, 1),

	BarOn:  lipgloss.NewStyle().Foreground(colorOK),
	BarOff: lipgloss.NewStyle().Foreground(colorMuted),
}

const barWidth = 20

// RenderReport writes a terminal summary of r, the XP standing and the
// achievement board.
func RenderReport(w io.Writer, r stats.Report, st xp.Standing, board []achievement.Status) error {
	var b strings.Builder

	row := func(label string, value any) {
		b.WriteString(styles.Label.Render(label))
		b.WriteString(styles.Value.Render(fmt.Sprint(value)))
		b.WriteString("\n")
	}
	s := r.Summary
	row("Tasks", s.Total)
	row("Completed", s.Completed)
	row("Pending", s.Pending)
	row("Overdue", s.Overdue)
	row("Streak", fmt.Sprintf("%d days", s.Streak))
	row("Rate", fmt.Sprintf("%d%% over %d days", s.Rate, s.PeriodDays))
	row("Level", fmt.Sprintf("%d (%d/%d XP)", st.Level, st.Progress, st.Next))
	summary := styles.Box.Render(strings.TrimSuffix(b.String(), "\n"))

	var daily strings.Builder
	peak := 0
	for _, d := range r.Daily {
		peak = max(peak, d.Count)
	}
	for _, d := range r.Daily {
		daily.WriteString(styles.Muted.Render(d.Date.Format("Mon 02")))
		daily.WriteString(" ")
		daily.WriteString(bar(d.Count, peak))
		daily.WriteString(fmt.Sprintf(" %d\n", d.Count))
	}

	var weekly strings.Builder
	for _, wk := range r.Weekly {
		weekly.WriteString(styles.Muted.Render(wk.Start.Format("02 Jan")))
		weekly.WriteString(" ")
		weekly.WriteString(bar(wk.Rate, 100))
		weekly.WriteString(fmt.Sprintf(" %d%%\n", wk.Rate))
	}

	var unlocked strings.Builder
	for _, a := range board {
		if a.Unlocked {
			unlocked.WriteString(styles.Done.Render("✓ " + a.Title))
		} else {
			unlocked.WriteString(styles.Muted.Render("· " + a.Title))
		}
		unlocked.WriteString("\n")
	}

	out := lipgloss.JoinVertical(lipgloss.Left,
		styles.Title.Render("SafeTasks"),
		summary,
		styles.Title.Render("Daily completions"),
		strings.TrimSuffix(daily.String(), "\n"),
		styles.Title.Render("Weekly productivity"),
		strings.TrimSuffix(weekly.String(), "\n"),
		styles.Title.Render("Achievements"),
		strings.TrimSuffix(unlocked.String(), "\n"),
	)
	_, err := fmt.Fprintln(w, out)
	return err
}

func bar(n, peak int) string {
	filled := 0
	if peak > 0 {
		filled = n * barWidth / peak
	}
	return styles.BarOn.Render(strings.Repeat("█", filled)) +
		styles.BarOff.Render(strings.Repeat("░", barWidth-filled))
}
