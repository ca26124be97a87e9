package status

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"

	"github.com/bnema/farmhand/internal/application"
	"github.com/bnema/farmhand/internal/domain"
	"github.com/charmbracelet/lipgloss"
)

const progressWidth = 24

type RenderOptions struct {
	Now        time.Time
	StaleAfter time.Duration
}

func renderView(statuses []application.Status, sum summary, opts RenderOptions, s styles) string {
	lines := []string{
		s.title.Render("Farmhand Accounts"),
		s.header.Render(headerLine(sum)),
	}

	if len(statuses) == 0 {
		lines = append(lines, s.empty.Render("No accounts configured. Add one with `fh account add`."))
		return lipgloss.JoinVertical(lipgloss.Left, lines...)
	}

	for _, status := range statuses {
		lines = append(lines, s.section.Render(renderAccount(status, opts, s)))
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func headerLine(sum summary) string {
	line := fmt.Sprintf("accounts: %d (enabled: %d)", sum.total, sum.enabled)
	if len(sum.phases) == 0 {
		return line
	}

	phases := make([]string, 0, len(sum.phases))
	for phase, count := range sum.phases {
		phases = append(phases, fmt.Sprintf("%s %d", phase.Label(), count))
	}
	sort.Strings(phases)

	return line + " | " + strings.Join(phases, ", ")
}

func renderAccount(status application.Status, opts RenderOptions, s styles) string {
	parts := []string{accountTitle(status, s)}

	runtime := status.Runtime
	if runtime == nil {
		parts = append(parts, s.empty.Render("  never ran"))
		if !status.HasInitData {
			parts = append(parts, s.warning.Render("  init data missing: run `fh account set-init-data "+string(status.Account.ID)+"`"))
		}
		return lipgloss.JoinVertical(lipgloss.Left, parts...)
	}

	parts = append(parts, phaseLine(*runtime, opts, s))
	if runtime.Window != nil {
		parts = append(parts, farmLine(*runtime.Window, opts.Now, s))
	}
	parts = append(parts, s.detail.Render(fmt.Sprintf("  plays claimed: %d  farm claims: %d", runtime.PlaysClaimed, runtime.FarmClaims)))
	if runtime.LastError != "" {
		parts = append(parts, s.failure.Render("  last error: "+runtime.LastError))
	}
	if !status.HasInitData {
		parts = append(parts, s.warning.Render("  init data missing"))
	}

	return lipgloss.JoinVertical(lipgloss.Left, parts...)
}

func accountTitle(status application.Status, s styles) string {
	title := s.account.Render(string(status.Account.ID))
	if status.Account.Phone != "" {
		title += " " + s.phone.Render("("+status.Account.Phone+")")
	}
	if !status.Account.Enabled {
		title += " " + s.empty.Render("[disabled]")
	}
	return title
}

func phaseLine(runtime domain.AccountStatus, opts RenderOptions, s styles) string {
	segments := []string{
		s.label.Render("  phase:"),
		s.phase(runtime.Phase).Render(runtime.Phase.Label()),
	}

	if runtime.Window != nil {
		balance := runtime.Window.Balance
		if balance == "" {
			balance = "n/a"
		}
		segments = append(segments,
			s.label.Render(" balance:"), s.detail.Render(balance),
			s.label.Render(" passes:"), s.detail.Render(fmt.Sprintf("%d", runtime.Window.PlayPasses)),
		)
	}

	segments = append(segments, s.header.Render(" "+formatUpdated(runtime.UpdatedAt, opts.Now)))

	line := lipgloss.JoinHorizontal(lipgloss.Top, joinSpaced(segments)...)

	if !opts.Now.IsZero() && !runtime.Terminated && runtime.IsStale(opts.Now, opts.StaleAfter) {
		line += " " + s.warning.Render("[stale]")
	}

	return line
}

func farmLine(window domain.FarmingWindow, now time.Time, s styles) string {
	if !window.Open() {
		return s.detail.Render("  farm: not started")
	}

	progress := window.Progress() * 100
	percentStyle := lipgloss.NewStyle().Foreground(interpolateColor(progress, 0, 100))

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.label.Render("  farm: "),
		renderProgressBar(progress, progressWidth, s),
		" ",
		percentStyle.Render(fmt.Sprintf("%3.0f%%", progress)),
		" ",
		s.header.Render("("+formatFarmEnd(*window.FarmEnd, now)+")"),
	)
}

func joinSpaced(segments []string) []string {
	out := make([]string, 0, len(segments)*2)
	for i, segment := range segments {
		if i > 0 {
			out = append(out, " ")
		}
		out = append(out, segment)
	}
	return out
}

func renderProgressBar(donePercent float64, width int, s styles) string {
	if width <= 0 {
		return ""
	}

	filled := int(math.Round(float64(width) * clampPercent(donePercent) / 100.0))
	if filled < 0 {
		filled = 0
	}
	if filled > width {
		filled = width
	}

	return lipgloss.JoinHorizontal(
		lipgloss.Top,
		s.barBracket.Render("["),
		s.barFill.Render(strings.Repeat("=", filled)),
		s.barEmpty.Render(strings.Repeat("-", width-filled)),
		s.barBracket.Render("]"),
	)
}

func clampPercent(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

func formatClock(at, now time.Time) string {
	if now.IsZero() {
		return at.Format(time.RFC3339)
	}

	yearA, monthA, dayA := now.Date()
	yearB, monthB, dayB := at.Date()
	if yearA == yearB && monthA == monthB && dayA == dayB {
		return at.Format("15:04")
	}
	return at.Format("15:04 on 02 Jan")
}

func formatFarmEnd(end, now time.Time) string {
	if now.IsZero() {
		return "ends " + formatClock(end, now)
	}
	if !end.After(now) {
		return "ready to claim"
	}

	remaining := end.Sub(now)
	if remaining < time.Hour {
		minutes := int(math.Ceil(remaining.Minutes()))
		return fmt.Sprintf("ends in %d %s (%s)", minutes, plural(minutes, "minute"), formatClock(end, now))
	}

	hours := int(math.Ceil(remaining.Hours()))
	return fmt.Sprintf("ends in %d %s (%s)", hours, plural(hours, "hour"), formatClock(end, now))
}

func formatUpdated(updated, now time.Time) string {
	if updated.IsZero() {
		return "never updated"
	}
	if now.IsZero() {
		return "updated " + updated.Format(time.RFC3339)
	}

	age := now.Sub(updated)
	switch {
	case age < time.Minute:
		return "updated just now"
	case age < time.Hour:
		minutes := int(age.Minutes())
		return fmt.Sprintf("updated %d %s ago", minutes, plural(minutes, "minute"))
	case age < 48*time.Hour:
		hours := int(age.Hours())
		return fmt.Sprintf("updated %d %s ago", hours, plural(hours, "hour"))
	default:
		days := int(age.Hours() / 24)
		return fmt.Sprintf("updated %d days ago", days)
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return unit
	}
	return unit + "s"
}

// interpolateColor maps value onto the 240..255 greyscale ramp.
func interpolateColor(value, lo, hi float64) lipgloss.Color {
	if hi == lo {
		return lipgloss.Color("255")
	}

	normalized := (value - lo) / (hi - lo)
	if normalized < 0 {
		normalized = 0
	}
	if normalized > 1 {
		normalized = 1
	}

	code := int(240.0 + 15.0*normalized)
	return lipgloss.Color(fmt.Sprintf("%d", code))
}
