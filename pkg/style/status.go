package style

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/pterm/pterm"

	"github.com/damonswayn/agentconfig/pkg/types"
)

var (
	okStyle      = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	driftedStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("3")).Bold(true)
	missingStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true)
	pathStyle    = lipgloss.NewStyle().Faint(true)
)

// StatusBadge returns the colored label for a target state.
func StatusBadge(state types.TargetState) string {
	switch state {
	case types.StatusOK:
		return okStyle.Render("ok")
	case types.StatusDrifted:
		return driftedStyle.Render("drifted")
	case types.StatusMissing:
		return missingStyle.Render("missing")
	default:
		return string(state)
	}
}

// RenderStatusList renders one line per tracked target.
func RenderStatusList(statuses []types.TargetStatus) string {
	if len(statuses) == 0 {
		return "nothing synced yet"
	}

	var b strings.Builder
	for _, ts := range statuses {
		line := fmt.Sprintf("%-9s %s", StatusBadge(ts.Status), pathStyle.Render(ts.Path))
		if ts.Reason != "" {
			line += " (" + ts.Reason + ")"
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// RenderSyncSummary renders the one-line outcome of a sync run.
func RenderSyncSummary(result *types.SyncResult, dryRun bool) string {
	if dryRun {
		return pterm.Info.Sprintfln("dry run: %d mapping(s) planned", len(result.Planned))
	}
	return pterm.Success.Sprintfln("%d updated, %d skipped, %d warning(s)",
		len(result.Updated), len(result.Skipped), len(result.Warnings))
}

// RenderWarnings renders engine warnings in occurrence order.
func RenderWarnings(warnings []string) string {
	var b strings.Builder
	for _, w := range warnings {
		b.WriteString(pterm.Warning.Sprintln(w))
	}
	return b.String()
}
