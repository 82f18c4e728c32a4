package render

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/obskit/obsctl/internal/repo"
)

// Monitors renders a monitor listing.
func Monitors(monitors []repo.Monitor) string {
	if len(monitors) == 0 {
		return dimStyle.Render("No monitors matched.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Monitors (%d)", len(monitors))))
	for _, monitor := range monitors {
		state := okStyle
		if monitor.State == "Alert" {
			state = errStyle
		}
		fmt.Fprintf(&b, "  %-10d %-8s %s  %s\n",
			monitor.ID,
			state.Render(monitor.State),
			monitor.LastTriggered.UTC().Format(timestampLayout),
			monitor.Name,
		)
	}
	return b.String()
}

// Logs renders a log search result.
func Logs(events []repo.LogEvent) string {
	if len(events) == 0 {
		return dimStyle.Render("No log events matched.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Log events (%d)", len(events))))
	for _, event := range events {
		status := dimStyle
		if event.Status == "error" || event.Status == "critical" {
			status = errStyle
		}
		fmt.Fprintf(&b, "  %s %-8s %-20s %s\n",
			dimStyle.Render(event.Timestamp.UTC().Format(timestampLayout)),
			status.Render(event.Status),
			event.Service,
			event.Message,
		)
	}
	return b.String()
}

// Traces renders a span search result.
func Traces(spans []repo.TraceSpan) string {
	if len(spans) == 0 {
		return dimStyle.Render("No spans matched.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Spans (%d)", len(spans))))
	for _, span := range spans {
		status := okStyle
		if span.Status == "error" {
			status = errStyle
		}
		fmt.Fprintf(&b, "  %s %-6s %-20s %-30s %s\n",
			dimStyle.Render(span.Start.UTC().Format(timestampLayout)),
			status.Render(span.Status),
			span.Service,
			span.Resource,
			span.Duration(),
		)
	}
	return b.String()
}

// Incidents renders a declared-incident listing.
func Incidents(incidents []repo.Incident) string {
	if len(incidents) == 0 {
		return dimStyle.Render("No incidents matched.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Incidents (%d)", len(incidents))))
	for _, incident := range incidents {
		fmt.Fprintf(&b, "  %-12s %-6s %s %s  %s\n",
			incident.ID,
			warnStyle.Render(incident.Severity),
			incidentStatusStyle(incident.Status).Render(fmt.Sprintf("%-8s", incident.Status)),
			dimStyle.Render(incident.Created.UTC().Format(timestampLayout)),
			incident.Title,
		)
	}
	return b.String()
}

func incidentStatusStyle(status string) lipgloss.Style {
	switch status {
	case "active":
		return errStyle
	case "stable":
		return warnStyle
	case "resolved":
		return okStyle
	}
	return dimStyle
}

// SLOs renders a service level objective listing with compact thresholds.
func SLOs(slos []repo.SLO) string {
	if len(slos) == 0 {
		return dimStyle.Render("No SLOs matched.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("SLOs (%d)", len(slos))))
	for _, slo := range slos {
		fmt.Fprintf(&b, "  %-14s %-8s %-24s %s\n",
			slo.ID,
			dimStyle.Render(slo.Type),
			thresholdSummary(slo.Thresholds),
			slo.Name,
		)
	}
	return b.String()
}

// thresholdSummary renders thresholds in the compact timeframe:target form,
// e.g. "30d:99.9% 7d:99.95%".
func thresholdSummary(thresholds []repo.SLOThreshold) string {
	if len(thresholds) == 0 {
		return "-"
	}
	parts := make([]string, 0, len(thresholds))
	for _, t := range thresholds {
		parts = append(parts, fmt.Sprintf("%s:%g%%", t.Timeframe, t.Target))
	}
	return strings.Join(parts, " ")
}

// Hosts renders a host inventory listing.
func Hosts(hosts []repo.Host) string {
	if len(hosts) == 0 {
		return dimStyle.Render("No hosts matched.") + "\n"
	}

	var b strings.Builder
	fmt.Fprintf(&b, "%s\n", headerStyle.Render(fmt.Sprintf("Hosts (%d)", len(hosts))))
	for _, host := range hosts {
		state := okStyle.Render("up")
		if !host.Up {
			state = errStyle.Render("down")
		}
		fmt.Fprintf(&b, "  %-30s %-4s cpu %5.1f%%  iowait %5.1f%%  load15 %5.2f  %s\n",
			host.Name,
			state,
			host.Metrics.CPUPercent,
			host.Metrics.IOWait,
			host.Metrics.Load15,
			dimStyle.Render(host.LastReported.UTC().Format(timestampLayout)),
		)
	}
	return b.String()
}
