// Package render turns engine output into terminal or JSON form. It is a
// pure formatting layer: exit codes and flag parsing live in the cli
// package, everything it prints comes from the report structure.
package render

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/obskit/obsctl/internal/models"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true)
	labelStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	okStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("2"))
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("3"))
	errStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	dimStyle    = lipgloss.NewStyle().Faint(true)

	severityStyles = map[models.Severity]lipgloss.Style{
		models.SeverityCritical: lipgloss.NewStyle().Foreground(lipgloss.Color("1")).Bold(true),
		models.SeverityHigh:     lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
		models.SeverityMedium:   lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
		models.SeverityLow:      lipgloss.NewStyle().Foreground(lipgloss.Color("4")),
		models.SeverityInfo:     lipgloss.NewStyle().Faint(true),
	}
)

const timestampLayout = "2006-01-02 15:04:05"

// Report renders the investigation result for the terminal.
func Report(report *models.InvestigationReport) string {
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s  %s\n\n",
		headerStyle.Render("Investigation"),
		headerStyle.Render(report.Entity.String()),
		dimStyle.Render(report.Window.String()),
	)

	b.WriteString(labelStyle.Render("Domains"))
	b.WriteString("\n")
	for _, domain := range models.AllDomains {
		outcome, ok := report.Outcomes[domain]
		if !ok {
			continue
		}
		if outcome.Healthy() {
			fmt.Fprintf(&b, "  %s %-12s %d record(s)%s\n",
				okStyle.Render("ok "),
				domain,
				len(outcome.Records),
				retrySuffix(outcome.RetriesUsed),
			)
		} else {
			fmt.Fprintf(&b, "  %s %-12s %v%s\n",
				errStyle.Render("err"),
				domain,
				outcome.Err,
				retrySuffix(outcome.RetriesUsed),
			)
		}
	}
	b.WriteString("\n")

	switch {
	case report.Failed():
		b.WriteString(errStyle.Render("Every requested domain failed; no data to report."))
		b.WriteString("\n")
		return b.String()
	case report.RecordCount() == 0:
		// Healthy domains with nothing to show is not an error.
		b.WriteString(dimStyle.Render("No matching records in window."))
		b.WriteString("\n")
		return b.String()
	}

	b.WriteString(labelStyle.Render("Timeline"))
	b.WriteString("\n")
	for _, record := range report.Timeline {
		b.WriteString("  " + timelineLine(record) + "\n")
	}
	b.WriteString("\n")

	b.WriteString(labelStyle.Render("Correlated groups"))
	b.WriteString("\n")
	for i, group := range report.Groups {
		fmt.Fprintf(&b, "  #%d %s  %s\n",
			i+1,
			dimStyle.Render(spanLabel(group.Span)),
			strings.Join(group.AnchorTags.Sorted(), " "),
		)
		for _, member := range group.Members {
			b.WriteString("     " + timelineLine(member) + "\n")
		}
	}

	return b.String()
}

func timelineLine(record models.DomainRecord) string {
	style, ok := severityStyles[record.Severity]
	if !ok {
		style = dimStyle
	}
	return fmt.Sprintf("%s  %-12s %s  %s",
		dimStyle.Render(record.Timestamp.UTC().Format(timestampLayout)),
		record.Domain,
		style.Render(fmt.Sprintf("%-8s", record.Severity)),
		record.Summary,
	)
}

func spanLabel(span models.TimeWindow) string {
	return fmt.Sprintf("%s .. %s",
		span.Start.UTC().Format(timestampLayout),
		span.End.UTC().Format(timestampLayout),
	)
}

func retrySuffix(retries int) string {
	if retries == 0 {
		return ""
	}
	return dimStyle.Render(fmt.Sprintf("  (%d retr%s)", retries, plural(retries, "y", "ies")))
}

func plural(n int, one, many string) string {
	if n == 1 {
		return one
	}
	return many
}

// reportJSON is the machine-readable shape of a report.
type reportJSON struct {
	ID        string            `json:"id"`
	Entity    string            `json:"entity"`
	Window    windowJSON        `json:"window"`
	Outcomes  []outcomeJSON     `json:"outcomes"`
	Timeline  []recordJSON      `json:"timeline"`
	Groups    []groupJSON       `json:"correlated_groups"`
	CreatedAt time.Time         `json:"created_at"`
}

type windowJSON struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type outcomeJSON struct {
	Domain      string `json:"domain"`
	Records     int    `json:"records"`
	Error       string `json:"error,omitempty"`
	RetriesUsed int    `json:"retries_used"`
}

type recordJSON struct {
	Domain    string    `json:"domain"`
	Timestamp time.Time `json:"timestamp"`
	Tags      []string  `json:"tags"`
	Severity  string    `json:"severity"`
	Summary   string    `json:"summary"`
	Payload   any       `json:"payload,omitempty"`
}

type groupJSON struct {
	AnchorTags []string     `json:"anchor_tags"`
	Span       windowJSON   `json:"span"`
	Members    []recordJSON `json:"members"`
}

// ReportJSON marshals the report for piping into other tools.
func ReportJSON(report *models.InvestigationReport) ([]byte, error) {
	out := reportJSON{
		ID:        report.ID,
		Entity:    report.Entity.String(),
		Window:    windowJSON{Start: report.Window.Start, End: report.Window.End},
		Outcomes:  make([]outcomeJSON, 0, len(report.Outcomes)),
		Timeline:  make([]recordJSON, 0, len(report.Timeline)),
		Groups:    make([]groupJSON, 0, len(report.Groups)),
		CreatedAt: report.CreatedAt,
	}

	for _, domain := range models.AllDomains {
		outcome, ok := report.Outcomes[domain]
		if !ok {
			continue
		}
		oj := outcomeJSON{
			Domain:      domain.String(),
			Records:     len(outcome.Records),
			RetriesUsed: outcome.RetriesUsed,
		}
		if outcome.Err != nil {
			oj.Error = outcome.Err.Error()
		}
		out.Outcomes = append(out.Outcomes, oj)
	}

	for _, record := range report.Timeline {
		out.Timeline = append(out.Timeline, toRecordJSON(record))
	}
	for _, group := range report.Groups {
		gj := groupJSON{
			AnchorTags: group.AnchorTags.Sorted(),
			Span:       windowJSON{Start: group.Span.Start, End: group.Span.End},
			Members:    make([]recordJSON, 0, len(group.Members)),
		}
		for _, member := range group.Members {
			gj.Members = append(gj.Members, toRecordJSON(member))
		}
		out.Groups = append(out.Groups, gj)
	}

	return json.MarshalIndent(out, "", "  ")
}

func toRecordJSON(record models.DomainRecord) recordJSON {
	return recordJSON{
		Domain:    record.Domain.String(),
		Timestamp: record.Timestamp,
		Tags:      record.Tags.Sorted(),
		Severity:  record.Severity.String(),
		Summary:   record.Summary,
		Payload:   record.Payload,
	}
}
