package repo

import (
	"context"
	"fmt"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/obskit/obsctl/internal/models"
)

// Monitor is a native monitor item as returned by the platform.
type Monitor struct {
	ID            int64     `json:"id"`
	Name          string    `json:"name"`
	State         string    `json:"overall_state"`
	Priority      int       `json:"priority"`
	Tags          []string  `json:"tags"`
	LastTriggered time.Time `json:"overall_state_modified"`
}

// ListMonitors fetches monitors matching the tag query whose state last
// changed inside the window.
func (c *Client) ListMonitors(ctx context.Context, tagQuery string, w models.TimeWindow) ([]Monitor, error) {
	query := url.Values{}
	if tagQuery != "" {
		query.Set("monitor_tags", tagQuery)
	}
	query.Set("from", strconv.FormatInt(w.Start.Unix(), 10))
	query.Set("to", strconv.FormatInt(w.End.Unix(), 10))

	var response struct {
		Monitors []Monitor `json:"monitors"`
	}
	if err := c.getJSON(ctx, "/api/v1/monitor", query, &response); err != nil {
		return nil, err
	}
	return response.Monitors, nil
}

// MonitorsAdapter exposes monitor state changes as normalized records.
// Monitors apply to services and hosts alike via tag scoping.
type MonitorsAdapter struct {
	client *Client
}

// NewMonitorsAdapter wires the adapter to a platform client.
func NewMonitorsAdapter(client *Client) *MonitorsAdapter {
	return &MonitorsAdapter{client: client}
}

// Domain identifies the adapter.
func (a *MonitorsAdapter) Domain() models.Domain { return models.DomainMonitor }

// AppliesTo reports whether the adapter can serve the entity kind.
func (a *MonitorsAdapter) AppliesTo(models.Entity) bool { return true }

// Fetch returns monitor records scoped to the entity tag, ascending by
// trigger time.
func (a *MonitorsAdapter) Fetch(ctx context.Context, entity models.Entity, w models.TimeWindow) ([]models.DomainRecord, error) {
	monitors, err := a.client.ListMonitors(ctx, entity.Tag(), w)
	if err != nil {
		return nil, err
	}

	records := make([]models.DomainRecord, 0, len(monitors))
	for _, monitor := range monitors {
		if !w.Contains(monitor.LastTriggered) {
			continue
		}
		tags := models.NewTagSet(monitor.Tags...)
		tags = tags.Union(models.NewTagSet(entity.Tag()))
		records = append(records, models.DomainRecord{
			Domain:    models.DomainMonitor,
			Timestamp: monitor.LastTriggered,
			Tags:      tags,
			Severity:  monitorSeverity(monitor),
			Summary:   fmt.Sprintf("%s is %s", monitor.Name, monitor.State),
			Payload:   monitor,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func monitorSeverity(monitor Monitor) models.Severity {
	switch monitor.Priority {
	case 1:
		return models.SeverityCritical
	case 2:
		return models.SeverityHigh
	case 3:
		return models.SeverityMedium
	case 4:
		return models.SeverityLow
	case 5:
		return models.SeverityInfo
	}
	// No priority set: infer from state.
	switch monitor.State {
	case "Alert":
		return models.SeverityHigh
	case "Warn":
		return models.SeverityMedium
	}
	return models.SeverityInfo
}
