package repo

import (
	"context"
	"sort"
	"time"

	"github.com/obskit/obsctl/internal/models"
)

// LogEvent is a native log item from the log search API.
type LogEvent struct {
	Timestamp time.Time `json:"timestamp"`
	Status    string    `json:"status"`
	Service   string    `json:"service"`
	Host      string    `json:"host"`
	Message   string    `json:"message"`
	Tags      []string  `json:"tags"`
}

// SearchLogs queries the log event search API.
func (c *Client) SearchLogs(ctx context.Context, query string, w models.TimeWindow, limit int) ([]LogEvent, error) {
	if limit <= 0 {
		limit = 200
	}
	payload := map[string]any{
		"query": query,
		"from":  w.Start.Format(time.RFC3339),
		"to":    w.End.Format(time.RFC3339),
		"limit": limit,
	}

	var response struct {
		Events []LogEvent `json:"events"`
	}
	if err := c.postJSON(ctx, "/api/v2/logs/search", payload, &response); err != nil {
		return nil, err
	}
	return response.Events, nil
}

// LogsAdapter exposes log events as normalized records, keyed by service.
type LogsAdapter struct {
	client *Client
	limit  int
}

// NewLogsAdapter wires the adapter to a platform client.
func NewLogsAdapter(client *Client) *LogsAdapter {
	return &LogsAdapter{client: client, limit: 200}
}

// Domain identifies the adapter.
func (a *LogsAdapter) Domain() models.Domain { return models.DomainLog }

// AppliesTo restricts logs to service entities.
func (a *LogsAdapter) AppliesTo(entity models.Entity) bool {
	return entity.Kind == models.EntityService
}

// Fetch returns log records for the service, ascending by event time.
func (a *LogsAdapter) Fetch(ctx context.Context, entity models.Entity, w models.TimeWindow) ([]models.DomainRecord, error) {
	events, err := a.client.SearchLogs(ctx, entity.Tag(), w, a.limit)
	if err != nil {
		return nil, err
	}

	records := make([]models.DomainRecord, 0, len(events))
	for _, event := range events {
		if !w.Contains(event.Timestamp) {
			continue
		}
		tags := models.NewTagSet(event.Tags...)
		if event.Service != "" {
			tags = tags.Union(models.NewTagSet("service:" + event.Service))
		}
		if event.Host != "" {
			tags = tags.Union(models.NewTagSet("host:" + event.Host))
		}
		records = append(records, models.DomainRecord{
			Domain:    models.DomainLog,
			Timestamp: event.Timestamp,
			Tags:      tags,
			Severity:  logSeverity(event.Status),
			Summary:   event.Message,
			Payload:   event,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func logSeverity(status string) models.Severity {
	switch status {
	case "emergency", "critical":
		return models.SeverityCritical
	case "error":
		return models.SeverityHigh
	case "warn", "warning":
		return models.SeverityMedium
	case "info":
		return models.SeverityInfo
	case "debug":
		return models.SeverityInfo
	}
	return models.SeverityNone
}
