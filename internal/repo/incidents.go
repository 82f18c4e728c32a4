package repo

import (
	"context"
	"net/url"
	"strconv"
	"time"
)

// Incident is an incident flattened out of the platform's envelope form,
// where each item carries its fields under an attributes object.
type Incident struct {
	ID       string
	Title    string
	Severity string // SEV-1 (worst) through SEV-5
	Status   string // active, stable, resolved
	Created  time.Time
	Modified time.Time
}

type incidentEnvelope struct {
	Data []struct {
		ID         string `json:"id"`
		Attributes struct {
			Title    string    `json:"title"`
			Severity string    `json:"severity"`
			Status   string    `json:"status"`
			Created  time.Time `json:"created"`
			Modified time.Time `json:"modified"`
		} `json:"attributes"`
	} `json:"data"`
}

// ListIncidents fetches declared incidents, optionally filtered by status.
// Incidents are bounded by their lifecycle rather than a query window, so
// there is no time filter here.
func (c *Client) ListIncidents(ctx context.Context, status string, limit int) ([]Incident, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	if status != "" {
		query.Set("filter[status]", status)
	}
	query.Set("page[size]", strconv.Itoa(limit))

	var response incidentEnvelope
	if err := c.getJSON(ctx, "/api/v2/incidents", query, &response); err != nil {
		return nil, err
	}

	incidents := make([]Incident, 0, len(response.Data))
	for _, item := range response.Data {
		incidents = append(incidents, Incident{
			ID:       item.ID,
			Title:    item.Attributes.Title,
			Severity: item.Attributes.Severity,
			Status:   item.Attributes.Status,
			Created:  item.Attributes.Created,
			Modified: item.Attributes.Modified,
		})
	}
	return incidents, nil
}
