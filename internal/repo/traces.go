package repo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/obskit/obsctl/internal/models"
)

// slowSpanThreshold marks a span as notable even when its status is healthy.
const slowSpanThreshold = 500 * time.Millisecond

// TraceSpan is a native span event from the trace search API.
type TraceSpan struct {
	TraceID    string    `json:"trace_id"`
	SpanID     string    `json:"span_id"`
	Service    string    `json:"service"`
	Resource   string    `json:"resource"`
	DurationMs float64   `json:"duration_ms"`
	Status     string    `json:"status"`
	Start      time.Time `json:"start"`
	Tags       []string  `json:"tags"`
}

// Duration converts the wire format milliseconds.
func (s TraceSpan) Duration() time.Duration {
	return time.Duration(s.DurationMs * float64(time.Millisecond))
}

// SearchTraces queries the span event search API.
func (c *Client) SearchTraces(ctx context.Context, query string, w models.TimeWindow, limit int) ([]TraceSpan, error) {
	if limit <= 0 {
		limit = 100
	}
	payload := map[string]any{
		"query": query,
		"from":  w.Start.Format(time.RFC3339),
		"to":    w.End.Format(time.RFC3339),
		"limit": limit,
	}

	var response struct {
		Spans []TraceSpan `json:"spans"`
	}
	if err := c.postJSON(ctx, "/api/v2/traces/search", payload, &response); err != nil {
		return nil, err
	}
	return response.Spans, nil
}

// TracesAdapter exposes slow and failed spans as normalized records. Traces
// are keyed by service, so the adapter only applies to service entities.
type TracesAdapter struct {
	client *Client
	limit  int
}

// NewTracesAdapter wires the adapter to a platform client.
func NewTracesAdapter(client *Client) *TracesAdapter {
	return &TracesAdapter{client: client, limit: 100}
}

// Domain identifies the adapter.
func (a *TracesAdapter) Domain() models.Domain { return models.DomainTrace }

// AppliesTo restricts traces to service entities.
func (a *TracesAdapter) AppliesTo(entity models.Entity) bool {
	return entity.Kind == models.EntityService
}

// Fetch returns trace records for the service, ascending by span start.
func (a *TracesAdapter) Fetch(ctx context.Context, entity models.Entity, w models.TimeWindow) ([]models.DomainRecord, error) {
	spans, err := a.client.SearchTraces(ctx, entity.Tag(), w, a.limit)
	if err != nil {
		return nil, err
	}

	records := make([]models.DomainRecord, 0, len(spans))
	for _, span := range spans {
		if !w.Contains(span.Start) {
			continue
		}
		tags := models.NewTagSet(span.Tags...)
		tags = tags.Union(models.NewTagSet("service:" + span.Service))
		records = append(records, models.DomainRecord{
			Domain:    models.DomainTrace,
			Timestamp: span.Start,
			Tags:      tags,
			Severity:  spanSeverity(span),
			Summary:   fmt.Sprintf("%s (%s)", span.Resource, span.Duration()),
			Payload:   span,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func spanSeverity(span TraceSpan) models.Severity {
	if span.Status == "error" {
		return models.SeverityHigh
	}
	if span.Duration() >= slowSpanThreshold {
		return models.SeverityMedium
	}
	return models.SeverityInfo
}
