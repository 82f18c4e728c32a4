package repo

import (
	"context"
	"net/url"
	"strconv"
)

// SLOThreshold is one objective target over a rolling timeframe.
type SLOThreshold struct {
	Timeframe string  `json:"timeframe"`
	Target    float64 `json:"target"`
}

// SLO is a service level objective definition.
type SLO struct {
	ID          string         `json:"id"`
	Name        string         `json:"name"`
	Type        string         `json:"type"` // metric or monitor
	Description string         `json:"description"`
	Tags        []string       `json:"tags"`
	Thresholds  []SLOThreshold `json:"thresholds"`
}

// ListSLOs fetches SLO definitions, optionally narrowed by a search query
// and a tag filter.
func (c *Client) ListSLOs(ctx context.Context, search, tagsQuery string, limit int) ([]SLO, error) {
	if limit <= 0 {
		limit = 50
	}
	query := url.Values{}
	if search != "" {
		query.Set("query", search)
	}
	if tagsQuery != "" {
		query.Set("tags_query", tagsQuery)
	}
	query.Set("limit", strconv.Itoa(limit))

	var response struct {
		Data []SLO `json:"data"`
	}
	if err := c.getJSON(ctx, "/api/v1/slo", query, &response); err != nil {
		return nil, err
	}
	return response.Data, nil
}
