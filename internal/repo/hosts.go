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

// Host is a native host inventory item with its latest metric snapshot.
type Host struct {
	Name         string      `json:"name"`
	Up           bool        `json:"up"`
	Tags         []string    `json:"tags"`
	Metrics      HostMetrics `json:"metrics"`
	LastReported time.Time   `json:"last_reported"`
}

// HostMetrics is the point-in-time resource snapshot attached to a host.
type HostMetrics struct {
	CPUPercent float64 `json:"cpu"`
	IOWait     float64 `json:"iowait"`
	Load15     float64 `json:"load"`
}

// ListHosts fetches the host inventory matching filter, reporting since the
// window start. Inventory rarely changes mid-invocation, so the lookup goes
// through the read-through cache.
func (c *Client) ListHosts(ctx context.Context, filter string, w models.TimeWindow) ([]Host, error) {
	query := url.Values{}
	if filter != "" {
		query.Set("filter", filter)
	}
	query.Set("from", strconv.FormatInt(w.Start.Unix(), 10))

	var response struct {
		Hosts []Host `json:"host_list"`
	}
	if err := c.cachedGetJSON(ctx, "/api/v1/hosts", query, &response); err != nil {
		return nil, err
	}
	return response.Hosts, nil
}

// HostsAdapter exposes host metric snapshots as normalized records. Host
// metrics only apply to host entities.
type HostsAdapter struct {
	client *Client
}

// NewHostsAdapter wires the adapter to a platform client.
func NewHostsAdapter(client *Client) *HostsAdapter {
	return &HostsAdapter{client: client}
}

// Domain identifies the adapter.
func (a *HostsAdapter) Domain() models.Domain { return models.DomainHostMetric }

// AppliesTo restricts host metrics to host entities.
func (a *HostsAdapter) AppliesTo(entity models.Entity) bool {
	return entity.Kind == models.EntityHost
}

// Fetch returns one snapshot record per matching host, ascending by report
// time.
func (a *HostsAdapter) Fetch(ctx context.Context, entity models.Entity, w models.TimeWindow) ([]models.DomainRecord, error) {
	hosts, err := a.client.ListHosts(ctx, entity.Tag(), w)
	if err != nil {
		return nil, err
	}

	records := make([]models.DomainRecord, 0, len(hosts))
	for _, host := range hosts {
		if !w.Contains(host.LastReported) {
			continue
		}
		tags := models.NewTagSet(host.Tags...)
		tags = tags.Union(models.NewTagSet("host:" + host.Name))
		records = append(records, models.DomainRecord{
			Domain:    models.DomainHostMetric,
			Timestamp: host.LastReported,
			Tags:      tags,
			Severity:  hostSeverity(host),
			Summary:   fmt.Sprintf("%s cpu %.1f%% iowait %.1f%% load15 %.2f", host.Name, host.Metrics.CPUPercent, host.Metrics.IOWait, host.Metrics.Load15),
			Payload:   host,
		})
	}

	sort.SliceStable(records, func(i, j int) bool {
		return records[i].Timestamp.Before(records[j].Timestamp)
	})
	return records, nil
}

func hostSeverity(host Host) models.Severity {
	switch {
	case !host.Up:
		return models.SeverityCritical
	case host.Metrics.CPUPercent >= 95 || host.Metrics.IOWait >= 50:
		return models.SeverityHigh
	case host.Metrics.CPUPercent >= 80 || host.Metrics.IOWait >= 25:
		return models.SeverityMedium
	}
	return models.SeverityInfo
}
