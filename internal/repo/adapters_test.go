package repo

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obskit/obsctl/internal/cache"
	"github.com/obskit/obsctl/internal/models"
)

func TestMonitorsAdapterMapsRecords(t *testing.T) {
	w := hourWindow(t)
	inWindow := winStart.Add(10 * time.Minute).Format(time.RFC3339)
	before := winStart.Add(-time.Minute).Format(time.RFC3339)

	var captured *http.Request
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, fmt.Sprintf(`{"monitors":[
			{"id":1,"name":"checkout error rate","overall_state":"Alert","priority":2,
			 "tags":["env:prod"],"overall_state_modified":%q},
			{"id":2,"name":"stale alert","overall_state":"Alert","priority":1,
			 "tags":[],"overall_state_modified":%q}
		]}`, inWindow, before)), nil
	})

	adapter := NewMonitorsAdapter(client)
	entity := models.Entity{Kind: models.EntityService, Name: "checkout"}

	records, err := adapter.Fetch(context.Background(), entity, w)
	require.NoError(t, err)

	require.NotNil(t, captured)
	query := captured.URL.Query()
	assert.Equal(t, "service:checkout", query.Get("monitor_tags"))
	assert.Equal(t, fmt.Sprint(w.Start.Unix()), query.Get("from"))

	require.Len(t, records, 1, "records outside the window are dropped")
	rec := records[0]
	assert.Equal(t, models.DomainMonitor, rec.Domain)
	assert.Equal(t, models.SeverityHigh, rec.Severity, "priority 2 maps to high")
	assert.True(t, rec.Tags.Has("env:prod"))
	assert.True(t, rec.Tags.Has("service:checkout"), "the entity tag is always attached")
	assert.Contains(t, rec.Summary, "checkout error rate is Alert")
}

func TestMonitorSeverityFallsBackToState(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, monitorSeverity(Monitor{Priority: 1}))
	assert.Equal(t, models.SeverityInfo, monitorSeverity(Monitor{Priority: 5}))
	assert.Equal(t, models.SeverityHigh, monitorSeverity(Monitor{State: "Alert"}))
	assert.Equal(t, models.SeverityMedium, monitorSeverity(Monitor{State: "Warn"}))
	assert.Equal(t, models.SeverityInfo, monitorSeverity(Monitor{State: "OK"}))
}

func TestTracesAdapterMapsAndSorts(t *testing.T) {
	w := hourWindow(t)
	later := winStart.Add(20 * time.Minute).Format(time.RFC3339)
	earlier := winStart.Add(5 * time.Minute).Format(time.RFC3339)

	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/v2/traces/search", r.URL.Path)
		return jsonResponse(http.StatusOK, fmt.Sprintf(`{"spans":[
			{"trace_id":"t1","span_id":"s1","service":"checkout","resource":"POST /pay",
			 "duration_ms":820,"status":"ok","start":%q,"tags":["env:prod"]},
			{"trace_id":"t2","span_id":"s2","service":"checkout","resource":"GET /cart",
			 "duration_ms":12,"status":"error","start":%q,"tags":[]}
		]}`, later, earlier)), nil
	})

	adapter := NewTracesAdapter(client)
	entity := models.Entity{Kind: models.EntityService, Name: "checkout"}

	assert.True(t, adapter.AppliesTo(entity))
	assert.False(t, adapter.AppliesTo(models.Entity{Kind: models.EntityHost, Name: "web-01"}))

	records, err := adapter.Fetch(context.Background(), entity, w)
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.True(t, records[0].Timestamp.Before(records[1].Timestamp), "ascending by span start")
	assert.Equal(t, models.SeverityHigh, records[0].Severity, "error status outranks duration")
	assert.Equal(t, models.SeverityMedium, records[1].Severity, "820ms crosses the slow threshold")
	assert.True(t, records[1].Tags.Has("service:checkout"))
}

func TestLogsAdapterMapsRecords(t *testing.T) {
	w := hourWindow(t)
	ts := winStart.Add(15 * time.Minute).Format(time.RFC3339)

	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		assert.Equal(t, "/api/v2/logs/search", r.URL.Path)
		return jsonResponse(http.StatusOK, fmt.Sprintf(`{"events":[
			{"timestamp":%q,"status":"error","service":"checkout","host":"web-01",
			 "message":"payment gateway timeout","tags":["env:prod"]}
		]}`, ts)), nil
	})

	adapter := NewLogsAdapter(client)
	entity := models.Entity{Kind: models.EntityService, Name: "checkout"}

	records, err := adapter.Fetch(context.Background(), entity, w)
	require.NoError(t, err)
	require.Len(t, records, 1)

	rec := records[0]
	assert.Equal(t, models.SeverityHigh, rec.Severity)
	assert.Equal(t, "payment gateway timeout", rec.Summary)
	assert.True(t, rec.Tags.Has("service:checkout"))
	assert.True(t, rec.Tags.Has("host:web-01"), "the originating host becomes a correlation tag")
}

func TestLogSeverityMapping(t *testing.T) {
	assert.Equal(t, models.SeverityCritical, logSeverity("critical"))
	assert.Equal(t, models.SeverityHigh, logSeverity("error"))
	assert.Equal(t, models.SeverityMedium, logSeverity("warning"))
	assert.Equal(t, models.SeverityInfo, logSeverity("info"))
	assert.Equal(t, models.SeverityNone, logSeverity("unknown"))
}

func TestHostsAdapterMapsSeverity(t *testing.T) {
	w := hourWindow(t)
	ts := winStart.Add(time.Minute).Format(time.RFC3339)

	client := newTestClient(func(*http.Request) (*http.Response, error) {
		return jsonResponse(http.StatusOK, fmt.Sprintf(`{"host_list":[
			{"name":"web-01","up":true,"tags":["env:prod"],
			 "metrics":{"cpu":97.5,"iowait":4,"load":8.1},"last_reported":%q},
			{"name":"web-02","up":false,"tags":[],
			 "metrics":{"cpu":0,"iowait":0,"load":0},"last_reported":%q}
		]}`, ts, ts)), nil
	})

	adapter := NewHostsAdapter(client)
	entity := models.Entity{Kind: models.EntityHost, Name: "web-01"}

	assert.True(t, adapter.AppliesTo(entity))
	assert.False(t, adapter.AppliesTo(models.Entity{Kind: models.EntityService, Name: "checkout"}))

	records, err := adapter.Fetch(context.Background(), entity, w)
	require.NoError(t, err)
	require.Len(t, records, 2)

	bySummaryHost := map[string]models.DomainRecord{}
	for _, rec := range records {
		host := rec.Payload.(Host)
		bySummaryHost[host.Name] = rec
	}
	assert.Equal(t, models.SeverityHigh, bySummaryHost["web-01"].Severity, "cpu over 95%")
	assert.Equal(t, models.SeverityCritical, bySummaryHost["web-02"].Severity, "down host")
	assert.True(t, bySummaryHost["web-01"].Tags.Has("host:web-01"))
}

func TestListIncidentsFlattensEnvelope(t *testing.T) {
	var captured *http.Request
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, `{"data":[
			{"id":"inc-1","type":"incidents","attributes":{
				"title":"checkout outage","severity":"SEV-2","status":"active",
				"created":"2026-03-14T11:50:00Z","modified":"2026-03-14T12:05:00Z"}},
			{"id":"inc-2","type":"incidents","attributes":{
				"title":"stale cache","severity":"SEV-4","status":"resolved",
				"created":"2026-03-13T08:00:00Z","modified":"2026-03-13T09:00:00Z"}}
		]}`), nil
	})

	incidents, err := client.ListIncidents(context.Background(), "active", 25)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/api/v2/incidents", captured.URL.Path)
	query := captured.URL.Query()
	assert.Equal(t, "active", query.Get("filter[status]"))
	assert.Equal(t, "25", query.Get("page[size]"))

	require.Len(t, incidents, 2)
	assert.Equal(t, "inc-1", incidents[0].ID)
	assert.Equal(t, "checkout outage", incidents[0].Title)
	assert.Equal(t, "SEV-2", incidents[0].Severity)
	assert.Equal(t, "active", incidents[0].Status)
	assert.Equal(t, time.Date(2026, time.March, 14, 11, 50, 0, 0, time.UTC), incidents[0].Created)
	assert.Equal(t, "resolved", incidents[1].Status)
}

func TestListSLOsMapsDefinitions(t *testing.T) {
	var captured *http.Request
	client := newTestClient(func(r *http.Request) (*http.Response, error) {
		captured = r
		return jsonResponse(http.StatusOK, `{"data":[
			{"id":"slo-1","name":"checkout availability","type":"monitor",
			 "tags":["service:checkout","env:prod"],
			 "thresholds":[{"timeframe":"30d","target":99.9},{"timeframe":"7d","target":99.95}]}
		]}`), nil
	})

	slos, err := client.ListSLOs(context.Background(), "checkout", "service:checkout", 0)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, "/api/v1/slo", captured.URL.Path)
	query := captured.URL.Query()
	assert.Equal(t, "checkout", query.Get("query"))
	assert.Equal(t, "service:checkout", query.Get("tags_query"))
	assert.Equal(t, "50", query.Get("limit"), "zero limit falls back to the default")

	require.Len(t, slos, 1)
	assert.Equal(t, "monitor", slos[0].Type)
	require.Len(t, slos[0].Thresholds, 2)
	assert.Equal(t, "30d", slos[0].Thresholds[0].Timeframe)
	assert.Equal(t, 99.95, slos[0].Thresholds[1].Target)
}

func TestListHostsReadsThroughCache(t *testing.T) {
	w := hourWindow(t)
	ts := winStart.Add(time.Minute).Format(time.RFC3339)

	upstream := 0
	client := newTestClient(func(*http.Request) (*http.Response, error) {
		upstream++
		return jsonResponse(http.StatusOK, fmt.Sprintf(`{"host_list":[
			{"name":"web-01","up":true,"tags":[],"metrics":{},"last_reported":%q}
		]}`, ts)), nil
	})
	client.cache = cache.NewLRUProvider(cache.LRUConfig{Size: 8, TTL: time.Minute})

	for i := 0; i < 3; i++ {
		hosts, err := client.ListHosts(context.Background(), "host:web-01", w)
		require.NoError(t, err)
		require.Len(t, hosts, 1)
		assert.Equal(t, "web-01", hosts[0].Name)
	}
	assert.Equal(t, 1, upstream, "repeated inventory lookups hit the cache")
}
