package models

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEntity(t *testing.T) {
	entity, err := ParseEntity("service:checkout")
	require.NoError(t, err)
	assert.Equal(t, EntityService, entity.Kind)
	assert.Equal(t, "checkout", entity.Name)
	assert.Equal(t, "service:checkout", entity.Tag())

	entity, err = ParseEntity("host:web-01")
	require.NoError(t, err)
	assert.Equal(t, EntityHost, entity.Kind)

	for _, bad := range []string{"", "checkout", "service:", "pod:web-01", ":name"} {
		_, err := ParseEntity(bad)
		assert.Error(t, err, bad)
	}
}

func TestEntityDomains(t *testing.T) {
	service := Entity{Kind: EntityService, Name: "checkout"}
	assert.Equal(t, []Domain{DomainMonitor, DomainTrace, DomainLog}, service.Domains())

	host := Entity{Kind: EntityHost, Name: "web-01"}
	assert.Equal(t, []Domain{DomainMonitor, DomainHostMetric}, host.Domains())
}

func TestDomainOrderIsStable(t *testing.T) {
	// Timeline tie-breaking depends on this ordering.
	assert.Less(t, DomainMonitor, DomainTrace)
	assert.Less(t, DomainTrace, DomainLog)
	assert.Less(t, DomainLog, DomainHostMetric)
	assert.Equal(t, []Domain{DomainMonitor, DomainTrace, DomainLog, DomainHostMetric}, AllDomains)
}

func TestParseDomain(t *testing.T) {
	cases := map[string]Domain{
		"monitor":     DomainMonitor,
		"monitors":    DomainMonitor,
		"Trace":       DomainTrace,
		"logs":        DomainLog,
		"host_metric": DomainHostMetric,
		"hosts":       DomainHostMetric,
	}
	for input, want := range cases {
		got, err := ParseDomain(input)
		require.NoError(t, err, input)
		assert.Equal(t, want, got)
	}

	_, err := ParseDomain("metrics")
	assert.Error(t, err)
}

func TestNewTimeWindow(t *testing.T) {
	start := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

	w, err := NewTimeWindow(start, start.Add(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, time.Hour, w.Duration())

	_, err = NewTimeWindow(start, start)
	assert.Error(t, err, "empty interval")

	_, err = NewTimeWindow(start.Add(time.Hour), start)
	assert.Error(t, err, "reversed interval")
}

func TestTimeWindowContainsIsHalfOpen(t *testing.T) {
	start := time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)
	w, err := NewTimeWindow(start, start.Add(time.Hour))
	require.NoError(t, err)

	assert.True(t, w.Contains(start), "start is inclusive")
	assert.True(t, w.Contains(start.Add(30*time.Minute)))
	assert.False(t, w.Contains(start.Add(time.Hour)), "end is exclusive")
	assert.False(t, w.Contains(start.Add(-time.Second)))
}

func TestTagSetOperations(t *testing.T) {
	set := NewTagSet("service:checkout", "env:prod", "", "  ")
	assert.Len(t, set, 2, "empty tags are skipped")
	assert.True(t, set.Has("env:prod"))
	assert.False(t, set.Has("host:web-01"))

	other := NewTagSet("env:prod", "team:payments")
	assert.True(t, set.Intersects(other))
	assert.False(t, set.Intersects(NewTagSet("host:web-01")))
	assert.False(t, set.Intersects(nil))

	merged := set.Union(other)
	assert.Len(t, merged, 3)
	assert.Len(t, set, 2, "union never mutates the receiver")

	assert.Equal(t, []string{"env:prod", "service:checkout"}, set.Sorted())
}

func TestFetchOutcomeHealthy(t *testing.T) {
	assert.True(t, FetchOutcome{Records: nil}.Healthy(), "empty results are healthy")
	assert.False(t, FetchOutcome{Err: errors.New("boom")}.Healthy())
}

func TestReportFailedDistinguishesEmptyFromErrored(t *testing.T) {
	healthy := &InvestigationReport{Outcomes: map[Domain]FetchOutcome{
		DomainMonitor: {Domain: DomainMonitor},
		DomainLog:     {Domain: DomainLog, Err: errors.New("boom")},
	}}
	assert.False(t, healthy.Failed(), "one healthy domain keeps the report alive")
	assert.Equal(t, []Domain{DomainLog}, healthy.FailedDomains())

	allFailed := &InvestigationReport{Outcomes: map[Domain]FetchOutcome{
		DomainMonitor: {Domain: DomainMonitor, Err: errors.New("boom")},
		DomainLog:     {Domain: DomainLog, Err: errors.New("boom")},
	}}
	assert.True(t, allFailed.Failed())
	assert.Equal(t, []Domain{DomainMonitor, DomainLog}, allFailed.FailedDomains(), "enum order")

	empty := &InvestigationReport{}
	assert.False(t, empty.Failed(), "no requested domains is not a failure")
}
