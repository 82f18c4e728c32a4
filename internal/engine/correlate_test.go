package engine

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/obskit/obsctl/internal/models"
)

var t0 = time.Date(2026, time.March, 14, 12, 0, 0, 0, time.UTC)

func record(domain models.Domain, offset time.Duration, tags ...string) models.DomainRecord {
	return models.DomainRecord{
		Domain:    domain,
		Timestamp: t0.Add(offset),
		Tags:      models.NewTagSet(tags...),
		Summary:   domain.String(),
	}
}

func TestCorrelateSharedTagWithinGap(t *testing.T) {
	c := Correlator{GapTolerance: 5 * time.Minute}

	groups := c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainLog, 2*time.Minute, "service:checkout", "env:prod"),
	})

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 2)
	assert.True(t, groups[0].AnchorTags.Has("env:prod"), "joining unions the record's tags into the anchor")
	assert.Equal(t, t0, groups[0].Span.Start)
	assert.Equal(t, t0.Add(2*time.Minute), groups[0].Span.End)
}

func TestCorrelateSharedTagBeyondGapSplits(t *testing.T) {
	c := Correlator{GapTolerance: 5 * time.Minute}

	groups := c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainLog, 6*time.Minute, "service:checkout"),
	})

	require.Len(t, groups, 2)
}

func TestCorrelateBoundaryExactlyAtGap(t *testing.T) {
	c := Correlator{GapTolerance: 5 * time.Minute}

	// span.End + gap >= ts joins; one second past it does not.
	groups := c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainLog, 5*time.Minute, "service:checkout"),
	})
	require.Len(t, groups, 1)

	groups = c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainLog, 5*time.Minute+time.Second, "service:checkout"),
	})
	require.Len(t, groups, 2)
}

func TestCorrelateNoTagOverlapOpensNewGroup(t *testing.T) {
	c := Correlator{GapTolerance: 5 * time.Minute}

	groups := c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainLog, time.Minute, "service:payments"),
	})

	require.Len(t, groups, 2)
	assert.True(t, groups[0].AnchorTags.Has("service:checkout"))
	assert.True(t, groups[1].AnchorTags.Has("service:payments"))
}

func TestCorrelatePrefersMostRecentlyTouchedGroup(t *testing.T) {
	c := Correlator{GapTolerance: 10 * time.Minute}

	// Both groups share env:prod with the final record; the payments group
	// was touched last and must win.
	groups := c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout", "env:prod"),
		record(models.DomainMonitor, time.Minute, "service:payments"),
		record(models.DomainTrace, 2*time.Minute, "service:payments", "env:prod"),
		record(models.DomainLog, 3*time.Minute, "env:prod"),
	})

	require.Len(t, groups, 2)
	assert.Len(t, groups[0].Members, 1)
	assert.Len(t, groups[1].Members, 3)
}

func TestCorrelateChainExtendsGroupLife(t *testing.T) {
	c := Correlator{GapTolerance: 5 * time.Minute}

	// Each record is within gap of the previous one even though the last is
	// far from the first; the chain keeps one group alive.
	groups := c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainLog, 4*time.Minute, "service:checkout"),
		record(models.DomainLog, 8*time.Minute, "service:checkout"),
		record(models.DomainLog, 12*time.Minute, "service:checkout"),
	})

	require.Len(t, groups, 1)
	assert.Len(t, groups[0].Members, 4)
	assert.Equal(t, t0.Add(12*time.Minute), groups[0].Span.End)
}

func TestCorrelateGroupsNeverMergeRetroactively(t *testing.T) {
	c := Correlator{GapTolerance: 5 * time.Minute}

	// The bridge record shares tags with both earlier groups; it joins one
	// group, the other stays separate.
	groups := c.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainMonitor, time.Minute, "service:payments"),
		record(models.DomainLog, 2*time.Minute, "service:checkout", "service:payments"),
	})

	require.Len(t, groups, 2)
}

func TestCorrelateMembersSatisfyInvariants(t *testing.T) {
	c := Correlator{GapTolerance: 5 * time.Minute}

	timeline := []models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainTrace, time.Minute, "service:checkout", "env:prod"),
		record(models.DomainLog, 30*time.Minute, "service:checkout"),
		record(models.DomainLog, 31*time.Minute, "host:web-01"),
	}
	groups := c.Correlate(timeline)

	total := 0
	for _, group := range groups {
		total += len(group.Members)
		for _, member := range group.Members {
			assert.True(t, member.Tags.Intersects(group.AnchorTags),
				"every member's tags intersect the anchor")
			assert.False(t, member.Timestamp.Before(group.Span.Start))
			assert.False(t, member.Timestamp.After(group.Span.End))
		}
	}
	assert.Equal(t, len(timeline), total, "every record lands in exactly one group")
}

func TestCorrelateEmptyTimeline(t *testing.T) {
	groups := Correlator{}.Correlate(nil)
	assert.Empty(t, groups)
}

func TestCorrelateDefaultGap(t *testing.T) {
	// Zero tolerance falls back to the package default rather than
	// splitting everything.
	groups := Correlator{}.Correlate([]models.DomainRecord{
		record(models.DomainMonitor, 0, "service:checkout"),
		record(models.DomainLog, time.Minute, "service:checkout"),
	})
	require.Len(t, groups, 1)
}
