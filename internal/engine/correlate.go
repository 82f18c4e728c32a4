package engine

import (
	"time"

	"github.com/obskit/obsctl/internal/models"
)

// DefaultGapTolerance is the maximum silence between related records before
// a new group opens.
const DefaultGapTolerance = 5 * time.Minute

// Correlator clusters timeline records into incident groups by tag overlap
// and time proximity. The pass is greedy and single-direction: groups are
// never merged retroactively. The investigation is advisory, so a simple
// deterministic clustering beats an optimal one here.
type Correlator struct {
	GapTolerance time.Duration
}

type openGroup struct {
	anchor    models.TagSet
	span      models.TimeWindow
	members   []models.DomainRecord
	lastTouch int
	open      bool
}

// Correlate walks the timeline (which must be sorted ascending) and returns
// groups in discovery order. A record joins the most recently touched open
// group whose anchor tags intersect its own and whose span end is within
// the gap tolerance; joining extends the span and unions the tags.
func (c Correlator) Correlate(timeline []models.DomainRecord) []models.CorrelatedGroup {
	gap := c.GapTolerance
	if gap <= 0 {
		gap = DefaultGapTolerance
	}

	groups := make([]*openGroup, 0)
	for seq, record := range timeline {
		// The timeline is ascending, so a group that fell out of the gap
		// window can never qualify again.
		for _, g := range groups {
			if g.open && g.span.End.Add(gap).Before(record.Timestamp) {
				g.open = false
			}
		}

		var best *openGroup
		for _, g := range groups {
			if !g.open || !g.anchor.Intersects(record.Tags) {
				continue
			}
			if best == nil || g.lastTouch > best.lastTouch {
				best = g
			}
		}

		if best == nil {
			groups = append(groups, &openGroup{
				anchor:    record.Tags.Union(nil),
				span:      models.TimeWindow{Start: record.Timestamp, End: record.Timestamp},
				members:   []models.DomainRecord{record},
				lastTouch: seq,
				open:      true,
			})
			continue
		}

		if record.Timestamp.After(best.span.End) {
			best.span.End = record.Timestamp
		}
		best.anchor = best.anchor.Union(record.Tags)
		best.members = append(best.members, record)
		best.lastTouch = seq
	}

	result := make([]models.CorrelatedGroup, 0, len(groups))
	for _, g := range groups {
		result = append(result, models.CorrelatedGroup{
			AnchorTags: g.anchor,
			Span:       g.span,
			Members:    g.members,
		})
	}
	return result
}
