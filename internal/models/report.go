package models

import "time"

// CorrelatedGroup clusters records believed to describe one incident.
// Every member's tags intersect AnchorTags and every member's timestamp
// falls within Span, which tracks the window used to form the group.
type CorrelatedGroup struct {
	AnchorTags TagSet
	Span       TimeWindow
	Members    []DomainRecord
}

// InvestigationReport is the engine's sole output artifact. It is built
// fresh per invocation and never persisted.
type InvestigationReport struct {
	ID        string
	Entity    Entity
	Window    TimeWindow
	Outcomes  map[Domain]FetchOutcome
	Timeline  []DomainRecord
	Groups    []CorrelatedGroup
	CreatedAt time.Time
}

// RecordCount returns the number of records across all domains.
func (r *InvestigationReport) RecordCount() int {
	return len(r.Timeline)
}

// Failed reports whether every requested domain ended in a terminal error.
// A report with zero records but healthy domains is not a failure; the two
// cases must stay distinguishable for callers.
func (r *InvestigationReport) Failed() bool {
	if len(r.Outcomes) == 0 {
		return false
	}
	for _, outcome := range r.Outcomes {
		if outcome.Healthy() {
			return false
		}
	}
	return true
}

// FailedDomains lists the domains that ended in a terminal error, in enum
// order.
func (r *InvestigationReport) FailedDomains() []Domain {
	failed := make([]Domain, 0, len(r.Outcomes))
	for _, domain := range AllDomains {
		if outcome, ok := r.Outcomes[domain]; ok && !outcome.Healthy() {
			failed = append(failed, domain)
		}
	}
	return failed
}
