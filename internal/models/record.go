package models

import (
	"fmt"
	"time"
)

// TimeWindow bounds a query in a half-open interval [Start, End).
type TimeWindow struct {
	Start time.Time
	End   time.Time
}

// NewTimeWindow validates that the interval is non-empty.
func NewTimeWindow(start, end time.Time) (TimeWindow, error) {
	if !start.Before(end) {
		return TimeWindow{}, fmt.Errorf("window start %s must precede end %s", start.Format(time.RFC3339), end.Format(time.RFC3339))
	}
	return TimeWindow{Start: start, End: end}, nil
}

// Contains reports whether ts falls inside the half-open interval.
func (w TimeWindow) Contains(ts time.Time) bool {
	return !ts.Before(w.Start) && ts.Before(w.End)
}

// Duration returns End - Start.
func (w TimeWindow) Duration() time.Duration {
	return w.End.Sub(w.Start)
}

func (w TimeWindow) String() string {
	return fmt.Sprintf("[%s, %s)", w.Start.Format(time.RFC3339), w.End.Format(time.RFC3339))
}

// DomainRecord is the normalized envelope for anything fetched from a
// telemetry domain. Adapters map native payloads into this shape before the
// engine sees them; Payload keeps the native item for rendering.
type DomainRecord struct {
	Domain    Domain
	Timestamp time.Time
	Tags      TagSet
	Severity  Severity
	Summary   string
	Payload   any
}

// FetchOutcome is the per-domain result of one orchestrator pass. Exactly
// one of Records (possibly empty) or a terminal Err is meaningful; a
// transient failure that exhausted its retry budget surfaces here as Err,
// never silently as an empty record set.
type FetchOutcome struct {
	Domain      Domain
	Records     []DomainRecord
	Err         error
	RetriesUsed int
}

// Healthy reports whether the fetch completed without a terminal error.
func (o FetchOutcome) Healthy() bool { return o.Err == nil }
