package models

import (
	"fmt"
	"sort"
	"strings"
)

// Domain enumerates telemetry categories. The declaration order is
// significant: it is the tie-break for timeline records sharing a timestamp.
type Domain int

const (
	DomainMonitor Domain = iota
	DomainTrace
	DomainLog
	DomainHostMetric
)

// AllDomains lists every domain in enum order.
var AllDomains = []Domain{DomainMonitor, DomainTrace, DomainLog, DomainHostMetric}

func (d Domain) String() string {
	switch d {
	case DomainMonitor:
		return "monitor"
	case DomainTrace:
		return "trace"
	case DomainLog:
		return "log"
	case DomainHostMetric:
		return "host_metric"
	}
	return fmt.Sprintf("domain(%d)", int(d))
}

// ParseDomain converts a textual domain name into a Domain.
func ParseDomain(value string) (Domain, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "monitor", "monitors":
		return DomainMonitor, nil
	case "trace", "traces":
		return DomainTrace, nil
	case "log", "logs":
		return DomainLog, nil
	case "host_metric", "host-metrics", "hosts":
		return DomainHostMetric, nil
	}
	return 0, fmt.Errorf("unknown domain %q", value)
}

// Severity captures impact as an ordinal so records can be compared across
// domains. SeverityNone marks records that carry no severity at all.
type Severity int

const (
	SeverityNone Severity = iota
	SeverityInfo
	SeverityLow
	SeverityMedium
	SeverityHigh
	SeverityCritical
)

func (s Severity) String() string {
	switch s {
	case SeverityInfo:
		return "info"
	case SeverityLow:
		return "low"
	case SeverityMedium:
		return "medium"
	case SeverityHigh:
		return "high"
	case SeverityCritical:
		return "critical"
	}
	return "none"
}

// TagSet holds identity tags in "key:value" form.
type TagSet map[string]struct{}

// NewTagSet builds a TagSet from the provided tags, skipping empties.
func NewTagSet(tags ...string) TagSet {
	set := make(TagSet, len(tags))
	for _, tag := range tags {
		tag = strings.TrimSpace(tag)
		if tag == "" {
			continue
		}
		set[tag] = struct{}{}
	}
	return set
}

// Has reports whether the tag is present.
func (t TagSet) Has(tag string) bool {
	_, ok := t[tag]
	return ok
}

// Intersects reports whether the two sets share at least one tag.
func (t TagSet) Intersects(other TagSet) bool {
	small, large := t, other
	if len(large) < len(small) {
		small, large = large, small
	}
	for tag := range small {
		if _, ok := large[tag]; ok {
			return true
		}
	}
	return false
}

// Union merges other into a copy of t and returns the copy.
func (t TagSet) Union(other TagSet) TagSet {
	merged := make(TagSet, len(t)+len(other))
	for tag := range t {
		merged[tag] = struct{}{}
	}
	for tag := range other {
		merged[tag] = struct{}{}
	}
	return merged
}

// Sorted returns the tags in lexical order for deterministic output.
func (t TagSet) Sorted() []string {
	tags := make([]string, 0, len(t))
	for tag := range t {
		tags = append(tags, tag)
	}
	sort.Strings(tags)
	return tags
}
