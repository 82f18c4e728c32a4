package models

import (
	"fmt"
	"strings"
)

// EntityKind discriminates investigation subjects.
type EntityKind string

const (
	EntityService EntityKind = "service"
	EntityHost    EntityKind = "host"
)

// Entity is the subject of an investigation and the seed of every
// correlation key.
type Entity struct {
	Kind EntityKind
	Name string
}

// ParseEntity accepts "service:NAME" or "host:NAME".
func ParseEntity(value string) (Entity, error) {
	kind, name, ok := strings.Cut(strings.TrimSpace(value), ":")
	if !ok || name == "" {
		return Entity{}, fmt.Errorf("entity must look like service:NAME or host:NAME, got %q", value)
	}
	switch EntityKind(strings.ToLower(kind)) {
	case EntityService:
		return Entity{Kind: EntityService, Name: name}, nil
	case EntityHost:
		return Entity{Kind: EntityHost, Name: name}, nil
	}
	return Entity{}, fmt.Errorf("unknown entity kind %q", kind)
}

// Tag returns the identity tag carried by records describing this entity.
func (e Entity) Tag() string {
	return string(e.Kind) + ":" + e.Name
}

func (e Entity) String() string { return e.Tag() }

// Domains returns the telemetry domains applicable to the entity kind.
// Monitors match both kinds via tag scoping; traces and logs are keyed by
// service, host metrics by host.
func (e Entity) Domains() []Domain {
	switch e.Kind {
	case EntityHost:
		return []Domain{DomainMonitor, DomainHostMetric}
	default:
		return []Domain{DomainMonitor, DomainTrace, DomainLog}
	}
}
