package container

import (
	"slices"
	"time"
)

// HealthStatus is the aggregate status of a container.
type HealthStatus string

const (
	// HealthStatusHealthy means no registered service has failed.
	HealthStatusHealthy HealthStatus = "healthy"
	// HealthStatusDegraded means at least one service failed to construct.
	HealthStatusDegraded HealthStatus = "degraded"
)

// ServiceHealth is the state of one registered identifier.
type ServiceHealth struct {
	ID           string        `json:"id"`
	State        State         `json:"state"`
	Dependencies []string      `json:"dependencies,omitempty"`
	Error        string        `json:"error,omitempty"`
	Duration     time.Duration `json:"duration_ns,omitempty"`
}

// HealthCounts aggregates ServiceHealth entries by state.
type HealthCounts struct {
	Registered int `json:"registered"`
	Resolved   int `json:"resolved"`
	Failed     int `json:"failed"`
	Pending    int `json:"pending"`
	Resolving  int `json:"resolving"`
}

// HealthRecord is an on-demand snapshot of the container. It is computed
// per call and never stored.
type HealthRecord struct {
	ContainerID string          `json:"container_id"`
	Version     string          `json:"version,omitempty"`
	Status      HealthStatus    `json:"status"`
	CheckedAt   time.Time       `json:"checked_at"`
	Counts      HealthCounts    `json:"counts"`
	Services    []ServiceHealth `json:"services"`
	// Missing lists declared dependencies that are not registered.
	Missing []string `json:"missing,omitempty"`
}

// Healthy reports whether no service has failed.
func (r HealthRecord) Healthy() bool {
	return r.Status == HealthStatusHealthy
}

// Service returns the entry for id.
func (r HealthRecord) Service(id string) (ServiceHealth, bool) {
	for _, s := range r.Services {
		if s.ID == id {
			return s, true
		}
	}
	return ServiceHealth{}, false
}

// HealthStatus builds a HealthRecord. It never runs a factory and never
// fails; construction errors are reported, not returned.
func (c *Container) HealthStatus() HealthRecord {
	c.mu.Lock()
	record := HealthRecord{
		ContainerID: c.id,
		Version:     c.version,
		Status:      HealthStatusHealthy,
		CheckedAt:   time.Now().UTC(),
		Services:    make([]ServiceHealth, 0, len(c.entries)),
	}

	missing := make(map[string]struct{})
	for _, id := range c.sortedIDs() {
		e := c.entries[id]
		s := ServiceHealth{
			ID:           id,
			State:        e.state,
			Dependencies: slices.Clone(e.deps),
			Duration:     e.took,
		}

		record.Counts.Registered++
		switch e.state {
		case StateResolved:
			record.Counts.Resolved++
		case StateFailed:
			record.Counts.Failed++
			record.Status = HealthStatusDegraded
			if e.err != nil {
				s.Error = e.err.Error()
			}
		case StateResolving:
			record.Counts.Resolving++
		default:
			record.Counts.Pending++
		}

		for _, dep := range e.deps {
			if _, ok := c.entries[dep]; !ok {
				missing[dep] = struct{}{}
			}
		}
		record.Services = append(record.Services, s)
	}
	c.mu.Unlock()

	for dep := range missing {
		record.Missing = append(record.Missing, dep)
	}
	slices.Sort(record.Missing)

	c.metrics.setStates(record.Counts)
	return record
}
