package services

import (
	"errors"
	"maps"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Severity classifies audit events.
type Severity string

const (
	SeverityInfo     Severity = "INFO"
	SeverityWarning  Severity = "WARNING"
	SeverityCritical Severity = "CRITICAL"
)

// AuditEvent is one recorded action.
type AuditEvent struct {
	ID       string
	Action   string
	Entity   string
	Severity Severity
	Details  map[string]string
	At       time.Time
}

// AuditReport summarizes events since a point in time.
type AuditReport struct {
	Since      time.Time
	Total      int
	BySeverity map[Severity]int
	ByAction   map[string]int
}

// AuditProtocolService keeps an in-memory audit trail. Events are buffered
// and moved to the trail in batches of flushSize.
type AuditProtocolService struct {
	mu        sync.Mutex
	log       *zap.Logger
	flushSize int
	pending   []AuditEvent
	trail     []AuditEvent
	now       func() time.Time
}

// NewAuditProtocol creates the audit service. flushSize below 1 flushes every event.
func NewAuditProtocol(logger Logger, flushSize int) *AuditProtocolService {
	if flushSize < 1 {
		flushSize = 1
	}
	return &AuditProtocolService{
		log:       logger.Component(string(AuditProtocol)),
		flushSize: flushSize,
		now:       time.Now,
	}
}

// LogAuditEvent records an action against an entity.
func (a *AuditProtocolService) LogAuditEvent(action, entity string, details map[string]string) AuditEvent {
	event := AuditEvent{
		ID:       uuid.NewString(),
		Action:   action,
		Entity:   entity,
		Severity: determineSeverity(action),
		Details:  maps.Clone(details),
		At:       a.now().UTC(),
	}

	a.mu.Lock()
	a.pending = append(a.pending, event)
	full := len(a.pending) >= a.flushSize
	a.mu.Unlock()

	if event.Severity == SeverityCritical {
		a.log.Warn("critical audit event",
			zap.String("action", action),
			zap.String("entity", entity))
	}
	if full {
		a.Flush()
	}
	return event
}

// Flush moves buffered events to the trail and returns how many moved.
func (a *AuditProtocolService) Flush() int {
	a.mu.Lock()
	n := len(a.pending)
	a.trail = append(a.trail, a.pending...)
	a.pending = nil
	a.mu.Unlock()

	if n > 0 {
		a.log.Debug("audit events flushed", zap.Int("count", n))
	}
	return n
}

// AuditTrail returns every event for entity, flushed or not, oldest first.
func (a *AuditProtocolService) AuditTrail(entity string) []AuditEvent {
	a.mu.Lock()
	defer a.mu.Unlock()

	var out []AuditEvent
	for _, set := range [][]AuditEvent{a.trail, a.pending} {
		for _, e := range set {
			if e.Entity == entity {
				out = append(out, e)
			}
		}
	}
	return out
}

// Report counts events recorded at or after since.
func (a *AuditProtocolService) Report(since time.Time) AuditReport {
	a.mu.Lock()
	defer a.mu.Unlock()

	report := AuditReport{
		Since:      since,
		BySeverity: make(map[Severity]int),
		ByAction:   make(map[string]int),
	}
	for _, set := range [][]AuditEvent{a.trail, a.pending} {
		for _, e := range set {
			if e.At.Before(since) {
				continue
			}
			report.Total++
			report.BySeverity[e.Severity]++
			report.ByAction[e.Action]++
		}
	}
	return report
}

func (a *AuditProtocolService) SelfTest() error {
	if a.log == nil {
		return errors.New("audit protocol has no logger")
	}
	return nil
}

func determineSeverity(action string) Severity {
	upper := strings.ToUpper(action)
	switch {
	case strings.Contains(upper, "DELETE"),
		strings.Contains(upper, "FAIL"),
		strings.Contains(upper, "VIOLATION"):
		return SeverityCritical
	case strings.Contains(upper, "UPDATE"),
		strings.Contains(upper, "TRANSITION"):
		return SeverityWarning
	}
	return SeverityInfo
}
