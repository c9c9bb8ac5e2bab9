package services

import (
	"time"

	"go.uber.org/zap"
)

// Task is the unit of work the services operate on.
type Task struct {
	ID               string
	Title            string
	Status           Status
	Priority         Priority
	Lane             Lane
	EstimatedMinutes int
	ScheduledStart   time.Time
	ScheduledEnd     time.Time
}

// SelfTester is implemented by services that can verify their own wiring.
type SelfTester interface {
	SelfTest() error
}

// Logger is the structured logging facility.
type Logger interface {
	Logger() *zap.Logger
	Component(name string) *zap.Logger
}

// Auditor records and reports audit events.
type Auditor interface {
	LogAuditEvent(action, entity string, details map[string]string) AuditEvent
	AuditTrail(entity string) []AuditEvent
	Report(since time.Time) AuditReport
	Flush() int
}

// TaskValidator enforces business rules on tasks.
type TaskValidator interface {
	ValidateTaskCreation(t Task) error
	ValidateStateTransition(t Task, to Status) error
	ValidateScheduleConflict(t Task, existing []Task) error
	ValidatePriority(p Priority) error
}

// Scheduler places tasks on the calendar.
type Scheduler interface {
	Schedule(t Task, after time.Time) (Task, error)
	Scheduled() []Task
}

// Email is an inbound message considered for triage.
type Email struct {
	ID      string
	From    string
	Subject string
	Body    string
}

// TriageDecision is the outcome of triaging one email.
type TriageDecision struct {
	EmailID  string
	Accepted bool
	Priority Priority
	Reason   string
}

// TriageEngine decides whether an email should become a task.
type TriageEngine interface {
	Triage(e Email) (TriageDecision, error)
}

// EmailIngester turns accepted emails into tasks.
type EmailIngester interface {
	Ingest(e Email) (*Task, error)
	Learn(sender string, accepted bool)
	Reputation(sender string) float64
}
