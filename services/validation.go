package services

import (
	"fmt"
	"strings"
)

// maxTaskMinutes is the longest estimate a single task may carry.
const maxTaskMinutes = 480

// BusinessLogicValidationService enforces task rules and audits violations.
type BusinessLogicValidationService struct {
	audit Auditor
}

func NewBusinessLogicValidation(audit Auditor) *BusinessLogicValidationService {
	return &BusinessLogicValidationService{audit: audit}
}

func (v *BusinessLogicValidationService) ValidateTaskCreation(t Task) error {
	var err error
	switch {
	case strings.TrimSpace(t.Title) == "":
		err = &ValidationError{Field: "title", Reason: "must not be empty"}
	case t.Status != "" && t.Status != StatusNotStarted:
		err = &ValidationError{Field: "status", Reason: fmt.Sprintf("new tasks start as %s, got %s", StatusNotStarted, t.Status)}
	case t.EstimatedMinutes <= 0 || t.EstimatedMinutes > maxTaskMinutes:
		err = &ValidationError{Field: "estimated_minutes", Reason: fmt.Sprintf("must be between 1 and %d", maxTaskMinutes)}
	default:
		err = v.ValidatePriority(t.Priority)
	}
	return v.record("TASK_CREATION", t, err)
}

func (v *BusinessLogicValidationService) ValidateStateTransition(t Task, to Status) error {
	var err error
	if !CanTransition(t.Status, to) {
		err = &ValidationError{Field: "status", Reason: fmt.Sprintf("%s cannot move to %s", t.Status, to)}
	}
	return v.record("STATE_TRANSITION", t, err)
}

func (v *BusinessLogicValidationService) ValidateScheduleConflict(t Task, existing []Task) error {
	if t.ScheduledStart.IsZero() || !t.ScheduledEnd.After(t.ScheduledStart) {
		return v.record("SCHEDULE", t, &ValidationError{Field: "schedule", Reason: "end must be after start"})
	}
	for _, other := range existing {
		if other.ID == t.ID || other.ScheduledStart.IsZero() {
			continue
		}
		if t.ScheduledStart.Before(other.ScheduledEnd) && other.ScheduledStart.Before(t.ScheduledEnd) {
			return &ValidationError{Field: "schedule", Reason: fmt.Sprintf("overlaps task %s", other.ID)}
		}
	}
	return nil
}

func (v *BusinessLogicValidationService) ValidatePriority(p Priority) error {
	if p.Rank() < 0 {
		return &ValidationError{Field: "priority", Reason: fmt.Sprintf("unknown priority %q", p)}
	}
	return nil
}

func (v *BusinessLogicValidationService) SelfTest() error {
	sample := Task{Title: "self test", Priority: PriorityLow, EstimatedMinutes: 15}
	if err := v.ValidateTaskCreation(sample); err != nil {
		return fmt.Errorf("valid sample rejected: %w", err)
	}
	sample.Title = ""
	if v.ValidateTaskCreation(sample) == nil {
		return fmt.Errorf("invalid sample accepted")
	}
	return nil
}

// record audits validation failures and passes err through.
func (v *BusinessLogicValidationService) record(kind string, t Task, err error) error {
	if err != nil && v.audit != nil {
		v.audit.LogAuditEvent(kind+"_VALIDATION_FAILURE", t.ID, map[string]string{"error": err.Error()})
	}
	return err
}
