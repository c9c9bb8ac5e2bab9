package services

import (
	"sync"
	"time"

	"go.uber.org/zap"
)

const (
	slotStep      = 15 * time.Minute
	searchHorizon = 14 * 24 * time.Hour
)

// IntelligentSchedulerService places tasks into the first free working-hours slot.
type IntelligentSchedulerService struct {
	mu        sync.Mutex
	validator TaskValidator
	audit     Auditor
	log       *zap.Logger
	dayStart  int
	dayEnd    int
	scheduled []Task
}

// NewIntelligentScheduler creates a scheduler working between 09:00 and 18:00.
func NewIntelligentScheduler(validator TaskValidator, audit Auditor, logger Logger) *IntelligentSchedulerService {
	return &IntelligentSchedulerService{
		validator: validator,
		audit:     audit,
		log:       logger.Component(string(IntelligentScheduler)),
		dayStart:  9,
		dayEnd:    18,
	}
}

// Schedule finds the earliest free slot at or after after.
func (s *IntelligentSchedulerService) Schedule(t Task, after time.Time) (Task, error) {
	if t.Status == "" {
		t.Status = StatusNotStarted
	}
	if err := s.validator.ValidatePriority(t.Priority); err != nil {
		return t, err
	}
	if err := s.validator.ValidateStateTransition(t, StatusScheduled); err != nil {
		return t, err
	}
	if t.EstimatedMinutes <= 0 {
		return t, &SchedulingError{TaskID: t.ID, Reason: "no duration estimate"}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	duration := time.Duration(t.EstimatedMinutes) * time.Minute
	start := after.Truncate(slotStep)
	if start.Before(after) {
		start = start.Add(slotStep)
	}
	limit := after.Add(searchHorizon)

	for ; start.Before(limit); start = start.Add(slotStep) {
		end := start.Add(duration)
		if !s.withinHours(start, end) {
			continue
		}
		candidate := t
		candidate.ScheduledStart = start
		candidate.ScheduledEnd = end
		if s.validator.ValidateScheduleConflict(candidate, s.scheduled) != nil {
			continue
		}

		candidate.Status = StatusScheduled
		s.scheduled = append(s.scheduled, candidate)
		s.audit.LogAuditEvent("TASK_SCHEDULED", t.ID, map[string]string{
			"start": start.Format(time.RFC3339),
			"end":   end.Format(time.RFC3339),
		})
		s.log.Debug("task scheduled",
			zap.String("task", t.ID),
			zap.Time("start", start))
		return candidate, nil
	}
	return t, &SchedulingError{TaskID: t.ID, Reason: "no free slot in the next 14 days"}
}

// Scheduled returns the tasks placed so far.
func (s *IntelligentSchedulerService) Scheduled() []Task {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Task, len(s.scheduled))
	copy(out, s.scheduled)
	return out
}

func (s *IntelligentSchedulerService) withinHours(start, end time.Time) bool {
	y, m, d := start.Date()
	open := time.Date(y, m, d, s.dayStart, 0, 0, 0, start.Location())
	closing := time.Date(y, m, d, s.dayEnd, 0, 0, 0, start.Location())
	return !start.Before(open) && !end.After(closing)
}
