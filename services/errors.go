package services

import "fmt"

// ValidationError reports a business rule a task violates.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Reason)
}

// SchedulingError reports that a task could not be placed.
type SchedulingError struct {
	TaskID string
	Reason string
}

func (e *SchedulingError) Error() string {
	return fmt.Sprintf("cannot schedule task %s: %s", e.TaskID, e.Reason)
}

// TriageError reports a triage failure.
type TriageError struct {
	EmailID string
	Err     error
}

func (e *TriageError) Error() string {
	return fmt.Sprintf("triage of email %s failed: %v", e.EmailID, e.Err)
}

func (e *TriageError) Unwrap() error { return e.Err }
