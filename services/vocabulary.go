package services

import "slices"

// Status is the lifecycle state of a task.
type Status string

const (
	StatusNotStarted Status = "NOT_STARTED"
	StatusScheduled  Status = "SCHEDULED"
	StatusInProgress Status = "IN_PROGRESS"
	StatusCompleted  Status = "COMPLETED"
	StatusCanceled   Status = "CANCELED"
	StatusArchived   Status = "ARCHIVED"
)

var transitions = map[Status][]Status{
	StatusNotStarted: {StatusScheduled, StatusInProgress, StatusCanceled},
	StatusScheduled:  {StatusNotStarted, StatusInProgress, StatusCanceled},
	StatusInProgress: {StatusScheduled, StatusCompleted, StatusCanceled},
	StatusCompleted:  {StatusArchived},
	StatusCanceled:   {StatusNotStarted, StatusArchived},
}

// CanTransition reports whether a task may move from one status to another.
func CanTransition(from, to Status) bool {
	return slices.Contains(transitions[from], to)
}

// Priority orders tasks; lower rank is more urgent.
type Priority string

const (
	PriorityCritical Priority = "CRITICAL"
	PriorityUrgent   Priority = "URGENT"
	PriorityHigh     Priority = "HIGH"
	PriorityMedium   Priority = "MEDIUM"
	PriorityLow      Priority = "LOW"
	PriorityMinimal  Priority = "MINIMAL"
)

var priorityRank = map[Priority]int{
	PriorityCritical: 0,
	PriorityUrgent:   1,
	PriorityHigh:     2,
	PriorityMedium:   3,
	PriorityLow:      4,
	PriorityMinimal:  5,
}

// Rank returns the ordering of p, or -1 when p is unknown.
func (p Priority) Rank() int {
	if r, ok := priorityRank[p]; ok {
		return r
	}
	return -1
}

// Lane groups tasks by kind of work.
type Lane string

const (
	LaneOps      Lane = "ops"
	LaneAdmin    Lane = "admin"
	LaneCreative Lane = "creative"
	LaneClient   Lane = "client"
	LaneLearning Lane = "learning"
)
