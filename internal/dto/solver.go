package dto

import "time"

// JobState is the lifecycle state of one term's solver job.
type JobState string

const (
	JobNotSolving      JobState = "NOT_SOLVING"
	JobSolving         JobState = "SOLVING"
	JobSolved          JobState = "SOLVED"
	JobTerminatedEarly JobState = "TERMINATED_EARLY"
	JobFailed          JobState = "FAILED"
)

// ScorePayload carries the two-part score over the wire.
type ScorePayload struct {
	Hard int `json:"hard"`
	Soft int `json:"soft"`
}

// SolveOptionsRequest optionally overrides the configured budgets for one
// solver run. Zero values fall back to the service configuration.
type SolveOptionsRequest struct {
	MaxSteps       int `json:"maxSteps" validate:"omitempty,min=1,max=1000000"`
	MaxUnimproved  int `json:"maxUnimproved" validate:"omitempty,min=1,max=1000000"`
	TimeoutSeconds int `json:"timeoutSeconds" validate:"omitempty,min=1,max=3600"`
}

// StartSolveResponse acknowledges a launched solver job.
type StartSolveResponse struct {
	TermID  string   `json:"termId"`
	State   JobState `json:"state"`
	Lessons int      `json:"lessons"`
}

// SolveStatusResponse reports job state and the best published score, if any.
type SolveStatusResponse struct {
	TermID string        `json:"termId"`
	State  JobState      `json:"state"`
	Score  *ScorePayload `json:"score,omitempty"`
}

// AssignmentPayload is one lesson's resolved slot and room.
type AssignmentPayload struct {
	LessonID   string  `json:"lessonId"`
	TimeSlotID *string `json:"timeSlotId"`
	RoomID     *string `json:"roomId"`
}

// SolutionResponse returns the cached best solution's assignments.
type SolutionResponse struct {
	TermID      string              `json:"termId"`
	Score       ScorePayload        `json:"score"`
	Feasible    bool                `json:"feasible"`
	Assignments []AssignmentPayload `json:"assignments"`
	UpdatedAt   time.Time           `json:"updatedAt"`
}

// ApplyResponse reports a completed write-back.
type ApplyResponse struct {
	TermID  string `json:"termId"`
	Applied int    `json:"applied"`
}
