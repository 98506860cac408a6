package models

import (
	"github.com/jmoiron/sqlx/types"
	"github.com/lib/pq"
)

// AvailabilityType classifies a teacher availability row.
type AvailabilityType string

const (
	AvailabilityAvailable AvailabilityType = "AVAILABLE"
	AvailabilityBlocked   AvailabilityType = "BLOCKED"
	AvailabilityPreferred AvailabilityType = "PREFERRED"
)

// TimeSlotRecord is one period of the weekly time grid.
type TimeSlotRecord struct {
	ID        string `db:"id" json:"id"`
	DayOfWeek int    `db:"day_of_week" json:"day_of_week"`
	Period    int    `db:"period" json:"period"`
	StartTime string `db:"start_time" json:"start_time"`
	EndTime   string `db:"end_time" json:"end_time"`
	IsBreak   bool   `db:"is_break" json:"is_break"`
}

// RoomRecord is a teaching room. Features is a schema-less attribute: either
// a JSON string array or a comma-separated list.
type RoomRecord struct {
	ID       string         `db:"id" json:"id"`
	Name     string         `db:"name" json:"name"`
	Capacity *int           `db:"capacity" json:"capacity,omitempty"`
	Features types.JSONText `db:"features" json:"features,omitempty"`
	Active   bool           `db:"active" json:"active"`
}

// TeacherRecord is an instructor row; availabilities and qualifications are
// loaded separately and joined by teacher id.
type TeacherRecord struct {
	ID              string `db:"id" json:"id"`
	FullName        string `db:"full_name" json:"full_name"`
	Abbreviation    string `db:"abbreviation" json:"abbreviation"`
	MaxHoursPerWeek int    `db:"max_hours_per_week" json:"max_hours_per_week"`
	Active          bool   `db:"active" json:"active"`
}

// TeacherAvailabilityRecord scopes one day/period to a term (nil = global).
type TeacherAvailabilityRecord struct {
	TeacherID string           `db:"teacher_id" json:"teacher_id"`
	TermID    *string          `db:"term_id" json:"term_id,omitempty"`
	DayOfWeek int              `db:"day_of_week" json:"day_of_week"`
	Period    int              `db:"period" json:"period"`
	Type      AvailabilityType `db:"type" json:"type"`
}

// TeacherQualificationRecord links a teacher to a subject and grade levels.
type TeacherQualificationRecord struct {
	TeacherID      string        `db:"teacher_id" json:"teacher_id"`
	SubjectID      string        `db:"subject_id" json:"subject_id"`
	CanTeachGrades pq.Int64Array `db:"can_teach_grades" json:"can_teach_grades"`
}

// SchoolClassRecord is a class (section) row.
type SchoolClassRecord struct {
	ID             string  `db:"id" json:"id"`
	Name           string  `db:"name" json:"name"`
	GradeLevel     int     `db:"grade_level" json:"grade_level"`
	StudentCount   *int    `db:"student_count" json:"student_count,omitempty"`
	ClassTeacherID *string `db:"class_teacher_id" json:"class_teacher_id,omitempty"`
	Active         bool    `db:"active" json:"active"`
}

// SubjectRecord is a subject row.
type SubjectRecord struct {
	ID           string `db:"id" json:"id"`
	Name         string `db:"name" json:"name"`
	Abbreviation string `db:"abbreviation" json:"abbreviation"`
}

// RoomSubjectLinkRecord ties a subject to a room. Required links restrict the
// subject to the linked rooms; non-required links carry no constraint.
type RoomSubjectLinkRecord struct {
	RoomID    string `db:"room_id" json:"room_id"`
	SubjectID string `db:"subject_id" json:"subject_id"`
	Required  bool   `db:"required" json:"required"`
}

// LessonRecord is a lesson row including any previously stored assignment.
type LessonRecord struct {
	ID          string  `db:"id" json:"id"`
	ClassID     string  `db:"class_id" json:"class_id"`
	TeacherID   string  `db:"teacher_id" json:"teacher_id"`
	SubjectID   string  `db:"subject_id" json:"subject_id"`
	WeekPattern string  `db:"week_pattern" json:"week_pattern"`
	TimeSlotID  *string `db:"time_slot_id" json:"time_slot_id,omitempty"`
	RoomID      *string `db:"room_id" json:"room_id,omitempty"`
}

// TermSnapshot is the read-only collaborator input for one solve.
type TermSnapshot struct {
	TermID         string
	TimeSlots      []TimeSlotRecord
	Rooms          []RoomRecord
	Teachers       []TeacherRecord
	Availabilities []TeacherAvailabilityRecord
	Qualifications []TeacherQualificationRecord
	Classes        []SchoolClassRecord
	Subjects       []SubjectRecord
	RoomSubjects   []RoomSubjectLinkRecord
	Lessons        []LessonRecord
}

// LessonAssignment is the write-back unit: the resolved slot and room for one
// lesson, either nullable when unassigned.
type LessonAssignment struct {
	LessonID   string  `db:"lesson_id" json:"lesson_id"`
	TimeSlotID *string `db:"time_slot_id" json:"time_slot_id"`
	RoomID     *string `db:"room_id" json:"room_id"`
}
