package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetabler-api/internal/models"
)

// TermSnapshotRepository loads the read-only collaborator snapshot one solve
// operates on.
type TermSnapshotRepository struct {
	db *sqlx.DB
}

// NewTermSnapshotRepository builds the repository.
func NewTermSnapshotRepository(db *sqlx.DB) *TermSnapshotRepository {
	return &TermSnapshotRepository{db: db}
}

// Load fetches every collection scoped to the term. Returns sql.ErrNoRows
// when the term does not exist.
func (r *TermSnapshotRepository) Load(ctx context.Context, termID string) (*models.TermSnapshot, error) {
	var exists string
	if err := r.db.GetContext(ctx, &exists, `SELECT id FROM terms WHERE id = $1`, termID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sql.ErrNoRows
		}
		return nil, fmt.Errorf("load term %s: %w", termID, err)
	}

	snap := &models.TermSnapshot{TermID: termID}

	const slotsQuery = `SELECT id, day_of_week, period, start_time, end_time, is_break
FROM time_slots ORDER BY day_of_week, period`
	if err := r.db.SelectContext(ctx, &snap.TimeSlots, slotsQuery); err != nil {
		return nil, fmt.Errorf("load time slots: %w", err)
	}

	const roomsQuery = `SELECT id, name, capacity, features, active FROM rooms ORDER BY name`
	if err := r.db.SelectContext(ctx, &snap.Rooms, roomsQuery); err != nil {
		return nil, fmt.Errorf("load rooms: %w", err)
	}

	const teachersQuery = `SELECT id, full_name, abbreviation, max_hours_per_week, active
FROM teachers ORDER BY full_name`
	if err := r.db.SelectContext(ctx, &snap.Teachers, teachersQuery); err != nil {
		return nil, fmt.Errorf("load teachers: %w", err)
	}

	const availabilitiesQuery = `SELECT teacher_id, term_id, day_of_week, period, type
FROM teacher_availabilities WHERE term_id IS NULL OR term_id = $1`
	if err := r.db.SelectContext(ctx, &snap.Availabilities, availabilitiesQuery, termID); err != nil {
		return nil, fmt.Errorf("load teacher availabilities: %w", err)
	}

	const qualificationsQuery = `SELECT teacher_id, subject_id, can_teach_grades FROM teacher_qualifications`
	if err := r.db.SelectContext(ctx, &snap.Qualifications, qualificationsQuery); err != nil {
		return nil, fmt.Errorf("load teacher qualifications: %w", err)
	}

	const classesQuery = `SELECT id, name, grade_level, student_count, class_teacher_id, active
FROM classes ORDER BY name`
	if err := r.db.SelectContext(ctx, &snap.Classes, classesQuery); err != nil {
		return nil, fmt.Errorf("load classes: %w", err)
	}

	const subjectsQuery = `SELECT id, name, abbreviation FROM subjects ORDER BY name`
	if err := r.db.SelectContext(ctx, &snap.Subjects, subjectsQuery); err != nil {
		return nil, fmt.Errorf("load subjects: %w", err)
	}

	const roomSubjectsQuery = `SELECT room_id, subject_id, required FROM room_subjects`
	if err := r.db.SelectContext(ctx, &snap.RoomSubjects, roomSubjectsQuery); err != nil {
		return nil, fmt.Errorf("load room subject links: %w", err)
	}

	const lessonsQuery = `SELECT id, class_id, teacher_id, subject_id, week_pattern, time_slot_id, room_id
FROM lessons WHERE term_id = $1 ORDER BY id`
	if err := r.db.SelectContext(ctx, &snap.Lessons, lessonsQuery, termID); err != nil {
		return nil, fmt.Errorf("load lessons: %w", err)
	}

	return snap, nil
}
