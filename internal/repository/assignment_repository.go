package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/noah-isme/timetabler-api/internal/models"
)

// AssignmentRepository persists solved lesson assignments.
type AssignmentRepository struct {
	db *sqlx.DB
}

// NewAssignmentRepository builds the repository.
func NewAssignmentRepository(db *sqlx.DB) *AssignmentRepository {
	return &AssignmentRepository{db: db}
}

// ApplyBatch writes every assignment inside one transaction: either all
// lessons are updated or none are.
func (r *AssignmentRepository) ApplyBatch(ctx context.Context, termID string, assignments []models.LessonAssignment) error {
	if len(assignments) == 0 {
		return nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin assignment transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	const query = `UPDATE lessons SET time_slot_id = $1, room_id = $2 WHERE id = $3 AND term_id = $4`
	for _, a := range assignments {
		if _, err = tx.ExecContext(ctx, query, a.TimeSlotID, a.RoomID, a.LessonID, termID); err != nil {
			err = fmt.Errorf("update lesson %s: %w", a.LessonID, err)
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit assignment transaction: %w", err)
	}
	return nil
}
