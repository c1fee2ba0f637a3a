package database

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Assignment links one user to one contractor the user may see. The
// (user_id, contractor_id) pair carries a unique constraint; a concurrent
// duplicate insert surfaces as ErrAssignmentExists.
type Assignment struct {
	ID           uuid.UUID
	UserID       uuid.UUID
	ContractorID uuid.UUID
	CreatedAt    time.Time
}

type CreateAssignmentParams struct {
	UserID       uuid.UUID
	ContractorID uuid.UUID
}

func (db *Database) CreateAssignment(ctx context.Context, params CreateAssignmentParams) (Assignment, error) {
	assignment := Assignment{
		ID:           uuid.New(),
		UserID:       params.UserID,
		ContractorID: params.ContractorID,
		CreatedAt:    time.Now().UTC(),
	}

	if _, err := db.Pool.Exec(ctx, `INSERT INTO tbl_assignment (id, user_id, contractor_id, created_at) VALUES ($1, $2, $3, $4)`,
		assignment.ID, assignment.UserID, assignment.ContractorID, assignment.CreatedAt); err != nil {
		if isUniqueViolation(err) {
			return assignment, ErrAssignmentExists
		}
		return assignment, fmt.Errorf("database: failed to insert assignment (user=%s contractor=%s): %w", params.UserID, params.ContractorID, err)
	}
	return assignment, nil
}

func (db *Database) ListAssignments(ctx context.Context) ([]Assignment, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, user_id, contractor_id, created_at FROM tbl_assignment`)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list assignments: %w", err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.ContractorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

func (db *Database) ListAssignmentsForUser(ctx context.Context, userID uuid.UUID) ([]Assignment, error) {
	rows, err := db.Pool.Query(ctx, `SELECT id, user_id, contractor_id, created_at FROM tbl_assignment WHERE user_id = $1`, userID)
	if err != nil {
		return nil, fmt.Errorf("database: failed to list assignments for user (id=%s): %w", userID, err)
	}
	defer rows.Close()

	var assignments []Assignment
	for rows.Next() {
		var a Assignment
		if err := rows.Scan(&a.ID, &a.UserID, &a.ContractorID, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("database: failed to scan assignment: %w", err)
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("database: failed to iterate assignments: %w", err)
	}
	return assignments, nil
}

func (db *Database) DeleteAssignment(ctx context.Context, userID, contractorID uuid.UUID) error {
	if _, err := db.Pool.Exec(ctx, `DELETE FROM tbl_assignment WHERE user_id = $1 AND contractor_id = $2`, userID, contractorID); err != nil {
		return fmt.Errorf("database: failed to delete assignment (user=%s contractor=%s): %w", userID, contractorID, err)
	}
	return nil
}
