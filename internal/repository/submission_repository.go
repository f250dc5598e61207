package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bicired/bicired-api/internal/models"
)

const submissionColumns = `id, user_id, bicycle_model_id, pickup_schedule, created_at, updated_at`

// SubmissionRepository provides database access to loan applications.
type SubmissionRepository struct {
	db *sqlx.DB
}

// NewSubmissionRepository constructs the repository.
func NewSubmissionRepository(db *sqlx.DB) *SubmissionRepository {
	return &SubmissionRepository{db: db}
}

// FindByID returns a submission by identifier.
func (r *SubmissionRepository) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE id = $1 LIMIT 1`, submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission by id: %w", err)
	}
	return &submission, nil
}

// FindByUser returns the user's pending submission, if any.
func (r *SubmissionRepository) FindByUser(ctx context.Context, userID string) (*models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions WHERE user_id = $1 LIMIT 1`, submissionColumns)
	var submission models.Submission
	if err := r.db.GetContext(ctx, &submission, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find submission by user: %w", err)
	}
	return &submission, nil
}

// List returns every pending submission, oldest first.
func (r *SubmissionRepository) List(ctx context.Context) ([]models.Submission, error) {
	query := fmt.Sprintf(`SELECT %s FROM submissions ORDER BY created_at ASC`, submissionColumns)
	var out []models.Submission
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list submissions: %w", err)
	}
	return out, nil
}

// Create inserts a new submission.
func (r *SubmissionRepository) Create(ctx context.Context, submission *models.Submission) error {
	if submission.ID == "" {
		submission.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if submission.CreatedAt.IsZero() {
		submission.CreatedAt = now
	}
	submission.UpdatedAt = now

	const query = `INSERT INTO submissions (id, user_id, bicycle_model_id, pickup_schedule, created_at, updated_at)
VALUES (:id, :user_id, :bicycle_model_id, :pickup_schedule, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, submission); err != nil {
		return fmt.Errorf("create submission: %w", err)
	}
	return nil
}

// Reassign moves the submission to another model and clears the pickup
// commitment, which was made for the previous model.
func (r *SubmissionRepository) Reassign(ctx context.Context, id, bicycleModelID string) error {
	const query = `UPDATE submissions SET bicycle_model_id = $2, pickup_schedule = NULL, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, bicycleModelID, time.Now().UTC()); err != nil {
		return fmt.Errorf("reassign submission: %w", err)
	}
	return nil
}

// UpdatePickupSchedule stores the instant the rider committed to pick the
// bicycle up.
func (r *SubmissionRepository) UpdatePickupSchedule(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE submissions SET pickup_schedule = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at, time.Now().UTC()); err != nil {
		return fmt.Errorf("update submission pickup schedule: %w", err)
	}
	return nil
}

// Delete removes a submission, typically once a booking replaces it.
func (r *SubmissionRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM submissions WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete submission: %w", err)
	}
	return nil
}
