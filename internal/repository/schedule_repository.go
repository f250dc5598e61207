package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bicired/bicired-api/internal/models"
	"github.com/bicired/bicired-api/internal/schedule"
)

// ScheduleRepository persists the weekly availability template and the
// agenda export jobs.
type ScheduleRepository struct {
	db *sqlx.DB
}

// NewScheduleRepository constructs the repository.
func NewScheduleRepository(db *sqlx.DB) *ScheduleRepository {
	return &ScheduleRepository{db: db}
}

// FindTemplate returns the singleton template row, or sql.ErrNoRows when no
// administrator has configured one yet.
func (r *ScheduleRepository) FindTemplate(ctx context.Context) (*models.ScheduleTemplate, error) {
	const query = `SELECT id, slots, updated_by, updated_at FROM schedule_templates WHERE id = $1 LIMIT 1`
	var tpl models.ScheduleTemplate
	if err := r.db.GetContext(ctx, &tpl, query, models.ScheduleTemplateID); err != nil {
		return nil, err
	}
	return &tpl, nil
}

// UpsertTemplate replaces the stored grid wholesale. The fixed row id keeps
// the template a singleton without any process-level state.
func (r *ScheduleRepository) UpsertTemplate(ctx context.Context, grid schedule.Grid, updatedBy *string) (*models.ScheduleTemplate, error) {
	const query = `INSERT INTO schedule_templates (id, slots, updated_by, updated_at)
VALUES ($1, $2, $3, $4)
ON CONFLICT (id)
DO UPDATE SET slots = EXCLUDED.slots, updated_by = EXCLUDED.updated_by, updated_at = EXCLUDED.updated_at
RETURNING id, slots, updated_by, updated_at`
	var tpl models.ScheduleTemplate
	if err := r.db.GetContext(ctx, &tpl, query, models.ScheduleTemplateID, grid, updatedBy, time.Now().UTC()); err != nil {
		return nil, fmt.Errorf("upsert schedule template: %w", err)
	}
	return &tpl, nil
}

// ListScheduledPickups returns the submissions whose committed pickup falls
// inside [start, end), joined with rider and model names.
func (r *ScheduleRepository) ListScheduledPickups(ctx context.Context, start, end time.Time) ([]models.AgendaEntry, error) {
	const query = `SELECT s.user_id, u.name AS user_name, u.last_name AS user_last_name,
       m.name AS model_name, s.pickup_schedule AS scheduled_at
FROM submissions s
JOIN users u ON u.id = s.user_id
JOIN bicycle_models m ON m.id = s.bicycle_model_id
WHERE s.pickup_schedule IS NOT NULL AND s.pickup_schedule >= $1 AND s.pickup_schedule < $2
ORDER BY s.pickup_schedule ASC`
	var entries []models.AgendaEntry
	if err := r.db.SelectContext(ctx, &entries, query, start, end); err != nil {
		return nil, fmt.Errorf("list scheduled pickups: %w", err)
	}
	return entries, nil
}

// ListScheduledReturns returns the open bookings whose committed return
// falls inside [start, end).
func (r *ScheduleRepository) ListScheduledReturns(ctx context.Context, start, end time.Time) ([]models.AgendaEntry, error) {
	const query = `SELECT b.user_id, u.name AS user_name, u.last_name AS user_last_name,
       m.name AS model_name, b.return_schedule AS scheduled_at
FROM bookings b
JOIN users u ON u.id = b.user_id
JOIN bicycles bc ON bc.id = b.bicycle_id
JOIN bicycle_models m ON m.id = bc.model_id
WHERE b."end" IS NULL AND b.return_schedule IS NOT NULL
  AND b.return_schedule >= $1 AND b.return_schedule < $2
ORDER BY b.return_schedule ASC`
	var entries []models.AgendaEntry
	if err := r.db.SelectContext(ctx, &entries, query, start, end); err != nil {
		return nil, fmt.Errorf("list scheduled returns: %w", err)
	}
	return entries, nil
}

// CreateExportJob persists a pending agenda export.
func (r *ScheduleRepository) CreateExportJob(ctx context.Context, job *models.ExportJob) error {
	if job.ID == "" {
		job.ID = uuid.NewString()
	}
	if job.CreatedAt.IsZero() {
		job.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO export_jobs (id, kind, format, year, month, status, file_path, error, requested_by, created_at, completed_at)
VALUES (:id, :kind, :format, :year, :month, :status, :file_path, :error, :requested_by, :created_at, :completed_at)`
	if _, err := r.db.NamedExecContext(ctx, query, job); err != nil {
		return fmt.Errorf("create export job: %w", err)
	}
	return nil
}

// FindExportJob fetches an export job by id.
func (r *ScheduleRepository) FindExportJob(ctx context.Context, id string) (*models.ExportJob, error) {
	const query = `SELECT id, kind, format, year, month, status, file_path, error, requested_by, created_at, completed_at
FROM export_jobs WHERE id = $1 LIMIT 1`
	var job models.ExportJob
	if err := r.db.GetContext(ctx, &job, query, id); err != nil {
		return nil, err
	}
	return &job, nil
}

// CompleteExportJob records the outcome of a finished export.
func (r *ScheduleRepository) CompleteExportJob(ctx context.Context, id string, status models.ExportJobStatus, filePath, errMessage *string) error {
	const query = `UPDATE export_jobs SET status = $2, file_path = $3, error = $4, completed_at = $5 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, status, filePath, errMessage, time.Now().UTC()); err != nil {
		return fmt.Errorf("complete export job: %w", err)
	}
	return nil
}
