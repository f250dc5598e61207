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

const exitFormColumns = `id, booking_id, bicycle_review, bicycle_model_review, accessory_review, suggestions, parking_spot, created_at, updated_at`

// ExitFormRepository provides database access to exit questionnaires.
type ExitFormRepository struct {
	db *sqlx.DB
}

// NewExitFormRepository constructs the repository.
func NewExitFormRepository(db *sqlx.DB) *ExitFormRepository {
	return &ExitFormRepository{db: db}
}

// FindByID returns an exit form by identifier.
func (r *ExitFormRepository) FindByID(ctx context.Context, id string) (*models.ExitForm, error) {
	query := fmt.Sprintf(`SELECT %s FROM exit_forms WHERE id = $1 LIMIT 1`, exitFormColumns)
	var form models.ExitForm
	if err := r.db.GetContext(ctx, &form, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exit form by id: %w", err)
	}
	return &form, nil
}

// FindByBookingID returns the exit form attached to a booking, if any.
func (r *ExitFormRepository) FindByBookingID(ctx context.Context, bookingID string) (*models.ExitForm, error) {
	query := fmt.Sprintf(`SELECT %s FROM exit_forms WHERE booking_id = $1 LIMIT 1`, exitFormColumns)
	var form models.ExitForm
	if err := r.db.GetContext(ctx, &form, query, bookingID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find exit form by booking: %w", err)
	}
	return &form, nil
}

// FindByUserID returns the exit forms a user has filled, newest first.
func (r *ExitFormRepository) FindByUserID(ctx context.Context, userID string) ([]models.ExitForm, error) {
	const query = `SELECT f.id, f.booking_id, f.bicycle_review, f.bicycle_model_review,
f.accessory_review, f.suggestions, f.parking_spot, f.created_at, f.updated_at
FROM exit_forms f
JOIN bookings b ON b.id = f.booking_id
WHERE b.user_id = $1
ORDER BY f.created_at DESC`
	var forms []models.ExitForm
	if err := r.db.SelectContext(ctx, &forms, query, userID); err != nil {
		return nil, fmt.Errorf("find exit forms by user: %w", err)
	}
	return forms, nil
}

// Upsert writes the exit form for a booking, replacing the review fields if
// one already exists.
func (r *ExitFormRepository) Upsert(ctx context.Context, form *models.ExitForm) error {
	if form.ID == "" {
		form.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if form.CreatedAt.IsZero() {
		form.CreatedAt = now
	}
	form.UpdatedAt = now

	query := fmt.Sprintf(`INSERT INTO exit_forms (id, booking_id, bicycle_review, bicycle_model_review, accessory_review, suggestions, parking_spot, created_at, updated_at)
VALUES (:id, :booking_id, :bicycle_review, :bicycle_model_review, :accessory_review, :suggestions, :parking_spot, :created_at, :updated_at)
ON CONFLICT (booking_id) DO UPDATE SET
	bicycle_review = EXCLUDED.bicycle_review,
	bicycle_model_review = EXCLUDED.bicycle_model_review,
	accessory_review = EXCLUDED.accessory_review,
	suggestions = EXCLUDED.suggestions,
	parking_spot = EXCLUDED.parking_spot,
	updated_at = EXCLUDED.updated_at
RETURNING %s`, exitFormColumns)

	rows, err := r.db.NamedQueryContext(ctx, query, form)
	if err != nil {
		return fmt.Errorf("upsert exit form: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.StructScan(form); err != nil {
			return fmt.Errorf("upsert exit form: %w", err)
		}
	}
	return rows.Err()
}
