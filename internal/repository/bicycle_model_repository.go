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

const bicycleModelColumns = `id, name, description, image, created_at, updated_at`

// BicycleModelRepository provides database access to bicycle models.
type BicycleModelRepository struct {
	db *sqlx.DB
}

// NewBicycleModelRepository constructs the repository.
func NewBicycleModelRepository(db *sqlx.DB) *BicycleModelRepository {
	return &BicycleModelRepository{db: db}
}

// FindByID returns a model by identifier.
func (r *BicycleModelRepository) FindByID(ctx context.Context, id string) (*models.BicycleModel, error) {
	query := fmt.Sprintf(`SELECT %s FROM bicycle_models WHERE id = $1 LIMIT 1`, bicycleModelColumns)
	var model models.BicycleModel
	if err := r.db.GetContext(ctx, &model, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find bicycle model by id: %w", err)
	}
	return &model, nil
}

// List returns every model in catalog order.
func (r *BicycleModelRepository) List(ctx context.Context) ([]models.BicycleModel, error) {
	query := fmt.Sprintf(`SELECT %s FROM bicycle_models ORDER BY name ASC`, bicycleModelColumns)
	var out []models.BicycleModel
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list bicycle models: %w", err)
	}
	return out, nil
}

// ListAvailable returns models together with the number of units a new
// submission could still claim: enabled fleet units minus open bookings on
// those units minus submissions already pending on the model.
func (r *BicycleModelRepository) ListAvailable(ctx context.Context) ([]models.AvailableBicycleModel, error) {
	const query = `SELECT m.id, m.name, m.description, m.image, m.created_at, m.updated_at,
GREATEST(
	COALESCE(stock.total, 0) - COALESCE(booked.total, 0) - COALESCE(pending.total, 0),
	0
) AS available
FROM bicycle_models m
LEFT JOIN (
	SELECT model_id, COUNT(*) AS total FROM bicycles
	WHERE status = 'HABILITADA' GROUP BY model_id
) stock ON stock.model_id = m.id
LEFT JOIN (
	SELECT bc.model_id, COUNT(*) AS total FROM bookings b
	JOIN bicycles bc ON bc.id = b.bicycle_id
	WHERE b."end" IS NULL GROUP BY bc.model_id
) booked ON booked.model_id = m.id
LEFT JOIN (
	SELECT bicycle_model_id AS model_id, COUNT(*) AS total FROM submissions
	GROUP BY bicycle_model_id
) pending ON pending.model_id = m.id
ORDER BY m.name ASC`
	var out []models.AvailableBicycleModel
	if err := r.db.SelectContext(ctx, &out, query); err != nil {
		return nil, fmt.Errorf("list available bicycle models: %w", err)
	}
	return out, nil
}

// Create inserts a new model.
func (r *BicycleModelRepository) Create(ctx context.Context, model *models.BicycleModel) error {
	if model.ID == "" {
		model.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if model.CreatedAt.IsZero() {
		model.CreatedAt = now
	}
	model.UpdatedAt = now

	const query = `INSERT INTO bicycle_models (id, name, description, image, created_at, updated_at)
VALUES (:id, :name, :description, :image, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("create bicycle model: %w", err)
	}
	return nil
}

// Update updates mutable fields of a model.
func (r *BicycleModelRepository) Update(ctx context.Context, model *models.BicycleModel) error {
	model.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bicycle_models SET name = :name, description = :description,
image = :image, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, model); err != nil {
		return fmt.Errorf("update bicycle model: %w", err)
	}
	return nil
}

// Delete removes a model. Fails on the foreign key if bicycles still
// reference it.
func (r *BicycleModelRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM bicycle_models WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete bicycle model: %w", err)
	}
	return nil
}
