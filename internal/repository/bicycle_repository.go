package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/bicired/bicired-api/internal/models"
)

const bicycleColumns = `id, qr_code, status, model_id, image, ulock, lights, fleet, reflector, created_at, updated_at`

// BicycleRepository provides database access to the fleet.
type BicycleRepository struct {
	db *sqlx.DB
}

// NewBicycleRepository constructs the repository.
func NewBicycleRepository(db *sqlx.DB) *BicycleRepository {
	return &BicycleRepository{db: db}
}

// FindByID returns a bicycle by identifier.
func (r *BicycleRepository) FindByID(ctx context.Context, id string) (*models.Bicycle, error) {
	query := fmt.Sprintf(`SELECT %s FROM bicycles WHERE id = $1 LIMIT 1`, bicycleColumns)
	var bike models.Bicycle
	if err := r.db.GetContext(ctx, &bike, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find bicycle by id: %w", err)
	}
	return &bike, nil
}

// FindByQRCode returns a bicycle by its QR code.
func (r *BicycleRepository) FindByQRCode(ctx context.Context, qrCode string) (*models.Bicycle, error) {
	query := fmt.Sprintf(`SELECT %s FROM bicycles WHERE qr_code = $1 LIMIT 1`, bicycleColumns)
	var bike models.Bicycle
	if err := r.db.GetContext(ctx, &bike, query, qrCode); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find bicycle by qr code: %w", err)
	}
	return &bike, nil
}

// List returns fleet units with a total count.
func (r *BicycleRepository) List(ctx context.Context, filter models.BicycleFilter) ([]models.Bicycle, int, error) {
	baseQuery := `FROM bicycles WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.Status != nil {
		conditions = append(conditions, fmt.Sprintf("status = $%d", len(args)+1))
		args = append(args, *filter.Status)
	}
	if filter.ModelID != "" {
		conditions = append(conditions, fmt.Sprintf("model_id = $%d", len(args)+1))
		args = append(args, filter.ModelID)
	}
	if len(conditions) > 0 {
		baseQuery += " AND " + strings.Join(conditions, " AND ")
	}

	page := filter.Page
	if page < 1 {
		page = 1
	}
	pageSize := filter.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	offset := (page - 1) * pageSize

	listQuery := fmt.Sprintf("SELECT %s %s ORDER BY qr_code ASC LIMIT %d OFFSET %d", bicycleColumns, baseQuery, pageSize, offset)
	var bikes []models.Bicycle
	if err := r.db.SelectContext(ctx, &bikes, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list bicycles: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bicycles: %w", err)
	}

	return bikes, total, nil
}

// Create inserts a new fleet unit.
func (r *BicycleRepository) Create(ctx context.Context, bike *models.Bicycle) error {
	if bike.ID == "" {
		bike.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if bike.CreatedAt.IsZero() {
		bike.CreatedAt = now
	}
	bike.UpdatedAt = now

	const query = `INSERT INTO bicycles (id, qr_code, status, model_id, image, ulock, lights, fleet, reflector, created_at, updated_at)
VALUES (:id, :qr_code, :status, :model_id, :image, :ulock, :lights, :fleet, :reflector, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, bike); err != nil {
		return fmt.Errorf("create bicycle: %w", err)
	}
	return nil
}

// Update updates mutable fields of a fleet unit.
func (r *BicycleRepository) Update(ctx context.Context, bike *models.Bicycle) error {
	bike.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bicycles SET status = :status, model_id = :model_id, image = :image,
ulock = :ulock, lights = :lights, fleet = :fleet, reflector = :reflector, updated_at = :updated_at
WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, bike); err != nil {
		return fmt.Errorf("update bicycle: %w", err)
	}
	return nil
}

// CreateHistory appends a note to the bicycle's record.
func (r *BicycleRepository) CreateHistory(ctx context.Context, entry *models.BicycleHistory) error {
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now().UTC()
	}
	const query = `INSERT INTO bicycle_history (id, bicycle_id, description, created_at)
VALUES (:id, :bicycle_id, :description, :created_at)`
	if _, err := r.db.NamedExecContext(ctx, query, entry); err != nil {
		return fmt.Errorf("create bicycle history: %w", err)
	}
	return nil
}

// ListHistory returns the notes on a bicycle's record, newest first.
func (r *BicycleRepository) ListHistory(ctx context.Context, bicycleID string, limit, offset int) ([]models.BicycleHistory, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	const query = `SELECT id, bicycle_id, description, created_at FROM bicycle_history
WHERE bicycle_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`
	var history []models.BicycleHistory
	if err := r.db.SelectContext(ctx, &history, query, bicycleID, limit, offset); err != nil {
		return nil, fmt.Errorf("list bicycle history: %w", err)
	}
	return history, nil
}
