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

const bookingColumns = `id, user_id, bicycle_id, "start", duration, "end", return_schedule, created_at, updated_at`

// BookingRepository provides database access to loans.
type BookingRepository struct {
	db *sqlx.DB
}

// NewBookingRepository constructs the repository.
func NewBookingRepository(db *sqlx.DB) *BookingRepository {
	return &BookingRepository{db: db}
}

// FindByID returns a booking by identifier.
func (r *BookingRepository) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE id = $1 LIMIT 1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, id); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find booking by id: %w", err)
	}
	return &booking, nil
}

// FindActiveByUser returns the user's open loan, if any.
func (r *BookingRepository) FindActiveByUser(ctx context.Context, userID string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE user_id = $1 AND "end" IS NULL
ORDER BY "start" DESC LIMIT 1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, userID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active booking by user: %w", err)
	}
	return &booking, nil
}

// FindActiveByBicycle returns the open loan on a bicycle, if any.
func (r *BookingRepository) FindActiveByBicycle(ctx context.Context, bicycleID string) (*models.Booking, error) {
	query := fmt.Sprintf(`SELECT %s FROM bookings WHERE bicycle_id = $1 AND "end" IS NULL
ORDER BY "start" DESC LIMIT 1`, bookingColumns)
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, bicycleID); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("find active booking by bicycle: %w", err)
	}
	return &booking, nil
}

// List returns bookings with a total count.
func (r *BookingRepository) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	baseQuery := `FROM bookings WHERE 1=1`
	var conditions []string
	var args []interface{}

	if filter.UserID != "" {
		conditions = append(conditions, fmt.Sprintf("user_id = $%d", len(args)+1))
		args = append(args, filter.UserID)
	}
	if filter.Active != nil {
		if *filter.Active {
			conditions = append(conditions, `"end" IS NULL`)
		} else {
			conditions = append(conditions, `"end" IS NOT NULL`)
		}
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

	listQuery := fmt.Sprintf(`SELECT %s %s ORDER BY "start" DESC LIMIT %d OFFSET %d`, bookingColumns, baseQuery, pageSize, offset)
	var bookings []models.Booking
	if err := r.db.SelectContext(ctx, &bookings, listQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("list bookings: %w", err)
	}

	countQuery := fmt.Sprintf("SELECT COUNT(*) %s", baseQuery)
	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("count bookings: %w", err)
	}

	return bookings, total, nil
}

// Create inserts a new loan.
func (r *BookingRepository) Create(ctx context.Context, booking *models.Booking) error {
	if booking.ID == "" {
		booking.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	if booking.CreatedAt.IsZero() {
		booking.CreatedAt = now
	}
	booking.UpdatedAt = now

	const query = `INSERT INTO bookings (id, user_id, bicycle_id, "start", duration, "end", return_schedule, created_at, updated_at)
VALUES (:id, :user_id, :bicycle_id, :start, :duration, :end, :return_schedule, :created_at, :updated_at)`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("create booking: %w", err)
	}
	return nil
}

// Update updates mutable fields of a loan.
func (r *BookingRepository) Update(ctx context.Context, booking *models.Booking) error {
	booking.UpdatedAt = time.Now().UTC()
	const query = `UPDATE bookings SET bicycle_id = :bicycle_id, "start" = :start, duration = :duration,
"end" = :end, return_schedule = :return_schedule, updated_at = :updated_at WHERE id = :id`
	if _, err := r.db.NamedExecContext(ctx, query, booking); err != nil {
		return fmt.Errorf("update booking: %w", err)
	}
	return nil
}

// UpdateReturnSchedule stores the instant the rider committed to return the
// bicycle.
func (r *BookingRepository) UpdateReturnSchedule(ctx context.Context, id string, at time.Time) error {
	const query = `UPDATE bookings SET return_schedule = $2, updated_at = $3 WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id, at, time.Now().UTC()); err != nil {
		return fmt.Errorf("update booking return schedule: %w", err)
	}
	return nil
}

// Terminate closes the open loan on the bicycle carrying the given QR code
// and returns it. sql.ErrNoRows means no open loan matched.
func (r *BookingRepository) Terminate(ctx context.Context, qrCode string, endedAt time.Time) (*models.Booking, error) {
	const query = `UPDATE bookings SET "end" = $2, updated_at = $2
WHERE "end" IS NULL AND bicycle_id = (SELECT id FROM bicycles WHERE qr_code = $1)
RETURNING id, user_id, bicycle_id, "start", duration, "end", return_schedule, created_at, updated_at`
	var booking models.Booking
	if err := r.db.GetContext(ctx, &booking, query, qrCode, endedAt); err != nil {
		if err == sql.ErrNoRows {
			return nil, err
		}
		return nil, fmt.Errorf("terminate booking: %w", err)
	}
	return &booking, nil
}

// ListActiveRiders returns every open loan paired with the rider's commute
// answers.
func (r *BookingRepository) ListActiveRiders(ctx context.Context) ([]models.ActiveBookingRider, error) {
	const query = `SELECT b.id AS booking_id, b."start", u.commune, u.transport
FROM bookings b
JOIN users u ON u.id = b.user_id
WHERE b."end" IS NULL`
	var riders []models.ActiveBookingRider
	if err := r.db.SelectContext(ctx, &riders, query); err != nil {
		return nil, fmt.Errorf("list active riders: %w", err)
	}
	return riders, nil
}

// Delete removes a loan permanently.
func (r *BookingRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM bookings WHERE id = $1`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("delete booking: %w", err)
	}
	return nil
}
