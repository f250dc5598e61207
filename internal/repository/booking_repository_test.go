package repository

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bicired/bicired-api/internal/models"
)

func newBookingRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func bookingRows(booking models.Booking) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "user_id", "bicycle_id", "start", "duration", "end", "return_schedule", "created_at", "updated_at"}).
		AddRow(booking.ID, booking.UserID, booking.BicycleID, booking.Start, booking.Duration,
			booking.End, booking.ReturnSchedule, booking.CreatedAt, booking.UpdatedAt)
}

func TestBookingRepositoryFindActiveByUser(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	active := models.Booking{
		ID:        "booking-1",
		UserID:    "user-1",
		BicycleID: "bike-1",
		Start:     time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC),
		Duration:  3,
	}
	mock.ExpectQuery(`FROM bookings WHERE user_id = \$1 AND "end" IS NULL`).
		WithArgs("user-1").
		WillReturnRows(bookingRows(active))

	booking, err := repo.FindActiveByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "booking-1", booking.ID)
	assert.Nil(t, booking.End)
}

func TestBookingRepositoryFindActiveByUserMissing(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectQuery(`FROM bookings WHERE user_id = \$1 AND "end" IS NULL`).
		WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindActiveByUser(context.Background(), "user-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBookingRepositoryListActiveFilter(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	active := true
	booking := models.Booking{ID: "booking-1", UserID: "user-1", BicycleID: "bike-1", Start: time.Now(), Duration: 1}

	mock.ExpectQuery(`FROM bookings WHERE 1=1 AND "end" IS NULL ORDER BY "start" DESC`).
		WillReturnRows(bookingRows(booking))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bookings WHERE 1=1 AND "end" IS NULL`).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	bookings, total, err := repo.List(context.Background(), models.BookingFilter{Active: &active})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, bookings, 1)
	assert.Equal(t, "booking-1", bookings[0].ID)
}

func TestBookingRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	mock.ExpectExec("INSERT INTO bookings").
		WillReturnResult(sqlmock.NewResult(1, 1))

	booking := &models.Booking{
		UserID:    "user-1",
		BicycleID: "bike-1",
		Start:     time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC),
		Duration:  3,
	}
	require.NoError(t, repo.Create(context.Background(), booking))
	assert.NotEmpty(t, booking.ID)
	assert.False(t, booking.UpdatedAt.IsZero())
}

func TestBookingRepositoryTerminateByQRCode(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	endedAt := time.Date(2024, 6, 20, 14, 0, 0, 0, time.UTC)
	closed := models.Booking{
		ID:        "booking-1",
		UserID:    "user-1",
		BicycleID: "bike-1",
		Start:     time.Date(2024, 6, 3, 8, 30, 0, 0, time.UTC),
		Duration:  3,
		End:       &endedAt,
	}
	mock.ExpectQuery("UPDATE bookings SET \"end\"").
		WithArgs("QR-0001", endedAt).
		WillReturnRows(bookingRows(closed))

	booking, err := repo.Terminate(context.Background(), "QR-0001", endedAt)
	require.NoError(t, err)
	require.NotNil(t, booking.End)
	assert.True(t, booking.End.Equal(endedAt))
}

func TestBookingRepositoryTerminateNoOpenLoan(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	endedAt := time.Now().UTC()
	mock.ExpectQuery("UPDATE bookings SET \"end\"").
		WithArgs("QR-0404", endedAt).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Terminate(context.Background(), "QR-0404", endedAt)
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestBookingRepositoryUpdateReturnSchedule(t *testing.T) {
	db, mock, cleanup := newBookingRepoMock(t)
	defer cleanup()
	repo := NewBookingRepository(db)

	at := time.Date(2024, 6, 21, 10, 0, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE bookings SET return_schedule").
		WithArgs("booking-1", at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdateReturnSchedule(context.Background(), "booking-1", at))
}
