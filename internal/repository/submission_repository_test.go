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

func newSubmissionRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestSubmissionRepositoryFindByUser(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	pickup := time.Date(2024, 6, 4, 10, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{"id", "user_id", "bicycle_model_id", "pickup_schedule", "created_at", "updated_at"}).
		AddRow("sub-1", "user-1", "model-1", &pickup, time.Now(), time.Now())
	mock.ExpectQuery(`FROM submissions WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnRows(rows)

	submission, err := repo.FindByUser(context.Background(), "user-1")
	require.NoError(t, err)
	assert.Equal(t, "sub-1", submission.ID)
	require.NotNil(t, submission.PickupSchedule)
	assert.True(t, submission.PickupSchedule.Equal(pickup))
}

func TestSubmissionRepositoryFindByUserMissing(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectQuery(`FROM submissions WHERE user_id = \$1`).
		WithArgs("user-1").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByUser(context.Background(), "user-1")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestSubmissionRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("INSERT INTO submissions").
		WillReturnResult(sqlmock.NewResult(1, 1))

	submission := &models.Submission{UserID: "user-1", BicycleModelID: "model-1"}
	require.NoError(t, repo.Create(context.Background(), submission))
	assert.NotEmpty(t, submission.ID)
	assert.Nil(t, submission.PickupSchedule)
}

func TestSubmissionRepositoryReassignClearsPickup(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("UPDATE submissions SET bicycle_model_id").
		WithArgs("sub-1", "model-2", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Reassign(context.Background(), "sub-1", "model-2"))
}

func TestSubmissionRepositoryUpdatePickupSchedule(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	at := time.Date(2024, 6, 5, 11, 30, 0, 0, time.UTC)
	mock.ExpectExec("UPDATE submissions SET pickup_schedule").
		WithArgs("sub-1", at, sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.UpdatePickupSchedule(context.Background(), "sub-1", at))
}

func TestSubmissionRepositoryDelete(t *testing.T) {
	db, mock, cleanup := newSubmissionRepoMock(t)
	defer cleanup()
	repo := NewSubmissionRepository(db)

	mock.ExpectExec("DELETE FROM submissions").
		WithArgs("sub-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "sub-1"))
}
