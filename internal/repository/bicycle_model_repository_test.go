package repository

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bicired/bicired-api/internal/models"
)

func newBicycleModelRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func TestBicycleModelRepositoryListAvailable(t *testing.T) {
	db, mock, cleanup := newBicycleModelRepoMock(t)
	defer cleanup()
	repo := NewBicycleModelRepository(db)

	rows := sqlmock.NewRows([]string{"id", "name", "description", "image", "created_at", "updated_at", "available"}).
		AddRow("model-1", "Oxford", "urbana aro 28", "oxford.jpg", time.Now(), time.Now(), 3).
		AddRow("model-2", "Trek", "montaña aro 29", "trek.jpg", time.Now(), time.Now(), 0)
	mock.ExpectQuery("FROM bicycle_models m").
		WillReturnRows(rows)

	available, err := repo.ListAvailable(context.Background())
	require.NoError(t, err)
	require.Len(t, available, 2)
	assert.Equal(t, 3, available[0].Available)
	assert.Equal(t, 0, available[1].Available)
	assert.Equal(t, "Oxford", available[0].Name)
}

func TestBicycleModelRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newBicycleModelRepoMock(t)
	defer cleanup()
	repo := NewBicycleModelRepository(db)

	mock.ExpectExec("INSERT INTO bicycle_models").
		WillReturnResult(sqlmock.NewResult(1, 1))

	model := &models.BicycleModel{Name: "Oxford", Description: "urbana aro 28", Image: "oxford.jpg"}
	require.NoError(t, repo.Create(context.Background(), model))
	assert.NotEmpty(t, model.ID)
}
