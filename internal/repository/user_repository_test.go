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

func newUserRepoMock(t *testing.T) (*sqlx.DB, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	sqlxDB := sqlx.NewDb(db, "postgres")
	return sqlxDB, mock, func() {
		sqlxDB.Close()
		db.Close()
	}
}

func userRows(user models.User) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "email", "password_hash", "name", "last_name", "address", "city",
		"birthday", "occupancy", "academic_unit", "commune", "transport", "signature", "role", "active",
		"last_login", "created_at", "updated_at"}).
		AddRow(user.ID, user.Email, user.PasswordHash, user.Name, user.LastName, user.Address, user.City,
			user.Birthday, user.Occupancy, user.AcademicUnit, user.Commune, user.Transport, user.Signature,
			user.Role, user.Active, user.LastLogin, user.CreatedAt, user.UpdatedAt)
}

func TestUserRepositoryFindByEmail(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	stored := models.User{
		ID:           "user-1",
		Email:        "ana@example.cl",
		PasswordHash: "hash",
		Name:         "Ana",
		LastName:     "Rojas",
		Role:         models.RoleRider,
		Active:       true,
	}
	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("ana@example.cl").
		WillReturnRows(userRows(stored))

	user, err := repo.FindByEmail(context.Background(), "ana@example.cl")
	require.NoError(t, err)
	assert.Equal(t, "user-1", user.ID)
	assert.Equal(t, models.RoleRider, user.Role)
}

func TestUserRepositoryFindByEmailMissing(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectQuery(`FROM users WHERE email = \$1`).
		WithArgs("nobody@example.cl").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.FindByEmail(context.Background(), "nobody@example.cl")
	assert.ErrorIs(t, err, sql.ErrNoRows)
}

func TestUserRepositoryListWithRoleFilter(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	role := models.RoleStaff
	stored := models.User{ID: "user-2", Email: "staff@example.cl", Role: models.RoleStaff, Active: true}

	mock.ExpectQuery(`FROM users WHERE 1=1 AND role = \$1`).
		WithArgs(role).
		WillReturnRows(userRows(stored))
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM users WHERE 1=1 AND role = \$1`).
		WithArgs(role).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(1))

	users, total, err := repo.List(context.Background(), models.UserFilter{Role: &role})
	require.NoError(t, err)
	assert.Equal(t, 1, total)
	require.Len(t, users, 1)
	assert.Equal(t, models.RoleStaff, users[0].Role)
}

func TestUserRepositoryCreate(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO users").
		WillReturnResult(sqlmock.NewResult(1, 1))

	user := &models.User{
		Email:        "nuevo@example.cl",
		PasswordHash: "hash",
		Name:         "Nuevo",
		LastName:     "Usuario",
		Role:         models.RoleRider,
		Active:       true,
	}
	require.NoError(t, repo.Create(context.Background(), user))
	assert.NotEmpty(t, user.ID)
}

func TestUserRepositoryDeleteIsSoft(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("UPDATE users SET active = FALSE").
		WithArgs("user-1", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete(context.Background(), "user-1"))
}

func TestUserRepositoryHistory(t *testing.T) {
	db, mock, cleanup := newUserRepoMock(t)
	defer cleanup()
	repo := NewUserRepository(db)

	mock.ExpectExec("INSERT INTO user_history").
		WillReturnResult(sqlmock.NewResult(1, 1))
	entry := &models.UserHistory{UserID: "user-1", Description: "entregó candado de repuesto"}
	require.NoError(t, repo.CreateHistory(context.Background(), entry))
	assert.NotEmpty(t, entry.ID)

	rows := sqlmock.NewRows([]string{"id", "user_id", "description", "created_at"}).
		AddRow(entry.ID, "user-1", entry.Description, time.Now())
	mock.ExpectQuery("SELECT id, user_id, description, created_at FROM user_history").
		WithArgs("user-1", 50, 0).
		WillReturnRows(rows)

	history, err := repo.ListHistory(context.Background(), "user-1", 0, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, entry.Description, history[0].Description)
}
