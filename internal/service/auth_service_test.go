package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
)

type sessionUserRepoStub struct {
	usersByEmail  map[string]*models.User
	usersByID     map[string]*models.User
	tokens        map[string]*models.RefreshToken
	created       []*models.RefreshToken
	revoked       []string
	passwordSet   string
	revokedAllFor string
	lastLogin     map[string]time.Time
}

func (s *sessionUserRepoStub) FindByEmail(ctx context.Context, email string) (*models.User, error) {
	if u, ok := s.usersByEmail[email]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sessionUserRepoStub) FindByID(ctx context.Context, id string) (*models.User, error) {
	if u, ok := s.usersByID[id]; ok {
		return u, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sessionUserRepoStub) UpdateLastLogin(ctx context.Context, id string, ts time.Time) error {
	if s.lastLogin == nil {
		s.lastLogin = map[string]time.Time{}
	}
	s.lastLogin[id] = ts
	return nil
}

func (s *sessionUserRepoStub) UpdatePassword(ctx context.Context, id, passwordHash string, updatedAt time.Time) error {
	s.passwordSet = passwordHash
	return nil
}

func (s *sessionUserRepoStub) RevokeUserRefreshTokens(ctx context.Context, userID string) error {
	s.revokedAllFor = userID
	return nil
}

func (s *sessionUserRepoStub) CreateRefreshToken(ctx context.Context, token *models.RefreshToken) error {
	s.created = append(s.created, token)
	return nil
}

func (s *sessionUserRepoStub) FindRefreshToken(ctx context.Context, token string) (*models.RefreshToken, error) {
	if t, ok := s.tokens[token]; ok {
		return t, nil
	}
	return nil, sql.ErrNoRows
}

func (s *sessionUserRepoStub) RevokeRefreshToken(ctx context.Context, id string, revokedAt time.Time) error {
	s.revoked = append(s.revoked, id)
	return nil
}

func hashFor(t *testing.T, password string) string {
	t.Helper()
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	require.NoError(t, err)
	return string(hash)
}

func testAuthConfig() AuthConfig {
	return AuthConfig{
		AccessTokenSecret:  "test-secret",
		AccessTokenExpiry:  15 * time.Minute,
		RefreshTokenExpiry: 24 * time.Hour,
		Issuer:             "bicired-api",
	}
}

func activeRider(t *testing.T, password string) *models.User {
	return &models.User{
		ID:           "user-1",
		Email:        "rider@uc.cl",
		PasswordHash: hashFor(t, password),
		Name:         "Maria",
		LastName:     "Rojas",
		Role:         models.RoleRider,
		Active:       true,
	}
}

func TestLoginIssuesTokenPair(t *testing.T) {
	user := activeRider(t, "hunter2secret")
	repo := &sessionUserRepoStub{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "hunter2secret"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEmpty(t, resp.RefreshToken)
	assert.Equal(t, user.ID, resp.User.ID)
	assert.Equal(t, models.RoleRider, resp.User.Role)
	require.Len(t, repo.created, 1)
	assert.Equal(t, user.ID, repo.created[0].UserID)
	assert.Contains(t, repo.lastLogin, user.ID)

	claims, err := svc.ValidateToken(resp.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, user.ID, claims.UserID)
	assert.Equal(t, user.Email, claims.Email)
}

func TestLoginUnknownEmail(t *testing.T) {
	svc := NewAuthService(&sessionUserRepoStub{}, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: "nobody@uc.cl", Password: "whatever1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnregisteredUser.Code, appErrors.FromError(err).Code)
}

func TestLoginWrongPassword(t *testing.T) {
	user := activeRider(t, "hunter2secret")
	repo := &sessionUserRepoStub{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "not-the-one"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInvalidCredentials.Code, appErrors.FromError(err).Code)
}

func TestLoginInactiveAccount(t *testing.T) {
	user := activeRider(t, "hunter2secret")
	user.Active = false
	repo := &sessionUserRepoStub{usersByEmail: map[string]*models.User{user.Email: user}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.Login(context.Background(), models.LoginRequest{Email: user.Email, Password: "hunter2secret"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrInactiveAccount.Code, appErrors.FromError(err).Code)
}

func TestRefreshRotatesToken(t *testing.T) {
	user := activeRider(t, "hunter2secret")
	stored := &models.RefreshToken{
		ID:        "tok-1",
		UserID:    user.ID,
		Token:     "opaque-1",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
	}
	repo := &sessionUserRepoStub{
		usersByID: map[string]*models.User{user.ID: user},
		tokens:    map[string]*models.RefreshToken{stored.Token: stored},
	}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	resp, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "opaque-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.AccessToken)
	assert.NotEqual(t, "opaque-1", resp.RefreshToken)
	assert.Equal(t, []string{"tok-1"}, repo.revoked)
	require.Len(t, repo.created, 1)
}

func TestRefreshRejectsExpiredToken(t *testing.T) {
	stored := &models.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-1",
		Token:     "opaque-1",
		ExpiresAt: time.Now().UTC().Add(-time.Minute),
	}
	repo := &sessionUserRepoStub{tokens: map[string]*models.RefreshToken{stored.Token: stored}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "opaque-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestRefreshRejectsRevokedToken(t *testing.T) {
	stored := &models.RefreshToken{
		ID:        "tok-1",
		UserID:    "user-1",
		Token:     "opaque-1",
		ExpiresAt: time.Now().UTC().Add(time.Hour),
		Revoked:   true,
	}
	repo := &sessionUserRepoStub{tokens: map[string]*models.RefreshToken{stored.Token: stored}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	_, err := svc.RefreshToken(context.Background(), models.RefreshTokenRequest{RefreshToken: "opaque-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSessionExpired.Code, appErrors.FromError(err).Code)
}

func TestLogoutRejectsForeignToken(t *testing.T) {
	stored := &models.RefreshToken{ID: "tok-1", UserID: "user-1", Token: "opaque-1", ExpiresAt: time.Now().UTC().Add(time.Hour)}
	repo := &sessionUserRepoStub{tokens: map[string]*models.RefreshToken{stored.Token: stored}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.Logout(context.Background(), "opaque-1", "someone-else")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.revoked)
}

func TestChangePasswordRevokesSessions(t *testing.T) {
	user := activeRider(t, "old-password1")
	repo := &sessionUserRepoStub{usersByID: map[string]*models.User{user.ID: user}}
	svc := NewAuthService(repo, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), user.ID, "old-password1", "new-password1")
	require.NoError(t, err)
	assert.NotEmpty(t, repo.passwordSet)
	assert.Equal(t, user.ID, repo.revokedAllFor)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(repo.passwordSet), []byte("new-password1")))
}

func TestChangePasswordRejectsShortPassword(t *testing.T) {
	svc := NewAuthService(&sessionUserRepoStub{}, nil, nil, testAuthConfig())

	err := svc.ChangePassword(context.Background(), "user-1", "old-password1", "short")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestValidateTokenRejectsGarbage(t *testing.T) {
	svc := NewAuthService(&sessionUserRepoStub{}, nil, nil, testAuthConfig())

	_, err := svc.ValidateToken("not-a-jwt")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrUnauthorized.Code, appErrors.FromError(err).Code)
}
