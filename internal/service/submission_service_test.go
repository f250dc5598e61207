package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
)

type applicationRepoStub struct {
	byID       map[string]*models.Submission
	byUser     map[string]*models.Submission
	created    []*models.Submission
	reassigned map[string]string
}

func (s *applicationRepoStub) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if sub, ok := s.byID[id]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (s *applicationRepoStub) FindByUser(ctx context.Context, userID string) (*models.Submission, error) {
	if sub, ok := s.byUser[userID]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (s *applicationRepoStub) List(ctx context.Context) ([]models.Submission, error) {
	return nil, nil
}

func (s *applicationRepoStub) Create(ctx context.Context, submission *models.Submission) error {
	s.created = append(s.created, submission)
	return nil
}

func (s *applicationRepoStub) Reassign(ctx context.Context, id, bicycleModelID string) error {
	if s.reassigned == nil {
		s.reassigned = map[string]string{}
	}
	s.reassigned[id] = bicycleModelID
	if sub, ok := s.byID[id]; ok {
		sub.BicycleModelID = bicycleModelID
		sub.PickupSchedule = nil
	}
	return nil
}

func (s *applicationRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

type catalogRepoStub struct {
	available []models.AvailableBicycleModel
}

func (s *catalogRepoStub) ListAvailable(ctx context.Context) ([]models.AvailableBicycleModel, error) {
	return s.available, nil
}

type riderLoanRepoStub struct {
	active map[string]*models.Booking
}

func (s *riderLoanRepoStub) FindActiveByUser(ctx context.Context, userID string) (*models.Booking, error) {
	if b, ok := s.active[userID]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func availableModel(id string, count int) models.AvailableBicycleModel {
	m := models.AvailableBicycleModel{Available: count}
	m.ID = id
	return m
}

func newTestSubmissionService(repo *applicationRepoStub, catalog *catalogRepoStub, loans *riderLoanRepoStub) *SubmissionService {
	return NewSubmissionService(repo, catalog, loans, nil, nil, nil)
}

func TestSubmissionCreate(t *testing.T) {
	repo := &applicationRepoStub{}
	catalog := &catalogRepoStub{available: []models.AvailableBicycleModel{availableModel("model-1", 2)}}
	svc := newTestSubmissionService(repo, catalog, &riderLoanRepoStub{})

	submission, err := svc.Create(context.Background(), "rider-1", dto.CreateSubmissionRequest{BicycleModelID: "model-1"})
	require.NoError(t, err)
	assert.Equal(t, "rider-1", submission.UserID)
	assert.Equal(t, "model-1", submission.BicycleModelID)
	require.Len(t, repo.created, 1)
}

func TestSubmissionCreateRejectsSecondApplication(t *testing.T) {
	repo := &applicationRepoStub{byUser: map[string]*models.Submission{
		"rider-1": {ID: "sub-1", UserID: "rider-1"},
	}}
	catalog := &catalogRepoStub{available: []models.AvailableBicycleModel{availableModel("model-1", 2)}}
	svc := newTestSubmissionService(repo, catalog, &riderLoanRepoStub{})

	_, err := svc.Create(context.Background(), "rider-1", dto.CreateSubmissionRequest{BicycleModelID: "model-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubmissionCreateRejectsActiveBorrower(t *testing.T) {
	catalog := &catalogRepoStub{available: []models.AvailableBicycleModel{availableModel("model-1", 2)}}
	loans := &riderLoanRepoStub{active: map[string]*models.Booking{
		"rider-1": {ID: "b-1", UserID: "rider-1"},
	}}
	svc := newTestSubmissionService(&applicationRepoStub{}, catalog, loans)

	_, err := svc.Create(context.Background(), "rider-1", dto.CreateSubmissionRequest{BicycleModelID: "model-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubmissionCreateRejectsExhaustedModel(t *testing.T) {
	catalog := &catalogRepoStub{available: []models.AvailableBicycleModel{availableModel("model-1", 0)}}
	svc := newTestSubmissionService(&applicationRepoStub{}, catalog, &riderLoanRepoStub{})

	_, err := svc.Create(context.Background(), "rider-1", dto.CreateSubmissionRequest{BicycleModelID: "model-1"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestSubmissionCreateUnknownModel(t *testing.T) {
	catalog := &catalogRepoStub{available: []models.AvailableBicycleModel{availableModel("model-1", 2)}}
	svc := newTestSubmissionService(&applicationRepoStub{}, catalog, &riderLoanRepoStub{})

	_, err := svc.Create(context.Background(), "rider-1", dto.CreateSubmissionRequest{BicycleModelID: "ghost"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestSubmissionReassignClearsPickup(t *testing.T) {
	repo := &applicationRepoStub{byID: map[string]*models.Submission{
		"sub-1": {ID: "sub-1", UserID: "rider-1", BicycleModelID: "model-1"},
	}}
	catalog := &catalogRepoStub{available: []models.AvailableBicycleModel{
		availableModel("model-1", 0),
		availableModel("model-2", 1),
	}}
	svc := newTestSubmissionService(repo, catalog, &riderLoanRepoStub{})

	submission, err := svc.Reassign(context.Background(), "sub-1", dto.ReassignSubmissionRequest{BicycleModelID: "model-2"})
	require.NoError(t, err)
	assert.Equal(t, "model-2", submission.BicycleModelID)
	assert.Nil(t, submission.PickupSchedule)
	assert.Equal(t, "model-2", repo.reassigned["sub-1"])
}

func TestSubmissionReassignRejectsExhaustedTarget(t *testing.T) {
	repo := &applicationRepoStub{byID: map[string]*models.Submission{
		"sub-1": {ID: "sub-1", UserID: "rider-1", BicycleModelID: "model-1"},
	}}
	catalog := &catalogRepoStub{available: []models.AvailableBicycleModel{availableModel("model-2", 0)}}
	svc := newTestSubmissionService(repo, catalog, &riderLoanRepoStub{})

	_, err := svc.Reassign(context.Background(), "sub-1", dto.ReassignSubmissionRequest{BicycleModelID: "model-2"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.reassigned)
}

func TestSubmissionGetByUserMissing(t *testing.T) {
	svc := newTestSubmissionService(&applicationRepoStub{}, &catalogRepoStub{}, &riderLoanRepoStub{})

	_, err := svc.GetByUser(context.Background(), "rider-1")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSubmissionNotFound.Code, appErrors.FromError(err).Code)
}
