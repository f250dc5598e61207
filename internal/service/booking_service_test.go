package service

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
)

type loanRepoStub struct {
	byID        map[string]*models.Booking
	activeUser  map[string]*models.Booking
	activeBike  map[string]*models.Booking
	created     []*models.Booking
	terminated  []string
	terminateTo *models.Booking
}

func (s *loanRepoStub) FindByID(ctx context.Context, id string) (*models.Booking, error) {
	if b, ok := s.byID[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (s *loanRepoStub) FindActiveByUser(ctx context.Context, userID string) (*models.Booking, error) {
	if b, ok := s.activeUser[userID]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (s *loanRepoStub) FindActiveByBicycle(ctx context.Context, bicycleID string) (*models.Booking, error) {
	if b, ok := s.activeBike[bicycleID]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

func (s *loanRepoStub) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	return nil, 0, nil
}

func (s *loanRepoStub) Create(ctx context.Context, booking *models.Booking) error {
	s.created = append(s.created, booking)
	return nil
}

func (s *loanRepoStub) Update(ctx context.Context, booking *models.Booking) error {
	return nil
}

func (s *loanRepoStub) Terminate(ctx context.Context, qrCode string, endedAt time.Time) (*models.Booking, error) {
	if s.terminateTo == nil {
		return nil, sql.ErrNoRows
	}
	s.terminated = append(s.terminated, qrCode)
	out := *s.terminateTo
	out.End = &endedAt
	return &out, nil
}

func (s *loanRepoStub) Delete(ctx context.Context, id string) error {
	delete(s.byID, id)
	return nil
}

type loanBicycleRepoStub struct {
	bikes map[string]*models.Bicycle
}

func (s *loanBicycleRepoStub) FindByID(ctx context.Context, id string) (*models.Bicycle, error) {
	if b, ok := s.bikes[id]; ok {
		return b, nil
	}
	return nil, sql.ErrNoRows
}

type loanSubmissionRepoStub struct {
	byID    map[string]*models.Submission
	deleted []string
}

func (s *loanSubmissionRepoStub) FindByID(ctx context.Context, id string) (*models.Submission, error) {
	if sub, ok := s.byID[id]; ok {
		return sub, nil
	}
	return nil, sql.ErrNoRows
}

func (s *loanSubmissionRepoStub) Delete(ctx context.Context, id string) error {
	s.deleted = append(s.deleted, id)
	return nil
}

func newTestBookingService(repo *loanRepoStub, bikes *loanBicycleRepoStub, subs *loanSubmissionRepoStub) *BookingService {
	return NewBookingService(repo, bikes, subs, nil, nil, nil)
}

func TestBookingCreateConsumesSubmission(t *testing.T) {
	repo := &loanRepoStub{}
	bikes := &loanBicycleRepoStub{bikes: map[string]*models.Bicycle{
		"bike-1": {ID: "bike-1", Status: models.BicycleEnabled},
	}}
	subs := &loanSubmissionRepoStub{byID: map[string]*models.Submission{
		"sub-1": {ID: "sub-1", UserID: "rider-1", BicycleModelID: "model-1"},
	}}
	svc := newTestBookingService(repo, bikes, subs)

	booking, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		SubmissionID: "sub-1",
		BicycleID:    "bike-1",
		Duration:     3,
	})
	require.NoError(t, err)
	assert.Equal(t, "rider-1", booking.UserID)
	assert.Equal(t, "bike-1", booking.BicycleID)
	require.Len(t, repo.created, 1)
	assert.Equal(t, []string{"sub-1"}, subs.deleted)
}

func TestBookingCreateRejectsDisabledBicycle(t *testing.T) {
	repo := &loanRepoStub{}
	bikes := &loanBicycleRepoStub{bikes: map[string]*models.Bicycle{
		"bike-1": {ID: "bike-1", Status: models.BicycleStatus("EN_REPARACION")},
	}}
	subs := &loanSubmissionRepoStub{byID: map[string]*models.Submission{
		"sub-1": {ID: "sub-1", UserID: "rider-1"},
	}}
	svc := newTestBookingService(repo, bikes, subs)

	_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		SubmissionID: "sub-1",
		BicycleID:    "bike-1",
		Duration:     3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Empty(t, repo.created)
}

func TestBookingCreateRejectsBusyBicycle(t *testing.T) {
	repo := &loanRepoStub{activeBike: map[string]*models.Booking{
		"bike-1": {ID: "b-1", BicycleID: "bike-1"},
	}}
	bikes := &loanBicycleRepoStub{bikes: map[string]*models.Bicycle{
		"bike-1": {ID: "bike-1", Status: models.BicycleEnabled},
	}}
	subs := &loanSubmissionRepoStub{byID: map[string]*models.Submission{
		"sub-1": {ID: "sub-1", UserID: "rider-1"},
	}}
	svc := newTestBookingService(repo, bikes, subs)

	_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		SubmissionID: "sub-1",
		BicycleID:    "bike-1",
		Duration:     3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateRejectsSecondLoan(t *testing.T) {
	repo := &loanRepoStub{activeUser: map[string]*models.Booking{
		"rider-1": {ID: "b-1", UserID: "rider-1"},
	}}
	bikes := &loanBicycleRepoStub{bikes: map[string]*models.Bicycle{
		"bike-1": {ID: "bike-1", Status: models.BicycleEnabled},
	}}
	subs := &loanSubmissionRepoStub{byID: map[string]*models.Submission{
		"sub-1": {ID: "sub-1", UserID: "rider-1"},
	}}
	svc := newTestBookingService(repo, bikes, subs)

	_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		SubmissionID: "sub-1",
		BicycleID:    "bike-1",
		Duration:     3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestBookingCreateMissingSubmission(t *testing.T) {
	svc := newTestBookingService(&loanRepoStub{}, &loanBicycleRepoStub{}, &loanSubmissionRepoStub{})

	_, err := svc.Create(context.Background(), dto.CreateBookingRequest{
		SubmissionID: "ghost",
		BicycleID:    "bike-1",
		Duration:     3,
	})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrSubmissionNotFound.Code, appErrors.FromError(err).Code)
}

func TestBookingUpdateRejectsClosedLoan(t *testing.T) {
	ended := time.Now().UTC()
	repo := &loanRepoStub{byID: map[string]*models.Booking{
		"b-1": {ID: "b-1", End: &ended},
	}}
	svc := newTestBookingService(repo, &loanBicycleRepoStub{}, &loanSubmissionRepoStub{})

	duration := 6
	_, err := svc.Update(context.Background(), "b-1", dto.UpdateBookingRequest{Duration: &duration})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
}

func TestBookingUpdateRejectsBadDuration(t *testing.T) {
	repo := &loanRepoStub{byID: map[string]*models.Booking{
		"b-1": {ID: "b-1"},
	}}
	svc := newTestBookingService(repo, &loanBicycleRepoStub{}, &loanSubmissionRepoStub{})

	duration := 24
	_, err := svc.Update(context.Background(), "b-1", dto.UpdateBookingRequest{Duration: &duration})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestBookingTerminateByQRCode(t *testing.T) {
	repo := &loanRepoStub{terminateTo: &models.Booking{ID: "b-1", UserID: "rider-1", BicycleID: "bike-1"}}
	svc := newTestBookingService(repo, &loanBicycleRepoStub{}, &loanSubmissionRepoStub{})

	booking, err := svc.Terminate(context.Background(), dto.TerminateBookingRequest{QRCode: "QR-42"})
	require.NoError(t, err)
	require.NotNil(t, booking.End)
	assert.Equal(t, []string{"QR-42"}, repo.terminated)
}

func TestBookingTerminateWithoutOpenLoan(t *testing.T) {
	svc := newTestBookingService(&loanRepoStub{}, &loanBicycleRepoStub{}, &loanSubmissionRepoStub{})

	_, err := svc.Terminate(context.Background(), dto.TerminateBookingRequest{QRCode: "QR-42"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}
