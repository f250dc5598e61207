package service

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	"github.com/bicired/bicired-api/internal/repository"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
)

type bookingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
	FindActiveByUser(ctx context.Context, userID string) (*models.Booking, error)
	FindActiveByBicycle(ctx context.Context, bicycleID string) (*models.Booking, error)
	List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error)
	Create(ctx context.Context, booking *models.Booking) error
	Update(ctx context.Context, booking *models.Booking) error
	Terminate(ctx context.Context, qrCode string, endedAt time.Time) (*models.Booking, error)
	Delete(ctx context.Context, id string) error
}

type bookingBicycleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Bicycle, error)
}

type bookingSubmissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	Delete(ctx context.Context, id string) error
}

// BookingService provides loan lifecycle use cases: opening a loan from a
// submission, tracking it and closing it at the counter by QR code.
type BookingService struct {
	repo        bookingRepository
	bicycles    bookingBicycleRepository
	submissions bookingSubmissionRepository
	cache       scheduleCache
	validator   *validator.Validate
	logger      *zap.Logger

	now func() time.Time
}

// NewBookingService constructs a BookingService instance.
func NewBookingService(repo bookingRepository, bicycles bookingBicycleRepository, submissions bookingSubmissionRepository, cache scheduleCache, validate *validator.Validate, logger *zap.Logger) *BookingService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BookingService{repo: repo, bicycles: bicycles, submissions: submissions, cache: cache, validator: validate, logger: logger, now: time.Now}
}

// Create opens a loan from a pending submission. The submission is consumed
// on success.
func (s *BookingService) Create(ctx context.Context, req dto.CreateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid booking payload")
	}

	submission, err := s.submissions.FindByID(ctx, req.SubmissionID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSubmissionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	bike, err := s.bicycles.FindByID(ctx, req.BicycleID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrBicycleNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bicycle")
	}
	if bike.Status != models.BicycleEnabled {
		return nil, appErrors.Clone(appErrors.ErrConflict, "bicycle is not available for lending")
	}

	if _, err := s.repo.FindActiveByBicycle(ctx, bike.ID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "bicycle is already on loan")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check bicycle")
	}
	if _, err := s.repo.FindActiveByUser(ctx, submission.UserID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already holds a bicycle")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check bookings")
	}

	start := s.now().UTC()
	if req.Start != "" {
		parsed, err := parseLocalDate(req.Start)
		if err != nil {
			return nil, appErrors.ErrInvalidDate
		}
		start = parsed
	}

	booking := &models.Booking{
		UserID:    submission.UserID,
		BicycleID: bike.ID,
		Start:     start,
		Duration:  req.Duration,
	}
	if err := s.repo.Create(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create booking")
	}

	if err := s.submissions.Delete(ctx, submission.ID); err != nil {
		s.logger.Warn("failed to remove consumed submission", zap.String("submission_id", submission.ID), zap.Error(err))
	}
	s.invalidateAvailability(ctx)
	return booking, nil
}

// Get returns one loan by identifier.
func (s *BookingService) Get(ctx context.Context, id string) (*models.Booking, error) {
	booking, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// GetActiveByUser returns the user's open loan.
func (s *BookingService) GetActiveByUser(ctx context.Context, userID string) (*models.Booking, error) {
	booking, err := s.repo.FindActiveByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "user has no active booking")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}
	return booking, nil
}

// List returns loans matching the filter plus the total count.
func (s *BookingService) List(ctx context.Context, filter models.BookingFilter) ([]models.Booking, int, error) {
	bookings, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bookings")
	}
	return bookings, total, nil
}

// Update applies changes to an open loan.
func (s *BookingService) Update(ctx context.Context, id string, req dto.UpdateBookingRequest) (*models.Booking, error) {
	booking, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if booking.End != nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "booking is already closed")
	}

	if req.Duration != nil {
		if *req.Duration < 1 || *req.Duration > 12 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "duration must be between 1 and 12 months")
		}
		booking.Duration = *req.Duration
	}
	if req.Start != nil {
		start, err := parseLocalDate(*req.Start)
		if err != nil {
			return nil, appErrors.ErrInvalidDate
		}
		booking.Start = start
	}

	if err := s.repo.Update(ctx, booking); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update booking")
	}
	return booking, nil
}

// Terminate closes the open loan holding the bicycle with the given QR
// code, the counter flow when a rider brings a bicycle back.
func (s *BookingService) Terminate(ctx context.Context, req dto.TerminateBookingRequest) (*models.Booking, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid terminate payload")
	}

	booking, err := s.repo.Terminate(ctx, req.QRCode, s.now().UTC())
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "no open loan on this bicycle")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to terminate booking")
	}
	s.invalidateAvailability(ctx)
	return booking, nil
}

// Delete removes a loan permanently. Meant for data corrections.
func (s *BookingService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete booking")
	}
	s.invalidateAvailability(ctx)
	return nil
}

func (s *BookingService) invalidateAvailability(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, repository.CacheKeyAvailableModels)
	}
}
