package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
)

type exitFormRepository interface {
	FindByID(ctx context.Context, id string) (*models.ExitForm, error)
	FindByBookingID(ctx context.Context, bookingID string) (*models.ExitForm, error)
	FindByUserID(ctx context.Context, userID string) ([]models.ExitForm, error)
	Upsert(ctx context.Context, form *models.ExitForm) error
}

type exitFormBookingRepository interface {
	FindByID(ctx context.Context, id string) (*models.Booking, error)
}

// ExitFormService provides exit questionnaire use cases.
type ExitFormService struct {
	repo      exitFormRepository
	bookings  exitFormBookingRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewExitFormService constructs an ExitFormService instance.
func NewExitFormService(repo exitFormRepository, bookings exitFormBookingRepository, validate *validator.Validate, logger *zap.Logger) *ExitFormService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &ExitFormService{repo: repo, bookings: bookings, validator: validate, logger: logger}
}

// Upsert writes the exit form for a booking. Repeated writes replace the
// review fields.
func (s *ExitFormService) Upsert(ctx context.Context, req dto.UpsertExitFormRequest) (*models.ExitForm, error) {
	if req.BookingID == "" {
		return nil, appErrors.ErrMissingID
	}
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid exit form payload")
	}

	if _, err := s.bookings.FindByID(ctx, req.BookingID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "booking not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	form := &models.ExitForm{
		BookingID:          req.BookingID,
		BicycleReview:      req.BicycleReview,
		BicycleModelReview: req.BicycleModelReview,
		AccessoryReview:    req.AccessoryReview,
		Suggestions:        req.Suggestions,
		ParkingSpot:        req.ParkingSpot,
	}
	if err := s.repo.Upsert(ctx, form); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to store exit form")
	}
	return form, nil
}

// Get returns one exit form by identifier.
func (s *ExitFormService) Get(ctx context.Context, id string) (*models.ExitForm, error) {
	if id == "" {
		return nil, appErrors.ErrMissingID
	}
	form, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exit form not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exit form")
	}
	return form, nil
}

// GetByBooking returns the exit form attached to a booking.
func (s *ExitFormService) GetByBooking(ctx context.Context, bookingID string) (*models.ExitForm, error) {
	if bookingID == "" {
		return nil, appErrors.ErrMissingID
	}
	form, err := s.repo.FindByBookingID(ctx, bookingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "exit form not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load exit form")
	}
	return form, nil
}

// ListByUser returns the exit forms a user has filled, newest first.
func (s *ExitFormService) ListByUser(ctx context.Context, userID string) ([]models.ExitForm, error) {
	if userID == "" {
		return nil, appErrors.ErrMissingID
	}
	forms, err := s.repo.FindByUserID(ctx, userID)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list exit forms")
	}
	return forms, nil
}
