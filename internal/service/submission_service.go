package service

import (
	"context"
	"database/sql"
	"errors"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	"github.com/bicired/bicired-api/internal/repository"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
)

type submissionRepository interface {
	FindByID(ctx context.Context, id string) (*models.Submission, error)
	FindByUser(ctx context.Context, userID string) (*models.Submission, error)
	List(ctx context.Context) ([]models.Submission, error)
	Create(ctx context.Context, submission *models.Submission) error
	Reassign(ctx context.Context, id, bicycleModelID string) error
	Delete(ctx context.Context, id string) error
}

type submissionModelRepository interface {
	ListAvailable(ctx context.Context) ([]models.AvailableBicycleModel, error)
}

// SubmissionService provides loan application use cases.
type SubmissionService struct {
	repo      submissionRepository
	modelRepo submissionModelRepository
	bookings  userBookingRepository
	cache     scheduleCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSubmissionService constructs a SubmissionService instance.
func NewSubmissionService(repo submissionRepository, modelRepo submissionModelRepository, bookings userBookingRepository, cache scheduleCache, validate *validator.Validate, logger *zap.Logger) *SubmissionService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &SubmissionService{repo: repo, modelRepo: modelRepo, bookings: bookings, cache: cache, validator: validate, logger: logger}
}

// Create opens a loan application for a rider. A rider can hold at most one
// pending submission and no active loan, and the requested model must still
// have units available.
func (s *SubmissionService) Create(ctx context.Context, userID string, req dto.CreateSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid submission payload")
	}

	if _, err := s.repo.FindByUser(ctx, userID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already has a pending submission")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check submissions")
	}

	if _, err := s.bookings.FindActiveByUser(ctx, userID); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "user already holds a bicycle")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check bookings")
	}

	if err := s.checkAvailability(ctx, req.BicycleModelID); err != nil {
		return nil, err
	}

	submission := &models.Submission{UserID: userID, BicycleModelID: req.BicycleModelID}
	if err := s.repo.Create(ctx, submission); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create submission")
	}
	s.invalidateAvailability(ctx)
	return submission, nil
}

// Get returns one submission by identifier.
func (s *SubmissionService) Get(ctx context.Context, id string) (*models.Submission, error) {
	submission, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSubmissionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}

// GetByUser returns the user's pending submission.
func (s *SubmissionService) GetByUser(ctx context.Context, userID string) (*models.Submission, error) {
	submission, err := s.repo.FindByUser(ctx, userID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrSubmissionNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}
	return submission, nil
}

// List returns every pending submission, oldest first.
func (s *SubmissionService) List(ctx context.Context) ([]models.Submission, error) {
	submissions, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list submissions")
	}
	return submissions, nil
}

// Reassign points a submission at another model and clears its pickup
// commitment.
func (s *SubmissionService) Reassign(ctx context.Context, id string, req dto.ReassignSubmissionRequest) (*models.Submission, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid reassign payload")
	}

	if _, err := s.Get(ctx, id); err != nil {
		return nil, err
	}
	if err := s.checkAvailability(ctx, req.BicycleModelID); err != nil {
		return nil, err
	}

	if err := s.repo.Reassign(ctx, id, req.BicycleModelID); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to reassign submission")
	}
	s.invalidateAvailability(ctx)
	return s.Get(ctx, id)
}

// Delete withdraws a submission.
func (s *SubmissionService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete submission")
	}
	s.invalidateAvailability(ctx)
	return nil
}

func (s *SubmissionService) checkAvailability(ctx context.Context, modelID string) error {
	available, err := s.modelRepo.ListAvailable(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check availability")
	}
	for _, model := range available {
		if model.ID == modelID {
			if model.Available <= 0 {
				return appErrors.Clone(appErrors.ErrConflict, "no units of this model are available")
			}
			return nil
		}
	}
	return appErrors.Clone(appErrors.ErrNotFound, "bicycle model not found")
}

func (s *SubmissionService) invalidateAvailability(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, repository.CacheKeyAvailableModels)
	}
}
