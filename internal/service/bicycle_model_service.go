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

const availableModelsTTL = 2 * time.Minute

type bicycleModelRepository interface {
	FindByID(ctx context.Context, id string) (*models.BicycleModel, error)
	List(ctx context.Context) ([]models.BicycleModel, error)
	ListAvailable(ctx context.Context) ([]models.AvailableBicycleModel, error)
	Create(ctx context.Context, model *models.BicycleModel) error
	Update(ctx context.Context, model *models.BicycleModel) error
	Delete(ctx context.Context, id string) error
}

// BicycleModelService provides catalog use cases, including the availability
// counts new submissions are checked against.
type BicycleModelService struct {
	repo      bicycleModelRepository
	cache     scheduleCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBicycleModelService constructs a BicycleModelService instance.
func NewBicycleModelService(repo bicycleModelRepository, cache scheduleCache, validate *validator.Validate, logger *zap.Logger) *BicycleModelService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BicycleModelService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns one model by identifier.
func (s *BicycleModelService) Get(ctx context.Context, id string) (*models.BicycleModel, error) {
	model, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "bicycle model not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bicycle model")
	}
	return model, nil
}

// List returns the whole catalog.
func (s *BicycleModelService) List(ctx context.Context) ([]models.BicycleModel, error) {
	out, err := s.repo.List(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bicycle models")
	}
	return out, nil
}

// ListAvailable returns the catalog with per-model availability counts. The
// counts are cached briefly; stock moves slowly.
func (s *BicycleModelService) ListAvailable(ctx context.Context) ([]models.AvailableBicycleModel, error) {
	if s.cache != nil {
		var cached []models.AvailableBicycleModel
		if err := s.cache.Get(ctx, repository.CacheKeyAvailableModels, &cached); err == nil {
			return cached, nil
		}
	}

	available, err := s.repo.ListAvailable(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list available models")
	}

	if s.cache != nil {
		if err := s.cache.Set(ctx, repository.CacheKeyAvailableModels, available, availableModelsTTL); err != nil {
			s.logger.Warn("failed to cache available models", zap.Error(err))
		}
	}
	return available, nil
}

// Create registers a bookable model.
func (s *BicycleModelService) Create(ctx context.Context, req dto.CreateBicycleModelRequest) (*models.BicycleModel, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bicycle model payload")
	}

	model := &models.BicycleModel{Name: req.Name, Description: req.Description, Image: req.Image}
	if err := s.repo.Create(ctx, model); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create bicycle model")
	}
	s.invalidate(ctx)
	return model, nil
}

// Update applies changes to a model.
func (s *BicycleModelService) Update(ctx context.Context, id string, req dto.UpdateBicycleModelRequest) (*models.BicycleModel, error) {
	model, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		model.Name = *req.Name
	}
	if req.Description != nil {
		model.Description = *req.Description
	}
	if req.Image != nil {
		model.Image = *req.Image
	}

	if err := s.repo.Update(ctx, model); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update bicycle model")
	}
	s.invalidate(ctx)
	return model, nil
}

// Delete removes a model from the catalog.
func (s *BicycleModelService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Clone(appErrors.ErrConflict, "bicycle model is still referenced by fleet units")
	}
	s.invalidate(ctx)
	return nil
}

func (s *BicycleModelService) invalidate(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, repository.CacheKeyAvailableModels)
	}
}
