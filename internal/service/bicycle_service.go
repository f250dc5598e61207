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

type bicycleRepository interface {
	FindByID(ctx context.Context, id string) (*models.Bicycle, error)
	FindByQRCode(ctx context.Context, qrCode string) (*models.Bicycle, error)
	List(ctx context.Context, filter models.BicycleFilter) ([]models.Bicycle, int, error)
	Create(ctx context.Context, bike *models.Bicycle) error
	Update(ctx context.Context, bike *models.Bicycle) error
	CreateHistory(ctx context.Context, entry *models.BicycleHistory) error
	ListHistory(ctx context.Context, bicycleID string, limit, offset int) ([]models.BicycleHistory, error)
}

// BicycleService provides fleet management use cases.
type BicycleService struct {
	repo      bicycleRepository
	cache     scheduleCache
	validator *validator.Validate
	logger    *zap.Logger
}

// NewBicycleService constructs a BicycleService instance.
func NewBicycleService(repo bicycleRepository, cache scheduleCache, validate *validator.Validate, logger *zap.Logger) *BicycleService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &BicycleService{repo: repo, cache: cache, validator: validate, logger: logger}
}

// Get returns one fleet unit by identifier.
func (s *BicycleService) Get(ctx context.Context, id string) (*models.Bicycle, error) {
	bike, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrBicycleNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bicycle")
	}
	return bike, nil
}

// GetByQRCode returns one fleet unit by its QR code.
func (s *BicycleService) GetByQRCode(ctx context.Context, qrCode string) (*models.Bicycle, error) {
	bike, err := s.repo.FindByQRCode(ctx, qrCode)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrBicycleNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load bicycle")
	}
	return bike, nil
}

// List returns fleet units matching the filter plus the total count.
func (s *BicycleService) List(ctx context.Context, filter models.BicycleFilter) ([]models.Bicycle, int, error) {
	bikes, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list bicycles")
	}
	return bikes, total, nil
}

// Create registers a unit in the fleet.
func (s *BicycleService) Create(ctx context.Context, req dto.CreateBicycleRequest) (*models.Bicycle, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid bicycle payload")
	}

	if _, err := s.repo.FindByQRCode(ctx, req.QRCode); err == nil {
		return nil, appErrors.Clone(appErrors.ErrConflict, "qr code already registered")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check qr code")
	}

	bike := &models.Bicycle{
		QRCode:    req.QRCode,
		Status:    models.BicycleStatus(req.Status),
		ModelID:   req.ModelID,
		ULock:     req.ULock,
		Lights:    req.Lights,
		Fleet:     req.Fleet,
		Reflector: req.Reflector,
	}
	if req.Image != "" {
		bike.Image = &req.Image
	}

	if err := s.repo.Create(ctx, bike); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create bicycle")
	}
	s.invalidateAvailability(ctx)
	return bike, nil
}

// Update applies changes to a fleet unit.
func (s *BicycleService) Update(ctx context.Context, id string, req dto.UpdateBicycleRequest) (*models.Bicycle, error) {
	bike, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		status := models.BicycleStatus(*req.Status)
		switch status {
		case models.BicycleEnabled, models.BicycleDisabled, models.BicycleInRepair, models.BicycleEvent:
			bike.Status = status
		default:
			return nil, appErrors.Clone(appErrors.ErrValidation, "unknown bicycle status")
		}
	}
	if req.ModelID != nil {
		bike.ModelID = *req.ModelID
	}
	if req.Image != nil {
		bike.Image = req.Image
	}
	if req.ULock != nil {
		bike.ULock = *req.ULock
	}
	if req.Lights != nil {
		bike.Lights = *req.Lights
	}
	if req.Fleet != nil {
		bike.Fleet = *req.Fleet
	}
	if req.Reflector != nil {
		bike.Reflector = *req.Reflector
	}

	if err := s.repo.Update(ctx, bike); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update bicycle")
	}
	s.invalidateAvailability(ctx)
	return bike, nil
}

// AddHistory appends a maintenance or incident note to the bicycle's record.
func (s *BicycleService) AddHistory(ctx context.Context, bicycleID, description string) (*models.BicycleHistory, error) {
	if description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description is required")
	}
	if _, err := s.Get(ctx, bicycleID); err != nil {
		return nil, err
	}

	entry := &models.BicycleHistory{BicycleID: bicycleID, Description: description}
	if err := s.repo.CreateHistory(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create history entry")
	}
	return entry, nil
}

// History lists the notes on a bicycle's record.
func (s *BicycleService) History(ctx context.Context, bicycleID string, limit, offset int) ([]models.BicycleHistory, error) {
	entries, err := s.repo.ListHistory(ctx, bicycleID, limit, offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list history")
	}
	return entries, nil
}

func (s *BicycleService) invalidateAvailability(ctx context.Context) {
	if s.cache != nil {
		s.cache.Delete(ctx, repository.CacheKeyAvailableModels)
	}
}
