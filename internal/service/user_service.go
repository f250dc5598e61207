package service

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"

	"github.com/bicired/bicired-api/internal/dto"
	"github.com/bicired/bicired-api/internal/models"
	appErrors "github.com/bicired/bicired-api/pkg/errors"
)

const birthdayLayout = "2006-01-02"

type userRepository interface {
	FindByEmail(ctx context.Context, email string) (*models.User, error)
	FindByID(ctx context.Context, id string) (*models.User, error)
	List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error)
	Create(ctx context.Context, user *models.User) error
	Update(ctx context.Context, user *models.User) error
	Delete(ctx context.Context, id string) error
	CreateHistory(ctx context.Context, entry *models.UserHistory) error
	ListHistory(ctx context.Context, userID string, limit, offset int) ([]models.UserHistory, error)
}

type userSubmissionRepository interface {
	FindByUser(ctx context.Context, userID string) (*models.Submission, error)
}

type userBookingRepository interface {
	FindActiveByUser(ctx context.Context, userID string) (*models.Booking, error)
}

// UserService provides user management use cases.
type UserService struct {
	repo        userRepository
	submissions userSubmissionRepository
	bookings    userBookingRepository
	validator   *validator.Validate
	logger      *zap.Logger
}

// NewUserService constructs a UserService instance.
func NewUserService(repo userRepository, submissions userSubmissionRepository, bookings userBookingRepository, validate *validator.Validate, logger *zap.Logger) *UserService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	return &UserService{repo: repo, submissions: submissions, bookings: bookings, validator: validate, logger: logger}
}

// Signup registers a rider account.
func (s *UserService) Signup(ctx context.Context, req dto.SignupRequest) (*models.User, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid signup payload")
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, appErrors.ErrUserAlreadyExists
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to check email")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
	}

	user := &models.User{
		Email:        email,
		PasswordHash: string(hash),
		Name:         req.Name,
		LastName:     req.LastName,
		Address:      req.Address,
		City:         req.City,
		Occupancy:    req.Occupancy,
		AcademicUnit: req.AcademicUnit,
		Commune:      req.Commune,
		Transport:    req.Transport,
		Role:         models.RoleRider,
		Active:       true,
	}
	if req.Birthday != "" {
		birthday, err := time.Parse(birthdayLayout, req.Birthday)
		if err != nil {
			return nil, appErrors.ErrInvalidDate
		}
		user.Birthday = &birthday
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create user")
	}
	return user, nil
}

// Get returns one user by identifier.
func (s *UserService) Get(ctx context.Context, id string) (*models.User, error) {
	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.ErrUserNotFound
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load user")
	}
	return user, nil
}

// List returns users matching the filter plus the total count.
func (s *UserService) List(ctx context.Context, filter models.UserFilter) ([]models.User, int, error) {
	users, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list users")
	}
	return users, total, nil
}

// Me describes the caller together with their lending state and the profile
// fields still missing before staff will hand over a bicycle.
func (s *UserService) Me(ctx context.Context, userID string) (*dto.CurrentUserResponse, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}

	resp := &dto.CurrentUserResponse{User: user, MissingData: user.MissingProfileData()}

	booking, err := s.bookings.FindActiveByUser(ctx, userID)
	if err == nil {
		resp.Booking = booking
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	submission, err := s.submissions.FindByUser(ctx, userID)
	if err == nil {
		resp.Submission = submission
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load submission")
	}

	return resp, nil
}

// Update applies profile changes. Role and active state only change when
// the edit comes from staff.
func (s *UserService) Update(ctx context.Context, id string, req dto.UpdateUserRequest, staffEdit bool) (*models.User, error) {
	user, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	applyString := func(dst *string, src *string) {
		if src != nil {
			*dst = *src
		}
	}
	applyString(&user.Name, req.Name)
	applyString(&user.LastName, req.LastName)
	applyString(&user.Address, req.Address)
	applyString(&user.City, req.City)
	applyString(&user.Occupancy, req.Occupancy)
	applyString(&user.AcademicUnit, req.AcademicUnit)
	applyString(&user.Commune, req.Commune)
	applyString(&user.Transport, req.Transport)

	if req.Signature != nil {
		user.Signature = req.Signature
	}
	if req.Birthday != nil {
		birthday, err := time.Parse(birthdayLayout, *req.Birthday)
		if err != nil {
			return nil, appErrors.ErrInvalidDate
		}
		user.Birthday = &birthday
	}
	if req.Password != nil {
		if len(*req.Password) < 6 {
			return nil, appErrors.Clone(appErrors.ErrValidation, "password must be at least 6 characters")
		}
		hash, err := bcrypt.GenerateFromPassword([]byte(*req.Password), bcrypt.DefaultCost)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to hash password")
		}
		user.PasswordHash = string(hash)
	}

	if staffEdit {
		if req.Role != nil {
			role := models.UserRole(*req.Role)
			if role != models.RoleAdmin && role != models.RoleStaff && role != models.RoleRider {
				return nil, appErrors.Clone(appErrors.ErrValidation, "unknown role")
			}
			user.Role = role
		}
		if req.Active != nil {
			user.Active = *req.Active
		}
	}

	if err := s.repo.Update(ctx, user); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to update user")
	}
	return user, nil
}

// Delete marks a user inactive. Users holding a bicycle cannot be removed.
func (s *UserService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}

	if _, err := s.bookings.FindActiveByUser(ctx, id); err == nil {
		return appErrors.Clone(appErrors.ErrConflict, "user has an active booking")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load booking")
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to delete user")
	}
	return nil
}

// AddHistory appends a staff note to the user's record.
func (s *UserService) AddHistory(ctx context.Context, userID, description string) (*models.UserHistory, error) {
	if description == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "description is required")
	}
	if _, err := s.Get(ctx, userID); err != nil {
		return nil, err
	}

	entry := &models.UserHistory{UserID: userID, Description: description}
	if err := s.repo.CreateHistory(ctx, entry); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to create history entry")
	}
	return entry, nil
}

// History lists the staff notes on a user's record.
func (s *UserService) History(ctx context.Context, userID string, limit, offset int) ([]models.UserHistory, error) {
	entries, err := s.repo.ListHistory(ctx, userID, limit, offset)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list history")
	}
	return entries, nil
}
