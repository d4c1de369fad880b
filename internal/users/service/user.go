package service

import (
	"context"
	"errors"

	userserrors "salonbook/internal/users/errors"
	"salonbook/internal/users/repository"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"salonbook/pkg/validation"
)

type UserService interface {
	UpsertProfile(ctx context.Context, p model.Profile) error
	IsRegistered(ctx context.Context, userID string) (bool, error)
	Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error)
}

type CustomerSyncer interface {
	SyncBestEffort(ctx context.Context, userID string)
}

type userService struct {
	repo      repository.UserRepository
	validate  *validation.Validator
	customers CustomerSyncer
	log       *logger.Logger
}

func NewUserService(repo repository.UserRepository, v *validation.Validator, customers CustomerSyncer, log *logger.Logger) UserService {
	return &userService{repo: repo, validate: v, customers: customers, log: log}
}

func (s *userService) UpsertProfile(ctx context.Context, p model.Profile) error {
	p.UserID = sanitizer.TrimAndNormalize(p.UserID)
	if p.UserID == "" {
		return apperrors.InvalidInput("User ID cannot be empty")
	}
	p.DisplayName = sanitizer.SanitizeDisplayName(p.DisplayName)
	return s.repo.UpsertProfile(ctx, p)
}

func (s *userService) IsRegistered(ctx context.Context, userID string) (bool, error) {
	userID = sanitizer.TrimAndNormalize(userID)
	if userID == "" {
		return false, apperrors.InvalidInput("userId query parameter is required")
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, userserrors.ErrNotFound) {
			return false, nil
		}
		s.log.Error("Failed to look up user", "user_id", userID, "error", err)
		return false, apperrors.Internal("Failed to look up user", err)
	}
	return user.Registered(), nil
}

func (s *userService) Register(ctx context.Context, req *model.RegisterRequest) (*model.User, error) {
	req.UserID = sanitizer.TrimAndNormalize(req.UserID)
	req.DisplayName = sanitizer.SanitizeDisplayName(req.DisplayName)
	req.Phone = sanitizer.TrimAndNormalize(req.Phone)
	req.Birthday = sanitizer.TrimAndNormalize(req.Birthday)

	if err := s.validate.Struct(req); err != nil {
		return nil, err
	}

	user, err := s.repo.UpsertRegistration(ctx, &model.User{
		ID:          req.UserID,
		DisplayName: req.DisplayName,
		PictureURL:  req.PictureURL,
		Phone:       sanitizer.NormalizePhone(req.Phone),
		Birthday:    req.Birthday,
	})
	if err != nil {
		s.log.Error("Failed to register user", "user_id", req.UserID, "error", err)
		return nil, apperrors.Internal("Failed to register user", err)
	}

	s.log.Info("User registered", "user_id", user.ID)
	s.customers.SyncBestEffort(ctx, user.ID)
	return user, nil
}
