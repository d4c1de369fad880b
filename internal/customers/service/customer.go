package service

import (
	"context"
	"errors"
	"fmt"

	customerserrors "salonbook/internal/customers/errors"
	"salonbook/internal/customers/repository"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"salonbook/pkg/validation"
)

type CustomerService interface {
	SyncFromUser(ctx context.Context, userID string) error
	SyncBestEffort(ctx context.Context, userID string)
	List(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error)
	Update(ctx context.Context, id string, update *model.CustomerUpdate) (*model.Customer, error)
}

type UserFinder interface {
	FindByID(ctx context.Context, userID string) (*model.User, error)
}

type customerService struct {
	repo     repository.CustomerRepository
	users    UserFinder
	validate *validation.Validator
	log      *logger.Logger
}

func NewCustomerService(repo repository.CustomerRepository, users UserFinder, v *validation.Validator, log *logger.Logger) CustomerService {
	return &customerService{repo: repo, users: users, validate: v, log: log}
}

// SyncFromUser mirrors a user into the customer directory. Running it any
// number of times leaves exactly one entry per user.
func (s *customerService) SyncFromUser(ctx context.Context, userID string) error {
	user, err := s.users.FindByID(ctx, userID)
	if err != nil {
		return fmt.Errorf("%w: %s: %v", customerserrors.ErrUserNotFound, userID, err)
	}
	if user == nil {
		return fmt.Errorf("%w: %s", customerserrors.ErrUserNotFound, userID)
	}
	return s.repo.UpsertFromUser(ctx, user)
}

// SyncBestEffort runs SyncFromUser and swallows every failure, panics
// included. Callers use it where the directory must never block the flow.
func (s *customerService) SyncBestEffort(ctx context.Context, userID string) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error("Customer sync panicked", "user_id", userID, "panic", r)
		}
	}()

	if err := s.SyncFromUser(ctx, userID); err != nil {
		s.log.Warn("Customer sync failed", "user_id", userID, "error", err)
	}
}

func (s *customerService) List(ctx context.Context, limit int, offset int64) ([]*model.Customer, int64, error) {
	customers, total, err := s.repo.List(ctx, limit, offset)
	if err != nil {
		s.log.Error("Failed to list customers", "error", err)
		return nil, 0, apperrors.Internal("Failed to list customers", err)
	}
	return customers, total, nil
}

func (s *customerService) Update(ctx context.Context, id string, update *model.CustomerUpdate) (*model.Customer, error) {
	s.sanitize(update)
	if err := s.validate.Struct(update); err != nil {
		return nil, err
	}
	if update.Phone != nil && *update.Phone != "" {
		phone := sanitizer.NormalizePhone(*update.Phone)
		update.Phone = &phone
	}

	c, err := s.repo.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, customerserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Customer", id)
		case errors.Is(err, customerserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid customer ID format")
		}
		s.log.Error("Failed to update customer", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update customer", err)
	}

	s.log.Info("Customer updated", "id", id)
	return c, nil
}

func (s *customerService) sanitize(u *model.CustomerUpdate) {
	for _, f := range []*string{u.Name, u.Nickname, u.Phone, u.Birthday} {
		if f != nil {
			*f = sanitizer.TrimAndNormalize(*f)
		}
	}
	if u.Note != nil {
		*u.Note = sanitizer.SanitizeNote(*u.Note)
	}
}
