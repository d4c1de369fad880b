package service

import (
	"context"
	"errors"

	serviceserrors "salonbook/internal/services/errors"
	"salonbook/internal/services/repository"
	apperrors "salonbook/pkg/errors"
	"salonbook/pkg/logger"
	"salonbook/pkg/model"
	"salonbook/pkg/sanitizer"
	"salonbook/pkg/validation"
)

type CatalogService interface {
	ListActive(ctx context.Context) ([]*model.Service, error)
	ListAll(ctx context.Context) ([]*model.Service, error)
	Create(ctx context.Context, svc *model.Service) error
	Update(ctx context.Context, id string, update *model.ServiceUpdate) (*model.Service, error)

	// Resolve splits ids into active services and ids that are unknown or
	// inactive. Found services keep the order of ids.
	Resolve(ctx context.Context, ids []string) ([]*model.Service, []string, error)
}

type catalogService struct {
	repo     repository.ServiceRepository
	validate *validation.Validator
	log      *logger.Logger
}

func NewCatalogService(repo repository.ServiceRepository, v *validation.Validator, log *logger.Logger) CatalogService {
	return &catalogService{repo: repo, validate: v, log: log}
}

func (s *catalogService) ListActive(ctx context.Context) ([]*model.Service, error) {
	services, err := s.repo.ListActive(ctx)
	if err != nil {
		s.log.Error("Failed to list services", "error", err)
		return nil, apperrors.Internal("Failed to list services", err)
	}
	return services, nil
}

func (s *catalogService) ListAll(ctx context.Context) ([]*model.Service, error) {
	services, err := s.repo.ListAll(ctx)
	if err != nil {
		s.log.Error("Failed to list services", "error", err)
		return nil, apperrors.Internal("Failed to list services", err)
	}
	return services, nil
}

func (s *catalogService) Create(ctx context.Context, svc *model.Service) error {
	svc.Name = sanitizer.TrimAndNormalize(svc.Name)
	if err := s.validate.Struct(svc); err != nil {
		return err
	}

	if err := s.repo.Create(ctx, svc); err != nil {
		s.log.Error("Failed to create service", "name", svc.Name, "error", err)
		return apperrors.Internal("Failed to create service", err)
	}

	s.log.Info("Service created", "id", svc.ID, "name", svc.Name)
	return nil
}

func (s *catalogService) Update(ctx context.Context, id string, update *model.ServiceUpdate) (*model.Service, error) {
	if update.Name != nil {
		name := sanitizer.TrimAndNormalize(*update.Name)
		update.Name = &name
	}
	if err := s.validate.Struct(update); err != nil {
		return nil, err
	}

	svc, err := s.repo.Update(ctx, id, update)
	if err != nil {
		switch {
		case errors.Is(err, serviceserrors.ErrNotFound):
			return nil, apperrors.NotFoundWithID("Service", id)
		case errors.Is(err, serviceserrors.ErrInvalidID):
			return nil, apperrors.InvalidInput("Invalid service ID format")
		}
		s.log.Error("Failed to update service", "id", id, "error", err)
		return nil, apperrors.Internal("Failed to update service", err)
	}

	s.log.Info("Service updated", "id", id)
	return svc, nil
}

func (s *catalogService) Resolve(ctx context.Context, ids []string) ([]*model.Service, []string, error) {
	services, err := s.repo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, nil, err
	}

	byID := make(map[string]*model.Service, len(services))
	for _, svc := range services {
		if svc.Active {
			byID[svc.ID] = svc
		}
	}

	found := make([]*model.Service, 0, len(ids))
	var missing []string
	for _, id := range ids {
		if svc, ok := byID[id]; ok {
			found = append(found, svc)
		} else {
			missing = append(missing, id)
		}
	}
	return found, missing, nil
}
