package services

import (
	"context"
	"errors"
	"strings"

	"toolcare/internal/common"
	"toolcare/internal/models"
	"toolcare/internal/repositories"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

type PositionService interface {
	Create(ctx context.Context, name string, description *string) (*models.Position, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Position, error)
	Update(ctx context.Context, id uuid.UUID, name *string, description *string) (*models.Position, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, limit, offset int) ([]*models.Position, error)
}

type positionService struct {
	positionRepo repositories.PositionRepository
}

func NewPositionService(positionRepo repositories.PositionRepository) PositionService {
	return &positionService{positionRepo: positionRepo}
}

func (s *positionService) Create(ctx context.Context, name string, description *string) (*models.Position, error) {
	name = strings.TrimSpace(name)
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.NewValidationError("name", "%v", err)
	}

	existing, err := s.positionRepo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewValidationError("name", "position '%s' already exists", name)
	}

	position := &models.Position{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.positionRepo.Create(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *positionService) GetByID(ctx context.Context, id uuid.UUID) (*models.Position, error) {
	position, err := s.positionRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrPositionNotFound
		}
		return nil, err
	}
	return position, nil
}

func (s *positionService) Update(ctx context.Context, id uuid.UUID, name *string, description *string) (*models.Position, error) {
	position, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := common.ValidateRequiredString(trimmed, "name"); err != nil {
			return nil, common.NewValidationError("name", "%v", err)
		}
		position.Name = trimmed
	}
	if description != nil {
		position.Description = description
	}

	if err := s.positionRepo.Update(ctx, position); err != nil {
		return nil, err
	}
	return position, nil
}

func (s *positionService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.positionRepo.SetActive(ctx, id, active)
}

func (s *positionService) List(ctx context.Context, limit, offset int) ([]*models.Position, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.positionRepo.List(ctx, limit, offset)
}
