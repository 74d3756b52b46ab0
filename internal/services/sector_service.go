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

type SectorService interface {
	Create(ctx context.Context, name string, description *string) (*models.Sector, error)
	GetByID(ctx context.Context, id uuid.UUID) (*models.Sector, error)
	Update(ctx context.Context, id uuid.UUID, name *string, description *string) (*models.Sector, error)
	SetActive(ctx context.Context, id uuid.UUID, active bool) error
	List(ctx context.Context, limit, offset int) ([]*models.Sector, error)
}

type sectorService struct {
	sectorRepo repositories.SectorRepository
}

func NewSectorService(sectorRepo repositories.SectorRepository) SectorService {
	return &sectorService{sectorRepo: sectorRepo}
}

func (s *sectorService) Create(ctx context.Context, name string, description *string) (*models.Sector, error) {
	name = strings.TrimSpace(name)
	if err := common.ValidateRequiredString(name, "name"); err != nil {
		return nil, common.NewValidationError("name", "%v", err)
	}

	existing, err := s.sectorRepo.GetByName(ctx, name)
	if err != nil && !errors.Is(err, pgx.ErrNoRows) {
		return nil, err
	}
	if existing != nil {
		return nil, common.NewValidationError("name", "sector '%s' already exists", name)
	}

	sector := &models.Sector{
		ID:          uuid.New(),
		Name:        name,
		Description: description,
		Active:      true,
	}
	if err := s.sectorRepo.Create(ctx, sector); err != nil {
		return nil, err
	}
	return sector, nil
}

func (s *sectorService) GetByID(ctx context.Context, id uuid.UUID) (*models.Sector, error) {
	sector, err := s.sectorRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, common.ErrSectorNotFound
		}
		return nil, err
	}
	return sector, nil
}

func (s *sectorService) Update(ctx context.Context, id uuid.UUID, name *string, description *string) (*models.Sector, error) {
	sector, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if name != nil {
		trimmed := strings.TrimSpace(*name)
		if err := common.ValidateRequiredString(trimmed, "name"); err != nil {
			return nil, common.NewValidationError("name", "%v", err)
		}
		sector.Name = trimmed
	}
	if description != nil {
		sector.Description = description
	}

	if err := s.sectorRepo.Update(ctx, sector); err != nil {
		return nil, err
	}
	return sector, nil
}

func (s *sectorService) SetActive(ctx context.Context, id uuid.UUID, active bool) error {
	if _, err := s.GetByID(ctx, id); err != nil {
		return err
	}
	return s.sectorRepo.SetActive(ctx, id, active)
}

func (s *sectorService) List(ctx context.Context, limit, offset int) ([]*models.Sector, error) {
	limit, offset = common.ValidatePaginationParams(limit, offset)
	return s.sectorRepo.List(ctx, limit, offset)
}
