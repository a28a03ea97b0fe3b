package sector

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) CreateSector(ctx context.Context, sec *Sector) error {
	if sec.Code == "" {
		return fmt.Errorf("code is required")
	}
	if sec.Name == "" {
		return fmt.Errorf("name is required")
	}
	if existing, err := s.repo.GetByName(ctx, sec.Name); err == nil && existing != nil {
		return fmt.Errorf("sector %q already exists", sec.Name)
	}
	return s.repo.Create(ctx, sec)
}

func (s *Service) GetSector(ctx context.Context, id uuid.UUID) (*Sector, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListSectors(ctx context.Context, limit, offset int) ([]*Sector, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) UpdateSector(ctx context.Context, sec *Sector) error {
	if sec.Code == "" {
		return fmt.Errorf("code is required")
	}
	if sec.Name == "" {
		return fmt.Errorf("name is required")
	}
	return s.repo.Update(ctx, sec)
}

func (s *Service) DeleteSector(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
