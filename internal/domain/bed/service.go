package bed

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

func (s *Service) CreateBed(ctx context.Context, b *Bed) error {
	if b.SectorID == uuid.Nil {
		return fmt.Errorf("sector_id is required")
	}
	if b.Code == "" {
		return fmt.Errorf("code is required")
	}
	if b.Status == "" {
		b.Status = StatusVacant
	}
	if !ValidStatus(b.Status) {
		return fmt.Errorf("invalid status: %s", b.Status)
	}
	if err := checkOccupant(b.Status, b.OccupantID); err != nil {
		return err
	}
	if existing, err := s.repo.GetBySectorAndCode(ctx, b.SectorID, b.Code); err == nil && existing != nil {
		return fmt.Errorf("bed %q already exists in sector", b.Code)
	}
	return s.repo.Create(ctx, b)
}

func (s *Service) GetBed(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListBeds(ctx context.Context, limit, offset int) ([]*Bed, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListBedsBySector(ctx context.Context, sectorID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	return s.repo.ListBySector(ctx, sectorID, limit, offset)
}

func (s *Service) UpdateBed(ctx context.Context, b *Bed) error {
	if !ValidStatus(b.Status) {
		return fmt.Errorf("invalid status: %s", b.Status)
	}
	if err := checkOccupant(b.Status, b.OccupantID); err != nil {
		return err
	}
	return s.repo.Update(ctx, b)
}

// ChangeStatus moves a bed through its housekeeping lifecycle (vacant,
// reserved, blocked, cleaning, mechanical-hold). Occupation changes go
// through SetOccupancy with a patient, never through here.
func (s *Service) ChangeStatus(ctx context.Context, id uuid.UUID, newStatus string) error {
	if !ValidStatus(newStatus) {
		return fmt.Errorf("invalid status: %s", newStatus)
	}
	if newStatus == StatusOccupied {
		return fmt.Errorf("occupied status requires an occupant; admit a patient instead")
	}

	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("bed not found: %w", err)
	}
	if b.Occupied() {
		return fmt.Errorf("bed %s is occupied; discharge or relocate the patient first", b.Code)
	}

	return s.repo.SetOccupancy(ctx, id, newStatus, nil)
}

func (s *Service) DeleteBed(ctx context.Context, id uuid.UUID) error {
	b, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("bed not found: %w", err)
	}
	if b.Occupied() {
		return fmt.Errorf("bed %s is occupied and cannot be removed", b.Code)
	}
	return s.repo.Delete(ctx, id)
}

func checkOccupant(status string, occupantID *uuid.UUID) error {
	if status == StatusOccupied && occupantID == nil {
		return fmt.Errorf("occupied bed requires an occupant")
	}
	if status != StatusOccupied && occupantID != nil {
		return fmt.Errorf("only occupied beds may carry an occupant")
	}
	return nil
}
