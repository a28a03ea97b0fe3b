package patient

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

func (s *Service) CreatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.AdmissionStatus == "" {
		p.AdmissionStatus = StatusAdmitted
	}
	if p.AdmissionStatus != StatusAdmitted && p.AdmissionStatus != StatusDischarged {
		return fmt.Errorf("invalid admission status: %s", p.AdmissionStatus)
	}
	if p.Admitted() && p.BedID == nil {
		return fmt.Errorf("admitted patient requires a bed")
	}
	return s.repo.Create(ctx, p)
}

func (s *Service) GetPatient(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) ListPatients(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	return s.repo.List(ctx, limit, offset)
}

func (s *Service) ListAdmitted(ctx context.Context) ([]*Patient, error) {
	return s.repo.ListAdmitted(ctx)
}

func (s *Service) UpdatePatient(ctx context.Context, p *Patient) error {
	if p.Name == "" {
		return fmt.Errorf("name is required")
	}
	if p.AdmissionStatus != StatusAdmitted && p.AdmissionStatus != StatusDischarged {
		return fmt.Errorf("invalid admission status: %s", p.AdmissionStatus)
	}
	return s.repo.Update(ctx, p)
}

// SetIsolations replaces the patient's active isolation list.
func (s *Service) SetIsolations(ctx context.Context, id uuid.UUID, isolations []string) error {
	p, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("patient not found: %w", err)
	}
	p.Isolations = isolations
	return s.repo.Update(ctx, p)
}
