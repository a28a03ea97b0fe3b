package patient

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, p *Patient) error
	GetByID(ctx context.Context, id uuid.UUID) (*Patient, error)
	List(ctx context.Context, limit, offset int) ([]*Patient, int, error)
	ListAdmitted(ctx context.Context) ([]*Patient, error)
	Update(ctx context.Context, p *Patient) error

	// SetLocation moves an admitted patient to a new sector/bed pair.
	SetLocation(ctx context.Context, id uuid.UUID, sectorID, bedID uuid.UUID, bedCode string) error

	// Discharge marks the patient discharged and clears the bed fields.
	Discharge(ctx context.Context, id uuid.UUID) error
}
