package bed

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, b *Bed) error
	GetByID(ctx context.Context, id uuid.UUID) (*Bed, error)
	GetBySectorAndCode(ctx context.Context, sectorID uuid.UUID, code string) (*Bed, error)
	List(ctx context.Context, limit, offset int) ([]*Bed, int, error)
	ListAll(ctx context.Context) ([]*Bed, error)
	ListBySector(ctx context.Context, sectorID uuid.UUID, limit, offset int) ([]*Bed, int, error)
	Update(ctx context.Context, b *Bed) error
	Delete(ctx context.Context, id uuid.UUID) error

	// SetOccupancy updates the occupancy state of a bed in place, stamping
	// status_changed_at. occupantID is nil for every status except occupied.
	SetOccupancy(ctx context.Context, id uuid.UUID, status string, occupantID *uuid.UUID) error
}
