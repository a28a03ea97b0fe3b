package sector

import (
	"context"

	"github.com/google/uuid"
)

type Repository interface {
	Create(ctx context.Context, s *Sector) error
	GetByID(ctx context.Context, id uuid.UUID) (*Sector, error)
	GetByName(ctx context.Context, name string) (*Sector, error)
	List(ctx context.Context, limit, offset int) ([]*Sector, int, error)
	ListAll(ctx context.Context) ([]*Sector, error)
	Update(ctx context.Context, s *Sector) error
	Delete(ctx context.Context, id uuid.UUID) error
}
