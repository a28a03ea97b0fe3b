package sector

import (
	"time"

	"github.com/google/uuid"
)

// Sector maps to the sector table. Sectors are catalog data: the census
// workflow looks them up by full name but never creates or deletes them.
type Sector struct {
	ID        uuid.UUID `db:"id" json:"id"`
	Code      string    `db:"code" json:"code"`
	Name      string    `db:"name" json:"name"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}
