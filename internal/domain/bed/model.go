package bed

import (
	"time"

	"github.com/google/uuid"
)

// Occupancy statuses for a bed.
const (
	StatusVacant         = "vacant"
	StatusOccupied       = "occupied"
	StatusReserved       = "reserved"
	StatusBlocked        = "blocked"
	StatusCleaning       = "cleaning"
	StatusMechanicalHold = "mechanical-hold"
)

var validStatuses = map[string]bool{
	StatusVacant:         true,
	StatusOccupied:       true,
	StatusReserved:       true,
	StatusBlocked:        true,
	StatusCleaning:       true,
	StatusMechanicalHold: true,
}

// ValidStatus reports whether s is a known occupancy status.
func ValidStatus(s string) bool { return validStatuses[s] }

// Bed maps to the bed table. Code is unique within its sector, not globally.
// Invariant: Status == occupied exactly when OccupantID is set, and the
// referenced patient's bed fields point back at this bed.
type Bed struct {
	ID              uuid.UUID  `db:"id" json:"id"`
	SectorID        uuid.UUID  `db:"sector_id" json:"sector_id"`
	Code            string     `db:"code" json:"code"`
	Status          string     `db:"status" json:"status"`
	OccupantID      *uuid.UUID `db:"occupant_id" json:"occupant_id,omitempty"`
	StatusChangedAt time.Time  `db:"status_changed_at" json:"status_changed_at"`
	CreatedAt       time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at" json:"updated_at"`
}

// Occupied reports whether the bed currently backs an admitted patient.
func (b *Bed) Occupied() bool { return b.Status == StatusOccupied }
