package patient

import (
	"time"

	"github.com/google/uuid"
)

// Admission statuses.
const (
	StatusAdmitted   = "admitted"
	StatusDischarged = "discharged"
)

// RegulationAwaiting is the regulation status derived for patients admitted
// through a pre-admission sector, still waiting for an internal bed.
const RegulationAwaiting = "awaiting regulation"

// Patient maps to the patient table. BedCode denormalizes the current bed's
// code so census extracts, which only carry codes, can be matched without a
// join. There is no stable external patient ID: the display name is the sole
// cross-system join key.
type Patient struct {
	ID               uuid.UUID  `db:"id" json:"id"`
	Name             string     `db:"name" json:"name"`
	BirthDate        *time.Time `db:"birth_date" json:"birth_date,omitempty"`
	Sex              string     `db:"sex" json:"sex,omitempty"`
	AdmittedAt       *time.Time `db:"admitted_at" json:"admitted_at,omitempty"`
	AdmissionStatus  string     `db:"admission_status" json:"admission_status"`
	SectorID         *uuid.UUID `db:"sector_id" json:"sector_id,omitempty"`
	BedID            *uuid.UUID `db:"bed_id" json:"bed_id,omitempty"`
	BedCode          string     `db:"bed_code" json:"bed_code,omitempty"`
	Specialty        string     `db:"specialty" json:"specialty,omitempty"`
	RegulationStatus *string    `db:"regulation_status" json:"regulation_status,omitempty"`
	Isolations       []string   `db:"isolations" json:"isolations,omitempty"`
	DischargedAt     *time.Time `db:"discharged_at" json:"discharged_at,omitempty"`
	CreatedAt        time.Time  `db:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `db:"updated_at" json:"updated_at"`
}

// Admitted reports whether the patient is currently in a bed.
func (p *Patient) Admitted() bool { return p.AdmissionStatus == StatusAdmitted }
