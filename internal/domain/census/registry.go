package census

import (
	"context"
	"errors"

	"github.com/google/uuid"

	"github.com/censo/censo/internal/domain/audit"
	"github.com/censo/censo/internal/domain/bed"
	"github.com/censo/censo/internal/domain/patient"
	"github.com/censo/censo/internal/domain/sector"
)

var (
	// ErrRunInProgress is returned when another reconciliation holds the
	// run lease.
	ErrRunInProgress = errors.New("a reconciliation run is already executing")

	// ErrUnresolvedCatalog is returned when the diff carries unresolved
	// sector or bed references; execution never starts in that state.
	ErrUnresolvedCatalog = errors.New("extract references sectors or beds missing from the registry")
)

// MutationKind discriminates the registry mutations a reconciliation emits.
type MutationKind string

const (
	// MutationAdmit creates a patient and occupies the target bed.
	MutationAdmit MutationKind = "admit"
	// MutationRelocate frees the old bed, occupies the new one and moves
	// the patient's location fields.
	MutationRelocate MutationKind = "relocate"
	// MutationRelease frees the patient's bed and marks them discharged
	// (disposition discharge or death).
	MutationRelease MutationKind = "release"
)

// Mutation is one compound registry write. The bed and patient sides of each
// mutation commit in the same transaction so occupancy and location never
// drift apart. No two mutations in one batch target the same bed or patient.
type Mutation struct {
	Kind MutationKind

	// Admit
	NewPatient *patient.Patient

	// Relocate / Release
	PatientID uuid.UUID
	OldBedID  *uuid.UUID

	// Admit / Relocate target
	BedID    uuid.UUID
	SectorID uuid.UUID
	BedCode  string

	// Release cause
	Death bool
}

// Registry is the census engine's view of the shared bed/patient store. The
// production implementation runs each ApplyBatch in one transaction.
type Registry interface {
	ListSectors(ctx context.Context) ([]*sector.Sector, error)
	ListBeds(ctx context.Context) ([]*bed.Bed, error)
	ListAdmittedPatients(ctx context.Context) ([]*patient.Patient, error)

	// ApplyBatch commits all mutations atomically, or none of them.
	ApplyBatch(ctx context.Context, muts []Mutation) error

	AppendAudit(ctx context.Context, e *audit.Entry) error

	// AcquireLease takes the run token. At most one reconciliation may
	// hold it; a second caller gets ErrRunInProgress.
	AcquireLease(ctx context.Context, runID uuid.UUID, actor string) error
	ReleaseLease(ctx context.Context, runID uuid.UUID, status, summary string) error
}
