package census

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/censo/censo/internal/domain/audit"
	"github.com/censo/censo/internal/domain/bed"
	"github.com/censo/censo/internal/domain/patient"
	"github.com/censo/censo/internal/domain/sector"
	"github.com/censo/censo/internal/platform/db"
)

// pgRegistry composes the domain repositories into the engine's Registry.
// Batch atomicity comes from db.RunInTx: every repository call inside
// ApplyBatch joins the same transaction through the context.
type pgRegistry struct {
	pool     *pgxpool.Pool
	sectors  sector.Repository
	beds     bed.Repository
	patients patient.Repository
	audits   audit.Repository

	runInTx func(ctx context.Context, fn func(ctx context.Context) error) error
}

func NewRegistry(pool *pgxpool.Pool, sectors sector.Repository, beds bed.Repository, patients patient.Repository, audits audit.Repository) Registry {
	return &pgRegistry{
		pool:     pool,
		sectors:  sectors,
		beds:     beds,
		patients: patients,
		audits:   audits,
		runInTx: func(ctx context.Context, fn func(ctx context.Context) error) error {
			return db.RunInTx(ctx, pool, fn)
		},
	}
}

func (r *pgRegistry) ListSectors(ctx context.Context) ([]*sector.Sector, error) {
	return r.sectors.ListAll(ctx)
}

func (r *pgRegistry) ListBeds(ctx context.Context) ([]*bed.Bed, error) {
	return r.beds.ListAll(ctx)
}

func (r *pgRegistry) ListAdmittedPatients(ctx context.Context) ([]*patient.Patient, error) {
	return r.patients.ListAdmitted(ctx)
}

func (r *pgRegistry) ApplyBatch(ctx context.Context, muts []Mutation) error {
	return r.runInTx(ctx, func(ctx context.Context) error {
		// Free every vacated bed before any occupancy is written. With
		// interleaved free/occupy a bed swap inside one batch would have
		// the second patient's free erase the first one's just-written
		// occupancy.
		for i, m := range muts {
			if m.Kind != MutationRelocate && m.Kind != MutationRelease {
				continue
			}
			if m.OldBedID == nil {
				continue
			}
			if err := r.beds.SetOccupancy(ctx, *m.OldBedID, bed.StatusVacant, nil); err != nil {
				return fmt.Errorf("mutation %d (%s): free old bed: %w", i, m.Kind, err)
			}
		}

		for i, m := range muts {
			if err := r.apply(ctx, m); err != nil {
				return fmt.Errorf("mutation %d (%s): %w", i, m.Kind, err)
			}
		}
		return nil
	})
}

func (r *pgRegistry) apply(ctx context.Context, m Mutation) error {
	switch m.Kind {
	case MutationAdmit:
		if err := r.patients.Create(ctx, m.NewPatient); err != nil {
			return fmt.Errorf("create patient: %w", err)
		}
		if err := r.beds.SetOccupancy(ctx, m.BedID, bed.StatusOccupied, &m.NewPatient.ID); err != nil {
			return fmt.Errorf("occupy bed %s: %w", m.BedCode, err)
		}
		return nil

	case MutationRelocate:
		if err := r.beds.SetOccupancy(ctx, m.BedID, bed.StatusOccupied, &m.PatientID); err != nil {
			return fmt.Errorf("occupy bed %s: %w", m.BedCode, err)
		}
		if err := r.patients.SetLocation(ctx, m.PatientID, m.SectorID, m.BedID, m.BedCode); err != nil {
			return fmt.Errorf("move patient: %w", err)
		}
		return nil

	case MutationRelease:
		if err := r.patients.Discharge(ctx, m.PatientID); err != nil {
			return fmt.Errorf("discharge patient: %w", err)
		}
		return nil

	default:
		return fmt.Errorf("unknown mutation kind %q", m.Kind)
	}
}

func (r *pgRegistry) AppendAudit(ctx context.Context, e *audit.Entry) error {
	return r.audits.Append(ctx, e)
}

// AcquireLease inserts the run row. A partial unique index on
// census_run(status) WHERE status = 'running' turns a concurrent run into a
// unique violation, which maps to ErrRunInProgress.
func (r *pgRegistry) AcquireLease(ctx context.Context, runID uuid.UUID, actor string) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO census_run (id, status, actor) VALUES ($1, 'running', $2)`,
		runID, actor,
	)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return ErrRunInProgress
		}
		return err
	}
	return nil
}

func (r *pgRegistry) ReleaseLease(ctx context.Context, runID uuid.UUID, status, summary string) error {
	_, err := r.pool.Exec(ctx, `
		UPDATE census_run SET status = $2, summary = $3, finished_at = NOW()
		WHERE id = $1`,
		runID, status, summary,
	)
	return err
}
