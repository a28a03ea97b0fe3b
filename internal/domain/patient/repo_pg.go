package patient

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/censo/censo/internal/platform/db"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

type querier interface {
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
}

func (r *repoPG) conn(ctx context.Context) querier {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return r.pool
}

const patientCols = `id, name, birth_date, sex, admitted_at, admission_status,
	sector_id, bed_id, bed_code, specialty, regulation_status, isolations,
	discharged_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()
	if p.AdmissionStatus == "" {
		p.AdmissionStatus = StatusAdmitted
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO patient (
			id, name, birth_date, sex, admitted_at, admission_status,
			sector_id, bed_id, bed_code, specialty, regulation_status, isolations
		) VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)`,
		p.ID, p.Name, p.BirthDate, p.Sex, p.AdmittedAt, p.AdmissionStatus,
		p.SectorID, p.BedID, p.BedCode, p.Specialty, p.RegulationStatus, p.Isolations,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	return scanPatient(r.conn(ctx).QueryRow(ctx, `SELECT `+patientCols+` FROM patient WHERE id = $1`, id))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Patient, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM patient`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	patients, err := collectPatients(rows)
	if err != nil {
		return nil, 0, err
	}
	return patients, total, nil
}

func (r *repoPG) ListAdmitted(ctx context.Context) ([]*Patient, error) {
	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+patientCols+` FROM patient WHERE admission_status = $1 ORDER BY name`,
		StatusAdmitted)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectPatients(rows)
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			name=$2, birth_date=$3, sex=$4, admitted_at=$5, admission_status=$6,
			sector_id=$7, bed_id=$8, bed_code=$9, specialty=$10,
			regulation_status=$11, isolations=$12, discharged_at=$13, updated_at=NOW()
		WHERE id=$1`,
		p.ID, p.Name, p.BirthDate, p.Sex, p.AdmittedAt, p.AdmissionStatus,
		p.SectorID, p.BedID, p.BedCode, p.Specialty,
		p.RegulationStatus, p.Isolations, p.DischargedAt,
	)
	return err
}

func (r *repoPG) SetLocation(ctx context.Context, id uuid.UUID, sectorID, bedID uuid.UUID, bedCode string) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET sector_id=$2, bed_id=$3, bed_code=$4, updated_at=NOW()
		WHERE id=$1`,
		id, sectorID, bedID, bedCode,
	)
	return err
}

func (r *repoPG) Discharge(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE patient SET
			admission_status=$2, sector_id=NULL, bed_id=NULL, bed_code='',
			discharged_at=NOW(), updated_at=NOW()
		WHERE id=$1`,
		id, StatusDischarged,
	)
	return err
}

func scanPatient(row pgx.Row) (*Patient, error) {
	p := &Patient{}
	err := row.Scan(&p.ID, &p.Name, &p.BirthDate, &p.Sex, &p.AdmittedAt, &p.AdmissionStatus,
		&p.SectorID, &p.BedID, &p.BedCode, &p.Specialty, &p.RegulationStatus, &p.Isolations,
		&p.DischargedAt, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return p, nil
}

func collectPatients(rows pgx.Rows) ([]*Patient, error) {
	var patients []*Patient
	for rows.Next() {
		p := &Patient{}
		if err := rows.Scan(&p.ID, &p.Name, &p.BirthDate, &p.Sex, &p.AdmittedAt, &p.AdmissionStatus,
			&p.SectorID, &p.BedID, &p.BedCode, &p.Specialty, &p.RegulationStatus, &p.Isolations,
			&p.DischargedAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		patients = append(patients, p)
	}
	return patients, rows.Err()
}
