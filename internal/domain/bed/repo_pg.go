package bed

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

const bedCols = `id, sector_id, code, status, occupant_id, status_changed_at, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, b *Bed) error {
	b.ID = uuid.New()
	if b.Status == "" {
		b.Status = StatusVacant
	}
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO bed (id, sector_id, code, status, occupant_id)
		VALUES ($1, $2, $3, $4, $5)`,
		b.ID, b.SectorID, b.Code, b.Status, b.OccupantID,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Bed, error) {
	return scanBed(r.conn(ctx).QueryRow(ctx, `SELECT `+bedCols+` FROM bed WHERE id = $1`, id))
}

func (r *repoPG) GetBySectorAndCode(ctx context.Context, sectorID uuid.UUID, code string) (*Bed, error) {
	return scanBed(r.conn(ctx).QueryRow(ctx,
		`SELECT `+bedCols+` FROM bed WHERE sector_id = $1 AND code = $2`, sectorID, code))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Bed, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM bed`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bedCols+` FROM bed ORDER BY code LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	beds, err := collectBeds(rows)
	if err != nil {
		return nil, 0, err
	}
	return beds, total, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Bed, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+bedCols+` FROM bed ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectBeds(rows)
}

func (r *repoPG) ListBySector(ctx context.Context, sectorID uuid.UUID, limit, offset int) ([]*Bed, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx,
		`SELECT COUNT(*) FROM bed WHERE sector_id = $1`, sectorID).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+bedCols+` FROM bed WHERE sector_id = $1 ORDER BY code LIMIT $2 OFFSET $3`,
		sectorID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	beds, err := collectBeds(rows)
	if err != nil {
		return nil, 0, err
	}
	return beds, total, nil
}

func (r *repoPG) Update(ctx context.Context, b *Bed) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bed SET sector_id=$2, code=$3, status=$4, occupant_id=$5, updated_at=NOW()
		WHERE id=$1`,
		b.ID, b.SectorID, b.Code, b.Status, b.OccupantID,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM bed WHERE id = $1`, id)
	return err
}

func (r *repoPG) SetOccupancy(ctx context.Context, id uuid.UUID, status string, occupantID *uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE bed SET status=$2, occupant_id=$3, status_changed_at=NOW(), updated_at=NOW()
		WHERE id=$1`,
		id, status, occupantID,
	)
	return err
}

func scanBed(row pgx.Row) (*Bed, error) {
	b := &Bed{}
	err := row.Scan(&b.ID, &b.SectorID, &b.Code, &b.Status, &b.OccupantID,
		&b.StatusChangedAt, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return b, nil
}

func collectBeds(rows pgx.Rows) ([]*Bed, error) {
	var beds []*Bed
	for rows.Next() {
		b := &Bed{}
		if err := rows.Scan(&b.ID, &b.SectorID, &b.Code, &b.Status, &b.OccupantID,
			&b.StatusChangedAt, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, err
		}
		beds = append(beds, b)
	}
	return beds, rows.Err()
}
