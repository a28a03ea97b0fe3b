package sector

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

const sectorCols = `id, code, name, created_at, updated_at`

func (r *repoPG) Create(ctx context.Context, s *Sector) error {
	s.ID = uuid.New()
	_, err := r.conn(ctx).Exec(ctx, `
		INSERT INTO sector (id, code, name) VALUES ($1, $2, $3)`,
		s.ID, s.Code, s.Name,
	)
	return err
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Sector, error) {
	return scanSector(r.conn(ctx).QueryRow(ctx, `SELECT `+sectorCols+` FROM sector WHERE id = $1`, id))
}

func (r *repoPG) GetByName(ctx context.Context, name string) (*Sector, error) {
	return scanSector(r.conn(ctx).QueryRow(ctx, `SELECT `+sectorCols+` FROM sector WHERE name = $1`, name))
}

func (r *repoPG) List(ctx context.Context, limit, offset int) ([]*Sector, int, error) {
	var total int
	if err := r.conn(ctx).QueryRow(ctx, `SELECT COUNT(*) FROM sector`).Scan(&total); err != nil {
		return nil, 0, err
	}

	rows, err := r.conn(ctx).Query(ctx, `
		SELECT `+sectorCols+` FROM sector ORDER BY name LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	sectors, err := collectSectors(rows)
	if err != nil {
		return nil, 0, err
	}
	return sectors, total, nil
}

func (r *repoPG) ListAll(ctx context.Context) ([]*Sector, error) {
	rows, err := r.conn(ctx).Query(ctx, `SELECT `+sectorCols+` FROM sector ORDER BY name`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	return collectSectors(rows)
}

func (r *repoPG) Update(ctx context.Context, s *Sector) error {
	_, err := r.conn(ctx).Exec(ctx, `
		UPDATE sector SET code=$2, name=$3, updated_at=NOW() WHERE id=$1`,
		s.ID, s.Code, s.Name,
	)
	return err
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	_, err := r.conn(ctx).Exec(ctx, `DELETE FROM sector WHERE id = $1`, id)
	return err
}

func scanSector(row pgx.Row) (*Sector, error) {
	s := &Sector{}
	err := row.Scan(&s.ID, &s.Code, &s.Name, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return s, nil
}

func collectSectors(rows pgx.Rows) ([]*Sector, error) {
	var sectors []*Sector
	for rows.Next() {
		s := &Sector{}
		if err := rows.Scan(&s.ID, &s.Code, &s.Name, &s.CreatedAt, &s.UpdatedAt); err != nil {
			return nil, err
		}
		sectors = append(sectors, s)
	}
	return sectors, rows.Err()
}
