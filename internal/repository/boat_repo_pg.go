package repository

import (
	"context"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBoatRepository struct {
	db *pgxpool.Pool
}

func NewBoatRepository(db *pgxpool.Pool) BoatRepository {
	return &PGBoatRepository{db: db}
}

const boatColumns = `id, name, capacity, status, created_at, updated_at`

func (r *PGBoatRepository) List(ctx context.Context) ([]domain.Boat, error) {
	rows, err := r.db.Query(ctx, `SELECT `+boatColumns+` FROM boats ORDER BY name, id`)
	if err != nil {
		return nil, storeErr("list boats", err)
	}
	defer rows.Close()

	boats := make([]domain.Boat, 0)
	for rows.Next() {
		var b domain.Boat
		if err := rows.Scan(&b.ID, &b.Name, &b.Capacity, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
			return nil, storeErr("scan boat", err)
		}
		boats = append(boats, b)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list boats", err)
	}
	return boats, nil
}

func (r *PGBoatRepository) GetByID(ctx context.Context, id int64) (*domain.Boat, error) {
	row := r.db.QueryRow(ctx, `SELECT `+boatColumns+` FROM boats WHERE id=$1`, id)
	var b domain.Boat
	if err := row.Scan(&b.ID, &b.Name, &b.Capacity, &b.Status, &b.CreatedAt, &b.UpdatedAt); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBoatNotFound
		}
		return nil, storeErr("get boat", err)
	}
	return &b, nil
}

var _ BoatRepository = (*PGBoatRepository)(nil)
