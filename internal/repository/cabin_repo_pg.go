package repository

import (
	"context"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGCabinRepository struct {
	db *pgxpool.Pool
}

func NewCabinRepository(db *pgxpool.Pool) CabinRepository {
	return &PGCabinRepository{db: db}
}

func (r *PGCabinRepository) ListByBoat(ctx context.Context, boatID int64) ([]domain.Cabin, error) {
	rows, err := r.db.Query(ctx, `SELECT id, boat_id, deck, number, beds FROM cabins WHERE boat_id=$1 ORDER BY deck, number`, boatID)
	if err != nil {
		return nil, storeErr("list cabins", err)
	}
	defer rows.Close()

	cabins := make([]domain.Cabin, 0)
	for rows.Next() {
		var c domain.Cabin
		if err := rows.Scan(&c.ID, &c.BoatID, &c.Deck, &c.Number, &c.Beds); err != nil {
			return nil, storeErr("scan cabin", err)
		}
		cabins = append(cabins, c)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list cabins", err)
	}
	return cabins, nil
}

var _ CabinRepository = (*PGCabinRepository)(nil)
