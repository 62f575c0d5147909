package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGTripRepository struct {
	db *pgxpool.Pool
}

func NewTripRepository(db *pgxpool.Pool) TripRepository {
	return &PGTripRepository{db: db}
}

const tripColumns = `id, boat_id, start_date, end_date, booked_spots, available_spots, discount, destination, route, created_at, updated_at`

func scanTrip(row pgx.Row) (*domain.Trip, error) {
	var t domain.Trip
	if err := row.Scan(&t.ID, &t.BoatID, &t.StartDate, &t.EndDate, &t.BookedSpots, &t.AvailableSpots,
		&t.Discount, &t.Destination, &t.Route, &t.CreatedAt, &t.UpdatedAt); err != nil {
		return nil, err
	}
	return &t, nil
}

func collectTrips(rows pgx.Rows) ([]domain.Trip, error) {
	defer rows.Close()

	trips := make([]domain.Trip, 0)
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, *t)
	}
	return trips, rows.Err()
}

func (r *PGTripRepository) List(ctx context.Context) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, `SELECT `+tripColumns+` FROM trips ORDER BY start_date, id`)
	if err != nil {
		return nil, storeErr("list trips", err)
	}
	trips, err := collectTrips(rows)
	if err != nil {
		return nil, storeErr("list trips", err)
	}
	return trips, nil
}

func (r *PGTripRepository) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	t, err := scanTrip(r.db.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id=$1`, id))
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTripNotFound
		}
		return nil, storeErr("get trip", err)
	}
	return t, nil
}

// lockBoat serialises trip scheduling per boat for the rest of tx.
func lockBoat(ctx context.Context, tx pgx.Tx, boatID int64) (*domain.Boat, error) {
	var b domain.Boat
	err := tx.QueryRow(ctx, `SELECT `+boatColumns+` FROM boats WHERE id=$1 FOR UPDATE`, boatID).
		Scan(&b.ID, &b.Name, &b.Capacity, &b.Status, &b.CreatedAt, &b.UpdatedAt)
	if err != nil {
		if isNoRows(err) {
			return nil, domain.ErrBoatNotFound
		}
		return nil, storeErr("lock boat", err)
	}
	return &b, nil
}

func boatTrips(ctx context.Context, tx pgx.Tx, boatID int64) ([]domain.Trip, error) {
	rows, err := tx.Query(ctx, `SELECT `+tripColumns+` FROM trips WHERE boat_id=$1`, boatID)
	if err != nil {
		return nil, storeErr("list boat trips", err)
	}
	trips, err := collectTrips(rows)
	if err != nil {
		return nil, storeErr("list boat trips", err)
	}
	return trips, nil
}

func (r *PGTripRepository) Create(ctx context.Context, trip *domain.Trip, guard TripGuard) error {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return storeErr("begin tx", err)
	}
	defer tx.Rollback(ctx)

	boat, err := lockBoat(ctx, tx, trip.BoatID)
	if err != nil {
		return err
	}
	existing, err := boatTrips(ctx, tx, trip.BoatID)
	if err != nil {
		return err
	}
	if guard != nil {
		if err := guard(*boat, existing); err != nil {
			return err
		}
	}

	trip.AvailableSpots = domain.AvailableSpots(boat.Capacity, trip.BookedSpots)
	if err := tx.QueryRow(ctx, `INSERT INTO trips (boat_id, start_date, end_date, booked_spots, available_spots, discount, destination, route)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, created_at, updated_at`,
		trip.BoatID, trip.StartDate, trip.EndDate, trip.BookedSpots, trip.AvailableSpots, trip.Discount, trip.Destination, trip.Route).
		Scan(&trip.ID, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
		return storeErr("insert trip", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return storeErr("commit trip", err)
	}
	return nil
}

func (r *PGTripRepository) UpdateDates(ctx context.Context, id int64, start, end time.Time, guard TripGuard) (*domain.Trip, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer tx.Rollback(ctx)

	var boatID int64
	if err := tx.QueryRow(ctx, `SELECT boat_id FROM trips WHERE id=$1`, id).Scan(&boatID); err != nil {
		if isNoRows(err) {
			return nil, domain.ErrTripNotFound
		}
		return nil, storeErr("get trip", err)
	}
	boat, err := lockBoat(ctx, tx, boatID)
	if err != nil {
		return nil, err
	}
	existing, err := boatTrips(ctx, tx, boatID)
	if err != nil {
		return nil, err
	}
	if guard != nil {
		if err := guard(*boat, existing); err != nil {
			return nil, err
		}
	}

	updated, err := scanTrip(tx.QueryRow(ctx, `UPDATE trips SET start_date=$2, end_date=$3, updated_at=now() WHERE id=$1 RETURNING `+tripColumns, id, start, end))
	if err != nil {
		return nil, storeErr("update trip dates", err)
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit trip dates", err)
	}
	return updated, nil
}

var _ TripRepository = (*PGTripRepository)(nil)
