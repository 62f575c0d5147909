package repository

import (
	"context"
	"fmt"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PGBookingRepository struct {
	db *pgxpool.Pool
}

func NewBookingRepository(db *pgxpool.Pool) BookingRepository {
	return &PGBookingRepository{db: db}
}

const bookingColumns = `cb.id, cb.trip_id, cb.cabin_id, cb.bed_number, cb.status, cb.price_cents, cb.passenger_gender, cb.group_name, cb.reservation_ref, cb.booked_at, cb.cancel_date`

func bookingDest(b *domain.CabinBooking) []any {
	return []any{&b.ID, &b.TripID, &b.CabinID, &b.BedNumber, &b.Status, &b.PriceCents,
		&b.PassengerGender, &b.GroupName, &b.ReservationRef, &b.BookedAt, &b.CancelDate}
}

func (r *PGBookingRepository) ListActive(ctx context.Context, tripID int64) ([]domain.BookingDetail, error) {
	var exists bool
	if err := r.db.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM trips WHERE id=$1)`, tripID).Scan(&exists); err != nil {
		return nil, storeErr("get trip", err)
	}
	if !exists {
		return nil, domain.ErrTripNotFound
	}

	rows, err := r.db.Query(ctx, `SELECT `+bookingColumns+`, c.deck, c.number
		FROM cabin_bookings cb
		JOIN cabins c ON c.id = cb.cabin_id
		WHERE cb.trip_id=$1 AND cb.cancel_date IS NULL
		ORDER BY c.deck, c.number, cb.bed_number`, tripID)
	if err != nil {
		return nil, storeErr("list bookings", err)
	}
	defer rows.Close()

	bookings := make([]domain.BookingDetail, 0)
	for rows.Next() {
		var d domain.BookingDetail
		dest := append(bookingDest(&d.CabinBooking), &d.Deck, &d.CabinNumber)
		if err := rows.Scan(dest...); err != nil {
			return nil, storeErr("scan booking", err)
		}
		bookings = append(bookings, d)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr("list bookings", err)
	}
	return bookings, nil
}

// lockTrip takes the per-trip row lock that serialises ledger writes and
// returns the trip with its boat capacity.
func lockTrip(ctx context.Context, tx pgx.Tx, tripID int64) (*domain.Trip, int, error) {
	trip, err := scanTrip(tx.QueryRow(ctx, `SELECT `+tripColumns+` FROM trips WHERE id=$1 FOR UPDATE`, tripID))
	if err != nil {
		if isNoRows(err) {
			return nil, 0, domain.ErrTripNotFound
		}
		return nil, 0, storeErr("lock trip", err)
	}

	var capacity int
	if err := tx.QueryRow(ctx, `SELECT capacity FROM boats WHERE id=$1`, trip.BoatID).Scan(&capacity); err != nil {
		if isNoRows(err) {
			return nil, 0, domain.ErrBoatNotFound
		}
		return nil, 0, storeErr("get boat capacity", err)
	}
	return trip, capacity, nil
}

func updateCounters(ctx context.Context, tx pgx.Tx, tripID int64, booked, available int) (*domain.Trip, error) {
	trip, err := scanTrip(tx.QueryRow(ctx, `UPDATE trips SET booked_spots=$2, available_spots=$3, updated_at=now()
		WHERE id=$1 RETURNING `+tripColumns, tripID, booked, available))
	if err != nil {
		if pgCode(err) == pgCheckViolation {
			return nil, &domain.InvariantError{Reason: "trip counters rejected by store", Booked: booked}
		}
		return nil, storeErr("update trip counters", err)
	}
	return trip, nil
}

func (r *PGBookingRepository) Reserve(ctx context.Context, tripID int64, beds []domain.CabinBooking) (*domain.Trip, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, storeErr("begin tx", err)
	}
	defer tx.Rollback(ctx)

	trip, capacity, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return nil, err
	}
	if err := checkCabins(ctx, tx, trip, beds); err != nil {
		return nil, err
	}
	if err := checkFree(ctx, tx, tripID, beds); err != nil {
		return nil, err
	}

	booked, available, err := domain.SpotCounters(capacity, trip.BookedSpots, len(beds))
	if err != nil {
		return nil, err
	}

	for i := range beds {
		b := &beds[i]
		b.TripID = tripID
		err := tx.QueryRow(ctx, `INSERT INTO cabin_bookings
			(trip_id, cabin_id, bed_number, status, price_cents, passenger_gender, group_name, reservation_ref, booked_at)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING id, booked_at`,
			b.TripID, b.CabinID, b.BedNumber, b.Status, b.PriceCents, b.PassengerGender, b.GroupName, b.ReservationRef, b.BookedAt).
			Scan(&b.ID, &b.BookedAt)
		if err != nil {
			switch pgCode(err) {
			case pgUniqueViolation:
				return nil, &domain.ConflictError{TripID: tripID, CabinID: b.CabinID, BedNumber: b.BedNumber}
			case pgForeignKeyViolation:
				return nil, fmt.Errorf("%w: cabin %d does not exist", domain.ErrValidation, b.CabinID)
			}
			return nil, storeErr("insert booking", err)
		}
	}

	updated, err := updateCounters(ctx, tx, tripID, booked, available)
	if err != nil {
		return nil, err
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, storeErr("commit reservation", err)
	}
	return updated, nil
}

// checkCabins rejects beds that do not exist on the trip's boat.
func checkCabins(ctx context.Context, tx pgx.Tx, trip *domain.Trip, beds []domain.CabinBooking) error {
	rows, err := tx.Query(ctx, `SELECT id, beds FROM cabins WHERE boat_id=$1`, trip.BoatID)
	if err != nil {
		return storeErr("list cabins", err)
	}
	defer rows.Close()

	slots := make(map[int64]int)
	for rows.Next() {
		var id int64
		var n int
		if err := rows.Scan(&id, &n); err != nil {
			return storeErr("scan cabin", err)
		}
		slots[id] = n
	}
	if err := rows.Err(); err != nil {
		return storeErr("list cabins", err)
	}

	for _, b := range beds {
		n, ok := slots[b.CabinID]
		if !ok {
			return fmt.Errorf("%w: cabin %d is not on the boat of trip %d", domain.ErrValidation, b.CabinID, trip.ID)
		}
		if b.BedNumber < 1 || b.BedNumber > n {
			return fmt.Errorf("%w: cabin %d has no bed %d", domain.ErrValidation, b.CabinID, b.BedNumber)
		}
	}
	return nil
}

func checkFree(ctx context.Context, tx pgx.Tx, tripID int64, beds []domain.CabinBooking) error {
	cabinIDs := make([]int64, 0, len(beds))
	bedNumbers := make([]int32, 0, len(beds))
	for _, b := range beds {
		cabinIDs = append(cabinIDs, b.CabinID)
		bedNumbers = append(bedNumbers, int32(b.BedNumber))
	}

	var cabinID int64
	var bedNumber int
	err := tx.QueryRow(ctx, `SELECT cb.cabin_id, cb.bed_number
		FROM cabin_bookings cb
		JOIN unnest($2::bigint[], $3::int[]) AS req(cabin_id, bed_number)
		  ON req.cabin_id = cb.cabin_id AND req.bed_number = cb.bed_number
		WHERE cb.trip_id=$1 AND cb.cancel_date IS NULL
		ORDER BY cb.cabin_id, cb.bed_number
		LIMIT 1`, tripID, cabinIDs, bedNumbers).Scan(&cabinID, &bedNumber)
	if err != nil {
		if isNoRows(err) {
			return nil
		}
		return storeErr("check beds", err)
	}
	return &domain.ConflictError{TripID: tripID, CabinID: cabinID, BedNumber: bedNumber}
}

func (r *PGBookingRepository) Cancel(ctx context.Context, tripID int64, ids []int64) ([]domain.CabinBooking, *domain.Trip, error) {
	tx, err := r.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, nil, storeErr("begin tx", err)
	}
	defer tx.Rollback(ctx)

	trip, capacity, err := lockTrip(ctx, tx, tripID)
	if err != nil {
		return nil, nil, err
	}

	rows, err := tx.Query(ctx, `SELECT `+bookingColumns+` FROM cabin_bookings cb
		WHERE cb.trip_id=$1 AND cb.id = ANY($2) AND cb.cancel_date IS NULL`, tripID, ids)
	if err != nil {
		return nil, nil, storeErr("get bookings", err)
	}
	found := make(map[int64]domain.CabinBooking, len(ids))
	for rows.Next() {
		var b domain.CabinBooking
		if err := rows.Scan(bookingDest(&b)...); err != nil {
			rows.Close()
			return nil, nil, storeErr("scan booking", err)
		}
		found[b.ID] = b
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, nil, storeErr("get bookings", err)
	}

	cancelled, err := pickBookings(tripID, ids, found)
	if err != nil {
		return nil, nil, err
	}

	booked, available, err := domain.SpotCounters(capacity, trip.BookedSpots, -len(cancelled))
	if err != nil {
		return nil, nil, err
	}
	updated, err := updateCounters(ctx, tx, tripID, booked, available)
	if err != nil {
		return nil, nil, err
	}

	tag, err := tx.Exec(ctx, `DELETE FROM cabin_bookings WHERE trip_id=$1 AND id = ANY($2)`, tripID, ids)
	if err != nil {
		return nil, nil, storeErr("delete bookings", err)
	}
	if int(tag.RowsAffected()) != len(cancelled) {
		return nil, nil, storeErr("delete bookings", fmt.Errorf("deleted %d rows, want %d", tag.RowsAffected(), len(cancelled)))
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, nil, storeErr("commit cancellation", err)
	}
	return cancelled, updated, nil
}

// pickBookings returns the bookings for ids in input order, failing if any id
// is unknown for the trip.
func pickBookings(tripID int64, ids []int64, found map[int64]domain.CabinBooking) ([]domain.CabinBooking, error) {
	if len(found) == 0 {
		return nil, fmt.Errorf("%w: none of %v on trip %d", domain.ErrBookingNotFound, ids, tripID)
	}
	out := make([]domain.CabinBooking, 0, len(ids))
	for _, id := range ids {
		b, ok := found[id]
		if !ok {
			return nil, fmt.Errorf("%w: id %d on trip %d", domain.ErrBookingNotFound, id, tripID)
		}
		out = append(out, b)
	}
	return out, nil
}

var _ BookingRepository = (*PGBookingRepository)(nil)
