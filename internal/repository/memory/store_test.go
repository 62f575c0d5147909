package memory

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	store  *Store
	boat   domain.Boat
	cabinA domain.Cabin
	cabinB domain.Cabin
	trip   domain.Trip
}

func newFixture(t *testing.T, booked int) fixture {
	t.Helper()
	s := NewStore()
	boat := s.AddBoat(domain.Boat{Name: "Aurora", Capacity: 10})
	cabinA := s.AddCabin(domain.Cabin{BoatID: boat.ID, Deck: "A", Number: 1, Beds: 4})
	cabinB := s.AddCabin(domain.Cabin{BoatID: boat.ID, Deck: "A", Number: 2, Beds: 6})
	trip := s.AddTrip(domain.Trip{
		BoatID:      boat.ID,
		StartDate:   time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC),
		EndDate:     time.Date(2025, 7, 8, 0, 0, 0, 0, time.UTC),
		BookedSpots: booked,
	})
	return fixture{store: s, boat: boat, cabinA: cabinA, cabinB: cabinB, trip: trip}
}

func bed(cabinID int64, n int) domain.CabinBooking {
	return domain.CabinBooking{CabinID: cabinID, BedNumber: n, Status: domain.BookingStatusConfirmed, PriceCents: 50000}
}

func assertCounters(t *testing.T, trip *domain.Trip, capacity int) {
	t.Helper()
	assert.Equal(t, capacity, trip.BookedSpots+trip.AvailableSpots)
	assert.GreaterOrEqual(t, trip.AvailableSpots, 0)
}

func TestStore_AddTripDerivesCounters(t *testing.T) {
	f := newFixture(t, 3)
	assert.Equal(t, 3, f.trip.BookedSpots)
	assert.Equal(t, 7, f.trip.AvailableSpots)
}

func TestStore_ReserveAndCancelRoundTrip(t *testing.T) {
	f := newFixture(t, 3)
	ctx := context.Background()
	ledger := f.store.Bookings()

	beds := []domain.CabinBooking{bed(f.cabinA.ID, 1), bed(f.cabinB.ID, 2)}
	trip, err := ledger.Reserve(ctx, f.trip.ID, beds)
	require.NoError(t, err)
	assert.Equal(t, 5, trip.BookedSpots)
	assert.Equal(t, 5, trip.AvailableSpots)
	assertCounters(t, trip, f.boat.Capacity)
	assert.NotZero(t, beds[0].ID)
	assert.NotZero(t, beds[1].ID)

	listed, err := ledger.ListActive(ctx, f.trip.ID)
	require.NoError(t, err)
	require.Len(t, listed, 2)

	cancelled, trip, err := ledger.Cancel(ctx, f.trip.ID, []int64{beds[1].ID, beds[0].ID})
	require.NoError(t, err)
	assert.Equal(t, []int64{beds[1].ID, beds[0].ID}, []int64{cancelled[0].ID, cancelled[1].ID})
	assert.Equal(t, int64(50000), cancelled[0].PriceCents)
	assert.Equal(t, 3, trip.BookedSpots)
	assertCounters(t, trip, f.boat.Capacity)

	listed, err = ledger.ListActive(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Empty(t, listed)
}

func TestStore_ReserveConflictIsAtomic(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	ledger := f.store.Bookings()

	_, err := ledger.Reserve(ctx, f.trip.ID, []domain.CabinBooking{bed(f.cabinA.ID, 2)})
	require.NoError(t, err)

	_, err = ledger.Reserve(ctx, f.trip.ID, []domain.CabinBooking{bed(f.cabinA.ID, 1), bed(f.cabinA.ID, 2)})
	require.ErrorIs(t, err, domain.ErrConflict)
	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, f.cabinA.ID, conflict.CabinID)
	assert.Equal(t, 2, conflict.BedNumber)

	listed, err := ledger.ListActive(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)

	trip, err := f.store.Trips().GetByID(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, trip.BookedSpots)
}

func TestStore_ReserveRejectsUnknownBeds(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	ledger := f.store.Bookings()

	_, err := ledger.Reserve(ctx, f.trip.ID, []domain.CabinBooking{bed(f.cabinA.ID, 5)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ledger.Reserve(ctx, f.trip.ID, []domain.CabinBooking{bed(999, 1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ledger.Reserve(ctx, f.trip.ID, []domain.CabinBooking{bed(f.cabinA.ID, 1), bed(f.cabinA.ID, 1)})
	assert.ErrorIs(t, err, domain.ErrValidation)

	_, err = ledger.Reserve(ctx, 12345, []domain.CabinBooking{bed(f.cabinA.ID, 1)})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_ReserveBeyondCapacity(t *testing.T) {
	f := newFixture(t, 9)
	_, err := f.store.Bookings().Reserve(context.Background(), f.trip.ID,
		[]domain.CabinBooking{bed(f.cabinB.ID, 1), bed(f.cabinB.ID, 2)})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)
}

func TestStore_CancelGuardsNegativeCounters(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	beds := []domain.CabinBooking{bed(f.cabinA.ID, 1)}
	_, err := f.store.Bookings().Reserve(ctx, f.trip.ID, beds)
	require.NoError(t, err)

	// simulate stale counters written elsewhere
	f.store.mu.Lock()
	tr := f.store.trips[f.trip.ID]
	tr.BookedSpots = 0
	f.store.trips[f.trip.ID] = tr
	f.store.mu.Unlock()

	_, _, err = f.store.Bookings().Cancel(ctx, f.trip.ID, []int64{beds[0].ID})
	assert.ErrorIs(t, err, domain.ErrInvariantViolation)

	listed, err := f.store.Bookings().ListActive(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Len(t, listed, 1)
}

func TestStore_CancelUnknownBookings(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	beds := []domain.CabinBooking{bed(f.cabinA.ID, 1)}
	_, err := f.store.Bookings().Reserve(ctx, f.trip.ID, beds)
	require.NoError(t, err)

	_, _, err = f.store.Bookings().Cancel(ctx, f.trip.ID, []int64{777})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, _, err = f.store.Bookings().Cancel(ctx, f.trip.ID, []int64{beds[0].ID, 777})
	assert.ErrorIs(t, err, domain.ErrNotFound)

	trip, err := f.store.Trips().GetByID(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, trip.BookedSpots)
}

func TestStore_ConcurrentReserveSameBed(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	ledger := f.store.Bookings()

	const workers = 16
	var wg sync.WaitGroup
	errs := make([]error, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = ledger.Reserve(ctx, f.trip.ID, []domain.CabinBooking{bed(f.cabinB.ID, 3)})
		}(i)
	}
	wg.Wait()

	succeeded := 0
	for _, err := range errs {
		if err == nil {
			succeeded++
			continue
		}
		assert.ErrorIs(t, err, domain.ErrConflict)
	}
	assert.Equal(t, 1, succeeded)

	trip, err := f.store.Trips().GetByID(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, trip.BookedSpots)
	assertCounters(t, trip, f.boat.Capacity)
}

func TestStore_ConcurrentDistinctBeds(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()
	ledger := f.store.Bookings()

	var wg sync.WaitGroup
	for n := 1; n <= 6; n++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			_, err := ledger.Reserve(ctx, f.trip.ID, []domain.CabinBooking{bed(f.cabinB.ID, n)})
			assert.NoError(t, err)
		}(n)
	}
	wg.Wait()

	trip, err := f.store.Trips().GetByID(ctx, f.trip.ID)
	require.NoError(t, err)
	assert.Equal(t, 6, trip.BookedSpots)
	assert.Equal(t, 4, trip.AvailableSpots)
}

func TestStore_ListActiveOrdering(t *testing.T) {
	s := NewStore()
	boat := s.AddBoat(domain.Boat{Name: "Boreas", Capacity: 12})
	lower := s.AddCabin(domain.Cabin{BoatID: boat.ID, Deck: "B", Number: 1, Beds: 2})
	upper2 := s.AddCabin(domain.Cabin{BoatID: boat.ID, Deck: "A", Number: 2, Beds: 2})
	upper1 := s.AddCabin(domain.Cabin{BoatID: boat.ID, Deck: "A", Number: 1, Beds: 2})
	trip := s.AddTrip(domain.Trip{BoatID: boat.ID, StartDate: time.Now(), EndDate: time.Now()})

	ctx := context.Background()
	_, err := s.Bookings().Reserve(ctx, trip.ID, []domain.CabinBooking{
		bed(lower.ID, 1), bed(upper2.ID, 2), bed(upper1.ID, 2), bed(upper1.ID, 1),
	})
	require.NoError(t, err)

	listed, err := s.Bookings().ListActive(ctx, trip.ID)
	require.NoError(t, err)
	got := make([][2]int, 0, len(listed))
	for _, d := range listed {
		got = append(got, [2]int{d.CabinNumber, d.BedNumber})
	}
	assert.Equal(t, [][2]int{{1, 1}, {1, 2}, {2, 2}, {1, 1}}, got)
	assert.Equal(t, "B", listed[3].Deck)
}

func TestStore_ListActiveUnknownTrip(t *testing.T) {
	f := newFixture(t, 0)

	listed, err := f.store.Bookings().ListActive(context.Background(), f.trip.ID+999)

	assert.Nil(t, listed)
	assert.ErrorIs(t, err, domain.ErrTripNotFound)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestStore_CreateTripRunsGuard(t *testing.T) {
	f := newFixture(t, 0)
	ctx := context.Background()

	var seen []domain.Trip
	trip := &domain.Trip{BoatID: f.boat.ID, StartDate: time.Now(), EndDate: time.Now()}
	err := f.store.Trips().Create(ctx, trip, func(boat domain.Boat, trips []domain.Trip) error {
		assert.Equal(t, f.boat.ID, boat.ID)
		seen = trips
		return nil
	})
	require.NoError(t, err)
	assert.Len(t, seen, 1)
	assert.Equal(t, 10, trip.AvailableSpots)

	err = f.store.Trips().Create(ctx, &domain.Trip{BoatID: f.boat.ID}, func(domain.Boat, []domain.Trip) error {
		return domain.ErrConflict
	})
	assert.ErrorIs(t, err, domain.ErrConflict)

	err = f.store.Trips().Create(ctx, &domain.Trip{BoatID: 404}, nil)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestLoadSeed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
boats:
  - id: 1
    name: Aurora
    capacity: 6
    status: active
    cabins:
      - {id: 11, deck: A, number: 1, beds: 2}
      - {id: 12, deck: A, number: 2, beds: 4}
trips:
  - {id: 100, boat_id: 1, start: "2025-07-01", end: "2025-07-08", destination: Cyclades}
`), 0o644))

	seed, err := LoadSeed(path)
	require.NoError(t, err)

	s := NewStore()
	require.NoError(t, s.Apply(seed))

	ctx := context.Background()
	cabins, err := s.Cabins().ListByBoat(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, cabins, 2)

	trip, err := s.Trips().GetByID(ctx, 100)
	require.NoError(t, err)
	assert.Equal(t, 6, trip.AvailableSpots)
	assert.Equal(t, "Cyclades", trip.Destination)

	// ids assigned after the seed do not collide
	b := s.AddBoat(domain.Boat{Name: "Boreas", Capacity: 4})
	assert.Greater(t, b.ID, int64(100))
}
