package memory

import (
	"context"
	"sort"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/repository"
)

type tripRepo struct{ s *Store }

func (r tripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	trips := make([]domain.Trip, 0, len(r.s.trips))
	for _, t := range r.s.trips {
		trips = append(trips, t)
	}
	sortTrips(trips)
	return trips, nil
}

func sortTrips(trips []domain.Trip) {
	sort.Slice(trips, func(i, j int) bool {
		if !trips[i].StartDate.Equal(trips[j].StartDate) {
			return trips[i].StartDate.Before(trips[j].StartDate)
		}
		return trips[i].ID < trips[j].ID
	})
}

func (r tripRepo) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.trips[id]
	if !ok {
		return nil, domain.ErrTripNotFound
	}
	return &t, nil
}

// guard loads the boat and its trips and runs guard. Callers hold the
// boat lock.
func (r tripRepo) guard(boatID int64, guard repository.TripGuard) (*domain.Boat, error) {
	r.s.mu.RLock()
	boat, ok := r.s.boats[boatID]
	existing := make([]domain.Trip, 0)
	for _, t := range r.s.trips {
		if t.BoatID == boatID {
			existing = append(existing, t)
		}
	}
	r.s.mu.RUnlock()

	if !ok {
		return nil, domain.ErrBoatNotFound
	}
	sortTrips(existing)
	if guard != nil {
		if err := guard(boat, existing); err != nil {
			return nil, err
		}
	}
	return &boat, nil
}

func (r tripRepo) Create(ctx context.Context, trip *domain.Trip, guard repository.TripGuard) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	unlock := r.s.boatLocks.Lock(trip.BoatID)
	defer unlock()

	boat, err := r.guard(trip.BoatID, guard)
	if err != nil {
		return err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	now := r.s.now()
	trip.ID = r.s.nextIDLocked()
	trip.StartDate, trip.EndDate = domain.DateOf(trip.StartDate), domain.DateOf(trip.EndDate)
	trip.AvailableSpots = domain.AvailableSpots(boat.Capacity, trip.BookedSpots)
	trip.CreatedAt, trip.UpdatedAt = now, now
	r.s.trips[trip.ID] = *trip
	return nil
}

func (r tripRepo) UpdateDates(ctx context.Context, id int64, start, end time.Time, guard repository.TripGuard) (*domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	current, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	unlock := r.s.boatLocks.Lock(current.BoatID)
	defer unlock()

	if _, err := r.guard(current.BoatID, guard); err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	t := r.s.trips[id]
	t.StartDate, t.EndDate = domain.DateOf(start), domain.DateOf(end)
	t.UpdatedAt = r.s.now()
	r.s.trips[id] = t
	return &t, nil
}

var _ repository.TripRepository = tripRepo{}
