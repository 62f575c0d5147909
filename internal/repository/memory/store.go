// Package memory is an in-process implementation of the repositories. Ledger
// writes are serialised per trip, trip scheduling per boat.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/repository"
)

type bedSlot struct {
	tripID    int64
	cabinID   int64
	bedNumber int
}

type Store struct {
	mu       sync.RWMutex
	boats    map[int64]domain.Boat
	cabins   map[int64]domain.Cabin
	trips    map[int64]domain.Trip
	bookings map[int64]domain.CabinBooking
	occupied map[bedSlot]int64
	lastID   int64

	tripLocks keyedMutex
	boatLocks keyedMutex

	now func() time.Time
}

func NewStore() *Store {
	return &Store{
		boats:    make(map[int64]domain.Boat),
		cabins:   make(map[int64]domain.Cabin),
		trips:    make(map[int64]domain.Trip),
		bookings: make(map[int64]domain.CabinBooking),
		occupied: make(map[bedSlot]int64),
		now:      time.Now,
	}
}

func (s *Store) Boats() repository.BoatRepository       { return boatRepo{s} }
func (s *Store) Trips() repository.TripRepository       { return tripRepo{s} }
func (s *Store) Cabins() repository.CabinRepository     { return cabinRepo{s} }
func (s *Store) Bookings() repository.BookingRepository { return bookingRepo{s} }

func (s *Store) nextIDLocked() int64 {
	s.lastID++
	return s.lastID
}

// AddBoat stores b, assigning an id when b.ID is zero.
func (s *Store) AddBoat(b domain.Boat) domain.Boat {
	s.mu.Lock()
	defer s.mu.Unlock()

	if b.ID == 0 {
		b.ID = s.nextIDLocked()
	} else if b.ID > s.lastID {
		s.lastID = b.ID
	}
	if b.Status == "" {
		b.Status = domain.BoatStatusActive
	}
	now := s.now()
	b.CreatedAt, b.UpdatedAt = now, now
	s.boats[b.ID] = b
	return b
}

func (s *Store) AddCabin(c domain.Cabin) domain.Cabin {
	s.mu.Lock()
	defer s.mu.Unlock()

	if c.ID == 0 {
		c.ID = s.nextIDLocked()
	} else if c.ID > s.lastID {
		s.lastID = c.ID
	}
	s.cabins[c.ID] = c
	return c
}

// AddTrip stores t without scheduling checks. Counters are derived from the
// boat capacity and t.BookedSpots.
func (s *Store) AddTrip(t domain.Trip) domain.Trip {
	s.mu.Lock()
	defer s.mu.Unlock()

	if t.ID == 0 {
		t.ID = s.nextIDLocked()
	} else if t.ID > s.lastID {
		s.lastID = t.ID
	}
	t.StartDate, t.EndDate = domain.DateOf(t.StartDate), domain.DateOf(t.EndDate)
	t.AvailableSpots = domain.AvailableSpots(s.boats[t.BoatID].Capacity, t.BookedSpots)
	now := s.now()
	t.CreatedAt, t.UpdatedAt = now, now
	s.trips[t.ID] = t
	return t
}

type boatRepo struct{ s *Store }

func (r boatRepo) List(ctx context.Context) ([]domain.Boat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	boats := make([]domain.Boat, 0, len(r.s.boats))
	for _, b := range r.s.boats {
		boats = append(boats, b)
	}
	sort.Slice(boats, func(i, j int) bool {
		if boats[i].Name != boats[j].Name {
			return boats[i].Name < boats[j].Name
		}
		return boats[i].ID < boats[j].ID
	})
	return boats, nil
}

func (r boatRepo) GetByID(ctx context.Context, id int64) (*domain.Boat, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	b, ok := r.s.boats[id]
	if !ok {
		return nil, domain.ErrBoatNotFound
	}
	return &b, nil
}

type cabinRepo struct{ s *Store }

func (r cabinRepo) ListByBoat(ctx context.Context, boatID int64) ([]domain.Cabin, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	cabins := make([]domain.Cabin, 0)
	for _, c := range r.s.cabins {
		if c.BoatID == boatID {
			cabins = append(cabins, c)
		}
	}
	sort.Slice(cabins, func(i, j int) bool { return cabins[i].Less(cabins[j]) })
	return cabins, nil
}

var (
	_ repository.BoatRepository  = boatRepo{}
	_ repository.CabinRepository = cabinRepo{}
)
