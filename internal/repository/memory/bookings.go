package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/repository"
)

type bookingRepo struct{ s *Store }

func (r bookingRepo) ListActive(ctx context.Context, tripID int64) ([]domain.BookingDetail, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	if _, ok := r.s.trips[tripID]; !ok {
		return nil, domain.ErrTripNotFound
	}
	out := make([]domain.BookingDetail, 0)
	for _, b := range r.s.bookings {
		if b.TripID != tripID || b.CancelDate != nil {
			continue
		}
		c := r.s.cabins[b.CabinID]
		out = append(out, domain.BookingDetail{CabinBooking: b, Deck: c.Deck, CabinNumber: c.Number})
	}
	sort.Slice(out, func(i, j int) bool { return domain.LessBookingDetail(out[i], out[j]) })
	return out, nil
}

func (r bookingRepo) tripAndCapacity(tripID int64) (domain.Trip, int, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	t, ok := r.s.trips[tripID]
	if !ok {
		return domain.Trip{}, 0, domain.ErrTripNotFound
	}
	b, ok := r.s.boats[t.BoatID]
	if !ok {
		return domain.Trip{}, 0, domain.ErrBoatNotFound
	}
	return t, b.Capacity, nil
}

func (r bookingRepo) checkBeds(trip domain.Trip, beds []domain.CabinBooking) error {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[domain.BedKey]struct{}, len(beds))
	for _, b := range beds {
		if _, dup := seen[b.Bed()]; dup {
			return fmt.Errorf("%w: bed %d in cabin %d requested twice", domain.ErrValidation, b.BedNumber, b.CabinID)
		}
		seen[b.Bed()] = struct{}{}

		c, ok := r.s.cabins[b.CabinID]
		if !ok || c.BoatID != trip.BoatID {
			return fmt.Errorf("%w: cabin %d is not on the boat of trip %d", domain.ErrValidation, b.CabinID, trip.ID)
		}
		if b.BedNumber < 1 || b.BedNumber > c.Beds {
			return fmt.Errorf("%w: cabin %d has no bed %d", domain.ErrValidation, b.CabinID, b.BedNumber)
		}
		if _, taken := r.s.occupied[bedSlot{trip.ID, b.CabinID, b.BedNumber}]; taken {
			return &domain.ConflictError{TripID: trip.ID, CabinID: b.CabinID, BedNumber: b.BedNumber}
		}
	}
	return nil
}

func (r bookingRepo) Reserve(ctx context.Context, tripID int64, beds []domain.CabinBooking) (*domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	unlock := r.s.tripLocks.Lock(tripID)
	defer unlock()

	trip, capacity, err := r.tripAndCapacity(tripID)
	if err != nil {
		return nil, err
	}
	if err := r.checkBeds(trip, beds); err != nil {
		return nil, err
	}
	booked, available, err := domain.SpotCounters(capacity, trip.BookedSpots, len(beds))
	if err != nil {
		return nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for i := range beds {
		b := &beds[i]
		b.ID = r.s.nextIDLocked()
		b.TripID = tripID
		if b.BookedAt.IsZero() {
			b.BookedAt = r.s.now()
		}
		r.s.bookings[b.ID] = *b
		r.s.occupied[bedSlot{tripID, b.CabinID, b.BedNumber}] = b.ID
	}
	updated := r.s.setCountersLocked(tripID, booked, available)
	return &updated, nil
}

func (r bookingRepo) Cancel(ctx context.Context, tripID int64, ids []int64) ([]domain.CabinBooking, *domain.Trip, error) {
	if err := ctx.Err(); err != nil {
		return nil, nil, err
	}
	unlock := r.s.tripLocks.Lock(tripID)
	defer unlock()

	trip, capacity, err := r.tripAndCapacity(tripID)
	if err != nil {
		return nil, nil, err
	}

	r.s.mu.RLock()
	found := make(map[int64]domain.CabinBooking, len(ids))
	for _, id := range ids {
		if b, ok := r.s.bookings[id]; ok && b.TripID == tripID && b.CancelDate == nil {
			found[id] = b
		}
	}
	r.s.mu.RUnlock()

	cancelled := make([]domain.CabinBooking, 0, len(ids))
	if len(found) == 0 {
		return nil, nil, fmt.Errorf("%w: none of %v on trip %d", domain.ErrBookingNotFound, ids, tripID)
	}
	for _, id := range ids {
		b, ok := found[id]
		if !ok {
			return nil, nil, fmt.Errorf("%w: id %d on trip %d", domain.ErrBookingNotFound, id, tripID)
		}
		cancelled = append(cancelled, b)
	}

	booked, available, err := domain.SpotCounters(capacity, trip.BookedSpots, -len(cancelled))
	if err != nil {
		return nil, nil, err
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	for _, b := range cancelled {
		delete(r.s.bookings, b.ID)
		delete(r.s.occupied, bedSlot{tripID, b.CabinID, b.BedNumber})
	}
	updated := r.s.setCountersLocked(tripID, booked, available)
	return cancelled, &updated, nil
}

// setCountersLocked re-reads the trip so concurrent date edits are kept.
func (s *Store) setCountersLocked(tripID int64, booked, available int) domain.Trip {
	t := s.trips[tripID]
	t.BookedSpots, t.AvailableSpots = booked, available
	t.UpdatedAt = s.now()
	s.trips[tripID] = t
	return t
}

var _ repository.BookingRepository = bookingRepo{}
