// Package availability decides which boats are free for a candidate trip window.
package availability

import (
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
)

// BufferDays is the turnaround gap kept free on each side of a trip.
const BufferDays = 1

// Window returns the buffered, inclusive date window around [start, end].
func Window(start, end time.Time) (from, to time.Time) {
	return domain.DateOf(start).AddDate(0, 0, -BufferDays), domain.DateOf(end).AddDate(0, 0, BufferDays)
}

// Overlaps reports whether trip touches the buffered window around [start, end].
func Overlaps(trip domain.Trip, start, end time.Time) bool {
	from, to := Window(start, end)
	tripStart, tripEnd := domain.DateOf(trip.StartDate), domain.DateOf(trip.EndDate)

	startsInside := !tripStart.Before(from) && !tripStart.After(to)
	endsInside := !tripEnd.Before(from) && !tripEnd.After(to)
	spans := !tripStart.After(from) && !tripEnd.Before(to)
	return startsInside || endsInside || spans
}

// BusyBoats collects the ids of boats with a trip overlapping the window.
// A trip with id excludeTripID is ignored; pass 0 to consider all trips.
func BusyBoats(start, end time.Time, trips []domain.Trip, excludeTripID int64) map[int64]struct{} {
	busy := make(map[int64]struct{})
	for _, t := range trips {
		if excludeTripID != 0 && t.ID == excludeTripID {
			continue
		}
		if Overlaps(t, start, end) {
			busy[t.BoatID] = struct{}{}
		}
	}
	return busy
}

// FindAvailableBoats returns the active boats without an overlapping trip, in
// input order. A missing start or end yields no boats.
func FindAvailableBoats(start, end time.Time, boats []domain.Boat, trips []domain.Trip, excludeTripID int64) []domain.Boat {
	available := make([]domain.Boat, 0)
	if start.IsZero() || end.IsZero() {
		return available
	}

	busy := BusyBoats(start, end, trips, excludeTripID)
	for _, b := range boats {
		if !b.IsActive() {
			continue
		}
		if _, taken := busy[b.ID]; taken {
			continue
		}
		available = append(available, b)
	}
	return available
}

// IsBoatAvailable is FindAvailableBoats narrowed to a single boat.
func IsBoatAvailable(start, end time.Time, boat domain.Boat, trips []domain.Trip, excludeTripID int64) bool {
	return len(FindAvailableBoats(start, end, []domain.Boat{boat}, trips, excludeTripID)) == 1
}
