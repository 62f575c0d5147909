package domain

import "time"

type Trip struct {
	ID             int64     `json:"id"`
	BoatID         int64     `json:"boat_id"`
	StartDate      time.Time `json:"start_date"`
	EndDate        time.Time `json:"end_date"`
	BookedSpots    int       `json:"booked_spots"`
	AvailableSpots int       `json:"available_spots"`
	Discount       int       `json:"discount"`
	Destination    string    `json:"destination"`
	Route          string    `json:"route"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// AvailableSpots derives the free bed count for a boat of the given capacity.
func AvailableSpots(capacity, booked int) int {
	if free := capacity - booked; free > 0 {
		return free
	}
	return 0
}

// SpotCounters returns the trip counters after applying delta booked beds.
// It fails with ErrInvariantViolation when the result would leave the
// [0, capacity] range.
func SpotCounters(capacity, booked, delta int) (newBooked, newAvailable int, err error) {
	newBooked = booked + delta
	if newBooked < 0 {
		return 0, 0, &InvariantError{Reason: "booked spots would go negative", Booked: newBooked, Capacity: capacity}
	}
	if newBooked > capacity {
		return 0, 0, &InvariantError{Reason: "booked spots would exceed boat capacity", Booked: newBooked, Capacity: capacity}
	}
	return newBooked, AvailableSpots(capacity, newBooked), nil
}
