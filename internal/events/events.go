// Package events defines the booking event payloads published to the broker.
package events

import (
	"fmt"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
)

const (
	TypeBookingReserved  = "booking_reserved"
	TypeBookingCancelled = "booking_cancelled"
)

type Bed struct {
	BookingID         int64  `json:"booking_id"`
	CabinID           int64  `json:"cabin_id"`
	BedNumber         int    `json:"bed_number"`
	PriceCents        int64  `json:"price_cents"`
	PenaltyPercentage int    `json:"penalty_percentage,omitempty"`
	PenaltyCents      int64  `json:"penalty_cents,omitempty"`
	GroupName         string `json:"group_name,omitempty"`
}

type BookingEvent struct {
	ID             string    `json:"id"`
	Type           string    `json:"type"`
	TripID         int64     `json:"trip_id"`
	Status         string    `json:"status"`
	ReservationRef string    `json:"reservation_ref,omitempty"`
	Beds           []Bed     `json:"beds"`
	BookedSpots    int       `json:"booked_spots"`
	AvailableSpots int       `json:"available_spots"`
	OccurredAt     time.Time `json:"occurred_at"`
}

// Key is the partition key: events of one trip stay ordered.
func (e BookingEvent) Key() string {
	return fmt.Sprint(e.TripID)
}

func BedsOf(bookings []domain.CabinBooking) []Bed {
	beds := make([]Bed, 0, len(bookings))
	for _, b := range bookings {
		beds = append(beds, Bed{
			BookingID:  b.ID,
			CabinID:    b.CabinID,
			BedNumber:  b.BedNumber,
			PriceCents: b.PriceCents,
			GroupName:  b.GroupName,
		})
	}
	return beds
}
