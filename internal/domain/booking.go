package domain

import (
	"fmt"
	"strings"
	"time"
)

type BookingStatus string

const (
	BookingStatusOption    BookingStatus = "option"
	BookingStatusConfirmed BookingStatus = "confirmed"
	BookingStatusWaitlist  BookingStatus = "waitlist"
)

// ParseBookingType maps a caller-supplied booking type to a ledger status.
func ParseBookingType(s string) (BookingStatus, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "option":
		return BookingStatusOption, nil
	case "confirm", "confirmed":
		return BookingStatusConfirmed, nil
	case "waitlist":
		return BookingStatusWaitlist, nil
	default:
		return "", fmt.Errorf("%w: unknown booking type %q", ErrValidation, s)
	}
}

type Gender string

const (
	GenderMale   Gender = "male"
	GenderFemale Gender = "female"
	GenderOther  Gender = "other"
)

type CabinBooking struct {
	ID              int64         `json:"id"`
	TripID          int64         `json:"trip_id"`
	CabinID         int64         `json:"cabin_id"`
	BedNumber       int           `json:"bed_number"`
	Status          BookingStatus `json:"status"`
	PriceCents      int64         `json:"price_cents"`
	PassengerGender Gender        `json:"passenger_gender"`
	GroupName       string        `json:"group_name"`
	ReservationRef  string        `json:"reservation_ref"`
	BookedAt        time.Time     `json:"booked_at"`
	CancelDate      *time.Time    `json:"cancel_date,omitempty"`
}

// BedKey identifies a bed slot on a trip.
type BedKey struct {
	CabinID   int64
	BedNumber int
}

func (b CabinBooking) Bed() BedKey {
	return BedKey{CabinID: b.CabinID, BedNumber: b.BedNumber}
}

// BookingDetail is an active booking joined with its cabin.
type BookingDetail struct {
	CabinBooking
	Deck        string `json:"deck"`
	CabinNumber int    `json:"cabin_number"`
}

// LessBookingDetail orders by deck, cabin number, then bed number.
func LessBookingDetail(a, b BookingDetail) bool {
	if a.Deck != b.Deck {
		return a.Deck < b.Deck
	}
	if a.CabinNumber != b.CabinNumber {
		return a.CabinNumber < b.CabinNumber
	}
	return a.BedNumber < b.BedNumber
}

type CancellationResult struct {
	BookingID         int64 `json:"id"`
	PenaltyPercentage int   `json:"penalty_percentage"`
	PenaltyCents      int64 `json:"penalty_amount_cents"`
}
