// Package penalty computes cancellation penalties for cabin bookings.
package penalty

import (
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
)

type tier struct {
	maxDays int
	percent int
}

var schedule = []tier{
	{maxDays: 7, percent: 100},
	{maxDays: 14, percent: 50},
	{maxDays: 30, percent: 25},
}

const farOutPercent = 10

// Percentage returns the penalty percent for cancelling a confirmed booking
// daysUntilTrip calendar days before departure.
func Percentage(daysUntilTrip int) int {
	for _, t := range schedule {
		if daysUntilTrip <= t.maxDays {
			return t.percent
		}
	}
	return farOutPercent
}

// Amount applies percent to priceCents, rounding half up to a whole cent.
func Amount(priceCents int64, percent int) int64 {
	return (priceCents*int64(percent) + 50) / 100
}

// Calculate builds the cancellation result for one booking. Only confirmed
// cancellations are charged; option and waitlist bookings are free.
func Calculate(b domain.CabinBooking, bookingType domain.BookingStatus, tripStart, today time.Time) domain.CancellationResult {
	res := domain.CancellationResult{BookingID: b.ID}
	if bookingType != domain.BookingStatusConfirmed {
		return res
	}
	res.PenaltyPercentage = Percentage(domain.DaysBetween(today, tripStart))
	res.PenaltyCents = Amount(b.PriceCents, res.PenaltyPercentage)
	return res
}
