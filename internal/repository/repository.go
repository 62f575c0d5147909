package repository

import (
	"context"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
)

type BoatRepository interface {
	List(ctx context.Context) ([]domain.Boat, error)
	GetByID(ctx context.Context, id int64) (*domain.Boat, error)
}

// TripGuard vets a trip write against the boat and the boat's other trips.
// It runs inside the write's critical section.
type TripGuard func(boat domain.Boat, boatTrips []domain.Trip) error

type TripRepository interface {
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
	Create(ctx context.Context, trip *domain.Trip, guard TripGuard) error
	UpdateDates(ctx context.Context, id int64, start, end time.Time, guard TripGuard) (*domain.Trip, error)
}

type CabinRepository interface {
	ListByBoat(ctx context.Context, boatID int64) ([]domain.Cabin, error)
}

// BookingRepository is the bed allocation ledger. Reserve and Cancel are
// atomic per trip: bed rows and trip counters change together or not at all.
type BookingRepository interface {
	ListActive(ctx context.Context, tripID int64) ([]domain.BookingDetail, error)
	Reserve(ctx context.Context, tripID int64, beds []domain.CabinBooking) (*domain.Trip, error)
	Cancel(ctx context.Context, tripID int64, ids []int64) ([]domain.CabinBooking, *domain.Trip, error)
}
