package trips

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/boatbooking/internal/availability"
	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/logger"
	"github.com/Domenick1991/boatbooking/internal/repository"
)

type TripUseCase interface {
	ListBoats(ctx context.Context) ([]domain.Boat, error)
	GetBoat(ctx context.Context, id int64) (*domain.Boat, error)
	List(ctx context.Context) ([]domain.Trip, error)
	GetByID(ctx context.Context, id int64) (*domain.Trip, error)
	Create(ctx context.Context, input CreateTripInput) (*domain.Trip, error)
	Reschedule(ctx context.Context, id int64, start, end time.Time) (*domain.Trip, error)
	AvailableBoats(ctx context.Context, start, end time.Time, excludeTripID int64) ([]domain.Boat, error)
}

// FleetCache holds the boat and trip lists that availability queries read.
type FleetCache interface {
	GetBoats(ctx context.Context) ([]domain.Boat, error)
	SetBoats(ctx context.Context, boats []domain.Boat) error
	GetTrips(ctx context.Context) ([]domain.Trip, error)
	SetTrips(ctx context.Context, trips []domain.Trip) error
	InvalidateTrips(ctx context.Context) error
}

type TripService struct {
	boats repository.BoatRepository
	trips repository.TripRepository
	cache FleetCache
	log   *slog.Logger
}

type CreateTripInput struct {
	BoatID      int64     `json:"boat_id"`
	StartDate   time.Time `json:"start_date"`
	EndDate     time.Time `json:"end_date"`
	Discount    int       `json:"discount"`
	Destination string    `json:"destination"`
	Route       string    `json:"route"`
}

type TripServiceOption func(*TripService)

func WithCache(cache FleetCache) TripServiceOption {
	return func(s *TripService) {
		s.cache = cache
	}
}

func WithLogger(log *slog.Logger) TripServiceOption {
	return func(s *TripService) {
		s.log = log
	}
}

func NewTripService(boats repository.BoatRepository, trips repository.TripRepository, opts ...TripServiceOption) *TripService {
	s := &TripService{boats: boats, trips: trips, log: logger.Discard()}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *TripService) ListBoats(ctx context.Context) ([]domain.Boat, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetBoats(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	boats, err := s.boats.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetBoats(ctx, boats); err != nil {
			s.log.Warn("cache boats", slog.String("error", err.Error()))
		}
	}
	return boats, nil
}

func (s *TripService) GetBoat(ctx context.Context, id int64) (*domain.Boat, error) {
	return s.boats.GetByID(ctx, id)
}

func (s *TripService) List(ctx context.Context) ([]domain.Trip, error) {
	if s.cache != nil {
		if cached, err := s.cache.GetTrips(ctx); err == nil && cached != nil {
			return cached, nil
		}
	}

	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetTrips(ctx, trips); err != nil {
			s.log.Warn("cache trips", slog.String("error", err.Error()))
		}
	}
	return trips, nil
}

func (s *TripService) GetByID(ctx context.Context, id int64) (*domain.Trip, error) {
	return s.trips.GetByID(ctx, id)
}

// AvailableBoats lists the active boats free around [start, end]. Missing
// dates give an empty list.
func (s *TripService) AvailableBoats(ctx context.Context, start, end time.Time, excludeTripID int64) ([]domain.Boat, error) {
	if start.IsZero() || end.IsZero() {
		return []domain.Boat{}, nil
	}
	if end.Before(start) {
		return nil, fmt.Errorf("%w: end date is before start date", domain.ErrValidation)
	}

	boats, err := s.ListBoats(ctx)
	if err != nil {
		return nil, err
	}
	trips, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	return availability.FindAvailableBoats(start, end, boats, trips, excludeTripID), nil
}

func validateDates(start, end time.Time) error {
	if start.IsZero() || end.IsZero() {
		return fmt.Errorf("%w: start and end dates are required", domain.ErrValidation)
	}
	if domain.DateOf(end).Before(domain.DateOf(start)) {
		return fmt.Errorf("%w: end date is before start date", domain.ErrValidation)
	}
	return nil
}

// scheduleGuard rejects inactive boats and boats busy around [start, end].
func scheduleGuard(start, end time.Time, excludeTripID int64) repository.TripGuard {
	return func(boat domain.Boat, boatTrips []domain.Trip) error {
		if !boat.IsActive() {
			return fmt.Errorf("%w: boat %d is not active", domain.ErrConflict, boat.ID)
		}
		if !availability.IsBoatAvailable(start, end, boat, boatTrips, excludeTripID) {
			return fmt.Errorf("%w: boat %d is already scheduled between %s and %s", domain.ErrConflict,
				boat.ID, start.Format(domain.DateLayout), end.Format(domain.DateLayout))
		}
		return nil
	}
}

func (s *TripService) Create(ctx context.Context, input CreateTripInput) (*domain.Trip, error) {
	if input.BoatID <= 0 {
		return nil, fmt.Errorf("%w: boat id is required", domain.ErrValidation)
	}
	if err := validateDates(input.StartDate, input.EndDate); err != nil {
		return nil, err
	}
	if input.Discount < 0 || input.Discount > 100 {
		return nil, fmt.Errorf("%w: discount must be between 0 and 100", domain.ErrValidation)
	}

	trip := &domain.Trip{
		BoatID:      input.BoatID,
		StartDate:   domain.DateOf(input.StartDate),
		EndDate:     domain.DateOf(input.EndDate),
		Discount:    input.Discount,
		Destination: input.Destination,
		Route:       input.Route,
	}
	if err := s.trips.Create(ctx, trip, scheduleGuard(trip.StartDate, trip.EndDate, 0)); err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("trip created",
		slog.Int64("trip_id", trip.ID),
		slog.Int64("boat_id", trip.BoatID),
		slog.String("start", trip.StartDate.Format(domain.DateLayout)),
		slog.String("end", trip.EndDate.Format(domain.DateLayout)),
	)
	return trip, nil
}

func (s *TripService) Reschedule(ctx context.Context, id int64, start, end time.Time) (*domain.Trip, error) {
	if err := validateDates(start, end); err != nil {
		return nil, err
	}
	start, end = domain.DateOf(start), domain.DateOf(end)

	trip, err := s.trips.UpdateDates(ctx, id, start, end, scheduleGuard(start, end, id))
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("trip rescheduled", slog.Int64("trip_id", id))
	return trip, nil
}

func (s *TripService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTrips(ctx); err != nil {
		s.log.Warn("invalidate trips cache", slog.String("error", err.Error()))
	}
}

var _ TripUseCase = (*TripService)(nil)
