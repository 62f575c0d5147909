package booking

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/events"
	"github.com/Domenick1991/boatbooking/internal/logger"
	"github.com/Domenick1991/boatbooking/internal/penalty"
	"github.com/Domenick1991/boatbooking/internal/repository"
	"github.com/google/uuid"
)

type BookingUseCase interface {
	ListBookings(ctx context.Context, tripID int64) ([]domain.BookingDetail, error)
	BedMap(ctx context.Context, tripID int64) (*BedMap, error)
	Reserve(ctx context.Context, input ReserveInput) (*ReserveResult, error)
	Cancel(ctx context.Context, input CancelInput) ([]domain.CancellationResult, error)
}

// Locker serializes writers of one trip across service instances.
type Locker interface {
	AcquireTripLock(ctx context.Context, tripID int64, ttl time.Duration) (string, bool, error)
	ReleaseTripLock(ctx context.Context, tripID int64, token string) error
}

// Invalidator drops cached trip lists after counters change.
type Invalidator interface {
	InvalidateTrips(ctx context.Context) error
}

type Producer interface {
	Publish(ctx context.Context, topic, key string, value interface{}) error
}

var errTripBusy = errors.New("trip is locked by another writer")

const lockPollInterval = 25 * time.Millisecond

type BookingService struct {
	bookings           repository.BookingRepository
	trips              repository.TripRepository
	cabins             repository.CabinRepository
	producer           Producer
	eventsTopic        string
	notificationsTopic string
	locker             Locker
	lockTTL            time.Duration
	lockWait           time.Duration
	cache              Invalidator
	now                func() time.Time
	log                *slog.Logger
}

type BedRequest struct {
	CabinID         int64         `json:"cabin_id"`
	BedNumber       int           `json:"bed_number"`
	PriceCents      int64         `json:"price_cents"`
	PassengerGender domain.Gender `json:"passenger_gender"`
	GroupName       string        `json:"group_name"`
}

type ReserveInput struct {
	TripID      int64        `json:"trip_id"`
	Beds        []BedRequest `json:"beds"`
	BookingType string       `json:"booking_type"`
}

type ReserveResult struct {
	ReservationRef string                `json:"reservation_ref"`
	Bookings       []domain.CabinBooking `json:"bookings"`
	Trip           domain.Trip           `json:"trip"`
}

// CancelInput carries the cancellation request. An empty BookingType charges
// each booking by its own status; a zero TripStartDate uses the trip's start.
type CancelInput struct {
	TripID        int64     `json:"trip_id"`
	BookingIDs    []int64   `json:"booking_ids"`
	BookingType   string    `json:"booking_type"`
	TripStartDate time.Time `json:"trip_start_date"`
}

type BedSlot struct {
	CabinID     int64                `json:"cabin_id"`
	Deck        string               `json:"deck"`
	CabinNumber int                  `json:"cabin_number"`
	BedNumber   int                  `json:"bed_number"`
	Booking     *domain.CabinBooking `json:"booking,omitempty"`
}

type BedMap struct {
	Trip            domain.Trip `json:"trip"`
	Beds            []BedSlot   `json:"beds"`
	OccupiedBeds    int         `json:"occupied_beds"`
	TotalPriceCents int64       `json:"total_price_cents"`
}

type BookingServiceOption func(*BookingService)

func WithNotificationsTopic(topic string) BookingServiceOption {
	return func(s *BookingService) {
		s.notificationsTopic = topic
	}
}

// WithLocker enables the distributed trip lock. wait bounds how long a writer
// waits for a busy trip.
func WithLocker(locker Locker, ttl, wait time.Duration) BookingServiceOption {
	return func(s *BookingService) {
		s.locker = locker
		s.lockTTL = ttl
		s.lockWait = wait
	}
}

func WithCache(cache Invalidator) BookingServiceOption {
	return func(s *BookingService) {
		s.cache = cache
	}
}

func WithClock(now func() time.Time) BookingServiceOption {
	return func(s *BookingService) {
		s.now = now
	}
}

func WithLogger(log *slog.Logger) BookingServiceOption {
	return func(s *BookingService) {
		s.log = log
	}
}

func NewBookingService(
	bookings repository.BookingRepository,
	trips repository.TripRepository,
	cabins repository.CabinRepository,
	producer Producer,
	eventsTopic string,
	opts ...BookingServiceOption,
) *BookingService {
	service := &BookingService{
		bookings:    bookings,
		trips:       trips,
		cabins:      cabins,
		producer:    producer,
		eventsTopic: eventsTopic,
		lockTTL:     10 * time.Second,
		now:         time.Now,
		log:         logger.Discard(),
	}
	for _, opt := range opts {
		opt(service)
	}
	return service
}

func (s *BookingService) ListBookings(ctx context.Context, tripID int64) ([]domain.BookingDetail, error) {
	if tripID <= 0 {
		return nil, fmt.Errorf("%w: trip id must be positive", domain.ErrValidation)
	}
	return s.bookings.ListActive(ctx, tripID)
}

// BedMap lists every bed of the trip's boat with its active booking. The trip
// counters and the total price are derived from the same bookings snapshot as
// the beds.
func (s *BookingService) BedMap(ctx context.Context, tripID int64) (*BedMap, error) {
	if tripID <= 0 {
		return nil, fmt.Errorf("%w: trip id must be positive", domain.ErrValidation)
	}
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return nil, err
	}
	cabins, err := s.cabins.ListByBoat(ctx, trip.BoatID)
	if err != nil {
		return nil, err
	}
	active, err := s.bookings.ListActive(ctx, tripID)
	if err != nil {
		return nil, err
	}

	byBed := make(map[domain.BedKey]domain.CabinBooking, len(active))
	for _, b := range active {
		byBed[b.Bed()] = b.CabinBooking
	}

	m := &BedMap{Trip: *trip, Beds: make([]BedSlot, 0)}
	for _, c := range cabins {
		for bed := 1; bed <= c.Beds; bed++ {
			slot := BedSlot{CabinID: c.ID, Deck: c.Deck, CabinNumber: c.Number, BedNumber: bed}
			if b, ok := byBed[domain.BedKey{CabinID: c.ID, BedNumber: bed}]; ok {
				b := b
				slot.Booking = &b
				m.OccupiedBeds++
				m.TotalPriceCents += b.PriceCents
			}
			m.Beds = append(m.Beds, slot)
		}
	}
	capacity := trip.BookedSpots + trip.AvailableSpots
	m.Trip.BookedSpots = m.OccupiedBeds
	m.Trip.AvailableSpots = domain.AvailableSpots(capacity, m.OccupiedBeds)
	return m, nil
}

func validateBeds(beds []BedRequest) error {
	if len(beds) == 0 {
		return fmt.Errorf("%w: at least one bed is required", domain.ErrValidation)
	}
	seen := make(map[domain.BedKey]struct{}, len(beds))
	for _, b := range beds {
		if b.CabinID <= 0 || b.BedNumber <= 0 {
			return fmt.Errorf("%w: cabin id and bed number must be positive", domain.ErrValidation)
		}
		if b.PriceCents < 0 {
			return fmt.Errorf("%w: price must not be negative", domain.ErrValidation)
		}
		switch b.PassengerGender {
		case "", domain.GenderMale, domain.GenderFemale, domain.GenderOther:
		default:
			return fmt.Errorf("%w: unknown passenger gender %q", domain.ErrValidation, b.PassengerGender)
		}
		key := domain.BedKey{CabinID: b.CabinID, BedNumber: b.BedNumber}
		if _, dup := seen[key]; dup {
			return fmt.Errorf("%w: bed %d in cabin %d requested twice", domain.ErrValidation, b.BedNumber, b.CabinID)
		}
		seen[key] = struct{}{}
	}
	return nil
}

func (s *BookingService) Reserve(ctx context.Context, input ReserveInput) (*ReserveResult, error) {
	if input.TripID <= 0 {
		return nil, fmt.Errorf("%w: trip id must be positive", domain.ErrValidation)
	}
	if err := validateBeds(input.Beds); err != nil {
		return nil, err
	}
	status, err := domain.ParseBookingType(input.BookingType)
	if err != nil {
		return nil, err
	}

	unlock, err := s.lockTrip(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	ref := uuid.NewString()
	now := s.now()
	rows := make([]domain.CabinBooking, 0, len(input.Beds))
	for _, b := range input.Beds {
		rows = append(rows, domain.CabinBooking{
			TripID:          input.TripID,
			CabinID:         b.CabinID,
			BedNumber:       b.BedNumber,
			Status:          status,
			PriceCents:      b.PriceCents,
			PassengerGender: b.PassengerGender,
			GroupName:       b.GroupName,
			ReservationRef:  ref,
			BookedAt:        now,
		})
	}

	trip, err := s.bookings.Reserve(ctx, input.TripID, rows)
	if err != nil {
		return nil, err
	}

	s.invalidate(ctx)
	s.log.Info("beds reserved",
		slog.Int64("trip_id", input.TripID),
		slog.String("reservation_ref", ref),
		slog.Int("beds", len(rows)),
		slog.Int("available_spots", trip.AvailableSpots),
	)
	s.publish(ctx, events.BookingEvent{
		Type:           events.TypeBookingReserved,
		TripID:         input.TripID,
		Status:         string(status),
		ReservationRef: ref,
		Beds:           events.BedsOf(rows),
		BookedSpots:    trip.BookedSpots,
		AvailableSpots: trip.AvailableSpots,
	})

	return &ReserveResult{ReservationRef: ref, Bookings: rows, Trip: *trip}, nil
}

func (s *BookingService) Cancel(ctx context.Context, input CancelInput) ([]domain.CancellationResult, error) {
	if input.TripID <= 0 {
		return nil, fmt.Errorf("%w: trip id must be positive", domain.ErrValidation)
	}
	if len(input.BookingIDs) == 0 {
		return nil, fmt.Errorf("%w: at least one booking id is required", domain.ErrValidation)
	}
	seen := make(map[int64]struct{}, len(input.BookingIDs))
	for _, id := range input.BookingIDs {
		if id <= 0 {
			return nil, fmt.Errorf("%w: booking id must be positive", domain.ErrValidation)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("%w: booking %d listed twice", domain.ErrValidation, id)
		}
		seen[id] = struct{}{}
	}
	var override domain.BookingStatus
	if input.BookingType != "" {
		status, err := domain.ParseBookingType(input.BookingType)
		if err != nil {
			return nil, err
		}
		override = status
	}

	unlock, err := s.lockTrip(ctx, input.TripID)
	if err != nil {
		return nil, err
	}
	defer unlock()

	cancelled, trip, err := s.bookings.Cancel(ctx, input.TripID, input.BookingIDs)
	if err != nil {
		return nil, err
	}

	tripStart := input.TripStartDate
	if tripStart.IsZero() {
		tripStart = trip.StartDate
	}
	today := s.now()

	results := make([]domain.CancellationResult, 0, len(cancelled))
	beds := events.BedsOf(cancelled)
	for i, b := range cancelled {
		status := override
		if status == "" {
			status = b.Status
		}
		res := penalty.Calculate(b, status, tripStart, today)
		results = append(results, res)
		beds[i].PenaltyPercentage = res.PenaltyPercentage
		beds[i].PenaltyCents = res.PenaltyCents
	}

	s.invalidate(ctx)
	s.log.Info("bookings cancelled",
		slog.Int64("trip_id", input.TripID),
		slog.Int("beds", len(cancelled)),
		slog.Int("available_spots", trip.AvailableSpots),
	)
	s.publish(ctx, events.BookingEvent{
		Type:           events.TypeBookingCancelled,
		TripID:         input.TripID,
		Status:         string(override),
		Beds:           beds,
		BookedSpots:    trip.BookedSpots,
		AvailableSpots: trip.AvailableSpots,
	})

	return results, nil
}

// lockTrip takes the distributed trip lock when one is configured. The
// repository still serializes writers on its own.
func (s *BookingService) lockTrip(ctx context.Context, tripID int64) (func(), error) {
	if s.locker == nil {
		return func() {}, nil
	}

	// wall time, not s.now: the business clock may be fixed
	deadline := time.Now().Add(s.lockWait)
	for {
		token, ok, err := s.locker.AcquireTripLock(ctx, tripID, s.lockTTL)
		if err != nil {
			return nil, &domain.StoreError{Op: "lock trip", Err: err}
		}
		if ok {
			return func() {
				// the request context may already be done
				if err := s.locker.ReleaseTripLock(context.WithoutCancel(ctx), tripID, token); err != nil {
					s.log.Warn("release trip lock", slog.Int64("trip_id", tripID), slog.String("error", err.Error()))
				}
			}, nil
		}
		remaining := time.Until(deadline)
		if remaining <= 0 {
			return nil, &domain.StoreError{Op: "lock trip", Err: errTripBusy}
		}
		select {
		case <-ctx.Done():
			return nil, &domain.StoreError{Op: "lock trip", Err: ctx.Err()}
		case <-time.After(min(remaining, lockPollInterval)):
		}
	}
}

func (s *BookingService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.InvalidateTrips(ctx); err != nil {
		s.log.Warn("invalidate trips cache", slog.String("error", err.Error()))
	}
}

// publish sends the event to the booking stream and, when configured, to the
// notifications topic. Failures are logged; the ledger change is committed.
func (s *BookingService) publish(ctx context.Context, event events.BookingEvent) {
	if s.producer == nil || s.eventsTopic == "" {
		return
	}
	event.ID = uuid.NewString()
	event.OccurredAt = s.now().UTC()

	if err := s.producer.Publish(ctx, s.eventsTopic, event.Key(), event); err != nil {
		s.log.Warn("publish booking event", slog.String("type", event.Type), slog.Int64("trip_id", event.TripID), slog.String("error", err.Error()))
		return
	}
	if s.notificationsTopic != "" {
		if err := s.producer.Publish(ctx, s.notificationsTopic, event.Key(), event); err != nil {
			s.log.Warn("publish notification", slog.String("type", event.Type), slog.Int64("trip_id", event.TripID), slog.String("error", err.Error()))
		}
	}
}

var _ BookingUseCase = (*BookingService)(nil)
