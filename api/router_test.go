package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/logger"
	"github.com/Domenick1991/boatbooking/internal/repository/memory"
	"github.com/Domenick1991/boatbooking/internal/service/booking"
	"github.com/Domenick1991/boatbooking/internal/service/trips"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	seed, err := memory.LoadSeed("../testdata/seed.yaml")
	require.NoError(t, err)
	store := memory.NewStore()
	require.NoError(t, store.Apply(seed))

	tripSvc := trips.NewTripService(store.Boats(), store.Trips())
	bookingSvc := booking.NewBookingService(store.Bookings(), store.Trips(), store.Cabins(), nil, "")
	return NewRouter(RouterConfig{CORSOrigins: []string{"http://localhost:5173"}}, logger.Discard(), tripSvc, bookingSvc)
}

func do(t *testing.T, router *gin.Engine, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, target, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/healthz", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestRouter_ReserveAndCancelFlow(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/trips/100/bookings", map[string]any{
		"booking_type": "confirm",
		"beds": []map[string]any{
			{"cabin_id": 11, "bed_number": 1, "price_cents": 150000, "passenger_gender": "female"},
			{"cabin_id": 11, "bed_number": 2, "price_cents": 150000, "passenger_gender": "male"},
		},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var reserved reserveResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &reserved))
	assert.Equal(t, 2, reserved.BookedSpots)
	assert.Equal(t, 8, reserved.AvailableSpots)

	w = do(t, router, http.MethodPost, "/api/v1/trips/100/bookings", map[string]any{
		"booking_type": "option",
		"beds":         []map[string]any{{"cabin_id": 12, "bed_number": 1}, {"cabin_id": 11, "bed_number": 2}},
	})
	assert.Equal(t, http.StatusConflict, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/trips/100/bookings", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var active []domain.BookingDetail
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &active))
	assert.Len(t, active, 2)

	w = do(t, router, http.MethodPost, "/api/v1/trips/100/bookings/cancel", map[string]any{
		"booking_ids":     []int64{reserved.Bookings[0].ID, reserved.Bookings[1].ID},
		"booking_type":    "confirmed",
		"trip_start_date": "2099-01-01",
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var cancelled cancelResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &cancelled))
	require.Len(t, cancelled.Cancellations, 2)
	assert.Equal(t, 10, cancelled.Cancellations[0].PenaltyPercentage)
	assert.Equal(t, int64(15000), cancelled.Cancellations[0].PenaltyCents)

	w = do(t, router, http.MethodGet, "/api/v1/trips/100", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var trip domain.Trip
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &trip))
	assert.Equal(t, 0, trip.BookedSpots)
	assert.Equal(t, 10, trip.AvailableSpots)
}

func TestRouter_BookingsOfUnknownTrip(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/trips/999/bookings", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = do(t, router, http.MethodGet, "/api/v1/trips/999/beds", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_BedMapAfterReserve(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/trips/101/bookings", map[string]any{
		"booking_type": "option",
		"beds":         []map[string]any{{"cabin_id": 21, "bed_number": 2, "price_cents": 90000}},
	})
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	w = do(t, router, http.MethodGet, "/api/v1/trips/101/beds", nil)
	require.Equal(t, http.StatusOK, w.Code)
	var m booking.BedMap
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &m))
	assert.Len(t, m.Beds, 6)
	assert.Equal(t, 1, m.OccupiedBeds)
	assert.Equal(t, 1, m.Trip.BookedSpots)
	assert.Equal(t, 5, m.Trip.AvailableSpots)
	assert.Equal(t, int64(90000), m.TotalPriceCents)
}

func TestRouter_AvailableBoats(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodGet, "/api/v1/boats/available?start=2026-06-14&end=2026-06-18", nil)

	require.Equal(t, http.StatusOK, w.Code)
	var boats []domain.Boat
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &boats))
	require.Len(t, boats, 1)
	assert.Equal(t, "Boreas", boats[0].Name)
}

func TestRouter_CreateTripOnBusyBoat(t *testing.T) {
	router := newTestRouter(t)

	w := do(t, router, http.MethodPost, "/api/v1/trips", map[string]any{
		"boat_id":    1,
		"start_date": "2026-06-14",
		"end_date":   "2026-06-16",
	})

	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestStatusOf(t *testing.T) {
	cases := []struct {
		err  error
		want int
	}{
		{domain.ErrValidation, http.StatusBadRequest},
		{domain.ErrTripNotFound, http.StatusNotFound},
		{&domain.ConflictError{}, http.StatusConflict},
		{&domain.InvariantError{}, http.StatusUnprocessableEntity},
		{&domain.StoreError{Op: "x", Err: errors.New("down")}, http.StatusServiceUnavailable},
		{errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, statusOf(tc.err), tc.err.Error())
	}
}
