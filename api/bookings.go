package api

import (
	"net/http"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/service/booking"
	"github.com/gin-gonic/gin"
)

type BookingHandler struct {
	service booking.BookingUseCase
}

type reserveRequest struct {
	Beds        []booking.BedRequest `json:"beds"`
	BookingType string               `json:"booking_type"`
}

type reserveResponse struct {
	ReservationRef string                `json:"reservation_ref"`
	Bookings       []domain.CabinBooking `json:"bookings"`
	BookedSpots    int                   `json:"booked_spots"`
	AvailableSpots int                   `json:"available_spots"`
}

type cancelRequest struct {
	BookingIDs    []int64 `json:"booking_ids"`
	BookingType   string  `json:"booking_type"`
	TripStartDate string  `json:"trip_start_date"`
}

type cancelResponse struct {
	Cancellations []domain.CancellationResult `json:"cancellations"`
}

func NewBookingHandler(service booking.BookingUseCase) *BookingHandler {
	return &BookingHandler{service: service}
}

// Register mounts the ledger routes under the trips group.
func (h *BookingHandler) Register(router *gin.RouterGroup) {
	router.GET("/:id/bookings", h.list)
	router.GET("/:id/beds", h.beds)
	router.POST("/:id/bookings", h.reserve)
	router.POST("/:id/bookings/cancel", h.cancel)
}

func (h *BookingHandler) list(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	list, err := h.service.ListBookings(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *BookingHandler) beds(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	m, err := h.service.BedMap(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

func (h *BookingHandler) reserve(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	var req reserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}

	res, err := h.service.Reserve(c.Request.Context(), booking.ReserveInput{
		TripID:      id,
		Beds:        req.Beds,
		BookingType: req.BookingType,
	})
	if err != nil {
		writeError(c, err)
		return
	}

	c.JSON(http.StatusCreated, reserveResponse{
		ReservationRef: res.ReservationRef,
		Bookings:       res.Bookings,
		BookedSpots:    res.Trip.BookedSpots,
		AvailableSpots: res.Trip.AvailableSpots,
	})
}

func (h *BookingHandler) cancel(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	var req cancelRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	var start time.Time
	if req.TripStartDate != "" {
		t, err := domain.ParseDate(req.TripStartDate)
		if err != nil {
			badRequest(c, "invalid trip_start_date")
			return
		}
		start = t
	}

	results, err := h.service.Cancel(c.Request.Context(), booking.CancelInput{
		TripID:        id,
		BookingIDs:    req.BookingIDs,
		BookingType:   req.BookingType,
		TripStartDate: start,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, cancelResponse{Cancellations: results})
}
