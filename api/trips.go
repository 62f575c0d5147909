package api

import (
	"net/http"
	"strconv"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/service/trips"
	"github.com/gin-gonic/gin"
)

type TripHandler struct {
	service trips.TripUseCase
}

type createTripRequest struct {
	BoatID      int64  `json:"boat_id"`
	StartDate   string `json:"start_date"`
	EndDate     string `json:"end_date"`
	Discount    int    `json:"discount"`
	Destination string `json:"destination"`
	Route       string `json:"route"`
}

type rescheduleRequest struct {
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

func NewTripHandler(service trips.TripUseCase) *TripHandler {
	return &TripHandler{service: service}
}

func (h *TripHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.POST("", h.create)
	router.GET("/:id", h.get)
	router.PUT("/:id/dates", h.reschedule)
}

func (h *TripHandler) list(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, list)
}

func (h *TripHandler) get(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	trip, err := h.service.GetByID(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func (h *TripHandler) create(c *gin.Context) {
	var req createTripRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date")
		return
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		badRequest(c, "invalid end_date")
		return
	}

	trip, err := h.service.Create(c.Request.Context(), trips.CreateTripInput{
		BoatID:      req.BoatID,
		StartDate:   start,
		EndDate:     end,
		Discount:    req.Discount,
		Destination: req.Destination,
		Route:       req.Route,
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, trip)
}

func (h *TripHandler) reschedule(c *gin.Context) {
	id, ok := tripID(c)
	if !ok {
		return
	}
	var req rescheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err.Error())
		return
	}
	start, err := domain.ParseDate(req.StartDate)
	if err != nil {
		badRequest(c, "invalid start_date")
		return
	}
	end, err := domain.ParseDate(req.EndDate)
	if err != nil {
		badRequest(c, "invalid end_date")
		return
	}

	trip, err := h.service.Reschedule(c.Request.Context(), id, start, end)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, trip)
}

func tripID(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		badRequest(c, "invalid id")
		return 0, false
	}
	return id, true
}
