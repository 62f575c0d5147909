package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/Domenick1991/boatbooking/internal/service/trips"
	"github.com/gin-gonic/gin"
)

type BoatHandler struct {
	service trips.TripUseCase
}

func NewBoatHandler(service trips.TripUseCase) *BoatHandler {
	return &BoatHandler{service: service}
}

func (h *BoatHandler) Register(router *gin.RouterGroup) {
	router.GET("", h.list)
	router.GET("/available", h.available)
	router.GET("/:id", h.get)
}

func (h *BoatHandler) list(c *gin.Context) {
	boats, err := h.service.ListBoats(c.Request.Context())
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, boats)
}

func (h *BoatHandler) get(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		badRequest(c, "invalid id")
		return
	}
	boat, err := h.service.GetBoat(c.Request.Context(), id)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, boat)
}

// available answers GET /boats/available?start=2026-06-01&end=2026-06-08.
// Missing dates give an empty list.
func (h *BoatHandler) available(c *gin.Context) {
	start, ok := optionalDate(c, "start")
	if !ok {
		return
	}
	end, ok := optionalDate(c, "end")
	if !ok {
		return
	}
	var exclude int64
	if raw := c.Query("exclude_trip_id"); raw != "" {
		id, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			badRequest(c, "invalid exclude_trip_id")
			return
		}
		exclude = id
	}

	boats, err := h.service.AvailableBoats(c.Request.Context(), start, end, exclude)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, boats)
}

func optionalDate(c *gin.Context, name string) (time.Time, bool) {
	raw := c.Query(name)
	if raw == "" {
		return time.Time{}, true
	}
	t, err := domain.ParseDate(raw)
	if err != nil {
		badRequest(c, "invalid "+name+", want "+domain.DateLayout)
		return time.Time{}, false
	}
	return t, true
}
