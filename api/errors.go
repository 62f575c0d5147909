package api

import (
	"errors"
	"net/http"

	"github.com/Domenick1991/boatbooking/internal/domain"
	"github.com/gin-gonic/gin"
)

type errorResponse struct {
	Error     string `json:"error"`
	CabinID   int64  `json:"cabin_id,omitempty"`
	BedNumber int    `json:"bed_number,omitempty"`
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, domain.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, domain.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, domain.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, domain.ErrInvariantViolation):
		return http.StatusUnprocessableEntity
	case errors.Is(err, domain.ErrStore):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func writeError(c *gin.Context, err error) {
	resp := errorResponse{Error: err.Error()}
	var conflict *domain.ConflictError
	if errors.As(err, &conflict) {
		resp.CabinID = conflict.CabinID
		resp.BedNumber = conflict.BedNumber
	}
	_ = c.Error(err)
	c.JSON(statusOf(err), resp)
}

func badRequest(c *gin.Context, msg string) {
	c.JSON(http.StatusBadRequest, errorResponse{Error: msg})
}
