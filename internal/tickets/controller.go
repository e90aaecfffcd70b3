package tickets

import (
	"errors"
	"net/http"

	"cinetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

// VerifyRequest carries the scanned ticket token
type VerifyRequest struct {
	Token string `json:"token" binding:"required"`
}

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// Verify consumes a scanned ticket token at the venue entrance
func (c *Controller) Verify(ctx *gin.Context) {
	var req VerifyRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	result, err := c.service.Verify(ctx.Request.Context(), req.Token)
	if err != nil {
		status, message := verifyErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Ticket verified successfully", result, nil)
}

func verifyErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrTicketNotFound):
		return http.StatusNotFound, "Ticket not found"
	case errors.Is(err, ErrAlreadyUsed):
		return http.StatusConflict, "Ticket already used"
	case errors.Is(err, ErrTooEarly):
		return http.StatusUnprocessableEntity, "Entry window not open yet"
	case errors.Is(err, ErrExpired):
		return http.StatusGone, "Ticket expired"
	case errors.Is(err, ErrShowUnavailable):
		return http.StatusServiceUnavailable, "Show details unavailable"
	default:
		return http.StatusInternalServerError, "Failed to verify ticket"
	}
}
