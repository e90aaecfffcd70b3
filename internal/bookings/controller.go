package bookings

import (
	"errors"
	"net/http"
	"strconv"

	"cinetix/internal/payments"
	"cinetix/internal/shared/middleware"
	"cinetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateBooking reserves seats for the authenticated user
func (c *Controller) CreateBooking(ctx *gin.Context) {
	claims, ok := middleware.CurrentClaims(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	var req CreateBookingRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	booking, err := c.service.Reserve(ctx.Request.Context(), claims.UserID, req)
	if err != nil {
		status, message := reserveErrorStatus(err)
		response.RespondJSON(ctx, "error", status, message, nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Booking created successfully", booking, nil)
}

func reserveErrorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, ErrSeatConflict):
		return http.StatusConflict, "Selected seats are not available"
	case errors.Is(err, ErrShowNotFound):
		return http.StatusNotFound, "Show not found"
	case errors.Is(err, ErrShowStarted):
		return http.StatusConflict, "Show has already started"
	case errors.Is(err, ErrInvalidSeats):
		return http.StatusBadRequest, "Invalid seat selection"
	case errors.Is(err, ErrGateway):
		return http.StatusBadGateway, "Payment provider unavailable"
	default:
		return http.StatusInternalServerError, "Failed to create booking"
	}
}

// GetMyBookings lists the authenticated user's bookings, newest first
func (c *Controller) GetMyBookings(ctx *gin.Context) {
	claims, ok := middleware.CurrentClaims(ctx)
	if !ok {
		response.RespondJSON(ctx, "error", http.StatusUnauthorized, "authentication required", nil, nil)
		return
	}

	bookings, err := c.service.GetUserBookings(ctx.Request.Context(), claims.UserID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list bookings", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", bookings, nil)
}

// GetOccupiedSeats returns the taken seat labels for a show
func (c *Controller) GetOccupiedSeats(ctx *gin.Context) {
	showID, err := uuid.Parse(ctx.Param("id"))
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid show ID", nil, err.Error())
		return
	}

	seats, err := c.service.OccupiedSeats(ctx.Request.Context(), showID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to get occupied seats", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Occupied seats retrieved successfully", seats, nil)
}

// PaymentWebhook receives the payment provider's session outcome
func (c *Controller) PaymentWebhook(ctx *gin.Context) {
	var req PaymentWebhookRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid webhook payload", nil, err.Error())
		return
	}

	bookingID, err := uuid.Parse(req.BookingID)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid booking ID", nil, err.Error())
		return
	}

	booking, err := c.service.ConfirmPayment(ctx.Request.Context(), bookingID, payments.Status(req.Status))
	if err != nil {
		if errors.Is(err, ErrBookingNotFound) {
			// The hold expired before the report arrived. Acknowledge so the
			// provider stops retrying; the money side is reconciled
			// out of band.
			response.RespondJSON(ctx, "success", http.StatusOK, "Booking no longer exists", nil, nil)
			return
		}
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to confirm payment", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Payment processed", booking, nil)
}

// GetAllBookings returns all bookings, paginated (admin only)
func (c *Controller) GetAllBookings(ctx *gin.Context) {
	page, _ := strconv.Atoi(ctx.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(ctx.DefaultQuery("limit", "20"))

	list, err := c.service.GetAllBookings(ctx.Request.Context(), page, limit)
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list bookings", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Bookings retrieved successfully", list, nil)
}
