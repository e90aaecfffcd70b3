package shows

import (
	"net/http"

	"cinetix/internal/shared/utils/response"

	"github.com/gin-gonic/gin"
)

type Controller struct {
	service Service
}

func NewController(service Service) *Controller {
	return &Controller{service: service}
}

// CreateShow schedules a new screening (admin only)
func (c *Controller) CreateShow(ctx *gin.Context) {
	var req CreateShowRequest
	if err := ctx.ShouldBindJSON(&req); err != nil {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Invalid request data", nil, err.Error())
		return
	}

	show, err := c.service.CreateShow(ctx.Request.Context(), req)
	if err != nil {
		statusCode := http.StatusInternalServerError
		switch err.Error() {
		case "movie not found in catalog":
			statusCode = http.StatusNotFound
		case "start time must be in the future", "price must be positive":
			statusCode = http.StatusBadRequest
		}
		response.RespondJSON(ctx, "error", statusCode, "Failed to create show", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusCreated, "Show created successfully", show, nil)
}

// GetShow returns one show with its movie
func (c *Controller) GetShow(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Show ID is required", nil, "missing show ID")
		return
	}

	show, err := c.service.GetShow(ctx.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "show not found" {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, "Failed to get show", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Show retrieved successfully", show, nil)
}

// ListUpcoming returns all future shows
func (c *Controller) ListUpcoming(ctx *gin.Context) {
	upcoming, err := c.service.ListUpcoming(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list shows", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Shows retrieved successfully", upcoming, nil)
}

// ListPast returns past shows (admin only)
func (c *Controller) ListPast(ctx *gin.Context) {
	past, err := c.service.ListPast(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to list past shows", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Past shows retrieved successfully", past, nil)
}

// Dashboard returns aggregate numbers for the admin dashboard
func (c *Controller) Dashboard(ctx *gin.Context) {
	data, err := c.service.Dashboard(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusInternalServerError, "Failed to build dashboard", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Dashboard retrieved successfully", data, nil)
}
