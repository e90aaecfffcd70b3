package movies

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

// NowPlaying returns the currently screening movies from the catalog provider
func (c *Controller) NowPlaying(ctx *gin.Context) {
	listing, err := c.service.NowPlaying(ctx.Request.Context())
	if err != nil {
		response.RespondJSON(ctx, "error", http.StatusServiceUnavailable, "Failed to fetch now playing movies", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Movies retrieved successfully", listing, nil)
}

// GetMovie returns a locally persisted movie record
func (c *Controller) GetMovie(ctx *gin.Context) {
	id := ctx.Param("id")
	if id == "" {
		response.RespondJSON(ctx, "error", http.StatusBadRequest, "Movie ID is required", nil, "missing movie ID")
		return
	}

	movie, err := c.service.GetMovie(ctx.Request.Context(), id)
	if err != nil {
		statusCode := http.StatusInternalServerError
		if err.Error() == "movie not found" {
			statusCode = http.StatusNotFound
		}
		response.RespondJSON(ctx, "error", statusCode, "Failed to get movie", nil, err.Error())
		return
	}

	response.RespondJSON(ctx, "success", http.StatusOK, "Movie retrieved successfully", movie, nil)
}
