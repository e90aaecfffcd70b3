package movies

import (
	"github.com/gin-gonic/gin"
)

// SetupMovieRoutes registers the public movie routes
func SetupMovieRoutes(rg *gin.RouterGroup, controller *Controller) {
	moviesGroup := rg.Group("/movies")
	{
		moviesGroup.GET("/now-playing", controller.NowPlaying)
		moviesGroup.GET("/:id", controller.GetMovie)
	}
}
