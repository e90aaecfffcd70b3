package shows

import (
	"github.com/gin-gonic/gin"
)

// SetupShowRoutes registers the public show routes
func SetupShowRoutes(rg *gin.RouterGroup, controller *Controller) {
	showsGroup := rg.Group("/shows")
	{
		showsGroup.GET("", controller.ListUpcoming)
		showsGroup.GET("/:id", controller.GetShow)
	}
}

// SetupAdminShowRoutes registers show management routes; the caller is
// expected to have applied auth and admin middleware to rg already.
func SetupAdminShowRoutes(rg *gin.RouterGroup, controller *Controller) {
	adminGroup := rg.Group("/shows")
	{
		adminGroup.POST("", controller.CreateShow)
		adminGroup.GET("/past", controller.ListPast)
	}
	rg.GET("/dashboard", controller.Dashboard)
}
