package bookings

import (
	"github.com/gin-gonic/gin"
)

// SetupPublicBookingRoutes registers routes that need no authentication
func SetupPublicBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/shows/:id/seats", controller.GetOccupiedSeats)
}

// SetupBookingRoutes registers the authenticated booking routes; the caller
// is expected to have applied auth middleware to rg already.
func SetupBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	bookingsGroup := rg.Group("/bookings")
	{
		bookingsGroup.POST("", controller.CreateBooking)
		bookingsGroup.GET("/my", controller.GetMyBookings)
	}
}

// SetupWebhookRoutes registers the payment provider callback
func SetupWebhookRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/payments/webhook", controller.PaymentWebhook)
}

// SetupAdminBookingRoutes registers booking administration routes
func SetupAdminBookingRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.GET("/bookings", controller.GetAllBookings)
}
