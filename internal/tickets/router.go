package tickets

import (
	"github.com/gin-gonic/gin"
)

// SetupTicketRoutes registers ticket verification; the caller is expected to
// have applied auth and admin middleware to rg already.
func SetupTicketRoutes(rg *gin.RouterGroup, controller *Controller) {
	rg.POST("/tickets/verify", controller.Verify)
}
