package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Shweta-Mathanker/womanSafetyDTI/broker"
)

// HealthCheck returns a simple health status for uptime monitoring and load
// balancers, plus the current live-subscriber count.
func HealthCheck(hub *broker.Hub) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":    "ok",
			"timestamp": time.Now().UTC().Format(time.RFC3339),
			"observers": hub.Count(),
		})
	}
}
