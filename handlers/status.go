package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// RegisterStatus mounts the unauthenticated API liveness probe used by the
// frontend to check the backend is up.
func RegisterStatus(rg *gin.RouterGroup) {
	rg.GET("/status", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "API is running"})
	})
}
