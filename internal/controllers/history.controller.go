package controllers

import (
	"net/http"
	"time"

	"speedlog/internal/services"

	"github.com/gin-gonic/gin"
)

// GetRowHistory returns stored rows
// Query params: duration=30m|24h|168h (default: all rows)
func GetRowHistory(c *gin.Context) {
	var duration time.Duration
	if durationStr := c.Query("duration"); durationStr != "" {
		d, err := time.ParseDuration(durationStr)
		if err != nil || d < 0 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid duration format"})
			return
		}
		duration = d
	}

	window, err := services.GetRowWindow(c.Request.Context(), duration)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, window)
}
