package routes

import (
	"speedlog/internal/controllers"

	"github.com/gin-gonic/gin"
)

// RegisterStreamRoutes registers the websocket feed of new rows
func RegisterStreamRoutes(r gin.IRoutes) {
	r.GET("/rows/stream", controllers.StreamRows)
}
