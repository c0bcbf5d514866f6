package routes

import (
	"speedlog/internal/controllers"

	"github.com/gin-gonic/gin"
)

func RegisterMetricsRoutes(r *gin.Engine) {
	rows := r.Group("/rows")
	{
		rows.GET("", controllers.GetRowHistory)
		rows.GET("/latest", controllers.GetLatestRow)
	}
	r.GET("/charts.png", controllers.GetCharts)
}
