package controllers

import (
	"errors"
	"net/http"

	"speedlog/internal/models"
	"speedlog/internal/services"

	"github.com/gin-gonic/gin"
)

func GetLatestRow(c *gin.Context) {
	row, err := services.GetLatestRow(c.Request.Context())
	if errors.Is(err, models.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, row)
}

func GetCharts(c *gin.Context) {
	png, err := services.GetChartPNG(c.Request.Context())
	if errors.Is(err, models.ErrNoRows) {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "image/png", png)
}
