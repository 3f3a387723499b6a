package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// NewRouter builds the HTTP API.
func NewRouter(bills *BillHandler, cfdi *CFDIHandler) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())

	// Configure max multipart memory (32 MB)
	router.MaxMultipartMemory = 32 << 20

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"service": "CFDI Bill Generator",
		})
	})

	api := router.Group("/api/v1")
	{
		api.POST("/bills/:insurer", bills.CreateBill)
		api.POST("/cfdi/verify", cfdi.VerifyCFDI)
	}

	return router
}
