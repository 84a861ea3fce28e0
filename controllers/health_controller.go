package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Health handles GET /
func Health(ctx *gin.Context) {
	ctx.JSON(http.StatusOK, gin.H{"success": true, "error": false})
}
