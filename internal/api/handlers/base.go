package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eshaffer321/prorate/internal/api/dto"
)

// WriteError aborts the request with a structured error body.
func WriteError(c *gin.Context, status int, err dto.APIError) {
	c.AbortWithStatusJSON(status, err)
}

// NotFound answers unknown routes.
func NotFound(c *gin.Context) {
	WriteError(c, http.StatusNotFound, dto.NotFoundError("route "+c.Request.URL.Path))
}
