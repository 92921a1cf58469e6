package respond

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// JSON writes a JSON response with the given status.
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// OK writes a 200 OK JSON response.
func OK(c *gin.Context, payload any) {
	JSON(c, http.StatusOK, payload)
}

// Private writes a 200 response that carries resume content; intermediaries must not cache it.
func Private(c *gin.Context, payload any) {
	c.Header("Cache-Control", "no-store")
	JSON(c, http.StatusOK, payload)
}
