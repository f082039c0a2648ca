package middleware

import "github.com/gin-gonic/gin"

// NoStore marks responses as uncacheable. API responses carry clinical
// data and session-dependent views.
func NoStore() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Header("Cache-Control", "no-store")
		c.Header("Pragma", "no-cache")
		c.Next()
	}
}
