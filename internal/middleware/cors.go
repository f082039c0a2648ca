package middleware

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/config"
)

var (
	corsMethods = strings.Join([]string{
		http.MethodGet,
		http.MethodPost,
		http.MethodPut,
		http.MethodPatch,
		http.MethodDelete,
		http.MethodOptions,
	}, ", ")
	corsHeaders = strings.Join([]string{
		"Origin",
		"Content-Type",
		"Accept",
		"X-Requested-With",
		HeaderXRequestID,
	}, ", ")
	corsExpose = strings.Join([]string{
		"Content-Length",
		"Content-Type",
		HeaderXRequestID,
	}, ", ")
)

// CORS allows credentialed requests from the configured origins. The
// session cookie needs credentials, so a "*" entry echoes the request
// origin instead of sending a wildcard.
func CORS(cfg config.CORSConfig) gin.HandlerFunc {
	maxAge := strconv.Itoa(cfg.MaxAge)

	return func(c *gin.Context) {
		origin := c.GetHeader("Origin")
		if origin == "" {
			c.Next()
			return
		}

		allowed := false
		for _, o := range cfg.AllowedOrigins {
			if o == "*" || strings.EqualFold(o, origin) {
				allowed = true
				break
			}
		}
		if !allowed {
			if c.Request.Method == http.MethodOptions {
				c.AbortWithStatus(http.StatusForbidden)
				return
			}
			c.Next()
			return
		}

		c.Header("Access-Control-Allow-Origin", origin)
		c.Header("Access-Control-Allow-Credentials", "true")
		c.Header("Access-Control-Allow-Methods", corsMethods)
		c.Header("Access-Control-Allow-Headers", corsHeaders)
		c.Header("Access-Control-Expose-Headers", corsExpose)
		c.Header("Access-Control-Max-Age", maxAge)
		c.Header("Vary", "Origin")

		if c.Request.Method == http.MethodOptions {
			c.AbortWithStatus(http.StatusNoContent)
			return
		}
		c.Next()
	}
}
