package middleware

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/freee021022/onconet/internal/service/audit"
	"github.com/freee021022/onconet/internal/session"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

const (
	ContextUserID  = "user_id"
	ContextSession = "session_token"
)

// Session resolves the session cookie, when present, into the caller's
// user id. Requests without a valid session continue anonymously; a
// failing session store aborts with 500.
func Session(manager *session.Manager, cookieName string) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, err := c.Cookie(cookieName)
		if err != nil || token == "" {
			c.Next()
			return
		}

		s, err := manager.Resolve(c.Request.Context(), token)
		if errors.Is(err, session.ErrNotFound) || errors.Is(err, session.ErrInvalidToken) {
			zerolog.Ctx(c.Request.Context()).Debug().Err(err).Msg("session not resolved")
			c.Next()
			return
		}
		if err != nil {
			c.Error(apperrors.NewInternal(err))
			c.Abort()
			return
		}

		c.Set(ContextUserID, s.UserID)
		c.Set(ContextSession, token)
		logger := zerolog.Ctx(c.Request.Context()).With().Int64("user_id", s.UserID).Logger()
		c.Request = c.Request.WithContext(logger.WithContext(c.Request.Context()))
		c.Next()
	}
}

// RequireSession rejects anonymous requests with 401.
func RequireSession() gin.HandlerFunc {
	return func(c *gin.Context) {
		if _, ok := UserID(c); !ok {
			Abort(c, http.StatusUnauthorized, "Authentication required")
			return
		}
		c.Next()
	}
}

// UserID returns the session user of the request.
func UserID(c *gin.Context) (int64, bool) {
	id := c.GetInt64(ContextUserID)
	return id, id > 0
}

// AuditClient records the caller's address and user agent on the request
// context for audit events.
func AuditClient() gin.HandlerFunc {
	return func(c *gin.Context) {
		ctx := audit.WithClient(c.Request.Context(), audit.Client{
			IPAddress: c.ClientIP(),
			UserAgent: c.Request.UserAgent(),
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}
