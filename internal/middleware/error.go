package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	apperrors "github.com/freee021022/onconet/pkg/errors"
)

// ErrorResponse is the body of every failed request.
type ErrorResponse struct {
	Status  string                     `json:"status"`
	Message string                     `json:"message"`
	Errors  []apperrors.FieldViolation `json:"errors,omitempty"`
	TraceID string                     `json:"trace_id,omitempty"`
}

func newErrorResponse(c *gin.Context, message string, violations []apperrors.FieldViolation) ErrorResponse {
	return ErrorResponse{
		Status:  "error",
		Message: message,
		Errors:  violations,
		TraceID: c.GetString(ContextRequestID),
	}
}

// Abort stops the chain with status and a rendered error body.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, newErrorResponse(c, message, nil))
}

// ErrorHandler renders the last error attached with c.Error. Internal
// errors are logged with their cause and hidden from the client.
func ErrorHandler() gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}

		appErr := apperrors.From(c.Errors.Last().Err)
		status := appErr.StatusCode()
		logger := zerolog.Ctx(c.Request.Context())

		var event *zerolog.Event
		switch {
		case status >= http.StatusInternalServerError:
			event = logger.Error()
		case appErr.Code == apperrors.ErrValidation:
			event = logger.Debug().Interface("violations", appErr.Violations)
		default:
			event = logger.Debug()
		}
		event.Err(appErr.Err).
			Str("request_id", c.GetString(ContextRequestID)).
			Str("method", c.Request.Method).
			Str("path", c.Request.URL.Path).
			Int("status", status).
			Msg(appErr.Message)

		if c.Writer.Written() {
			return
		}
		c.JSON(status, newErrorResponse(c, appErr.Message, appErr.Violations))
	}
}
