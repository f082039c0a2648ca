// Package httputil holds request parsing helpers shared by the handlers.
package httputil

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/pkg/errors"
)

// ParamID parses a positive integer path parameter. message is the client
// facing error when it is missing or malformed.
func ParamID(c *gin.Context, name, message string) (int64, error) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequest(message, err)
	}
	return id, nil
}

// QueryID parses an optional positive integer query parameter. An absent
// parameter yields zero.
func QueryID(c *gin.Context, name, message string) (int64, error) {
	raw, ok := c.GetQuery(name)
	if !ok || raw == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, errors.NewBadRequest(message, err)
	}
	return id, nil
}

// RequiredQueryID is QueryID for parameters that must be present.
func RequiredQueryID(c *gin.Context, name, message string) (int64, error) {
	id, err := QueryID(c, name, message)
	if err != nil {
		return 0, err
	}
	if id == 0 {
		return 0, errors.NewBadRequest(message, nil)
	}
	return id, nil
}
