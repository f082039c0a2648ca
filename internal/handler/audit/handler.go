package audit

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/middleware"
	"github.com/freee021022/onconet/internal/service/audit"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

const (
	defaultLimit = 100
	maxLimit     = 500
)

type Handler struct {
	service *audit.Service
}

func NewHandler(service *audit.Service) *Handler {
	return &Handler{
		service: service,
	}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireSession gin.HandlerFunc) {
	r.GET("/audit-events", requireSession, h.ListEvents)
}

// ListEvents returns the caller's own audit trail, newest first.
func (h *Handler) ListEvents(c *gin.Context) {
	limit := defaultLimit
	if raw := c.Query("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n <= 0 {
			c.Error(apperrors.NewBadRequest("Invalid limit", err))
			return
		}
		limit = min(n, maxLimit)
	}

	userID, _ := middleware.UserID(c)
	events, err := h.service.List(c.Request.Context(), userID, limit)
	if err != nil {
		c.Error(apperrors.NewInternal(err))
		return
	}
	c.JSON(http.StatusOK, events)
}
