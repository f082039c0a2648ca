package message

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/message"
	"github.com/freee021022/onconet/pkg/httputil"
	"github.com/freee021022/onconet/pkg/validator"
)

type Handler struct {
	service *message.Service
}

func NewHandler(service *message.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	messages := r.Group("/messages")
	{
		messages.GET("", h.Inbox)
		messages.GET("/conversation", h.Conversation)
		messages.POST("", h.Send)
		messages.PATCH("/:id/read", h.MarkRead)
	}
}

func (h *Handler) Inbox(c *gin.Context) {
	userID, err := httputil.RequiredQueryID(c, "userId", "User ID required")
	if err != nil {
		c.Error(err)
		return
	}

	messages, err := h.service.Inbox(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) Conversation(c *gin.Context) {
	const msg = "Both user IDs required"
	user1ID, err := httputil.RequiredQueryID(c, "user1Id", msg)
	if err != nil {
		c.Error(err)
		return
	}
	user2ID, err := httputil.RequiredQueryID(c, "user2Id", msg)
	if err != nil {
		c.Error(err)
		return
	}

	messages, err := h.service.Conversation(c.Request.Context(), user1ID, user2ID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (h *Handler) Send(c *gin.Context) {
	var req model.CreateMessageRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	msg, err := h.service.Send(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, msg)
}

func (h *Handler) MarkRead(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid message ID")
	if err != nil {
		c.Error(err)
		return
	}

	if _, err := h.service.MarkRead(c.Request.Context(), id); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}
