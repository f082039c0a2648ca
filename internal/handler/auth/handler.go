package auth

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/config"
	"github.com/freee021022/onconet/internal/middleware"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/auth"
	"github.com/freee021022/onconet/internal/service/user"
	apperrors "github.com/freee021022/onconet/pkg/errors"
	"github.com/freee021022/onconet/pkg/validator"
)

type Handler struct {
	svc    *auth.Service
	users  *user.Service
	cookie config.SessionConfig
}

func NewHandler(svc *auth.Service, users *user.Service, cookie config.SessionConfig) *Handler {
	return &Handler{svc: svc, users: users, cookie: cookie}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	auth := r.Group("/auth")
	{
		auth.POST("/register", h.Register)
		auth.POST("/login", h.Login)
		auth.GET("/check", h.Check)
		auth.POST("/logout", h.Logout)
	}
}

func (h *Handler) Register(c *gin.Context) {
	var req model.RegisterRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	u, token, err := h.svc.Register(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}

	h.setCookie(c, token, int(h.cookie.TTL.Seconds()))
	c.JSON(http.StatusCreated, u)
}

func (h *Handler) Login(c *gin.Context) {
	var req model.LoginRequest
	// A malformed body is treated like missing credentials.
	_ = c.ShouldBindJSON(&req)

	u, token, err := h.svc.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		c.Error(err)
		return
	}

	h.setCookie(c, token, int(h.cookie.TTL.Seconds()))
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Check(c *gin.Context) {
	userID, ok := middleware.UserID(c)
	if !ok {
		c.Error(apperrors.Unauthorized("Not authenticated"))
		return
	}

	u, err := h.users.GetUser(c.Request.Context(), userID)
	if err != nil {
		if apperrors.Is(err, apperrors.ErrNotFound) {
			err = apperrors.Unauthorized("Not authenticated")
		}
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) Logout(c *gin.Context) {
	userID, _ := middleware.UserID(c)
	if token, err := c.Cookie(h.cookie.CookieName); err == nil && token != "" {
		if err := h.svc.Logout(c.Request.Context(), userID, token); err != nil {
			c.Error(err)
			return
		}
	}

	h.setCookie(c, "", -1)
	c.JSON(http.StatusOK, gin.H{"message": "Logged out successfully"})
}

func (h *Handler) setCookie(c *gin.Context, value string, maxAge int) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.CookieName, value, maxAge, "/", "", h.cookie.Secure, true)
}
