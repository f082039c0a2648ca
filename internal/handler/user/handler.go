package user

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/middleware"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/user"
	"github.com/freee021022/onconet/pkg/httputil"
	"github.com/freee021022/onconet/pkg/validator"
)

type Handler struct {
	service *user.Service
}

func NewHandler(service *user.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireSession gin.HandlerFunc) {
	users := r.Group("/users")
	{
		users.GET("/:id", h.GetUser)
		users.PUT("/:id", requireSession, h.UpdateUser)
	}

	doctors := r.Group("/doctors")
	{
		doctors.GET("", h.ListDoctors)
		doctors.GET("/second-opinion", h.ListSecondOpinionDoctors)
		doctors.GET("/:id/reviews", h.GetDoctorReviews)
	}
}

func (h *Handler) GetUser(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid user ID")
	if err != nil {
		c.Error(err)
		return
	}

	u, err := h.service.GetUser(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) UpdateUser(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid user ID")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UserUpdate
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	u, err := h.service.UpdateUser(c.Request.Context(), actorID, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, u)
}

func (h *Handler) ListDoctors(c *gin.Context) {
	h.listDoctors(c, false)
}

func (h *Handler) ListSecondOpinionDoctors(c *gin.Context) {
	h.listDoctors(c, true)
}

func (h *Handler) listDoctors(c *gin.Context, secondOpinionOnly bool) {
	doctors, err := h.service.ListDoctors(c.Request.Context(), secondOpinionOnly)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, doctors)
}

func (h *Handler) GetDoctorReviews(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid doctor ID")
	if err != nil {
		c.Error(err)
		return
	}

	reviews, err := h.service.GetDoctorReviews(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, reviews)
}
