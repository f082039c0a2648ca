package secondopinion

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/secondopinion"
	"github.com/freee021022/onconet/pkg/httputil"
	"github.com/freee021022/onconet/pkg/validator"
)

type Handler struct {
	service *secondopinion.Service
}

func NewHandler(service *secondopinion.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	requests := r.Group("/second-opinion/requests")
	{
		requests.GET("", h.ListRequests)
		requests.GET("/:id", h.GetRequest)
		requests.POST("", h.CreateRequest)
		requests.PATCH("/:id/status", h.UpdateStatus)
	}
}

func (h *Handler) ListRequests(c *gin.Context) {
	patientID, err := httputil.QueryID(c, "patientId", "Invalid patient ID")
	if err != nil {
		c.Error(err)
		return
	}
	doctorID, err := httputil.QueryID(c, "doctorId", "Invalid doctor ID")
	if err != nil {
		c.Error(err)
		return
	}

	requests, err := h.service.ListRequests(c.Request.Context(), model.SecondOpinionFilter{
		PatientID: patientID,
		DoctorID:  doctorID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, requests)
}

func (h *Handler) GetRequest(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid request ID")
	if err != nil {
		c.Error(err)
		return
	}

	req, err := h.service.GetRequest(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, req)
}

func (h *Handler) CreateRequest(c *gin.Context) {
	var req model.CreateSecondOpinionRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	created, err := h.service.CreateRequest(c.Request.Context(), &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, created)
}

func (h *Handler) UpdateStatus(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid request ID")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpdateSecondOpinionStatusRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	updated, err := h.service.UpdateStatus(c.Request.Context(), id, req.Status)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, updated)
}
