package sos

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/middleware"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/sos"
	"github.com/freee021022/onconet/pkg/httputil"
	"github.com/freee021022/onconet/pkg/validator"
)

const invalidID = "Invalid contract ID"

type Handler struct {
	service *sos.Service
}

func NewHandler(service *sos.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireSession gin.HandlerFunc) {
	contracts := r.Group("/sos-contracts", requireSession)
	{
		contracts.GET("", h.ListContracts)
		contracts.GET("/:id", h.GetContract)
		contracts.POST("", h.CreateContract)
		contracts.PUT("/:id", h.UpdateContract)
		contracts.PATCH("/:id/activate", h.Activate)
		contracts.PATCH("/:id/deactivate", h.Deactivate)
		contracts.GET("/:id/records", h.EmergencyAccess)
	}
}

func (h *Handler) ListContracts(c *gin.Context) {
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

	actorID, _ := middleware.UserID(c)
	contracts, err := h.service.ListContracts(c.Request.Context(), actorID, model.SosContractFilter{
		PatientID: patientID,
		DoctorID:  doctorID,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, contracts)
}

func (h *Handler) GetContract(c *gin.Context) {
	h.byID(c, h.service.GetContract)
}

func (h *Handler) CreateContract(c *gin.Context) {
	var req model.CreateSosContractRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	contract, err := h.service.CreateContract(c.Request.Context(), actorID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, contract)
}

func (h *Handler) UpdateContract(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", invalidID)
	if err != nil {
		c.Error(err)
		return
	}

	var req model.SosContractUpdate
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	contract, err := h.service.UpdateContract(c.Request.Context(), actorID, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, contract)
}

func (h *Handler) Activate(c *gin.Context) {
	h.byID(c, h.service.Activate)
}

func (h *Handler) Deactivate(c *gin.Context) {
	h.byID(c, h.service.Deactivate)
}

func (h *Handler) EmergencyAccess(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", invalidID)
	if err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	access, err := h.service.EmergencyAccess(c.Request.Context(), actorID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, access)
}

// byID runs a single-contract operation addressed by the :id parameter.
func (h *Handler) byID(c *gin.Context, op func(ctx context.Context, actorID, id int64) (*model.SosContract, error)) {
	id, err := httputil.ParamID(c, "id", invalidID)
	if err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	contract, err := op(c.Request.Context(), actorID, id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, contract)
}
