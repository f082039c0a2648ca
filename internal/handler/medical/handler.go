package medical

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/middleware"
	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/medical"
	"github.com/freee021022/onconet/pkg/httputil"
	"github.com/freee021022/onconet/pkg/validator"
)

type Handler struct {
	service *medical.Service
}

func NewHandler(service *medical.Service) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the record routes. All of them need a session.
func (h *Handler) RegisterRoutes(r *gin.RouterGroup, requireSession gin.HandlerFunc) {
	records := r.Group("/medical-records", requireSession)
	{
		records.GET("", h.ListRecords)
		records.GET("/:id", h.GetRecord)
		records.POST("", h.CreateRecord)
		records.PUT("/:id", h.UpdateRecord)
		records.DELETE("/:id", h.DeleteRecord)
	}
}

func (h *Handler) ListRecords(c *gin.Context) {
	patientID, err := httputil.RequiredQueryID(c, "patientId", "Patient ID required")
	if err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	records, err := h.service.ListMedicalRecords(c.Request.Context(), actorID, patientID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, records)
}

func (h *Handler) GetRecord(c *gin.Context) {
	id, patientID, err := h.addressed(c)
	if err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	record, err := h.service.GetMedicalRecord(c.Request.Context(), actorID, id, patientID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) CreateRecord(c *gin.Context) {
	var req model.CreateMedicalRecordRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	record, err := h.service.CreateMedicalRecord(c.Request.Context(), actorID, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, record)
}

func (h *Handler) UpdateRecord(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid record ID")
	if err != nil {
		c.Error(err)
		return
	}

	var req model.UpdateMedicalRecordRequest
	if err := validator.BindJSON(c, &req); err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	record, err := h.service.UpdateMedicalRecord(c.Request.Context(), actorID, id, &req)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, record)
}

func (h *Handler) DeleteRecord(c *gin.Context) {
	id, patientID, err := h.addressed(c)
	if err != nil {
		c.Error(err)
		return
	}

	actorID, _ := middleware.UserID(c)
	if err := h.service.DeleteMedicalRecord(c.Request.Context(), actorID, id, patientID); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true})
}

// addressed parses the record id and the owning patient id.
func (h *Handler) addressed(c *gin.Context) (int64, int64, error) {
	id, err := httputil.ParamID(c, "id", "Invalid record ID")
	if err != nil {
		return 0, 0, err
	}
	patientID, err := httputil.RequiredQueryID(c, "patientId", "Patient ID required")
	if err != nil {
		return 0, 0, err
	}
	return id, patientID, nil
}
