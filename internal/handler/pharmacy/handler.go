package pharmacy

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/model"
	"github.com/freee021022/onconet/internal/service/pharmacy"
	"github.com/freee021022/onconet/pkg/httputil"
)

type Handler struct {
	service *pharmacy.Service
}

func NewHandler(service *pharmacy.Service) *Handler {
	return &Handler{service: service}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.GET("/pharmacies", h.ListPharmacies)
	r.GET("/pharmacies/:id", h.GetPharmacy)
	r.GET("/testimonials", h.ListTestimonials)
}

func (h *Handler) ListPharmacies(c *gin.Context) {
	var filter model.PharmacyFilter
	// Unknown or malformed filters are ignored; every field is a string.
	_ = c.ShouldBindQuery(&filter)

	pharmacies, err := h.service.ListPharmacies(c.Request.Context(), filter)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, pharmacies)
}

func (h *Handler) GetPharmacy(c *gin.Context) {
	id, err := httputil.ParamID(c, "id", "Invalid pharmacy ID")
	if err != nil {
		c.Error(err)
		return
	}

	p, err := h.service.GetPharmacy(c.Request.Context(), id)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, p)
}

func (h *Handler) ListTestimonials(c *gin.Context) {
	testimonials, err := h.service.ListTestimonials(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, testimonials)
}
