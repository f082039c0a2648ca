package geocode

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/freee021022/onconet/internal/geocode"
	apperrors "github.com/freee021022/onconet/pkg/errors"
)

type Handler struct {
	geocoder geocode.Geocoder
}

func NewHandler(geocoder geocode.Geocoder) *Handler {
	return &Handler{geocoder: geocoder}
}

func (h *Handler) RegisterRoutes(r *gin.RouterGroup) {
	r.POST("/geocode", h.Geocode)
}

type geocodeRequest struct {
	Address string `json:"address"`
}

func (h *Handler) Geocode(c *gin.Context) {
	var req geocodeRequest
	_ = c.ShouldBindJSON(&req)
	if strings.TrimSpace(req.Address) == "" {
		c.Error(apperrors.NewBadRequest("Address is required", nil))
		return
	}

	result, err := h.geocoder.Geocode(c.Request.Context(), req.Address)
	if err != nil {
		c.Error(mapError(err))
		return
	}
	c.JSON(http.StatusOK, result)
}

func mapError(err error) error {
	switch {
	case errors.Is(err, geocode.ErrNotFound):
		return apperrors.NewNotFound("Address", err)
	case errors.Is(err, geocode.ErrUnavailable):
		return apperrors.NewUnavailable("Geocoding service temporarily unavailable", err)
	case errors.Is(err, geocode.ErrMissingKey):
		return &apperrors.AppError{Code: apperrors.ErrInternal, Message: "Geocoding API key not configured", Err: err}
	default:
		return &apperrors.AppError{Code: apperrors.ErrInternal, Message: "Geocoding service error", Err: err}
	}
}
