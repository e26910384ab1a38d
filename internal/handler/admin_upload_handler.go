package handler

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platemark/platemark-api/internal/service"
)

// AdminUploadHandler handles CSV ingestion for administrators.
type AdminUploadHandler struct {
	restaurants *service.RestaurantsService
}

// NewAdminUploadHandler wires a handler backed by the restaurants service.
func NewAdminUploadHandler(restaurants *service.RestaurantsService) *AdminUploadHandler {
	return &AdminUploadHandler{restaurants: restaurants}
}

// UploadCSV handles POST /admin/upload-csv requests.
func (h *AdminUploadHandler) UploadCSV(c echo.Context) error {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		return Error(c, http.StatusBadRequest, "missing csv file")
	}

	file, err := fileHeader.Open()
	if err != nil {
		return Error(c, http.StatusBadRequest, "unable to open file")
	}
	defer file.Close()

	summary, err := h.restaurants.ImportRestaurantsCSV(c.Request().Context(), file)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return Error(c, http.StatusBadRequest, ve.Message)
		}
		return Error(c, http.StatusInternalServerError, "failed to process csv")
	}

	return Success(c, http.StatusOK, "restaurants CSV processed", summary)
}
