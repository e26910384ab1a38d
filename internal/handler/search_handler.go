package handler

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/geo"
	"github.com/platemark/platemark-api/internal/service"
)

// SearchHandler exposes the tiered restaurant search.
type SearchHandler struct {
	search *service.SearchService
}

// NewSearchHandler creates a new handler instance.
func NewSearchHandler(search *service.SearchService) *SearchHandler {
	return &SearchHandler{search: search}
}

// Search handles GET /search requests.
func (h *SearchHandler) Search(c echo.Context) error {
	query := dto.SearchQuery{
		Text:    strings.TrimSpace(c.QueryParam("q")),
		Cuisine: strings.TrimSpace(c.QueryParam("cuisine")),
		Status:  strings.TrimSpace(c.QueryParam("status")),
	}

	latStr := strings.TrimSpace(c.QueryParam("lat"))
	lngStr := strings.TrimSpace(c.QueryParam("lng"))
	if latStr != "" && lngStr != "" {
		lat, latErr := strconv.ParseFloat(latStr, 64)
		lng, lngErr := strconv.ParseFloat(lngStr, 64)
		if latErr != nil || lngErr != nil {
			return Error(c, http.StatusBadRequest, "lat and lng must be numbers")
		}
		point := geo.Point{Lat: lat, Lng: lng}
		if !point.Valid() {
			return Error(c, http.StatusBadRequest, "lat and lng are out of range")
		}
		query.UserLocation = &point
	}

	result, err := h.search.Search(c.Request().Context(), query)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "search failed")
	}

	return Success(c, http.StatusOK, result.Message, result)
}
