package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/repository"
	"github.com/platemark/platemark-api/internal/service"
)

// RestaurantsHandler exposes the bookmarked restaurant catalogue.
type RestaurantsHandler struct {
	restaurants *service.RestaurantsService
}

// NewRestaurantsHandler creates a new handler instance.
func NewRestaurantsHandler(restaurants *service.RestaurantsService) *RestaurantsHandler {
	return &RestaurantsHandler{restaurants: restaurants}
}

// List handles GET /restaurants requests.
func (h *RestaurantsHandler) List(c echo.Context) error {
	filter := dto.ListFilter{
		Q:          strings.TrimSpace(c.QueryParam("q")),
		Cuisine:    strings.TrimSpace(c.QueryParam("cuisine")),
		Status:     strings.TrimSpace(c.QueryParam("status")),
		PriceRange: strings.TrimSpace(c.QueryParam("price_range")),
		City:       strings.TrimSpace(c.QueryParam("city")),
		Page:       parseIntDefault(c.QueryParam("page"), 1),
		PerPage:    parseIntDefault(c.QueryParam("per_page"), 20),
	}

	restaurants, err := h.restaurants.List(c.Request().Context(), filter)
	if err != nil {
		return Error(c, http.StatusInternalServerError, "failed to list restaurants")
	}

	return Success(c, http.StatusOK, "restaurants retrieved", restaurants)
}

// Get handles GET /restaurants/:id requests.
func (h *RestaurantsHandler) Get(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid restaurant id")
	}

	restaurant, err := h.restaurants.Get(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return Error(c, http.StatusNotFound, "restaurant not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to load restaurant")
	}

	return Success(c, http.StatusOK, "restaurant retrieved", restaurant)
}

// Create handles POST /restaurants requests.
func (h *RestaurantsHandler) Create(c echo.Context) error {
	var req dto.CreateRestaurantRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	restaurant, err := h.restaurants.Create(c.Request().Context(), req)
	if err != nil {
		var ve *service.ValidationError
		if errors.As(err, &ve) {
			return Error(c, http.StatusBadRequest, ve.Message)
		}
		return Error(c, http.StatusInternalServerError, "failed to create restaurant")
	}

	return Success(c, http.StatusCreated, "restaurant created", restaurant)
}

// UpdateStatus handles PATCH /restaurants/:id/status requests.
func (h *RestaurantsHandler) UpdateStatus(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid restaurant id")
	}

	var req dto.UpdateStatusRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	restaurant, err := h.restaurants.SetStatus(c.Request().Context(), id, req.Status)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return Error(c, http.StatusBadRequest, ve.Message)
		case errors.Is(err, repository.ErrRestaurantNotFound):
			return Error(c, http.StatusNotFound, "restaurant not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to update status")
		}
	}

	return Success(c, http.StatusOK, "status updated", restaurant)
}

// Delete handles DELETE /admin/restaurants/:id requests.
func (h *RestaurantsHandler) Delete(c echo.Context) error {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid restaurant id")
	}

	if err := h.restaurants.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return Error(c, http.StatusNotFound, "restaurant not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to delete restaurant")
	}

	return Success(c, http.StatusOK, "restaurant deleted", nil)
}

func parseIntDefault(input string, fallback int) int {
	if input == "" {
		return fallback
	}
	if value, err := strconv.Atoi(input); err == nil {
		return value
	}
	return fallback
}
