package handler

import (
	"errors"
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/repository"
	"github.com/platemark/platemark-api/internal/service"
)

// VisitsHandler manages the visit history of a restaurant.
type VisitsHandler struct {
	restaurants *service.RestaurantsService
}

// NewVisitsHandler creates a new handler instance.
func NewVisitsHandler(restaurants *service.RestaurantsService) *VisitsHandler {
	return &VisitsHandler{restaurants: restaurants}
}

// List handles GET /restaurants/:id/visits requests.
func (h *VisitsHandler) List(c echo.Context) error {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid restaurant id")
	}

	visits, err := h.restaurants.ListVisits(c.Request().Context(), restaurantID)
	if err != nil {
		if errors.Is(err, repository.ErrRestaurantNotFound) {
			return Error(c, http.StatusNotFound, "restaurant not found")
		}
		return Error(c, http.StatusInternalServerError, "failed to list visits")
	}

	return Success(c, http.StatusOK, "visits retrieved", visits)
}

// Create handles POST /restaurants/:id/visits requests.
func (h *VisitsHandler) Create(c echo.Context) error {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid restaurant id")
	}

	var req dto.VisitRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	visit, err := h.restaurants.RecordVisit(c.Request().Context(), restaurantID, req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return Error(c, http.StatusBadRequest, ve.Message)
		case errors.Is(err, repository.ErrRestaurantNotFound):
			return Error(c, http.StatusNotFound, "restaurant not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to record visit")
		}
	}

	return Success(c, http.StatusCreated, "visit recorded", visit)
}

// Update handles PATCH /restaurants/:id/visits/:visit_id requests.
func (h *VisitsHandler) Update(c echo.Context) error {
	restaurantID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid restaurant id")
	}
	visitID, err := uuid.Parse(c.Param("visit_id"))
	if err != nil {
		return Error(c, http.StatusBadRequest, "invalid visit id")
	}

	var req dto.VisitRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	visit, err := h.restaurants.EditVisit(c.Request().Context(), restaurantID, visitID, req)
	if err != nil {
		var ve *service.ValidationError
		switch {
		case errors.As(err, &ve):
			return Error(c, http.StatusBadRequest, ve.Message)
		case errors.Is(err, repository.ErrVisitNotFound):
			return Error(c, http.StatusNotFound, "visit not found")
		case errors.Is(err, repository.ErrRestaurantNotFound):
			return Error(c, http.StatusNotFound, "restaurant not found")
		default:
			return Error(c, http.StatusInternalServerError, "failed to update visit")
		}
	}

	return Success(c, http.StatusOK, "visit updated", visit)
}
