package handler

import (
	"log"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/platemark/platemark-api/internal/dto"
	"github.com/platemark/platemark-api/internal/service"
)

// EnrichHandler triggers enrichment runs over the catalogue.
type EnrichHandler struct {
	enrichment *service.EnrichmentService
}

// NewEnrichHandler creates a new handler instance.
func NewEnrichHandler(enrichment *service.EnrichmentService) *EnrichHandler {
	return &EnrichHandler{enrichment: enrichment}
}

// Run handles POST /admin/enrich requests. The run is synchronous; progress
// goes to the server log.
func (h *EnrichHandler) Run(c echo.Context) error {
	var req dto.EnrichBatchRequest
	if err := c.Bind(&req); err != nil {
		return Error(c, http.StatusBadRequest, "invalid payload")
	}

	response, err := h.enrichment.RunBatch(c.Request().Context(), req, func(step string) {
		log.Printf("enrich: %s", step)
	})
	if err != nil {
		return Error(c, http.StatusInternalServerError, "enrichment run failed")
	}

	return Success(c, http.StatusOK, "enrichment completed", response)
}
