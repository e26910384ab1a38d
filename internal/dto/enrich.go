package dto

import "github.com/google/uuid"

// EnrichBatchRequest selects restaurants for an enrichment run. An empty
// list means "everything that needs refreshing".
type EnrichBatchRequest struct {
	RestaurantIDs []uuid.UUID `json:"restaurant_ids,omitempty"`
}

// EnrichItemResult reports the outcome for a single restaurant in a batch.
type EnrichItemResult struct {
	RestaurantID uuid.UUID `json:"restaurant_id"`
	Name         string    `json:"name"`
	Success      bool      `json:"success"`
	Message      string    `json:"message,omitempty"`
}

// EnrichBatchResponse summarises a full enrichment run.
type EnrichBatchResponse struct {
	Processed int                `json:"processed"`
	Succeeded int                `json:"succeeded"`
	Failed    int                `json:"failed"`
	Items     []EnrichItemResult `json:"items"`
}
