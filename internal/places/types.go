package places

// Review is one Google Maps review attached to a place.
type Review struct {
	AuthorName string `json:"author_name"`
	Rating     int    `json:"rating"`
	Text       string `json:"text"`
	Time       int64  `json:"time"`
}

// Details carries the subset of place data the enrichment pipeline consumes.
type Details struct {
	PlaceID     string   `json:"place_id"`
	Name        string   `json:"name"`
	Rating      *float64 `json:"rating,omitempty"`
	RatingCount *int     `json:"user_ratings_total,omitempty"`
	Phone       string   `json:"formatted_phone_number,omitempty"`
	Reviews     []Review `json:"reviews,omitempty"`
}

type textSearchResponse struct {
	Status  string `json:"status"`
	Results []struct {
		PlaceID string `json:"place_id"`
		Name    string `json:"name"`
	} `json:"results"`
}

type detailsResponse struct {
	Status string  `json:"status"`
	Result Details `json:"result"`
}
