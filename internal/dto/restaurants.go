package dto

// ListFilter contains query parameters for restaurant listing endpoints.
type ListFilter struct {
	Q          string
	Cuisine    string
	Status     string
	PriceRange string
	City       string
	Page       int
	PerPage    int
}

// CreateRestaurantRequest captures a manual restaurant entry.
type CreateRestaurantRequest struct {
	Name          string                  `json:"name"`
	Cuisine       string                  `json:"cuisine"`
	PriceRange    string                  `json:"price_range"`
	MustTryDishes []string                `json:"must_try_dishes,omitempty"`
	Locations     []CreateLocationRequest `json:"locations"`
}

// CreateLocationRequest is one address attached to a new restaurant.
type CreateLocationRequest struct {
	Name        string   `json:"name"`
	FullAddress string   `json:"full_address"`
	City        string   `json:"city"`
	Country     *string  `json:"country,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
}

// UpdateStatusRequest toggles a restaurant between to-visit and visited.
type UpdateStatusRequest struct {
	Status string `json:"status"`
}
