package geocode

import (
	"context"
	"errors"
	"log"
)

// Chain composes the primary provider with the open fallback. The fallback is
// consulted only when the primary is unconfigured or failed at the transport
// level; a clean "zero results" from the primary is terminal. At the top of
// the chain every failure collapses into a miss: callers see (nil, nil) and
// never a provider error, except for the empty-query programming error.
type Chain struct {
	primary  Geocoder
	fallback Geocoder
}

// NewChain wires the provider chain. Either provider may be nil.
func NewChain(primary, fallback Geocoder) *Chain {
	return &Chain{primary: primary, fallback: fallback}
}

// Geocode resolves the query through the chain.
func (c *Chain) Geocode(ctx context.Context, query string, opts Options) (*Result, error) {
	if c.primary != nil {
		result, err := c.primary.Geocode(ctx, query, opts)
		if err == nil {
			return result, nil
		}
		if errors.Is(err, ErrEmptyQuery) {
			return nil, err
		}
		log.Printf("geocode: primary provider failed, trying fallback: %v", err)
	}

	if c.fallback == nil {
		return nil, nil
	}

	result, err := c.fallback.Geocode(ctx, query, opts)
	if err != nil {
		if errors.Is(err, ErrEmptyQuery) {
			return nil, err
		}
		log.Printf("geocode: fallback provider failed: %v", err)
		return nil, nil
	}
	return result, nil
}
