package game

import (
	"errors"
	"fmt"
	"math"
)

// Product is one round's catalog item. The price is the value players guess.
type Product struct {
	ID       string  `json:"id"`
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	ImageURL string  `json:"imageUrl"`
	Provider string  `json:"provider,omitempty"`
}

var ErrInvalidProduct = errors.New("invalid product")

// Validate checks the minimal shape a round item must satisfy.
func (p Product) Validate() error {
	if p.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidProduct)
	}
	if p.Price <= 0 || math.IsInf(p.Price, 0) || math.IsNaN(p.Price) {
		return fmt.Errorf("%w: price must be positive and finite", ErrInvalidProduct)
	}
	if p.ImageURL == "" {
		return fmt.Errorf("%w: missing image url", ErrInvalidProduct)
	}
	return nil
}
