package catalog

import (
	"fmt"
)

type Course struct {
	ID              string   `json:"id"`
	Title           string   `json:"title"`
	Price           float64  `json:"price"`
	DiscountedPrice *float64 `json:"discounted_price,omitempty"`
	Description     string   `json:"description,omitempty" datastore:",noindex"`
	Image           string   `json:"image,omitempty" datastore:",noindex"`
}

// Validate checks the pricing invariants of a course.
func (c Course) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("course without id")
	}
	if c.Price < 0 {
		return fmt.Errorf("course %s has negative price %.2f", c.ID, c.Price)
	}
	if c.DiscountedPrice != nil && *c.DiscountedPrice >= c.Price {
		return fmt.Errorf("course %s has discounted price %.2f not below price %.2f", c.ID, *c.DiscountedPrice, c.Price)
	}
	return nil
}

func (c Course) HasDiscount() bool {
	return c.DiscountedPrice != nil
}
