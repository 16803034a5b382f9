// Package store persists tracked products and their price history so that
// scheduled refreshes can detect drops against the last known state.
package store

import (
	"errors"
	"time"
)

// ErrNotFound is returned when a product id has no stored record
var ErrNotFound = errors.New("product not found")

// Product is one tracked product with its latest discovery outcome
type Product struct {
	ID              string    `json:"id"`
	Name            string    `json:"name"`
	Description     string    `json:"description,omitempty"`
	CurrentPrice    float64   `json:"current_price"`
	LastLowestPrice float64   `json:"last_lowest_price"`
	IsPriceDropped  bool      `json:"is_price_dropped"`
	ImageURL        string    `json:"image_url,omitempty"`
	DeepLink        string    `json:"deep_link,omitempty"`
	Platform        string    `json:"platform,omitempty"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// PricePoint is one historical price observation for a product
type PricePoint struct {
	ProductID  string    `json:"product_id"`
	Price      float64   `json:"price"`
	Platform   string    `json:"platform"`
	ObservedAt time.Time `json:"observed_at"`
}

// ProductStore is the persistence contract used by the updater and the API
type ProductStore interface {
	// GetByID returns the product with the given id, or ErrNotFound
	GetByID(id string) (*Product, error)

	// GetByName returns the first product whose name matches
	// case-insensitively, or ErrNotFound
	GetByName(name string) (*Product, error)

	// Save inserts or replaces a product record and appends a history point
	Save(product *Product) error

	// List returns all tracked products, most recently updated first
	List() ([]Product, error)

	// History returns the recorded price points for a product, newest first
	History(id string, limit int) ([]PricePoint, error)
}
