// Package publisher emits price-drop events to downstream consumers
// (notification workers, analytics) over a Redis stream.
package publisher

import "time"

// PriceDropEvent is published whenever a refresh finds a product cheaper
// than its previously recorded price
type PriceDropEvent struct {
	ProductID   string    `json:"product_id"`
	ProductName string    `json:"product_name"`
	Platform    string    `json:"platform"`
	OldPrice    float64   `json:"old_price"`
	NewPrice    float64   `json:"new_price"`
	DeepLink    string    `json:"deep_link"`
	OccurredAt  time.Time `json:"occurred_at"`
}

// Publisher represents a service for publishing price-drop events
type Publisher interface {
	// PublishPriceDrop publishes one event to the stream
	PublishPriceDrop(event PriceDropEvent) error

	// TrimStream trims the stream to the configured maximum length
	TrimStream() error

	// Close closes the publisher connection
	Close() error
}
