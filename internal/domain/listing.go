package domain

import "time"

// Listing represents a travel listing or property.
type Listing struct {
	ID            string
	Title         string
	Description   string
	PricePerNight float64
	Location      string
	CreatedAt     time.Time
}
