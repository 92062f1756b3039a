package domain

import "time"

// Review represents a review of a listing. Rating is 1..5.
type Review struct {
	ID        string
	ListingID string
	UserEmail string
	Rating    int
	Comment   string
	CreatedAt time.Time
}
