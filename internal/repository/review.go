package repository

import (
	"context"

	"travel/internal/domain"
)

// ReviewRepository defines the persistence operations for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *domain.Review) error
	GetByID(ctx context.Context, id string) (*domain.Review, error)
	GetByListingID(ctx context.Context, listingID string) ([]*domain.Review, error)
	Delete(ctx context.Context, id string) error
}
