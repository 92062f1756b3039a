package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travel/internal/domain"
	"travel/internal/repository"
)

// ReviewHandler handles HTTP requests for reviews.
type ReviewHandler struct {
	reviewRepo  repository.ReviewRepository
	listingRepo repository.ListingRepository
}

// NewReviewHandler creates a new ReviewHandler.
func NewReviewHandler(reviewRepo repository.ReviewRepository, listingRepo repository.ListingRepository) *ReviewHandler {
	return &ReviewHandler{reviewRepo: reviewRepo, listingRepo: listingRepo}
}

// ReviewRequest is the HTTP request body for creating a review.
type ReviewRequest struct {
	ListingID string `json:"listing_id"`
	UserEmail string `json:"user_email"`
	Rating    int    `json:"rating"`
	Comment   string `json:"comment"`
}

// ReviewResponse is the HTTP response for review data.
type ReviewResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	UserEmail string    `json:"user_email"`
	Rating    int       `json:"rating"`
	Comment   string    `json:"comment"`
	CreatedAt time.Time `json:"created_at"`
}

func toReviewResponse(review *domain.Review) ReviewResponse {
	return ReviewResponse{
		ID:        review.ID,
		ListingID: review.ListingID,
		UserEmail: review.UserEmail,
		Rating:    review.Rating,
		Comment:   review.Comment,
		CreatedAt: review.CreatedAt,
	}
}

// Create handles POST /api/reviews
func (h *ReviewHandler) Create(c *gin.Context) {
	var req ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ListingID == "" || req.UserEmail == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "listing_id and user_email are required"})
		return
	}

	if req.Rating < 1 || req.Rating > 5 {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "rating must be between 1 and 5"})
		return
	}

	if _, err := h.listingRepo.GetByID(c.Request.Context(), req.ListingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "listing does not exist"})
			return
		}
		respondError(c, err)
		return
	}

	review := &domain.Review{
		ID:        uuid.New().String(),
		ListingID: req.ListingID,
		UserEmail: req.UserEmail,
		Rating:    req.Rating,
		Comment:   req.Comment,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.reviewRepo.Create(c.Request.Context(), review); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toReviewResponse(review))
}

// GetByListing handles GET /api/reviews?listing_id=...
func (h *ReviewHandler) GetByListing(c *gin.Context) {
	listingID := c.Query("listing_id")
	if listingID == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "listing_id is required"})
		return
	}

	reviews, err := h.reviewRepo.GetByListingID(c.Request.Context(), listingID)
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ReviewResponse, 0, len(reviews))
	for _, review := range reviews {
		response = append(response, toReviewResponse(review))
	}

	respondJSON(c, http.StatusOK, response)
}

// Delete handles DELETE /api/reviews/:id
func (h *ReviewHandler) Delete(c *gin.Context) {
	if err := h.reviewRepo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
