package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"travel/internal/domain"
	"travel/internal/repository"
)

// ListingHandler handles HTTP requests for listings.
type ListingHandler struct {
	listingRepo repository.ListingRepository
}

// NewListingHandler creates a new ListingHandler.
func NewListingHandler(listingRepo repository.ListingRepository) *ListingHandler {
	return &ListingHandler{listingRepo: listingRepo}
}

// ListingRequest is the HTTP request body for creating or updating a listing.
type ListingRequest struct {
	Title         string  `json:"title"`
	Description   string  `json:"description"`
	PricePerNight float64 `json:"price_per_night"`
	Location      string  `json:"location"`
}

// ListingResponse is the HTTP response for listing data.
type ListingResponse struct {
	ID            string    `json:"id"`
	Title         string    `json:"title"`
	Description   string    `json:"description"`
	PricePerNight float64   `json:"price_per_night"`
	Location      string    `json:"location"`
	CreatedAt     time.Time `json:"created_at"`
}

func toListingResponse(listing *domain.Listing) ListingResponse {
	return ListingResponse{
		ID:            listing.ID,
		Title:         listing.Title,
		Description:   listing.Description,
		PricePerNight: listing.PricePerNight,
		Location:      listing.Location,
		CreatedAt:     listing.CreatedAt,
	}
}

func (r ListingRequest) validate() string {
	if r.Title == "" {
		return "title is required"
	}
	if r.PricePerNight <= 0 {
		return "price_per_night must be positive"
	}
	if r.Location == "" {
		return "location is required"
	}
	return ""
}

// Create handles POST /api/listings
func (h *ListingHandler) Create(c *gin.Context) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	listing := &domain.Listing{
		ID:            uuid.New().String(),
		Title:         req.Title,
		Description:   req.Description,
		PricePerNight: req.PricePerNight,
		Location:      req.Location,
		CreatedAt:     time.Now().UTC(),
	}

	if err := h.listingRepo.Create(c.Request.Context(), listing); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toListingResponse(listing))
}

// GetAll handles GET /api/listings
func (h *ListingHandler) GetAll(c *gin.Context) {
	listings, err := h.listingRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]ListingResponse, 0, len(listings))
	for _, listing := range listings {
		response = append(response, toListingResponse(listing))
	}

	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /api/listings/:id
func (h *ListingHandler) Get(c *gin.Context) {
	listing, err := h.listingRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toListingResponse(listing))
}

// Update handles PUT /api/listings/:id
func (h *ListingHandler) Update(c *gin.Context) {
	var req ListingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if msg := req.validate(); msg != "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: msg})
		return
	}

	listing, err := h.listingRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	listing.Title = req.Title
	listing.Description = req.Description
	listing.PricePerNight = req.PricePerNight
	listing.Location = req.Location

	if err := h.listingRepo.Update(c.Request.Context(), listing); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toListingResponse(listing))
}

// Delete handles DELETE /api/listings/:id
func (h *ListingHandler) Delete(c *gin.Context) {
	if err := h.listingRepo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
