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

const dateLayout = "2006-01-02"

// BookingHandler handles HTTP requests for bookings.
type BookingHandler struct {
	bookingRepo repository.BookingRepository
	listingRepo repository.ListingRepository
}

// NewBookingHandler creates a new BookingHandler.
func NewBookingHandler(bookingRepo repository.BookingRepository, listingRepo repository.ListingRepository) *BookingHandler {
	return &BookingHandler{bookingRepo: bookingRepo, listingRepo: listingRepo}
}

// BookingRequest is the HTTP request body for creating a booking.
type BookingRequest struct {
	ListingID string `json:"listing_id"`
	UserEmail string `json:"user_email"`
	StartDate string `json:"start_date"`
	EndDate   string `json:"end_date"`
}

// UpdateBookingStatusRequest is the HTTP request body for a status change.
type UpdateBookingStatusRequest struct {
	Status string `json:"status"`
}

// BookingResponse is the HTTP response for booking data.
type BookingResponse struct {
	ID        string    `json:"id"`
	ListingID string    `json:"listing_id"`
	UserEmail string    `json:"user_email"`
	StartDate string    `json:"start_date"`
	EndDate   string    `json:"end_date"`
	Status    string    `json:"status"`
	CreatedAt time.Time `json:"created_at"`
}

func toBookingResponse(booking *domain.Booking) BookingResponse {
	return BookingResponse{
		ID:        booking.ID,
		ListingID: booking.ListingID,
		UserEmail: booking.UserEmail,
		StartDate: booking.StartDate.Format(dateLayout),
		EndDate:   booking.EndDate.Format(dateLayout),
		Status:    string(booking.Status),
		CreatedAt: booking.CreatedAt,
	}
}

// Create handles POST /api/bookings
func (h *BookingHandler) Create(c *gin.Context) {
	var req BookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	if req.ListingID == "" || req.UserEmail == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "listing_id and user_email are required"})
		return
	}

	startDate, err := time.Parse(dateLayout, req.StartDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "start_date must be YYYY-MM-DD"})
		return
	}

	endDate, err := time.Parse(dateLayout, req.EndDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end_date must be YYYY-MM-DD"})
		return
	}

	if !endDate.After(startDate) {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "end_date must be after start_date"})
		return
	}

	// Referential integrity: the listing must exist.
	if _, err := h.listingRepo.GetByID(c.Request.Context(), req.ListingID); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			c.JSON(http.StatusBadRequest, ErrorResponse{Error: "listing does not exist"})
			return
		}
		respondError(c, err)
		return
	}

	booking := &domain.Booking{
		ID:        uuid.New().String(),
		ListingID: req.ListingID,
		UserEmail: req.UserEmail,
		StartDate: startDate,
		EndDate:   endDate,
		Status:    domain.BookingStatusPending,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.bookingRepo.Create(c.Request.Context(), booking); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, toBookingResponse(booking))
}

// GetAll handles GET /api/bookings
func (h *BookingHandler) GetAll(c *gin.Context) {
	bookings, err := h.bookingRepo.GetAll(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]BookingResponse, 0, len(bookings))
	for _, booking := range bookings {
		response = append(response, toBookingResponse(booking))
	}

	respondJSON(c, http.StatusOK, response)
}

// Get handles GET /api/bookings/:id
func (h *BookingHandler) Get(c *gin.Context) {
	booking, err := h.bookingRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// UpdateStatus handles PUT /api/bookings/:id
func (h *BookingHandler) UpdateStatus(c *gin.Context) {
	var req UpdateBookingStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	status := domain.BookingStatus(req.Status)
	switch status {
	case domain.BookingStatusPending, domain.BookingStatusConfirmed, domain.BookingStatusCanceled:
	default:
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status must be pending, confirmed, or canceled"})
		return
	}

	if err := h.bookingRepo.UpdateStatus(c.Request.Context(), c.Param("id"), status); err != nil {
		respondError(c, err)
		return
	}

	booking, err := h.bookingRepo.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, toBookingResponse(booking))
}

// Delete handles DELETE /api/bookings/:id
func (h *BookingHandler) Delete(c *gin.Context) {
	if err := h.bookingRepo.Delete(c.Request.Context(), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
