package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"travel/internal/domain"
	"travel/internal/service"
)

// PaymentHandler handles HTTP requests for the payment lifecycle.
type PaymentHandler struct {
	paymentService *service.PaymentService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(paymentService *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// InitiatePaymentRequest is the HTTP request body for initiating a payment.
type InitiatePaymentRequest struct {
	BookingReference string  `json:"booking_reference"`
	Amount           float64 `json:"amount"`
	Email            string  `json:"email"`
	Name             string  `json:"name"`
}

// InitiatePaymentResponse is the HTTP response for a successful initiation.
type InitiatePaymentResponse struct {
	Message       string `json:"message"`
	TransactionID string `json:"transaction_id"`
	CheckoutURL   string `json:"checkout_url"`
}

// VerifyPaymentResponse is the HTTP response for a verification.
type VerifyPaymentResponse struct {
	Message       string `json:"message"`
	Status        string `json:"status"`
	TransactionID string `json:"transaction_id"`
}

// InitiatePayment handles POST /api/initiate-payment/
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	h.initiate(c, h.paymentService.InitiatePayment)
}

// ReinitiatePayment handles POST /api/reinitiate-payment/
func (h *PaymentHandler) ReinitiatePayment(c *gin.Context) {
	h.initiate(c, h.paymentService.ReinitiatePayment)
}

type initiateOp func(ctx context.Context, req service.InitiatePaymentRequest) (*service.InitiatePaymentResult, error)

func (h *PaymentHandler) initiate(c *gin.Context, op initiateOp) {
	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "invalid request body"})
		return
	}

	result, err := op(c.Request.Context(), service.InitiatePaymentRequest{
		BookingReference: req.BookingReference,
		Amount:           req.Amount,
		Email:            req.Email,
		Name:             req.Name,
	})
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, InitiatePaymentResponse{
		Message:       "Payment initiated successfully.",
		TransactionID: result.TransactionRef,
		CheckoutURL:   result.CheckoutURL,
	})
}

// VerifyPayment handles GET /api/verify-payment/?tx_ref=...
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	txRef := c.Query("tx_ref")
	if txRef == "" {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "Transaction reference (tx_ref) is required"})
		return
	}

	result, err := h.paymentService.VerifyPayment(c.Request.Context(), txRef)
	if err != nil {
		h.respondPaymentError(c, err)
		return
	}

	message := "Payment verified successfully."
	if result.Status == domain.PaymentStatusFailed {
		message = "Payment verification failed."
	}

	respondJSON(c, http.StatusOK, VerifyPaymentResponse{
		Message:       message,
		Status:        string(result.Status),
		TransactionID: result.TransactionRef,
	})
}

// respondPaymentError renders payment errors with stable messages and a
// details passthrough for gateway failures.
func (h *PaymentHandler) respondPaymentError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrPaymentInitiationFailed):
		c.JSON(http.StatusBadRequest, ErrorResponse{
			Error:   "Failed to initiate payment.",
			Details: err.Error(),
		})
	case errors.Is(err, service.ErrVerificationUnavailable):
		c.JSON(http.StatusServiceUnavailable, ErrorResponse{
			Error:   "Unable to verify payment.",
			Details: err.Error(),
		})
	case errors.Is(err, service.ErrPaymentNotFound):
		c.JSON(http.StatusNotFound, ErrorResponse{Error: "Payment not found"})
	default:
		respondError(c, err)
	}
}
