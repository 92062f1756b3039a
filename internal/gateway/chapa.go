package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"travel/internal/config"
)

const statusSuccess = "success"

// Client is the interface for the outbound payment gateway adapter. Both
// operations perform exactly one network call; retry policy belongs to the
// caller.
type Client interface {
	Initialize(ctx context.Context, req InitializeRequest) (*CheckoutResult, error)
	Verify(ctx context.Context, txRef string) (*VerificationResult, error)
}

// Customization carries the checkout page title and description.
type Customization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

// InitializeRequest is the payload for initializing a transaction.
type InitializeRequest struct {
	Amount        float64       `json:"amount"`
	Currency      string        `json:"currency"`
	Email         string        `json:"email"`
	FirstName     string        `json:"first_name"`
	TxRef         string        `json:"tx_ref"`
	CallbackURL   string        `json:"callback_url"`
	Customization Customization `json:"customization"`
}

// CheckoutResult is the normalized outcome of a successful initialization.
type CheckoutResult struct {
	CheckoutURL string
}

// VerificationResult is the normalized outcome of a verification call.
// Succeeded is true only when the provider reports the transaction itself
// as successful; RawStatus carries the provider's transaction status string.
type VerificationResult struct {
	Succeeded bool
	RawStatus string
}

// ChapaClient talks to the Chapa transaction API over HTTPS.
type ChapaClient struct {
	httpClient *http.Client
	baseURL    string
	secretKey  string
}

// NewChapaClient creates a gateway client from configuration. The HTTP
// client timeout bounds every outbound call; a timeout surfaces as
// ErrGatewayUnavailable, never as a payment failure.
func NewChapaClient(cfg config.ChapaConfig) *ChapaClient {
	return &ChapaClient{
		httpClient: &http.Client{Timeout: cfg.Timeout},
		baseURL:    cfg.BaseURL,
		secretKey:  cfg.SecretKey,
	}
}

// chapaResponse is the provider's response envelope.
type chapaResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	Data    struct {
		CheckoutURL string `json:"checkout_url"`
		Status      string `json:"status"`
	} `json:"data"`
}

// Initialize starts a transaction with the provider and returns the
// checkout URL the payer should be redirected to.
func (c *ChapaClient) Initialize(ctx context.Context, req InitializeRequest) (*CheckoutResult, error) {
	body, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("marshal initialize payload: %w", err)
	}

	url := c.baseURL + "/v1/transaction/initialize"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build initialize request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.Status != statusSuccess {
		return nil, &RejectionError{Status: resp.Status, Message: resp.Message}
	}

	if resp.Data.CheckoutURL == "" {
		return nil, fmt.Errorf("%w: success without checkout_url", ErrMalformedResponse)
	}

	return &CheckoutResult{CheckoutURL: resp.Data.CheckoutURL}, nil
}

// Verify asks the provider for the outcome of a transaction. A response the
// provider itself marks unsuccessful means it has no outcome for this
// reference and is reported as a rejection, not as a failed payment.
func (c *ChapaClient) Verify(ctx context.Context, txRef string) (*VerificationResult, error) {
	url := c.baseURL + "/v1/transaction/verify/" + txRef
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("build verify request: %w", err)
	}
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	resp, err := c.do(httpReq)
	if err != nil {
		return nil, err
	}

	if resp.Status != statusSuccess {
		return nil, &RejectionError{Status: resp.Status, Message: resp.Message}
	}

	return &VerificationResult{
		Succeeded: resp.Data.Status == statusSuccess,
		RawStatus: resp.Data.Status,
	}, nil
}

// do executes the request and decodes the provider envelope, classifying
// transport and decode failures.
func (c *ChapaClient) do(req *http.Request) (*chapaResponse, error) {
	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGatewayUnavailable, err)
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: reading body: %v", ErrGatewayUnavailable, err)
	}

	var resp chapaResponse
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedResponse, err)
	}

	if resp.Status == "" {
		return nil, fmt.Errorf("%w: missing status field", ErrMalformedResponse)
	}

	return &resp, nil
}

// Ensure the interface is satisfied.
var _ Client = (*ChapaClient)(nil)
