package paymentgateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/frahmantamala/travel-booking/pkg/metrics"
	"github.com/shopspring/decimal"
)

const (
	initializePath  = "/v1/transaction/initialize"
	maxResponseSize = 1 << 20
	statusSuccess   = "success"
)

// ErrUnreachable wraps every failure that prevented a complete response from
// the provider: dial errors, timeouts, truncated bodies.
var ErrUnreachable = errors.New("payment gateway unreachable")

type Config struct {
	BaseURL     string
	SecretKey   string
	CallbackURL string
	ReturnURL   string
	Currency    string
	Timeout     time.Duration
}

// TransactionRequest is what callers supply. Currency and the callback and
// return URLs come from the client's Config.
type TransactionRequest struct {
	Amount      decimal.Decimal
	Email       string
	FirstName   string
	TxRef       string
	Title       string
	Description string
}

type Customization struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

type initializePayload struct {
	Amount        decimal.Decimal `json:"amount"`
	Currency      string          `json:"currency"`
	Email         string          `json:"email"`
	FirstName     string          `json:"first_name"`
	TxRef         string          `json:"tx_ref"`
	CallbackURL   string          `json:"callback_url"`
	ReturnURL     string          `json:"return_url,omitempty"`
	Customization Customization   `json:"customization"`
}

// InitializeResult is the provider's answer. Body holds the decoded JSON
// document (or the raw text when the body is not JSON) for diagnostics.
type InitializeResult struct {
	StatusCode  int
	Successful  bool
	CheckoutURL string
	Message     string
	Body        interface{}
	Raw         []byte
}

type Client struct {
	baseURL     string
	secretKey   string
	callbackURL string
	returnURL   string
	currency    string
	httpClient  *http.Client
	logger      *slog.Logger
}

func NewClient(config Config, logger *slog.Logger) *Client {
	timeout := config.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}

	return &Client{
		baseURL:     strings.TrimRight(config.BaseURL, "/"),
		secretKey:   config.SecretKey,
		callbackURL: config.CallbackURL,
		returnURL:   config.ReturnURL,
		currency:    config.Currency,
		httpClient:  &http.Client{Timeout: timeout},
		logger:      logger,
	}
}

func (c *Client) Currency() string {
	return c.currency
}

// InitializeTransaction performs one call to the provider. A non-nil error
// always wraps ErrUnreachable; a provider-side rejection comes back as a
// result with Successful=false.
func (c *Client) InitializeTransaction(ctx context.Context, req TransactionRequest) (*InitializeResult, error) {
	payload := initializePayload{
		Amount:      req.Amount,
		Currency:    c.currency,
		Email:       req.Email,
		FirstName:   req.FirstName,
		TxRef:       req.TxRef,
		CallbackURL: c.callbackURL,
		ReturnURL:   c.returnURL,
		Customization: Customization{
			Title:       req.Title,
			Description: req.Description,
		},
	}

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payment request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+initializePath, bytes.NewReader(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create HTTP request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.secretKey)

	c.logger.Info("initializing gateway transaction",
		"tx_ref", req.TxRef,
		"amount", req.Amount.String(),
		"currency", c.currency)

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		metrics.ObserveGateway(metrics.OutcomeUnreachable, time.Since(start).Seconds())
		c.logger.Error("gateway request failed", "tx_ref", req.TxRef, "error", err)
		return nil, fmt.Errorf("%w: %v", ErrUnreachable, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		metrics.ObserveGateway(metrics.OutcomeUnreachable, time.Since(start).Seconds())
		c.logger.Error("failed to read gateway response", "tx_ref", req.TxRef, "error", err)
		return nil, fmt.Errorf("%w: reading response: %v", ErrUnreachable, err)
	}

	result := parseResult(resp.StatusCode, raw)

	outcome := metrics.OutcomeInitiated
	if !result.Successful {
		outcome = metrics.OutcomeFailed
	}
	metrics.ObserveGateway(outcome, time.Since(start).Seconds())

	c.logger.Info("gateway transaction response",
		"tx_ref", req.TxRef,
		"http_status", resp.StatusCode,
		"successful", result.Successful)

	return result, nil
}

// parseResult treats the body as untrusted: every field is checked for
// presence and type before use.
func parseResult(statusCode int, raw []byte) *InitializeResult {
	result := &InitializeResult{StatusCode: statusCode, Raw: raw}

	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		result.Body = map[string]interface{}{
			"message":     "empty response from payment gateway",
			"http_status": statusCode,
		}
		return result
	}

	dec := json.NewDecoder(bytes.NewReader(trimmed))
	dec.UseNumber()
	var body interface{}
	if err := dec.Decode(&body); err != nil {
		result.Body = string(trimmed)
		return result
	}
	result.Body = body

	doc, ok := body.(map[string]interface{})
	if !ok {
		return result
	}

	if msg, ok := doc["message"].(string); ok {
		result.Message = msg
	}

	status, _ := doc["status"].(string)
	data, _ := doc["data"].(map[string]interface{})
	checkoutURL, _ := data["checkout_url"].(string)

	result.CheckoutURL = checkoutURL
	result.Successful = statusCode >= 200 && statusCode < 300 &&
		strings.EqualFold(status, statusSuccess) &&
		checkoutURL != ""

	return result
}
