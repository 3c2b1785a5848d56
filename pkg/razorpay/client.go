package razorpay

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"errors"
	"fmt"
	"strings"

	rzpsdk "github.com/razorpay/razorpay-go"

	"github.com/brightbasket/storefront-backend/pkg/config"
	pkgerrors "github.com/brightbasket/storefront-backend/pkg/errors"
	"github.com/brightbasket/storefront-backend/pkg/logger"
)

var (
	// ErrMissingCredentials signals the gateway key id or secret is absent.
	ErrMissingCredentials = errors.New("razorpay credentials are not configured")
	// ErrPlaceholderCredentials signals the configured values are template
	// placeholders that were never replaced with real keys.
	ErrPlaceholderCredentials = errors.New("razorpay credentials are placeholder values")
)

var placeholderMarkers = []string{"your_", "your-", "xxxx", "changeme"}

// Client wraps the Razorpay SDK with credential checks, structured
// logging, and error mapping. Construction never fails on missing
// credentials: checkout reports those as distinct flow errors instead
// of refusing to boot.
type Client struct {
	sdk       *rzpsdk.Client
	keyID     string
	keySecret string
	logger    *logger.Logger
}

// OrderParams carries the inputs for minting a gateway order.
type OrderParams struct {
	// AmountMinorUnits is the total in the currency's smallest unit.
	AmountMinorUnits int64
	Currency         string
	Receipt          string
	Notes            map[string]string
}

// Order is the subset of the gateway order we consume.
type Order struct {
	ID               string
	AmountMinorUnits int64
	Currency         string
}

// NewClient builds the wrapper. The SDK handle is only created when both
// credentials are present.
func NewClient(ctx context.Context, cfg config.RazorpayConfig, logg *logger.Logger) (*Client, error) {
	if logg == nil {
		return nil, errors.New("razorpay logger is required")
	}

	c := &Client{
		keyID:     strings.TrimSpace(cfg.KeyID),
		keySecret: strings.TrimSpace(cfg.KeySecret),
		logger:    logg,
	}
	if err := c.CheckCredentials(); err == nil {
		c.sdk = rzpsdk.NewClient(c.keyID, c.keySecret)
		logg.Info(ctx, "razorpay client initialized")
	} else {
		logg.Warn(ctx, "razorpay client initialized without usable credentials")
	}
	return c, nil
}

// KeyID returns the configured public key id.
func (c *Client) KeyID() string {
	if c == nil {
		return ""
	}
	return c.keyID
}

// CheckCredentials reports whether the gateway can be called, with the
// distinct missing/placeholder failure reasons required by checkout.
func (c *Client) CheckCredentials() error {
	if c == nil || c.keyID == "" || c.keySecret == "" {
		return ErrMissingCredentials
	}
	if isPlaceholder(c.keyID) || isPlaceholder(c.keySecret) {
		return ErrPlaceholderCredentials
	}
	return nil
}

func isPlaceholder(value string) bool {
	lowered := strings.ToLower(value)
	for _, marker := range placeholderMarkers {
		if strings.Contains(lowered, marker) {
			return true
		}
	}
	return false
}

// CreateOrder mints a gateway order for the provided amount.
func (c *Client) CreateOrder(ctx context.Context, params OrderParams) (*Order, error) {
	if err := c.CheckCredentials(); err != nil {
		return nil, err
	}
	if params.AmountMinorUnits <= 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "gateway order amount must be positive")
	}

	data := map[string]interface{}{
		"amount":   params.AmountMinorUnits,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	}
	if len(params.Notes) > 0 {
		notes := make(map[string]interface{}, len(params.Notes))
		for k, v := range params.Notes {
			notes[k] = v
		}
		data["notes"] = notes
	}

	c.log(ctx, "request", "create_order", map[string]any{
		"amount":   params.AmountMinorUnits,
		"currency": params.Currency,
		"receipt":  params.Receipt,
	})

	body, err := c.sdk.Order.Create(data, nil)
	if err != nil {
		c.log(ctx, "error", "create_order", map[string]any{"error": err.Error()})
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "create gateway order")
	}

	order, err := orderFromResponse(body)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode gateway order")
	}

	c.log(ctx, "response", "create_order", map[string]any{
		"gateway_order_id": order.ID,
		"amount":           order.AmountMinorUnits,
	})
	return order, nil
}

func orderFromResponse(body map[string]interface{}) (*Order, error) {
	id, _ := body["id"].(string)
	if id == "" {
		return nil, fmt.Errorf("gateway order response missing id")
	}
	order := &Order{ID: id}
	switch amount := body["amount"].(type) {
	case float64:
		order.AmountMinorUnits = int64(amount)
	case int64:
		order.AmountMinorUnits = amount
	case int:
		order.AmountMinorUnits = int64(amount)
	}
	if currency, ok := body["currency"].(string); ok {
		order.Currency = currency
	}
	return order, nil
}

// VerifyPaymentSignature recomputes the HMAC-SHA256 the gateway signs
// over "<order_id>|<payment_id>" and compares it to the supplied
// signature in constant time.
func (c *Client) VerifyPaymentSignature(gatewayOrderID, paymentID, signature string) bool {
	if c == nil || c.keySecret == "" {
		return false
	}
	if gatewayOrderID == "" || paymentID == "" || signature == "" {
		return false
	}

	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(gatewayOrderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))

	return subtle.ConstantTimeCompare([]byte(expected), []byte(signature)) == 1
}

func (c *Client) log(ctx context.Context, phase, operation string, fields map[string]any) {
	if c.logger == nil {
		return
	}
	merged := map[string]any{
		"gateway":   "razorpay",
		"operation": operation,
		"phase":     phase,
	}
	for k, v := range fields {
		merged[k] = v
	}
	ctx = c.logger.WithFields(ctx, merged)
	if phase == "error" {
		c.logger.Warn(ctx, "razorpay call failed")
		return
	}
	c.logger.Info(ctx, "razorpay call")
}
