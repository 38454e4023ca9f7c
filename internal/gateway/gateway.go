package gateway

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/sahajm/carewallet/internal/config"
	"github.com/sahajm/carewallet/pkg/clients"
	"go.uber.org/zap"
)

const (
	maxRetries    = 3
	retryInterval = time.Second * 1
)

var ErrUnexpectedStatus = errors.New("unexpected status code from payment gateway")

type orderRequest struct {
	Amount         int64  `json:"amount"`
	Currency       string `json:"currency"`
	Receipt        string `json:"receipt"`
	PaymentCapture int    `json:"payment_capture"`
}

type orderResponse struct {
	ID     string `json:"id"`
	Status string `json:"status"`
}

// Client talks to a Razorpay-compatible orders API. Amounts are in the
// smallest currency unit (paise for INR).
type Client struct {
	baseURL   string
	keyID     string
	keySecret string
	client    clients.HTTPClientI
}

func New(cfg *config.Config, client clients.HTTPClientI) *Client {
	return &Client{
		baseURL:   cfg.GatewayAddress,
		keyID:     cfg.GatewayKeyID,
		keySecret: cfg.GatewaySecret,
		client:    client,
	}
}

func (c *Client) CreateOrder(ctx context.Context, amountMinor int64, currency, receipt string) (string, error) {
	body, err := json.Marshal(orderRequest{
		Amount:         amountMinor,
		Currency:       currency,
		Receipt:        receipt,
		PaymentCapture: 1,
	})
	if err != nil {
		return "", fmt.Errorf("failed to encode order request: %w", err)
	}

	var resp orderResponse
	if err := c.doJSON(ctx, http.MethodPost, c.baseURL+"/v1/orders", body, &resp); err != nil {
		return "", err
	}
	if resp.ID == "" {
		return "", errors.New("gateway returned an order without an id")
	}
	return resp.ID, nil
}

func (c *Client) FetchOrderStatus(ctx context.Context, orderID string) (string, error) {
	var resp orderResponse
	if err := c.doJSON(ctx, http.MethodGet, c.baseURL+"/v1/orders/"+orderID, nil, &resp); err != nil {
		return "", err
	}
	return resp.Status, nil
}

// VerifySignature checks the checkout callback signature: an HMAC-SHA256 of
// "<order_id>|<payment_id>" keyed with the API secret, hex encoded.
func (c *Client) VerifySignature(orderID, paymentID, signature string) bool {
	mac := hmac.New(sha256.New, []byte(c.keySecret))
	mac.Write([]byte(orderID + "|" + paymentID))
	expected := hex.EncodeToString(mac.Sum(nil))
	return hmac.Equal([]byte(expected), []byte(signature))
}

func (c *Client) doJSON(ctx context.Context, method, url string, body []byte, out any) error {
	var lastErr error
	for attempt := 1; attempt <= maxRetries; attempt++ {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		var reader io.Reader
		if body != nil {
			reader = bytes.NewReader(body)
		} else {
			reader = http.NoBody
		}
		req, err := http.NewRequestWithContext(ctx, method, url, reader)
		if err != nil {
			return fmt.Errorf("failed to build gateway request: %w", err)
		}
		req.SetBasicAuth(c.keyID, c.keySecret)
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.client.Do(req)
		if err != nil {
			lastErr = err
			if attempt < maxRetries {
				time.Sleep(retryInterval * time.Duration(attempt))
				continue
			}
			return fmt.Errorf("gateway request failed after %d retries: %w", maxRetries, lastErr)
		}

		respBody, err := io.ReadAll(resp.Body)
		if closeErr := resp.Body.Close(); closeErr != nil {
			zap.L().Warn("Failed to close gateway response body", zap.Error(closeErr))
		}
		if err != nil {
			return fmt.Errorf("failed to read gateway response: %w", err)
		}

		switch resp.StatusCode {
		case http.StatusOK:
			if err := json.Unmarshal(respBody, out); err != nil {
				return fmt.Errorf("failed to parse gateway response: %w", err)
			}
			return nil
		case http.StatusTooManyRequests, http.StatusBadGateway, http.StatusServiceUnavailable:
			zap.L().Warn("Gateway throttled request, retrying",
				zap.Int("status", resp.StatusCode),
				zap.Int("attempt", attempt),
			)
			lastErr = fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
			if attempt < maxRetries {
				time.Sleep(retryInterval * time.Duration(attempt))
				continue
			}
			return lastErr
		default:
			zap.L().Error("Unexpected gateway status",
				zap.Int("status", resp.StatusCode),
				zap.String("url", url),
			)
			return fmt.Errorf("%w: %d", ErrUnexpectedStatus, resp.StatusCode)
		}
	}
	return lastErr
}
