package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

var (
	// ErrEndpointRequired is returned when the provider endpoint is missing.
	ErrEndpointRequired = errors.New("sms endpoint is required")
	// ErrNoRecipient is returned when Message.To is empty.
	ErrNoRecipient = errors.New("no recipient provided")
)

// HTTPClient is an SMS implementation backed by a generic JSON-over-HTTP
// gateway. The gateway contract is a POST with {from, to, body} and a
// bearer API key; any 2xx answer counts as accepted.
type HTTPClient struct {
	endpoint string
	apiKey   string
	sender   string
	client   *http.Client
}

// HTTPConfig configures the HTTP implementation.
type HTTPConfig struct {
	// Endpoint is the gateway URL messages are posted to.
	Endpoint string
	// APIKey authenticates against the gateway.
	APIKey string
	// Sender is the originating number or alphanumeric ID.
	Sender string
}

// NewHTTP constructs an HTTP gateway sender.
func NewHTTP(cfg HTTPConfig) (*HTTPClient, error) {
	if cfg.Endpoint == "" {
		return nil, ErrEndpointRequired
	}

	return &HTTPClient{
		endpoint: cfg.Endpoint,
		apiKey:   cfg.APIKey,
		sender:   cfg.Sender,
		client:   &http.Client{Timeout: 10 * time.Second},
	}, nil
}

type gatewayPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
	Body string `json:"body"`
}

func (c *HTTPClient) Send(ctx context.Context, msg Message) error {
	if msg.To == "" {
		return ErrNoRecipient
	}

	body, err := json.Marshal(gatewayPayload{From: c.sender, To: msg.To, Body: msg.Body})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer func() {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4<<10))
		_ = resp.Body.Close()
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("sms gateway responded %d", resp.StatusCode)
	}

	return nil
}

// Close implements SMS. The underlying http.Client holds no resources
// that outlive idle connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}
