// Package webhook sends chat messages to the remote assistant webhook.
package webhook

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/pulse-chat/pulse/internal/constants"
	"github.com/pulse-chat/pulse/internal/safe"
	"github.com/pulse-chat/pulse/pkg/version"
)

// Client performs exactly one POST per message against a fixed endpoint.
// It makes no retries.
type Client struct {
	endpoint string
	action   string
	fallback string
	client   *http.Client
	logger   zerolog.Logger
}

// sendRequest is the JSON body posted to the webhook.
type sendRequest struct {
	Action  string `json:"action"`
	Message string `json:"message"`
}

// Option configures a Client.
type Option func(*Client)

// WithAction overrides the action literal sent with every message.
func WithAction(action string) Option {
	return func(c *Client) {
		if action != "" {
			c.action = action
		}
	}
}

// WithFallbackReply sets the reply used when a successful response names no reply field.
func WithFallbackReply(text string) Option {
	return func(c *Client) {
		if text != "" {
			c.fallback = text
		}
	}
}

// WithTimeout bounds a single round trip.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.client.Timeout = d
		}
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.client = hc
		}
	}
}

// WithLogger sets the logger used for request diagnostics.
func WithLogger(logger zerolog.Logger) Option {
	return func(c *Client) {
		c.logger = logger.With().Str("component", "webhook").Logger()
	}
}

// NewClient creates a webhook client for endpoint, which must be an
// absolute http or https URL.
func NewClient(endpoint string, opts ...Option) (*Client, error) {
	endpoint = strings.TrimSpace(endpoint)
	if endpoint == "" {
		return nil, fmt.Errorf("webhook URL is required")
	}
	if err := ValidateURL(endpoint); err != nil {
		return nil, err
	}

	c := &Client{
		endpoint: endpoint,
		action:   constants.DefaultWebhookAction,
		fallback: constants.DefaultFallbackReply,
		client: &http.Client{
			Timeout: constants.DefaultWebhookTimeout,
		},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// ValidateURL checks that raw is an absolute http(s) URL with a host.
func ValidateURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return fmt.Errorf("invalid webhook URL %q: %w", raw, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("invalid webhook URL %q: scheme must be http or https", raw)
	}
	if u.Host == "" {
		return fmt.Errorf("invalid webhook URL %q: missing host", raw)
	}
	return nil
}

// Endpoint returns the configured webhook URL.
func (c *Client) Endpoint() string {
	return c.endpoint
}

// Send posts message to the webhook and returns the resolved reply text.
// Every failure is a *DeliveryError matching ErrDelivery.
func (c *Client) Send(ctx context.Context, message string) (string, error) {
	body, err := json.Marshal(sendRequest{Action: c.action, Message: message})
	if err != nil {
		return "", newDeliveryError(0, "failed to encode request", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", newDeliveryError(0, "failed to create request", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", version.UserAgent())

	start := time.Now()
	resp, err := c.client.Do(req)
	if err != nil {
		return "", newDeliveryError(0, "request failed", err)
	}
	defer safe.Close(resp.Body, c.logger, "failed to close response body")

	c.logger.Debug().
		Int("status", resp.StatusCode).
		Dur("elapsed", time.Since(start)).
		Msg("Webhook responded")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", newDeliveryError(resp.StatusCode, http.StatusText(resp.StatusCode), nil)
	}

	respBody, err := safe.ReadAll(resp.Body, constants.MaxReplyBytes)
	if err != nil {
		return "", newDeliveryError(resp.StatusCode, "failed to read response body", err)
	}

	reply, ok := ResolveReply(respBody, c.fallback)
	if !ok {
		return "", newDeliveryError(resp.StatusCode, fmt.Sprintf("malformed response body: %s", truncateBody(respBody)), nil)
	}
	return reply, nil
}

// truncateBody returns up to 200 bytes of the response body for error messages.
func truncateBody(body []byte) string {
	if len(body) > 200 {
		return string(body[:200]) + "..."
	}
	return string(body)
}
