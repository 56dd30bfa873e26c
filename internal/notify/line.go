// Package notify pushes report text to a single LINE user through the Messaging API.
// Delivery failure is a value, never an error: callers log it and carry on.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

// DefaultEndpoint is the LINE Messaging API push endpoint.
const DefaultEndpoint = "https://api.line.me/v2/bot/message/push"

const maxReasonBody = 512

// DeliveryResult describes the outcome of one push attempt.
type DeliveryResult struct {
	Delivered  bool   `json:"delivered"`
	StatusCode int    `json:"status_code,omitempty"`
	Reason     string `json:"reason,omitempty"`
}

// String returns a short human-readable form for logs and CLI output.
func (r DeliveryResult) String() string {
	if r.Delivered {
		return "delivered"
	}
	return "failed: " + r.Reason
}

// ClientConfig configures a Client.
type ClientConfig struct {
	Endpoint string
	Token    string
	To       string
	Timeout  time.Duration
}

// Client sends text messages to one fixed recipient.
type Client struct {
	endpoint string
	token    string
	to       string
	http     *http.Client
	log      *zap.Logger
}

// NewClient creates a LINE push client. A nil logger disables logging.
func NewClient(cfg ClientConfig, log *zap.Logger) *Client {
	if cfg.Endpoint == "" {
		cfg.Endpoint = DefaultEndpoint
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 20 * time.Second
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Client{
		endpoint: cfg.Endpoint,
		token:    cfg.Token,
		to:       cfg.To,
		http:     &http.Client{Timeout: cfg.Timeout},
		log:      log,
	}
}

type textMessage struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type pushRequest struct {
	To       string        `json:"to"`
	Messages []textMessage `json:"messages"`
}

// Send makes a single push attempt. Only HTTP 200 counts as delivered.
func (c *Client) Send(ctx context.Context, text string) DeliveryResult {
	res := c.send(ctx, text)
	if res.Delivered {
		c.log.Info("line message delivered", zap.Int("chars", len([]rune(text))))
	} else {
		c.log.Warn("line message not delivered",
			zap.Int("status", res.StatusCode),
			zap.String("reason", res.Reason))
	}
	return res
}

func (c *Client) send(ctx context.Context, text string) DeliveryResult {
	data, err := json.Marshal(pushRequest{
		To:       c.to,
		Messages: []textMessage{{Type: "text", Text: text}},
	})
	if err != nil {
		return DeliveryResult{Reason: fmt.Sprintf("encode push request: %v", err)}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(data))
	if err != nil {
		return DeliveryResult{Reason: fmt.Sprintf("build push request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.http.Do(req)
	if err != nil {
		return DeliveryResult{Reason: fmt.Sprintf("push message: %v", err)}
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxReasonBody))

	if resp.StatusCode != http.StatusOK {
		reason := strings.TrimSpace(string(body))
		if reason == "" {
			reason = http.StatusText(resp.StatusCode)
		}
		return DeliveryResult{
			StatusCode: resp.StatusCode,
			Reason:     fmt.Sprintf("push message status=%d body=%s", resp.StatusCode, reason),
		}
	}
	return DeliveryResult{Delivered: true, StatusCode: resp.StatusCode}
}
