// Package whatsapp talks to the Meta WhatsApp Cloud API: outbound text
// messages and inbound webhook payload parsing.
package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/avast/retry-go"
)

const (
	// DefaultBaseURL is the Meta Graph API endpoint.
	DefaultBaseURL = "https://graph.facebook.com/v21.0"

	retryAttempts = 3
	retryDelay    = 10 * time.Second
)

// Config holds WhatsApp Cloud API credentials.
type Config struct {
	// Token is the bearer token for the Graph API.
	Token string
	// PhoneNumberID is the sending phone number's Meta ID.
	PhoneNumberID string
	// BaseURL overrides the Graph API endpoint, for tests.
	BaseURL string
}

// Client sends text messages through the Cloud API. It implements
// api.Sender.
type Client struct {
	httpClient *http.Client
	token      string
	url        string
	logger     *slog.Logger
}

// New creates a Client.
func New(cfg Config, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	return &Client{
		httpClient: &http.Client{Timeout: 30 * time.Second},
		token:      cfg.Token,
		url:        fmt.Sprintf("%s/%s/messages", baseURL, cfg.PhoneNumberID),
		logger:     logger,
	}
}

// outboundMessage is the Cloud API text message payload.
type outboundMessage struct {
	MessagingProduct string       `json:"messaging_product"`
	To               string       `json:"to"`
	Type             string       `json:"type"`
	Text             outboundText `json:"text"`
}

type outboundText struct {
	Body string `json:"body"`
}

// Send delivers text to phone, retrying on rate limits.
func (c *Client) Send(ctx context.Context, phone int64, text string) error {
	payload, err := json.Marshal(outboundMessage{
		MessagingProduct: "whatsapp",
		To:               strconv.FormatInt(phone, 10),
		Type:             "text",
		Text:             outboundText{Body: text},
	})
	if err != nil {
		return fmt.Errorf("marshaling message: %w", err)
	}

	err = retry.Do(
		func() error {
			return c.post(ctx, payload)
		},
		retry.RetryIf(func(err error) bool {
			var rateErr *rateLimitError
			if errors.As(err, &rateErr) {
				c.logger.Warn("rate limited, will retry", "error", err)
				return true
			}
			return false
		}),
		retry.Attempts(retryAttempts),
		retry.Delay(retryDelay),
		retry.LastErrorOnly(true),
	)
	if err != nil {
		return fmt.Errorf("sending message: %w", err)
	}

	c.logger.Info("message sent", "to", phone, "length", len(text))
	return nil
}

type rateLimitError struct {
	body string
}

func (e *rateLimitError) Error() string {
	return "rate limited by graph api: " + e.body
}

func (c *Client) post(ctx context.Context, payload []byte) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("posting to graph api: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
	if resp.StatusCode == http.StatusTooManyRequests {
		return &rateLimitError{body: string(body)}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("graph api returned %d: %s", resp.StatusCode, body)
	}
	return nil
}

// Webhook payload structures, trimmed to the fields the bot reads.

type webhookPayload struct {
	Entry []struct {
		Changes []struct {
			Value struct {
				Messages []struct {
					From string `json:"from"`
					Text struct {
						Body string `json:"body"`
					} `json:"text"`
				} `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// ParseIncoming extracts the sender phone and message text from a Meta
// webhook payload. Reports false for status updates (delivered, read)
// and anything else that is not a user text message.
func ParseIncoming(body []byte) (phone int64, text string, ok bool) {
	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return 0, "", false
	}

	if len(payload.Entry) == 0 || len(payload.Entry[0].Changes) == 0 {
		return 0, "", false
	}
	value := payload.Entry[0].Changes[0].Value
	if len(value.Messages) == 0 {
		return 0, "", false
	}

	msg := value.Messages[0]
	phone, err := strconv.ParseInt(msg.From, 10, 64)
	if err != nil {
		return 0, "", false
	}
	return phone, strings.TrimSpace(msg.Text.Body), true
}
