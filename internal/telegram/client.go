package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultBaseURL     = "https://api.telegram.org"
	defaultPollTimeout = 50 // seconds, long-poll hold time on getUpdates

	// HTTP timeout must outlast the long-poll hold time.
	defaultTimeout = (defaultPollTimeout + 15) * time.Second
)

// Client calls Telegram Bot API methods for one bot token. Every method
// performs a single attempt; retry policy belongs to the caller.
type Client struct {
	baseURL     string
	token       string
	pollTimeout int
	client      *http.Client
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithBaseURL overrides the API host, used in tests.
func WithBaseURL(baseURL string) ClientOption {
	return func(c *Client) {
		c.baseURL = baseURL
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithPollTimeout sets the getUpdates long-poll hold time in seconds.
func WithPollTimeout(seconds int) ClientOption {
	return func(c *Client) {
		c.pollTimeout = seconds
	}
}

// NewClient creates a Bot API client.
func NewClient(token string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL:     defaultBaseURL,
		token:       token,
		pollTimeout: defaultPollTimeout,
		client:      &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// GetMe fetches the bot's own identity, used as a startup token check.
func (c *Client) GetMe(ctx context.Context) (*User, error) {
	raw, err := c.call(ctx, "getMe", nil)
	if err != nil {
		return nil, err
	}
	var u User
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, fmt.Errorf("decode getMe result: %w", err)
	}
	return &u, nil
}

// GetUpdates long-polls for updates with update_id >= offset.
func (c *Client) GetUpdates(ctx context.Context, offset int64) ([]Update, error) {
	raw, err := c.call(ctx, "getUpdates", map[string]any{
		"offset":          offset,
		"timeout":         c.pollTimeout,
		"allowed_updates": []string{"message"},
	})
	if err != nil {
		return nil, err
	}
	var updates []Update
	if err := json.Unmarshal(raw, &updates); err != nil {
		return nil, fmt.Errorf("decode getUpdates result: %w", err)
	}
	return updates, nil
}

// SendMessage sends plain text to a chat. One attempt, no retries.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	_, err := c.call(ctx, "sendMessage", map[string]any{
		"chat_id": chatID,
		"text":    text,
	})
	return err
}

// SetMyCommands publishes the bot's command menu.
func (c *Client) SetMyCommands(ctx context.Context, commands []BotCommand) error {
	_, err := c.call(ctx, "setMyCommands", map[string]any{
		"commands": commands,
	})
	return err
}

// call invokes one Bot API method and returns the raw result payload.
func (c *Client) call(ctx context.Context, method string, params map[string]any) (json.RawMessage, error) {
	var body io.Reader
	if params != nil {
		encoded, err := json.Marshal(params)
		if err != nil {
			return nil, fmt.Errorf("marshal %s params: %w", method, err)
		}
		body = bytes.NewReader(encoded)
	}

	url := fmt.Sprintf("%s/bot%s/%s", c.baseURL, c.token, method)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, body)
	if err != nil {
		return nil, fmt.Errorf("create %s request: %w", method, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", method, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%s: read response: %w", method, err)
	}

	var envelope apiResponse
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil, fmt.Errorf("%s: decode response (status %d): %w", method, resp.StatusCode, err)
	}
	if !envelope.OK {
		return nil, fmt.Errorf("%s: api error %d: %s", method, envelope.ErrorCode, envelope.Description)
	}
	return envelope.Result, nil
}
