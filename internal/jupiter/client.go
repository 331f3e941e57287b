package jupiter

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"
)

const (
	defaultTimeout     = 15 * time.Second
	defaultSlippageBps = 50
)

// Client talks to the Jupiter quote and swap endpoints.
type Client struct {
	baseURL            string
	client             *http.Client
	platformFeeBps     int
	platformFeeAccount string
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) ClientOption {
	return func(c *Client) {
		c.client = hc
	}
}

// WithTimeout sets the HTTP request timeout.
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *Client) {
		c.client.Timeout = timeout
	}
}

// WithPlatformFee routes a fee in basis points to the given token account on
// every swap. Zero bps disables the fee.
func WithPlatformFee(bps int, account string) ClientOption {
	return func(c *Client) {
		c.platformFeeBps = bps
		c.platformFeeAccount = account
	}
}

// NewClient creates a Jupiter API client for the given base URL,
// e.g. "https://quote-api.jup.ag/v6".
func NewClient(baseURL string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: baseURL,
		client:  &http.Client{Timeout: defaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Quote fetches a swap quote for the given pair and amount.
func (c *Client) Quote(ctx context.Context, params QuoteParams) (*QuoteResponse, error) {
	slippage := params.SlippageBps
	if slippage <= 0 {
		slippage = defaultSlippageBps
	}

	q := url.Values{}
	q.Set("inputMint", params.InputMint)
	q.Set("outputMint", params.OutputMint)
	q.Set("amount", strconv.FormatUint(params.Amount, 10))
	q.Set("slippageBps", strconv.Itoa(slippage))
	if c.platformFeeBps > 0 {
		q.Set("platformFeeBps", strconv.Itoa(c.platformFeeBps))
	}

	raw, err := c.get(ctx, c.baseURL+"/quote?"+q.Encode())
	if err != nil {
		return nil, err
	}

	quote, err := parseQuote(raw)
	if err != nil {
		return nil, fmt.Errorf("decode quote response: %w", err)
	}
	if quote.OutAmount == 0 {
		return nil, fmt.Errorf("quote returned no route for %s", params.OutputMint)
	}
	return quote, nil
}

// SwapTransaction builds an unsigned legacy transaction for a previously
// fetched quote and returns it base64-encoded.
func (c *Client) SwapTransaction(ctx context.Context, userPublicKey string, quote *QuoteResponse) (string, error) {
	req := swapRequest{
		UserPublicKey:       userPublicKey,
		WrapUnwrapSOL:       true,
		QuoteResponse:       quote.Raw,
		AsLegacyTransaction: true,
	}
	if c.platformFeeBps > 0 && c.platformFeeAccount != "" {
		req.PlatformFeeBps = c.platformFeeBps
		req.PlatformFeeAccount = c.platformFeeAccount
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("marshal swap request: %w", err)
	}

	raw, err := c.post(ctx, c.baseURL+"/swap", body)
	if err != nil {
		return "", err
	}

	var resp swapResponse
	if err := json.Unmarshal(raw, &resp); err != nil {
		return "", fmt.Errorf("decode swap response: %w", err)
	}
	if resp.Error != "" {
		return "", fmt.Errorf("%s", resp.Error)
	}
	if resp.SwapTransaction == "" {
		return "", fmt.Errorf("swap response missing transaction")
	}
	return resp.SwapTransaction, nil
}

func (c *Client) get(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	return c.do(req)
}

func (c *Client) post(ctx context.Context, rawURL string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, rawURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *Client) do(req *http.Request) ([]byte, error) {
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		// Jupiter reports failures as {"error": "..."}; surface that text
		// directly so callers can show it to the user.
		var apiErr apiError
		if json.Unmarshal(raw, &apiErr) == nil && apiErr.Error != "" {
			return nil, fmt.Errorf("%s", apiErr.Error)
		}
		return nil, fmt.Errorf("unexpected status %d: %s", resp.StatusCode, string(raw))
	}
	return raw, nil
}
