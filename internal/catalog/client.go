package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Client talks to the market catalog service with bearer authentication.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

func NewClient(baseURL, token string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		token:      token,
		httpClient: &http.Client{Timeout: 15 * time.Second},
	}
}

// MarketAddresses fetches the list of market addresses to watch.
func (c *Client) MarketAddresses(ctx context.Context) ([]string, error) {
	res, err := c.get(ctx, c.baseURL+"/markets/addresses")
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("market addresses: unexpected status %s", res.Status)
	}

	var addresses []string
	if err := json.NewDecoder(res.Body).Decode(&addresses); err != nil {
		return nil, fmt.Errorf("decode market addresses: %w", err)
	}
	return addresses, nil
}

// CheckOrdersAndFills asks the catalog to reconcile order and fill state for
// one market. The response body is a freshness hint only and is discarded.
func (c *Client) CheckOrdersAndFills(ctx context.Context, market string) error {
	res, err := c.get(ctx, c.baseURL+"/cron/checkOrdersAndFills?marketAddress="+url.QueryEscape(market))
	if err != nil {
		return err
	}
	defer res.Body.Close()
	_, _ = io.Copy(io.Discard, res.Body)

	if res.StatusCode != http.StatusOK {
		return fmt.Errorf("check orders and fills %s: unexpected status %s", market, res.Status)
	}
	return nil
}

func (c *Client) get(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog request: %w", err)
	}
	return res, nil
}
