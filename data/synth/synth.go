// Package synth talks to the synthetic market feed, a small HTTP
// service that serves one in-progress candle per poll. Handy for
// exercising the live loop without a market data subscription.
package synth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/battrading/bat/market"
)

type Client struct {
	BaseURL string
	APIKey  string
	HTTP    *http.Client
}

func NewClient(baseURL, apiKey string) (*Client, error) {
	if apiKey == "" {
		return nil, errors.New("synth: api key is required")
	}
	return &Client{BaseURL: strings.TrimRight(baseURL, "/"), APIKey: apiKey}, nil
}

type candleMsg struct {
	Symbol   string `json:"symbol"`
	Interval string `json:"interval"`
	Candle   struct {
		Timestamp int64   `json:"timestamp"`
		Open      float64 `json:"open"`
		High      float64 `json:"high"`
		Low       float64 `json:"low"`
		Close     float64 `json:"close"`
		Volume    float64 `json:"volume"`
	} `json:"candle"`
}

// GetLiveData returns the feed's current 1-minute candle. The service
// has no history endpoint, so lookback beyond 1 is satisfied by the
// caller's rolling window.
func (c *Client) GetLiveData(ctx context.Context, ticker string, _ int) ([]market.Bar, error) {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	u := fmt.Sprintf("%s/candles/%s/1m?api_key=%s",
		c.BaseURL, strings.ToLower(ticker), url.QueryEscape(c.APIKey))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return nil, fmt.Errorf("synth: http %d: %s", resp.StatusCode, strings.TrimSpace(string(b)))
	}

	var msg candleMsg
	if err := json.NewDecoder(resp.Body).Decode(&msg); err != nil {
		return nil, fmt.Errorf("synth: bad response: %w", err)
	}

	bar := market.Bar{
		Time:   time.Unix(msg.Candle.Timestamp, 0).UTC(),
		Open:   msg.Candle.Open,
		High:   msg.Candle.High,
		Low:    msg.Candle.Low,
		Close:  msg.Candle.Close,
		Volume: msg.Candle.Volume,
	}
	if err := bar.Validate(); err != nil {
		return nil, fmt.Errorf("synth: %w", err)
	}
	return []market.Bar{bar}, nil
}

// GetData is served by the live endpoint; the feed keeps no history.
func (c *Client) GetData(ctx context.Context, ticker, _ string, _, _ time.Time, _ int) ([]market.Bar, error) {
	return c.GetLiveData(ctx, ticker, 1)
}
