// Package alpaca fetches OHLCV bars from the Alpaca market-data API,
// covering both the crypto and stock endpoints behind one provider.
package alpaca

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/battrading/bat/market"
)

const DefaultBaseURL = "https://data.alpaca.markets"

type Client struct {
	BaseURL string
	Key     string
	Secret  string
	HTTP    *http.Client
}

func NewClient(key, secret string) *Client {
	return &Client{BaseURL: DefaultBaseURL, Key: key, Secret: secret}
}

type barJSON struct {
	T time.Time `json:"t"`
	O float64   `json:"o"`
	H float64   `json:"h"`
	L float64   `json:"l"`
	C float64   `json:"c"`
	V float64   `json:"v"`
}

type barsResponse struct {
	Bars map[string][]barJSON `json:"bars"`
}

// GetData fetches historical bars. timeframe uses Alpaca notation
// (1Min, 5Min, 1Hour, 1Day); an empty timeframe means 1Min.
func (c *Client) GetData(ctx context.Context, ticker, timeframe string, start, end time.Time, limit int) ([]market.Bar, error) {
	if timeframe == "" {
		timeframe = "1Min"
	}

	q := url.Values{}
	q.Set("symbols", ticker)
	q.Set("timeframe", timeframe)
	if !start.IsZero() {
		q.Set("start", start.UTC().Format(time.RFC3339))
	}
	if !end.IsZero() {
		q.Set("end", end.UTC().Format(time.RFC3339))
	}
	if limit > 0 {
		q.Set("limit", strconv.Itoa(limit))
	}

	path := "/v2/stocks/bars"
	if market.Classify(ticker) != market.Stock {
		path = "/v1beta3/crypto/us/bars"
	}

	var resp barsResponse
	if err := c.get(ctx, path, q, &resp); err != nil {
		return nil, err
	}

	rows := resp.Bars[ticker]
	bars := make([]market.Bar, 0, len(rows))
	for _, r := range rows {
		bars = append(bars, market.Bar{
			Time: r.T, Open: r.O, High: r.H, Low: r.L, Close: r.C, Volume: r.V,
		})
	}

	// The API documents ascending order; sort defensively and drop
	// duplicate timestamps so the provider contract always holds.
	sort.Slice(bars, func(i, j int) bool { return bars[i].Time.Before(bars[j].Time) })
	out := bars[:0]
	for i, b := range bars {
		if i > 0 && !b.Time.After(out[len(out)-1].Time) {
			continue
		}
		out = append(out, b)
	}
	return out, nil
}

// GetLiveData fetches the latest lookback minute bars.
func (c *Client) GetLiveData(ctx context.Context, ticker string, lookback int) ([]market.Bar, error) {
	if lookback <= 0 {
		lookback = 1
	}
	start := time.Now().UTC().Add(-time.Duration(lookback+5) * time.Minute)
	bars, err := c.GetData(ctx, ticker, "1Min", start, time.Time{}, lookback)
	if err != nil {
		return nil, err
	}
	if len(bars) > lookback {
		bars = bars[len(bars)-lookback:]
	}
	return bars, nil
}

func (c *Client) get(ctx context.Context, path string, q url.Values, out any) error {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+path+"?"+q.Encode(), nil)
	if err != nil {
		return err
	}
	req.Header.Set("APCA-API-KEY-ID", c.Key)
	req.Header.Set("APCA-API-SECRET-KEY", c.Secret)

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("alpaca data %s: http %d: %s", path, resp.StatusCode, strings.TrimSpace(string(b)))
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
