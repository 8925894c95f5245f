// Package alpaca is the Alpaca trading API adapter. Orders placed here
// hit a real (paper or live) account; the runners only see the
// broker.Gateway surface.
package alpaca

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/battrading/bat/broker"
	"github.com/battrading/bat/ledger"
)

type Client struct {
	BaseURL string // e.g. https://paper-api.alpaca.markets
	Key     string
	Secret  string
	HTTP    *http.Client
}

// BaseURL maps an environment name to the trading API host. Live
// trading must be asked for explicitly.
func BaseURL(env string) (string, error) {
	switch strings.ToLower(strings.TrimSpace(env)) {
	case "paper", "":
		return "https://paper-api.alpaca.markets", nil
	case "live":
		return "https://api.alpaca.markets", nil
	default:
		return "", fmt.Errorf("unknown alpaca env %q (want paper|live)", env)
	}
}

func NewClient(baseURL, key, secret string) (*Client, error) {
	if key == "" || secret == "" {
		return nil, errors.New("alpaca: missing API key or secret")
	}
	return &Client{BaseURL: baseURL, Key: key, Secret: secret}, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	httpClient := c.HTTP
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	var rdr io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rdr = bytes.NewReader(b)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, rdr)
	if err != nil {
		return err
	}
	req.Header.Set("APCA-API-KEY-ID", c.Key)
	req.Header.Set("APCA-API-SECRET-KEY", c.Secret)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		// Surface the API's error message verbatim.
		b, _ := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
		return fmt.Errorf("alpaca %s %s: http %d: %s",
			method, path, resp.StatusCode, strings.TrimSpace(string(b)))
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Alpaca quotes monetary fields as JSON strings.
type orderJSON struct {
	ID             string `json:"id"`
	Symbol         string `json:"symbol"`
	Qty            string `json:"qty"`
	Side           string `json:"side"`
	Type           string `json:"type"`
	Status         string `json:"status"`
	LimitPrice     string `json:"limit_price"`
	FilledAvgPrice string `json:"filled_avg_price"`
}

type positionJSON struct {
	Symbol        string `json:"symbol"`
	Qty           string `json:"qty"`
	Side          string `json:"side"`
	AvgEntryPrice string `json:"avg_entry_price"`
	MarketValue   string `json:"market_value"`
	UnrealizedPL  string `json:"unrealized_pl"`
}

type accountJSON struct {
	ID             string `json:"id"`
	Equity         string `json:"equity"`
	BuyingPower    string `json:"buying_power"`
	PortfolioValue string `json:"portfolio_value"`
	Cash           string `json:"cash"`
}

func (c *Client) Buy(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	return c.submit(ctx, broker.SideBuy, req)
}

func (c *Client) Sell(ctx context.Context, req broker.OrderRequest) (broker.Order, error) {
	return c.submit(ctx, broker.SideSell, req)
}

func (c *Client) submit(ctx context.Context, side broker.OrderSide, req broker.OrderRequest) (broker.Order, error) {
	body := map[string]string{
		"symbol":        req.Symbol,
		"qty":           strconv.FormatFloat(req.Qty, 'f', -1, 64),
		"side":          string(side),
		"type":          string(req.Type),
		"time_in_force": "gtc",
	}
	if req.Type == broker.Limit && req.LimitPrice > 0 {
		body["limit_price"] = strconv.FormatFloat(req.LimitPrice, 'f', -1, 64)
	}

	var oj orderJSON
	if err := c.do(ctx, http.MethodPost, "/v2/orders", body, &oj); err != nil {
		return broker.Order{}, err
	}
	return oj.order(), nil
}

func (c *Client) ClosePosition(ctx context.Context, symbol string) (broker.Order, error) {
	var oj orderJSON
	path := "/v2/positions/" + pathSymbol(symbol)
	if err := c.do(ctx, http.MethodDelete, path, nil, &oj); err != nil {
		return broker.Order{}, err
	}
	return oj.order(), nil
}

func (c *Client) CancelOrder(ctx context.Context, orderID string) error {
	return c.do(ctx, http.MethodDelete, "/v2/orders/"+orderID, nil, nil)
}

func (c *Client) GetPositionForSymbol(ctx context.Context, symbol string) (broker.Position, error) {
	var pj positionJSON
	path := "/v2/positions/" + pathSymbol(symbol)
	err := c.do(ctx, http.MethodGet, path, nil, &pj)
	if err != nil {
		// Alpaca answers 404 for "no position"; that is flat, not a failure.
		if strings.Contains(err.Error(), "http 404") {
			return broker.Position{Symbol: symbol, Side: ledger.Flat}, nil
		}
		return broker.Position{}, err
	}

	p := broker.Position{
		Symbol:        symbol,
		Qty:           num(pj.Qty),
		AvgEntryPrice: num(pj.AvgEntryPrice),
		MarketValue:   num(pj.MarketValue),
		UnrealizedPL:  num(pj.UnrealizedPL),
	}
	if pj.Side == "short" {
		p.Side = ledger.Short
	} else if p.Qty != 0 {
		p.Side = ledger.Long
	}
	return p.Normalize(), nil
}

func (c *Client) GetAccount(ctx context.Context) (broker.Account, error) {
	var aj accountJSON
	if err := c.do(ctx, http.MethodGet, "/v2/account", nil, &aj); err != nil {
		return broker.Account{}, err
	}
	return broker.Account{
		ID:             aj.ID,
		Equity:         num(aj.Equity),
		BuyingPower:    num(aj.BuyingPower),
		PortfolioValue: num(aj.PortfolioValue),
		Cash:           num(aj.Cash),
	}, nil
}

func (oj orderJSON) order() broker.Order {
	o := broker.Order{
		ID:          oj.ID,
		Symbol:      oj.Symbol,
		Side:        broker.OrderSide(oj.Side),
		Qty:         num(oj.Qty),
		Type:        broker.OrderType(oj.Type),
		LimitPrice:  num(oj.LimitPrice),
		FilledPrice: num(oj.FilledAvgPrice),
	}
	switch oj.Status {
	case "filled":
		o.Status = broker.StatusFilled
	case "canceled":
		o.Status = broker.StatusCanceled
	case "rejected":
		o.Status = broker.StatusFailed
	default:
		// new/accepted/partially_filled all count as in flight.
		o.Status = broker.StatusPending
	}
	return o
}

// pathSymbol drops the slash in crypto pairs for URL paths (BTC/USD →
// BTCUSD), matching the positions endpoint's symbol format.
func pathSymbol(symbol string) string {
	return strings.ReplaceAll(symbol, "/", "")
}

func num(s string) float64 {
	if s == "" {
		return 0
	}
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0
	}
	return f
}
