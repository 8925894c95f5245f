package alpaca

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/battrading/bat/broker"
	"github.com/battrading/bat/ledger"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL, "key", "secret")
	require.NoError(t, err)
	return c
}

func TestBaseURL(t *testing.T) {
	t.Parallel()

	u, err := BaseURL("paper")
	require.NoError(t, err)
	assert.Equal(t, "https://paper-api.alpaca.markets", u)

	u, err = BaseURL("")
	require.NoError(t, err)
	assert.Equal(t, "https://paper-api.alpaca.markets", u, "default is paper")

	u, err = BaseURL("live")
	require.NoError(t, err)
	assert.Equal(t, "https://api.alpaca.markets", u)

	_, err = BaseURL("prod")
	assert.Error(t, err)
}

func TestMissingCredentials(t *testing.T) {
	t.Parallel()

	_, err := NewClient("http://example.test", "", "secret")
	assert.Error(t, err)
}

func TestBuySubmitsOrder(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/v2/orders", r.URL.Path)
		assert.Equal(t, "key", r.Header.Get("APCA-API-KEY-ID"))
		assert.Equal(t, "secret", r.Header.Get("APCA-API-SECRET-KEY"))

		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "AAPL", body["symbol"])
		assert.Equal(t, "10", body["qty"])
		assert.Equal(t, "buy", body["side"])
		assert.Equal(t, "market", body["type"])
		assert.Equal(t, "gtc", body["time_in_force"])

		w.Write([]byte(`{"id":"o-1","symbol":"AAPL","qty":"10","side":"buy","type":"market","status":"filled","filled_avg_price":"101.25"}`))
	})

	order, err := c.Buy(context.Background(), broker.OrderRequest{Symbol: "AAPL", Qty: 10, Type: broker.Market})
	require.NoError(t, err)

	assert.Equal(t, "o-1", order.ID)
	assert.Equal(t, broker.StatusFilled, order.Status)
	assert.Equal(t, 101.25, order.FilledPrice)
	assert.Equal(t, 10.0, order.Qty)
}

func TestLimitOrderCarriesPrice(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "limit", body["type"])
		assert.Equal(t, "99.5", body["limit_price"])

		w.Write([]byte(`{"id":"o-2","symbol":"AAPL","qty":"10","side":"sell","type":"limit","status":"new","limit_price":"99.5"}`))
	})

	order, err := c.Sell(context.Background(), broker.OrderRequest{Symbol: "AAPL", Qty: 10, Type: broker.Limit, LimitPrice: 99.5})
	require.NoError(t, err)
	assert.Equal(t, broker.StatusPending, order.Status, "new counts as in flight")
	assert.Equal(t, 99.5, order.LimitPrice)
}

func TestGetPositionNotFoundIsFlat(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"position does not exist"}`, http.StatusNotFound)
	})

	pos, err := c.GetPositionForSymbol(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.Equal(t, ledger.Flat, pos.Side)
	assert.Zero(t, pos.Qty)
}

func TestGetPositionShort(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/positions/BTCUSD", r.URL.Path, "slash stripped for crypto")
		w.Write([]byte(`{"symbol":"BTCUSD","qty":"-0.5","side":"short","avg_entry_price":"50000","market_value":"-24000","unrealized_pl":"1000"}`))
	})

	pos, err := c.GetPositionForSymbol(context.Background(), "BTC/USD")
	require.NoError(t, err)
	assert.Equal(t, ledger.Short, pos.Side)
	assert.Equal(t, 0.5, pos.Qty, "normalized to positive")
	assert.Equal(t, 50_000.0, pos.AvgEntryPrice)
	assert.Equal(t, 1000.0, pos.UnrealizedPL)
}

func TestGetAccount(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v2/account", r.URL.Path)
		w.Write([]byte(`{"id":"acct-1","equity":"10500.50","buying_power":"21001","portfolio_value":"10500.50","cash":"400.25"}`))
	})

	acct, err := c.GetAccount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "acct-1", acct.ID)
	assert.Equal(t, 10_500.50, acct.Equity)
	assert.Equal(t, 21_001.0, acct.BuyingPower)
	assert.Equal(t, 400.25, acct.Cash)
}

func TestAPIErrorSurfacedVerbatim(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"message":"insufficient buying power"}`, http.StatusForbidden)
	})

	_, err := c.Buy(context.Background(), broker.OrderRequest{Symbol: "AAPL", Qty: 10, Type: broker.Market})
	require.Error(t, err)
	assert.ErrorContains(t, err, "403")
	assert.ErrorContains(t, err, "insufficient buying power")
}

func TestCancelOrder(t *testing.T) {
	t.Parallel()

	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodDelete, r.Method)
		assert.Equal(t, "/v2/orders/o-9", r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	assert.NoError(t, c.CancelOrder(context.Background(), "o-9"))
}
