package binance

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const spotExchangeInfo = `{
	"timezone": "UTC",
	"serverTime": 1695000000123,
	"symbols": [
		{
			"symbol": "BTCUSDT",
			"status": "TRADING",
			"baseAsset": "BTC",
			"quoteAsset": "USDT",
			"filters": [
				{"filterType": "PRICE_FILTER", "tickSize": "0.01000000"},
				{"filterType": "LOT_SIZE", "stepSize": "0.00001000"},
				{"filterType": "MIN_NOTIONAL"}
			]
		},
		{
			"symbol": "OLDUSDT",
			"status": "BREAK",
			"baseAsset": "OLD",
			"quoteAsset": "USDT",
			"filters": []
		}
	]
}`

const futuresExchangeInfo = `{
	"timezone": "UTC",
	"serverTime": 1695000000123,
	"symbols": [
		{
			"symbol": "ETHUSDT",
			"status": "TRADING",
			"baseAsset": "ETH",
			"quoteAsset": "USDT",
			"pricePrecision": 2,
			"quantityPrecision": 3
		}
	]
}`

func TestInstrumentProviderSpot(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(spotExchangeInfo))
	}))
	defer srv.Close()

	cfg := testConfig(AccountTypeSpot)
	cfg.BaseURLHTTP = srv.URL
	client, err := NewExecClient(NewCaches(), cfg)
	require.NoError(t, err)

	provider := client.Instruments()
	require.NoError(t, provider.Load(context.Background()))
	assert.Equal(t, "/api/v3/exchangeInfo", gotPath)

	require.Equal(t, 1, provider.Count(), "non-trading symbols are skipped")

	inst, ok := provider.Instrument("BTCUSDT")
	require.True(t, ok)
	assert.Equal(t, "BTCUSDT", inst.ID)
	assert.Equal(t, Venue, inst.Venue)
	assert.Equal(t, int32(2), inst.PricePrecision)
	assert.Equal(t, int32(5), inst.SizePrecision)

	_, ok = provider.Instrument("OLDUSDT")
	assert.False(t, ok)
}

func TestInstrumentProviderFutures(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(futuresExchangeInfo))
	}))
	defer srv.Close()

	cfg := testConfig(AccountTypeFuturesUSDT)
	cfg.BaseURLHTTP = srv.URL
	client, err := NewExecClient(NewCaches(), cfg)
	require.NoError(t, err)

	provider := client.Instruments()
	require.NoError(t, provider.Load(context.Background()))
	assert.Equal(t, "/fapi/v1/exchangeInfo", gotPath)

	inst, ok := provider.Instrument("ETHUSDT")
	require.True(t, ok)
	assert.Equal(t, int32(2), inst.PricePrecision)
	assert.Equal(t, int32(3), inst.SizePrecision)
}

func TestInstrumentProviderReloadReplaces(t *testing.T) {
	payload := spotExchangeInfo
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(payload))
	}))
	defer srv.Close()

	cfg := testConfig(AccountTypeSpot)
	cfg.BaseURLHTTP = srv.URL
	client, err := NewExecClient(NewCaches(), cfg)
	require.NoError(t, err)

	provider := client.Instruments()
	require.NoError(t, provider.Load(context.Background()))
	require.Equal(t, 1, provider.Count())

	payload = `{"timezone":"UTC","serverTime":1,"symbols":[]}`
	require.NoError(t, provider.Load(context.Background()))
	assert.Equal(t, 0, provider.Count(), "reload replaces rather than merges")
}

func TestPrecisionFromStep(t *testing.T) {
	cases := []struct {
		step string
		want int32
	}{
		{"0.01000000", 2},
		{"0.00001000", 5},
		{"1.00000000", 0},
		{"1", 0},
		{"0.1", 1},
	}
	for _, c := range cases {
		got, err := precisionFromStep(c.step)
		require.NoError(t, err, c.step)
		assert.Equal(t, c.want, got, c.step)
	}

	_, err := precisionFromStep("abc")
	assert.Error(t, err)
}
