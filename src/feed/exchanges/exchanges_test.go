package exchanges

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// -----------------------------------------------------------------------------
// Coinbase
// -----------------------------------------------------------------------------

func TestCoinbaseSubscribeMessage(t *testing.T) {
	msg := NewCoinbase().FormatSubscribeMessage([]string{"SOL-USD", "BTC-USD"}).(coinbaseRequest)

	assert.Equal(t, "subscribe", msg.Type)
	assert.Equal(t, []string{"SOL-USD", "BTC-USD"}, msg.ProductIDs)
	assert.Equal(t, []string{"ticker"}, msg.Channels)
}

func TestCoinbaseParseTicker(t *testing.T) {
	raw := []byte(`{
		"type": "ticker",
		"product_id": "SOL-USD",
		"price": "142.55",
		"time": "2024-06-01T12:00:30Z",
		"volume_24h": "120345.8",
		"best_bid": "142.54",
		"best_ask": "142.56"
	}`)

	tick := NewCoinbase().ParseTickerMessage(raw)
	require.NotNil(t, tick)

	assert.Equal(t, "SOL-USD", tick.Symbol)
	assert.Equal(t, 142.55, tick.Price)
	assert.Equal(t, int64(1717243230), tick.Timestamp)
	assert.Equal(t, 120345.8, tick.Volume)
	assert.Equal(t, 142.54, tick.Bid)
	assert.Equal(t, 142.56, tick.Ask)
}

func TestCoinbaseDropsNonTickerFrames(t *testing.T) {
	cb := NewCoinbase()

	assert.Nil(t, cb.ParseTickerMessage([]byte(`{"type":"subscriptions","channels":[]}`)))
	assert.Nil(t, cb.ParseTickerMessage([]byte(`{"type":"heartbeat","product_id":"SOL-USD"}`)))
	assert.Nil(t, cb.ParseTickerMessage([]byte(`{"type":"ticker","product_id":"SOL-USD","price":"abc"}`)))
	assert.Nil(t, cb.ParseTickerMessage([]byte(`not json`)))
}

// -----------------------------------------------------------------------------
// Binance
// -----------------------------------------------------------------------------

func TestBinanceSubscribeMessage(t *testing.T) {
	b := NewBinance()

	first := b.FormatSubscribeMessage([]string{"SOL-USDT", "BTC-USDT"}).(binanceRequest)
	assert.Equal(t, "SUBSCRIBE", first.Method)
	assert.Equal(t, []string{"solusdt@ticker", "btcusdt@ticker"}, first.Params)

	second := b.FormatUnsubscribeMessage([]string{"SOL-USDT"}).(binanceRequest)
	assert.Equal(t, "UNSUBSCRIBE", second.Method)
	assert.Greater(t, second.ID, first.ID, "request ids must be monotonic")
}

func TestBinanceParseTicker(t *testing.T) {
	raw := []byte(`{
		"e": "24hrTicker",
		"E": 1717243230500,
		"s": "SOLUSDT",
		"c": "142.55",
		"v": "98765.4",
		"b": "142.54",
		"a": "142.56"
	}`)

	tick := NewBinance().ParseTickerMessage(raw)
	require.NotNil(t, tick)

	assert.Equal(t, "SOLUSDT", tick.Symbol)
	assert.Equal(t, 142.55, tick.Price)
	assert.Equal(t, int64(1717243230), tick.Timestamp)
	assert.Equal(t, 98765.4, tick.Volume)
}

func TestBinanceDropsNonTickerFrames(t *testing.T) {
	b := NewBinance()

	assert.Nil(t, b.ParseTickerMessage([]byte(`{"result":null,"id":1}`)))
	assert.Nil(t, b.ParseTickerMessage([]byte(`{"e":"trade","s":"SOLUSDT","c":"1"}`)))
}

// -----------------------------------------------------------------------------
// Kraken
// -----------------------------------------------------------------------------

func TestKrakenSubscribeMessage(t *testing.T) {
	msg := NewKraken().FormatSubscribeMessage([]string{"SOL/USD"}).(krakenRequest)

	assert.Equal(t, "subscribe", msg.Event)
	assert.Equal(t, []string{"SOL/USD"}, msg.Pair)
	assert.Equal(t, "ticker", msg.Subscription.Name)
}

func TestKrakenParseTicker(t *testing.T) {
	raw := []byte(`[42,
		{"c":["142.55","0.5"],"v":["1000.0","98765.4"],"b":["142.54","1","1.0"],"a":["142.56","1","1.0"]},
		"ticker",
		"SOL/USD"
	]`)

	tick := NewKraken().ParseTickerMessage(raw)
	require.NotNil(t, tick)

	assert.Equal(t, "SOL/USD", tick.Symbol)
	assert.Equal(t, 142.55, tick.Price)
	assert.Equal(t, 98765.4, tick.Volume)
	assert.Equal(t, 142.54, tick.Bid)
	assert.Equal(t, 142.56, tick.Ask)
	assert.NotZero(t, tick.Timestamp)
}

func TestKrakenDropsEventFrames(t *testing.T) {
	k := NewKraken()

	assert.Nil(t, k.ParseTickerMessage([]byte(`{"event":"heartbeat"}`)))
	assert.Nil(t, k.ParseTickerMessage([]byte(`{"event":"subscriptionStatus","status":"subscribed"}`)))
	assert.Nil(t, k.ParseTickerMessage([]byte(`[42,{"c":[]},"ticker","SOL/USD"]`)))
	assert.Nil(t, k.ParseTickerMessage([]byte(`[42,{},"spread","SOL/USD"]`)))
}
