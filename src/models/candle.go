package models

// -----------------------------------------------------------------------------
// Candlestick and interval definitions
// -----------------------------------------------------------------------------

// MCandlestick is one OHLC bar. Time is the bucket start in epoch seconds
// and keys the bar within a (symbol, exchange, interval) series.
type MCandlestick struct {
	Time   int64   `json:"time"`
	Open   float64 `json:"open"`
	High   float64 `json:"high"`
	Low    float64 `json:"low"`
	Close  float64 `json:"close"`
	Volume float64 `json:"volume,omitempty"`
}

// -----------------------------------------------------------------------------

// IntervalSeconds maps a timeframe key to its bucket length in seconds.
var IntervalSeconds = map[string]int64{
	"1m":  60,
	"5m":  5 * 60,
	"15m": 15 * 60,
	"1H":  60 * 60,
	"4H":  4 * 60 * 60,
	"1D":  24 * 60 * 60,
	"1W":  7 * 24 * 60 * 60,
}
