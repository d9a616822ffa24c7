package models

// MTickData is a single trade/quote update from a market-data feed.
// Ephemeral: produced by the exchange parser, fanned out to subscribers,
// never persisted. Volume/Bid/Ask are zero when the feed omits them.
type MTickData struct {
	Symbol    string  `json:"symbol"`
	Price     float64 `json:"price"`
	Timestamp int64   `json:"timestamp"` // epoch seconds
	Volume    float64 `json:"volume,omitempty"`
	Bid       float64 `json:"bid,omitempty"`
	Ask       float64 `json:"ask,omitempty"`
}
