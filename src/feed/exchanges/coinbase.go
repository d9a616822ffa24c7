package exchanges

import (
	"encoding/json"
	"strconv"
	"time"

	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Coinbase Exchange feed (wss://ws-feed.exchange.coinbase.com)
//
// Subscribe/unsubscribe use the "ticker" channel keyed by product_ids;
// inbound ticker frames carry string-encoded numerics and an RFC3339 time.
// -----------------------------------------------------------------------------

type Coinbase struct{}

func NewCoinbase() *Coinbase { return &Coinbase{} }

func (c *Coinbase) Name() string { return "coinbase" }

// -----------------------------------------------------------------------------

type coinbaseRequest struct {
	Type       string   `json:"type"`
	ProductIDs []string `json:"product_ids"`
	Channels   []string `json:"channels"`
}

func (c *Coinbase) FormatSubscribeMessage(symbols []string) any {
	return coinbaseRequest{Type: "subscribe", ProductIDs: symbols, Channels: []string{"ticker"}}
}

func (c *Coinbase) FormatUnsubscribeMessage(symbols []string) any {
	return coinbaseRequest{Type: "unsubscribe", ProductIDs: symbols, Channels: []string{"ticker"}}
}

// -----------------------------------------------------------------------------

type coinbaseTicker struct {
	Type      string `json:"type"`
	ProductID string `json:"product_id"`
	Price     string `json:"price"`
	Time      string `json:"time"`
	Volume24h string `json:"volume_24h"`
	BestBid   string `json:"best_bid"`
	BestAsk   string `json:"best_ask"`
}

// ParseTickerMessage returns nil for anything that is not a ticker frame
// with a usable price (subscription acks, heartbeats, errors).
func (c *Coinbase) ParseTickerMessage(raw []byte) *models.MTickData {
	var msg coinbaseTicker
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}
	if msg.Type != "ticker" || msg.ProductID == "" || msg.Price == "" {
		return nil
	}

	price, err := strconv.ParseFloat(msg.Price, 64)
	if err != nil {
		return nil
	}

	ts := time.Now().Unix()
	if msg.Time != "" {
		if parsed, err := time.Parse(time.RFC3339, msg.Time); err == nil {
			ts = parsed.Unix()
		}
	}

	tick := &models.MTickData{
		Symbol:    msg.ProductID,
		Price:     price,
		Timestamp: ts,
	}
	if v, err := strconv.ParseFloat(msg.Volume24h, 64); err == nil {
		tick.Volume = v
	}
	if v, err := strconv.ParseFloat(msg.BestBid, 64); err == nil {
		tick.Bid = v
	}
	if v, err := strconv.ParseFloat(msg.BestAsk, 64); err == nil {
		tick.Ask = v
	}
	return tick
}
