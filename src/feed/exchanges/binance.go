package exchanges

import (
	"encoding/json"
	"strconv"
	"strings"
	"sync/atomic"

	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Binance feed (wss://stream.binance.com:9443/ws)
//
// Subscriptions are JSON-RPC style SUBSCRIBE/UNSUBSCRIBE frames with
// lowercase "<symbol>@ticker" stream names; symbols have no separator on
// the wire ("BTC-USD" -> "btcusdt" style handled by the caller's symbol
// choice, here we only strip the dash).
// -----------------------------------------------------------------------------

type Binance struct {
	requestID atomic.Int64
}

func NewBinance() *Binance { return &Binance{} }

func (b *Binance) Name() string { return "binance" }

// -----------------------------------------------------------------------------

type binanceRequest struct {
	Method string   `json:"method"`
	Params []string `json:"params"`
	ID     int64    `json:"id"`
}

func (b *Binance) streams(symbols []string) []string {
	out := make([]string, len(symbols))
	for i, s := range symbols {
		out[i] = strings.ToLower(strings.ReplaceAll(s, "-", "")) + "@ticker"
	}
	return out
}

func (b *Binance) FormatSubscribeMessage(symbols []string) any {
	return binanceRequest{Method: "SUBSCRIBE", Params: b.streams(symbols), ID: b.requestID.Add(1)}
}

func (b *Binance) FormatUnsubscribeMessage(symbols []string) any {
	return binanceRequest{Method: "UNSUBSCRIBE", Params: b.streams(symbols), ID: b.requestID.Add(1)}
}

// -----------------------------------------------------------------------------

type binanceTicker struct {
	Event     string `json:"e"`
	EventTime int64  `json:"E"` // milliseconds
	Symbol    string `json:"s"`
	LastPrice string `json:"c"`
	Volume    string `json:"v"`
	BidPrice  string `json:"b"`
	AskPrice  string `json:"a"`
}

func (b *Binance) ParseTickerMessage(raw []byte) *models.MTickData {
	var msg binanceTicker
	if err := json.Unmarshal(raw, &msg); err != nil {
		return nil
	}
	if msg.Event != "24hrTicker" || msg.Symbol == "" || msg.LastPrice == "" {
		return nil
	}

	price, err := strconv.ParseFloat(msg.LastPrice, 64)
	if err != nil {
		return nil
	}

	tick := &models.MTickData{
		Symbol:    msg.Symbol,
		Price:     price,
		Timestamp: msg.EventTime / 1000,
	}
	if v, err := strconv.ParseFloat(msg.Volume, 64); err == nil {
		tick.Volume = v
	}
	if v, err := strconv.ParseFloat(msg.BidPrice, 64); err == nil {
		tick.Bid = v
	}
	if v, err := strconv.ParseFloat(msg.AskPrice, 64); err == nil {
		tick.Ask = v
	}
	return tick
}
