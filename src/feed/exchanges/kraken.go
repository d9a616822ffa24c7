package exchanges

import (
	"encoding/json"
	"strconv"
	"time"

	"chart-collab/src/models"
)

// -----------------------------------------------------------------------------
// Kraken feed (wss://ws.kraken.com)
//
// Subscribe/unsubscribe are event frames with a pair list; ticker updates
// arrive as 4-element arrays [channelID, data, "ticker", pair], which is
// why parsing goes through raw JSON fragments.
// -----------------------------------------------------------------------------

type Kraken struct{}

func NewKraken() *Kraken { return &Kraken{} }

func (k *Kraken) Name() string { return "kraken" }

// -----------------------------------------------------------------------------

type krakenSubscription struct {
	Name string `json:"name"`
}

type krakenRequest struct {
	Event        string             `json:"event"`
	Pair         []string           `json:"pair"`
	Subscription krakenSubscription `json:"subscription"`
}

func (k *Kraken) FormatSubscribeMessage(symbols []string) any {
	return krakenRequest{Event: "subscribe", Pair: symbols, Subscription: krakenSubscription{Name: "ticker"}}
}

func (k *Kraken) FormatUnsubscribeMessage(symbols []string) any {
	return krakenRequest{Event: "unsubscribe", Pair: symbols, Subscription: krakenSubscription{Name: "ticker"}}
}

// -----------------------------------------------------------------------------

type krakenTickerData struct {
	C []string `json:"c"` // [price, lot volume]
	V []string `json:"v"` // [today, 24h]
	B []string `json:"b"` // [bid, whole lot volume, lot volume]
	A []string `json:"a"` // [ask, whole lot volume, lot volume]
}

func (k *Kraken) ParseTickerMessage(raw []byte) *models.MTickData {
	var frame []json.RawMessage
	if err := json.Unmarshal(raw, &frame); err != nil {
		return nil // event frames (acks, heartbeats) are objects, not arrays
	}
	if len(frame) != 4 {
		return nil
	}

	var channel string
	if err := json.Unmarshal(frame[2], &channel); err != nil || channel != "ticker" {
		return nil
	}

	var pair string
	if err := json.Unmarshal(frame[3], &pair); err != nil || pair == "" {
		return nil
	}

	var data krakenTickerData
	if err := json.Unmarshal(frame[1], &data); err != nil {
		return nil
	}
	if len(data.C) == 0 {
		return nil
	}

	price, err := strconv.ParseFloat(data.C[0], 64)
	if err != nil {
		return nil
	}

	tick := &models.MTickData{
		Symbol:    pair,
		Price:     price,
		Timestamp: time.Now().Unix(), // kraken ticker frames carry no timestamp
	}
	if len(data.V) > 1 {
		if v, err := strconv.ParseFloat(data.V[1], 64); err == nil {
			tick.Volume = v
		}
	}
	if len(data.B) > 0 {
		if v, err := strconv.ParseFloat(data.B[0], 64); err == nil {
			tick.Bid = v
		}
	}
	if len(data.A) > 0 {
		if v, err := strconv.ParseFloat(data.A[0], 64); err == nil {
			tick.Ask = v
		}
	}
	return tick
}
