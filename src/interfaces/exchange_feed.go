package interfaces

import "chart-collab/src/models"

// -----------------------------------------------------------------------------
// IExchangeFeed is the per-exchange wire-format capability. The feed core
// depends only on this contract, never on a specific exchange's payloads.
// -----------------------------------------------------------------------------

type IExchangeFeed interface {

	// Name returns the exchange identifier (lowercase, e.g. "coinbase").
	Name() string

	// -----------------------------------------------------------------------------

	// FormatSubscribeMessage builds the upstream subscribe request for the
	// given normalized symbols. The result is JSON-encoded onto the wire.
	FormatSubscribeMessage(symbols []string) any

	// -----------------------------------------------------------------------------

	// FormatUnsubscribeMessage builds the matching unsubscribe request.
	FormatUnsubscribeMessage(symbols []string) any

	// -----------------------------------------------------------------------------

	// ParseTickerMessage turns a raw inbound payload into a tick, or nil
	// when the payload is not a ticker update (heartbeats, acks, noise).
	ParseTickerMessage(raw []byte) *models.MTickData
}
