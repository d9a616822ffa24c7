package models

// -----------------------------------------------------------------------------
// Connection status machine: one MConnectionState per feed adapter,
// mutated only by that adapter, read by any number of status listeners.
// -----------------------------------------------------------------------------

type ConnectionStatus string

const (
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusReconnecting ConnectionStatus = "reconnecting"
	StatusError        ConnectionStatus = "error"
)

// -----------------------------------------------------------------------------

type MConnectionState struct {
	Status            ConnectionStatus `json:"status"`
	Exchange          string           `json:"exchange,omitempty"`
	ReconnectAttempts uint             `json:"reconnect_attempts"`
	Err               string           `json:"error,omitempty"`
}
