package collab

import (
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Room session transport. The engine talks to the room server through
// this narrow surface so tests can swap in an in-memory pipe.
// -----------------------------------------------------------------------------

type SessionConn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// -----------------------------------------------------------------------------

type SessionDialer func(url string) (SessionConn, error)

// DefaultSessionDialer dials the room server over a websocket.
func DefaultSessionDialer(url string) (SessionConn, error) {
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		return nil, err
	}
	return conn, nil
}
