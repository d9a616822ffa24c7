package server

import (
	"net/http"

	"chart-collab/src/models"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

// -----------------------------------------------------------------------------
// Hub Pattern Implementation
//
// One hub goroutine per room. The server never inspects action payloads;
// it relays every message to the other participants and injects the
// USER_JOINED / USER_LEFT announcements itself.
// -----------------------------------------------------------------------------

type Room struct {
	id     string
	server *Server

	clients    map[*Client]struct{}
	broadcast  chan inbound
	register   chan *Client
	unregister chan *Client
}

type inbound struct {
	sender *Client
	action models.MAction
}

// -----------------------------------------------------------------------------

func newRoom(id string, s *Server) *Room {
	return &Room{
		id:      id,
		server:  s,
		clients: make(map[*Client]struct{}),
		// Buffered channel to prevent blocking readPumps during bursts
		broadcast:  make(chan inbound, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// -----------------------------------------------------------------------------

// run is the main Hub loop; it exits when the last participant leaves.
func (r *Room) run() {
	for {
		select {
		case client := <-r.register:
			r.clients[client] = struct{}{}
			r.server.Logger.Info("Room %s: %s joined (%d participants)",
				r.id, client.displayName, len(r.clients))

			if action, err := models.NewAction(models.ActionUserJoined,
				models.MUserPayload{DisplayName: client.displayName}); err == nil {
				r.relay(client, action)
			}

		case client := <-r.unregister:
			if _, ok := r.clients[client]; ok {
				delete(r.clients, client)
				close(client.send)

				if action, err := models.NewAction(models.ActionUserLeft,
					models.MUserPayload{DisplayName: client.displayName}); err == nil {
					r.relay(client, action)
				}
			}

			if len(r.clients) == 0 {
				r.server.removeRoom(r.id)
				return
			}

		case message := <-r.broadcast:
			r.relay(message.sender, message.action)
		}
	}
}

// -----------------------------------------------------------------------------

// relay forwards to every participant except the sender.
func (r *Room) relay(sender *Client, action models.MAction) {
	for client := range r.clients {
		if client == sender {
			continue
		}
		select {
		case client.send <- action:
			// Message sent successfully
		default:
			// Client too slow, disconnect to prevent Hub blocking
			delete(r.clients, client)
			close(client.send)
		}
	}
}

// -----------------------------------------------------------------------------
// WebSocket Handler
// -----------------------------------------------------------------------------

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin:     func(r *http.Request) bool { return true },
}

// -----------------------------------------------------------------------------

func (s *Server) joinRoom(c *gin.Context) {
	roomID := c.Query("roomId")
	displayName := c.Query("displayName")
	if roomID == "" || displayName == "" {
		c.JSON(400, gin.H{"error": "roomId and displayName are required"})
		return
	}

	room, ok := s.room(roomID)
	if !ok {
		c.JSON(404, gin.H{"error": "room not found"})
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		s.Logger.Info("Failed to upgrade websocket: %v", err)
		return
	}

	client := &Client{
		room:        room,
		conn:        conn,
		displayName: displayName,
		// Buffered channel to prevent blocking the Hub loop
		send: make(chan models.MAction, 256),
	}

	room.register <- client

	// Start goroutines for reading/writing
	go client.writePump()
	go client.readPump()
}
