package server

import (
	"fmt"
	"strings"
	"sync"

	"chart-collab/src/config"
	"chart-collab/src/interfaces"
	"chart-collab/src/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// -----------------------------------------------------------------------------
// Server
//
// Room relay plus candle history proxy. Rooms are created on demand and
// torn down when their last participant leaves.
// -----------------------------------------------------------------------------

type Server struct {
	Config  *config.Config
	Logger  *logger.Logger
	Network interfaces.INetworkManager
	engine  *gin.Engine

	roomsMutex sync.Mutex
	rooms      map[string]*Room
}

// -----------------------------------------------------------------------------
// Constructor
// -----------------------------------------------------------------------------

func NewServer(cfg *config.Config, network interfaces.INetworkManager, logger *logger.Logger) *Server {
	// Set Gin mode
	if cfg.LogLevel != "DEBUG" {
		gin.SetMode(gin.ReleaseMode)
	}

	s := &Server{
		Config:  cfg,
		Logger:  logger,
		Network: network,
		engine:  gin.Default(),
		rooms:   make(map[string]*Room),
	}

	// Add CORS Middleware
	s.engine.Use(func(c *gin.Context) {
		origin := c.Request.Header.Get("Origin")
		if strings.HasPrefix(origin, "http://127.0.0.1:") || strings.HasPrefix(origin, "http://localhost:") {
			c.Writer.Header().Set("Access-Control-Allow-Origin", origin)
		}
		c.Writer.Header().Set("Access-Control-Allow-Credentials", "true")
		c.Writer.Header().Set("Access-Control-Allow-Headers", "Content-Type, Content-Length, Accept-Encoding, X-CSRF-Token, Authorization, accept, origin, Cache-Control, X-Requested-With")
		c.Writer.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS, GET, PUT")

		if c.Request.Method == "OPTIONS" {
			c.AbortWithStatus(204)
			return
		}

		c.Next()
	})

	s.setupRoutes()
	return s
}

// -----------------------------------------------------------------------------
// Route Setup
// -----------------------------------------------------------------------------

func (s *Server) setupRoutes() {
	// REST API endpoints
	s.engine.POST("/rooms/create", s.createRoom)
	s.engine.GET("/candles", s.getCandles)
	s.engine.GET("/api/health", s.getHealth)

	// WebSocket endpoint
	s.engine.GET("/rooms/join", s.joinRoom)
}

// -----------------------------------------------------------------------------
// Server Lifecycle
// -----------------------------------------------------------------------------

func (s *Server) Start() error {
	addr := fmt.Sprintf("%s:%d", s.Config.Host, s.Config.Port)
	s.Logger.Info("Starting server on %s", addr)

	return s.engine.Run(addr)
}

// -----------------------------------------------------------------------------
// Route Handlers
// -----------------------------------------------------------------------------

func (s *Server) createRoom(c *gin.Context) {
	roomID := uuid.NewString()

	room := newRoom(roomID, s)
	s.roomsMutex.Lock()
	s.rooms[roomID] = room
	s.roomsMutex.Unlock()
	go room.run()

	s.Logger.Info("Room %s created", roomID)

	c.JSON(200, gin.H{
		"roomId": roomID,
		"url":    fmt.Sprintf("http://%s/rooms/join?roomId=%s", c.Request.Host, roomID),
	})
}

// -----------------------------------------------------------------------------

func (s *Server) getHealth(c *gin.Context) {
	s.roomsMutex.Lock()
	rooms := len(s.rooms)
	s.roomsMutex.Unlock()

	c.JSON(200, gin.H{
		"status": "ok",
		"rooms":  rooms,
	})
}

// -----------------------------------------------------------------------------
// Room Registry Helpers
// -----------------------------------------------------------------------------

func (s *Server) room(id string) (*Room, bool) {
	s.roomsMutex.Lock()
	defer s.roomsMutex.Unlock()
	room, ok := s.rooms[id]
	return room, ok
}

// -----------------------------------------------------------------------------

func (s *Server) removeRoom(id string) {
	s.roomsMutex.Lock()
	delete(s.rooms, id)
	s.roomsMutex.Unlock()
	s.Logger.Info("Room %s closed", id)
}
