// Package web provides a real-time dashboard for the drowsiness
// monitor: current status, event history, live annotated frames, and
// the administrative reset.
package web

import (
	"sync"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/sleepdriver/go-sleepdriver/internal/log"
	"github.com/sleepdriver/go-sleepdriver/pkg/eventlog"
	"github.com/sleepdriver/go-sleepdriver/pkg/hub"
	"github.com/sleepdriver/go-sleepdriver/pkg/monitor"
)

// Server is the dashboard server. It observes the session through
// snapshots and frames; it never mutates detection state except via
// the reset callback.
type Server struct {
	app  *fiber.App
	port string

	// Latest snapshot for the status endpoint
	snap   monitor.Snapshot
	snapMu sync.RWMutex

	// Hubs for websocket broadcast
	statusHub *hub.Hub
	frameHub  *hub.Hub

	// Store for the event history endpoint; nil disables it
	store *eventlog.Store

	// OnReset is invoked by POST /api/reset
	OnReset func()
}

// NewServer creates a dashboard server on the given port.
func NewServer(port string, store *eventlog.Store) *Server {
	s := &Server{
		port:      port,
		statusHub: hub.New("status"),
		frameHub:  hub.New("frames"),
		store:     store,
	}

	app := fiber.New(fiber.Config{
		AppName:               "SleepDriver Dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	// Static files
	app.Static("/", "./web")

	// API routes
	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Get("/events", s.handleEvents)
	api.Post("/reset", s.handleReset)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	// WebSocket routes
	app.Get("/ws/status", websocket.New(s.handleStatusWS))
	app.Get("/ws/frames", websocket.New(s.handleFramesWS))

	s.app = app
	return s
}

// Start starts the web server and its broadcast hubs. Blocks.
func (s *Server) Start() error {
	log.Info("dashboard listening", "addr", "http://localhost:"+s.port)

	go s.statusHub.Run()
	go s.frameHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("dashboard server error", "error", err)
		}
	}()
}

// PublishSnapshot records the latest session state and broadcasts it
// to status stream subscribers. Called once per processed frame.
func (s *Server) PublishSnapshot(snap monitor.Snapshot) {
	s.snapMu.Lock()
	s.snap = snap
	s.snapMu.Unlock()

	s.statusHub.BroadcastJSON(snap)
}

// PublishFrame broadcasts an annotated JPEG frame to stream viewers.
func (s *Server) PublishFrame(jpeg []byte) {
	if s.frameHub.ClientCount() == 0 {
		return
	}
	s.frameHub.BroadcastBinary(jpeg)
}

// Shutdown gracefully stops the web server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
