package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/sleepdriver/go-sleepdriver/pkg/eventlog"
)

// handleStatus returns the latest session snapshot.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	s.snapMu.RLock()
	defer s.snapMu.RUnlock()
	return c.JSON(s.snap)
}

// handleEvents returns recent drowsiness events from the store.
func (s *Server) handleEvents(c *fiber.Ctx) error {
	if s.store == nil {
		return c.JSON([]struct{}{})
	}

	limit := c.QueryInt("limit", 50)
	if limit < 1 || limit > 500 {
		limit = 50
	}

	events, err := s.store.RecentEvents(limit)
	if err != nil {
		return c.Status(500).JSON(fiber.Map{"error": err.Error()})
	}
	if events == nil {
		events = []eventlog.Event{}
	}
	return c.JSON(events)
}

// handleReset requests an administrative reset of the detection state.
func (s *Server) handleReset(c *fiber.Ctx) error {
	if s.OnReset == nil {
		return c.Status(500).JSON(fiber.Map{"error": "reset not configured"})
	}
	s.OnReset()
	return c.JSON(fiber.Map{"reset": true})
}

// handleStatusWS streams JSON snapshots to a dashboard client.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	s.statusHub.Serve(c)
}

// handleFramesWS streams annotated JPEG frames to a viewer.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	s.frameHub.Serve(c)
}
