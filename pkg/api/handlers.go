package api

import (
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/view"
)

// PatchViewRequest is the body of PATCH /api/view; omitted fields are kept
type PatchViewRequest struct {
	Yaw      *float64    `json:"yaw"`
	Pitch    *float64    `json:"pitch"`
	Position *mgl64.Vec3 `json:"position"`
}

// LookAtRequest is the body of POST /api/view/look-at
type LookAtRequest struct {
	Point *mgl64.Vec3 `json:"point"`
}

func (s *Server) handleHealth(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}

// handleGetView returns the last published view snapshot
func (s *Server) handleGetView(c *fiber.Ctx) error {
	return c.JSON(s.views.Snapshot())
}

func (s *Server) handlePatchView(c *fiber.Ctx) error {
	var req PatchViewRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body: "+err.Error())
	}
	if req.Yaw == nil && req.Pitch == nil && req.Position == nil {
		return badRequest(c, "expected at least one of yaw, pitch, position")
	}
	return s.submit(c, view.SetPose(req.Yaw, req.Pitch, req.Position))
}

func (s *Server) handleReset(c *fiber.Ctx) error {
	return s.submit(c, view.ResetView())
}

func (s *Server) handleLookAt(c *fiber.Ctx) error {
	var req LookAtRequest
	if err := c.BodyParser(&req); err != nil {
		return badRequest(c, "invalid body: "+err.Error())
	}
	if req.Point == nil {
		return badRequest(c, "point is required")
	}
	return s.submit(c, view.LookAtPoint(*req.Point))
}

func (s *Server) handleFrames(c *fiber.Ctx) error {
	return c.JSON(s.frames.Frames())
}

// streamConn is the part of a websocket connection the view stream uses
type streamConn interface {
	ReadMessage() (int, []byte, error)
	WriteJSON(v interface{}) error
}

// handleViewWS pushes a snapshot every StreamInterval until the client
// goes away
func (s *Server) handleViewWS(conn *websocket.Conn) {
	s.log.Info("view stream opened", logger.F("remote", conn.RemoteAddr().String()))
	defer s.log.Info("view stream closed", logger.F("remote", conn.RemoteAddr().String()))

	s.streamView(conn)
}

// streamView writes changed snapshots to conn. A reader drains client
// frames so close and ping control messages are handled; its first error
// ends the stream even when the view is idle and nothing is written.
func (s *Server) streamView(conn streamConn) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	ticker := time.NewTicker(s.StreamInterval)
	defer ticker.Stop()

	var last time.Time
	for {
		select {
		case <-done:
			return
		case <-ticker.C:
		}
		snap := s.views.Snapshot()
		if !snap.Updated.After(last) {
			continue
		}
		last = snap.Updated
		if err := conn.WriteJSON(snap); err != nil {
			return
		}
	}
}
