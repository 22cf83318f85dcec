// Package api exposes the current view over HTTP so that tools can read and
// steer the camera while the viewer runs.
package api

import (
	"errors"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"

	"github.com/leterax/go-fpsview/internal/logger"
	"github.com/leterax/go-fpsview/pkg/tf"
	"github.com/leterax/go-fpsview/pkg/view"
)

// DefaultStreamInterval is the period of /ws/view snapshots
const DefaultStreamInterval = 100 * time.Millisecond

// Views is the part of view.Manager used by the server
type Views interface {
	Submit(cmd view.Command) error
	Snapshot() view.Snapshot
}

// Frames lists the frames known to the pose cache
type Frames interface {
	Frames() []tf.FrameInfo
}

// Server is the HTTP API
type Server struct {
	app    *fiber.App
	listen string
	views  Views
	frames Frames
	log    logger.Logger

	// StreamInterval is the period of /ws/view snapshots
	StreamInterval time.Duration
}

// NewServer creates the API server; call Start to listen
func NewServer(listen string, views Views, frames Frames, log logger.Logger) *Server {
	s := &Server{
		listen:         listen,
		views:          views,
		frames:         frames,
		log:            logger.Component(log, "api"),
		StreamInterval: DefaultStreamInterval,
	}

	app := fiber.New(fiber.Config{
		AppName:               "fpsview",
		DisableStartupMessage: true,
	})

	app.Use(cors.New())
	app.Use(s.requestID)

	app.Get("/healthz", s.handleHealth)

	api := app.Group("/api")
	api.Get("/view", s.handleGetView)
	api.Patch("/view", s.handlePatchView)
	api.Post("/view/reset", s.handleReset)
	api.Post("/view/look-at", s.handleLookAt)
	api.Get("/frames", s.handleFrames)

	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	app.Get("/ws/view", websocket.New(s.handleViewWS))

	s.app = app
	return s
}

// App returns the underlying fiber app
func (s *Server) App() *fiber.App {
	return s.app
}

// Start listens until Shutdown
func (s *Server) Start() error {
	s.log.Info("api listening", logger.F("addr", s.listen))
	return s.app.Listen(s.listen)
}

// StartAsync starts the server in a goroutine
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			s.log.Error("api server stopped", logger.F("error", err))
		}
	}()
}

// Shutdown stops the server
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}

func (s *Server) requestID(c *fiber.Ctx) error {
	id := c.Get(fiber.HeaderXRequestID)
	if id == "" {
		id = uuid.NewString()
	}
	c.Set(fiber.HeaderXRequestID, id)

	start := time.Now()
	err := c.Next()
	s.log.Debug("request",
		logger.F("request_id", id),
		logger.F("method", c.Method()),
		logger.F("path", c.Path()),
		logger.F("status", c.Response().StatusCode()),
		logger.F("duration", time.Since(start)))
	return err
}

// submit queues cmd and answers 202, or 503 when the render loop is behind
func (s *Server) submit(c *fiber.Ctx, cmd view.Command) error {
	if err := s.views.Submit(cmd); err != nil {
		if errors.Is(err, view.ErrQueueFull) {
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"error": err.Error(),
			})
		}
		return err
	}
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{"status": "queued"})
}

func badRequest(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": msg})
}
