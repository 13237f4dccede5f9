// Package web provides the local dashboard for the inference stream:
// a Fiber server that re-serves rendered frames and telemetry to
// browsers over websocket hubs and exposes the start/config control
// endpoints.
package web

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/websocket/v2"

	"github.com/pulsegrid/go-vitalview/internal/log"
	"github.com/pulsegrid/go-vitalview/pkg/compositor"
	"github.com/pulsegrid/go-vitalview/pkg/hub"
	"github.com/pulsegrid/go-vitalview/pkg/stream"
)

// Server is the web dashboard server. It implements compositor.Output:
// rendered frames and status updates fan out through its hubs.
type Server struct {
	app  *fiber.App
	port string

	comp   *compositor.Compositor
	client *stream.Client

	frameHub  *hub.Hub
	statusHub *hub.Hub
}

// NewServer creates a dashboard server in front of the compositor and
// stream client.
func NewServer(port string, comp *compositor.Compositor, client *stream.Client) *Server {
	s := &Server{
		port:      port,
		comp:      comp,
		client:    client,
		frameHub:  hub.New("frames"),
		statusHub: hub.New("status"),
	}

	app := fiber.New(fiber.Config{
		AppName:               "vitalview dashboard",
		DisableStartupMessage: true,
	})

	// CORS for local development
	app.Use(cors.New())

	app.Get("/", s.handleIndex)

	api := app.Group("/api")
	api.Get("/status", s.handleStatus)
	api.Post("/start", s.handleStart)
	api.Post("/config", s.handleConfig)
	api.Post("/viewport", s.handleViewport)

	// WebSocket upgrade middleware
	app.Use("/ws", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/frames", websocket.New(s.handleFramesWS))
	app.Get("/ws/status", websocket.New(s.handleStatusWS))

	s.app = app
	return s
}

// Start starts the web server and its hubs.
func (s *Server) Start() error {
	log.Info("dashboard listening", "url", "http://localhost:"+s.port)

	go s.frameHub.Run()
	go s.statusHub.Run()

	return s.app.Listen(":" + s.port)
}

// StartAsync starts the web server in a goroutine.
func (s *Server) StartAsync() {
	go func() {
		if err := s.Start(); err != nil {
			log.Error("web server error", "error", err)
		}
	}()
}

// BroadcastFrame sends a rendered JPEG frame to all connected browsers.
func (s *Server) BroadcastFrame(jpegData []byte) {
	if len(jpegData) == 0 {
		return
	}
	s.frameHub.BroadcastBinary(jpegData)
}

// BroadcastStatus sends a telemetry/status update to all connected browsers.
func (s *Server) BroadcastStatus(status compositor.Status) {
	s.statusHub.BroadcastJSON(status)
}

// Shutdown gracefully stops the web server.
func (s *Server) Shutdown() error {
	return s.app.Shutdown()
}
