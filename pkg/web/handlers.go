package web

import (
	_ "embed"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"

	"github.com/pulsegrid/go-vitalview/pkg/hub"
	"github.com/pulsegrid/go-vitalview/pkg/stream"
)

//go:embed index.html
var indexHTML []byte

func (s *Server) handleIndex(c *fiber.Ctx) error {
	c.Set("Content-Type", "text/html; charset=utf-8")
	return c.Send(indexHTML)
}

// handleStatus returns the current connection and telemetry state.
func (s *Server) handleStatus(c *fiber.Ctx) error {
	st := s.comp.Status()
	st.Connected = s.client.Connected()
	return c.JSON(fiber.Map{
		"status":  st,
		"viewers": s.frameHub.ClientCount(),
	})
}

// StartRequest carries the camera permission outcome from the browser.
// The permission check itself happens in the host environment; only its
// boolean result matters here.
type StartRequest struct {
	CameraGranted bool `json:"camera_granted"`
}

// handleStart asks the external pipeline to begin producing a stream.
// A denied camera permission is a blocking, explicit error; it does not
// affect an already-open stream.
func (s *Server) handleStart(c *fiber.Ctx) error {
	var req StartRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if !req.CameraGranted {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{
			"error": "camera permission denied; grant camera access to start the stream",
		})
	}

	delivered := s.client.Send(stream.NewStartInference())
	return c.Status(fiber.StatusAccepted).JSON(fiber.Map{
		"requested": true,
		"delivered": delivered,
	})
}

// ConfigRequest tunes the external pipeline.
type ConfigRequest struct {
	TargetFPS       int     `json:"target_fps"`
	SmoothingFactor float64 `json:"smoothing_factor"`
}

// handleConfig forwards a config_update control message. Delivery is
// best effort; "delivered": false means the channel was closed and the
// message was lost.
func (s *Server) handleConfig(c *fiber.Ctx) error {
	var req ConfigRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}

	if req.TargetFPS < 1 || req.TargetFPS > 60 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "target_fps must be between 1 and 60",
		})
	}
	if req.SmoothingFactor <= 0 || req.SmoothingFactor > 1 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "smoothing_factor must be in (0, 1]",
		})
	}

	delivered := s.client.Send(stream.NewConfigUpdate(req.TargetFPS, req.SmoothingFactor))
	return c.JSON(fiber.Map{"delivered": delivered})
}

// ViewportRequest reports the browser's display size so panel placement
// tracks the actual viewport.
type ViewportRequest struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

func (s *Server) handleViewport(c *fiber.Ctx) error {
	var req ViewportRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "invalid request body",
		})
	}
	s.comp.SetViewport(req.Width, req.Height)
	return c.JSON(fiber.Map{"ok": true})
}

// handleFramesWS streams rendered frames to one browser. Inbound text
// payloads are viewport resize reports.
func (s *Server) handleFramesWS(c *websocket.Conn) {
	client := hub.NewClient(s.frameHub, c)
	client.OnMessage = func(data []byte) {
		var req ViewportRequest
		if err := json.Unmarshal(data, &req); err != nil {
			return
		}
		s.comp.SetViewport(req.Width, req.Height)
	}
	client.Run()
}

// handleStatusWS streams telemetry/status updates to one browser.
func (s *Server) handleStatusWS(c *websocket.Conn) {
	client := hub.NewClient(s.statusHub, c)
	client.Run()
}
