package web

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pulsegrid/go-vitalview/pkg/compositor"
	"github.com/pulsegrid/go-vitalview/pkg/stream"
	"github.com/pulsegrid/go-vitalview/pkg/telemetry"
)

func newTestServer() *Server {
	comp := compositor.New(compositor.DefaultConfig())
	client := stream.New("ws://localhost:0/ws/stream", stream.DefaultConfig())
	return NewServer("0", comp, client)
}

func doJSON(t *testing.T, s *Server, method, path string, body any) *http.Response {
	t.Helper()

	var rd io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal body: %v", err)
		}
		rd = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := s.app.Test(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, path, err)
	}
	return resp
}

func decodeBody(t *testing.T, resp *http.Response) map[string]any {
	t.Helper()
	defer resp.Body.Close()
	var out map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return out
}

func TestIndexServesDashboard(t *testing.T) {
	s := newTestServer()
	resp := doJSON(t, s, http.MethodGet, "/", nil)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/html") {
		t.Errorf("content type = %q, want html", ct)
	}
	page, _ := io.ReadAll(resp.Body)
	if !bytes.Contains(page, []byte("/ws/frames")) {
		t.Error("dashboard page should open the frames websocket")
	}
}

func TestStatusEndpoint(t *testing.T) {
	s := newTestServer()
	resp := doJSON(t, s, http.MethodGet, "/api/status", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	body := decodeBody(t, resp)

	st, ok := body["status"].(map[string]any)
	if !ok {
		t.Fatalf("missing status object in %v", body)
	}
	if st["connected"] != false {
		t.Errorf("connected = %v, want false before any dial", st["connected"])
	}
	if _, ok := body["viewers"]; !ok {
		t.Error("missing viewers count")
	}
}

func TestStartRequiresCameraPermission(t *testing.T) {
	s := newTestServer()

	resp := doJSON(t, s, http.MethodPost, "/api/start", StartRequest{CameraGranted: false})
	if resp.StatusCode != http.StatusForbidden {
		t.Errorf("denied permission status = %d, want 403", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if _, ok := body["error"]; !ok {
		t.Error("denied permission should carry an explicit error")
	}
}

func TestStartAcceptedButUndelivered(t *testing.T) {
	s := newTestServer()

	// No gateway connection exists, so the control message cannot be
	// delivered; the request itself is still accepted.
	resp := doJSON(t, s, http.MethodPost, "/api/start", StartRequest{CameraGranted: true})
	if resp.StatusCode != http.StatusAccepted {
		t.Fatalf("status = %d, want 202", resp.StatusCode)
	}
	body := decodeBody(t, resp)
	if body["requested"] != true {
		t.Errorf("requested = %v, want true", body["requested"])
	}
	if body["delivered"] != false {
		t.Errorf("delivered = %v, want false with no gateway", body["delivered"])
	}
}

func TestConfigValidation(t *testing.T) {
	s := newTestServer()

	cases := []struct {
		name string
		req  ConfigRequest
		want int
	}{
		{"valid", ConfigRequest{TargetFPS: 30, SmoothingFactor: 0.6}, http.StatusOK},
		{"fps too low", ConfigRequest{TargetFPS: 0, SmoothingFactor: 0.6}, http.StatusBadRequest},
		{"fps too high", ConfigRequest{TargetFPS: 61, SmoothingFactor: 0.6}, http.StatusBadRequest},
		{"smoothing zero", ConfigRequest{TargetFPS: 30, SmoothingFactor: 0}, http.StatusBadRequest},
		{"smoothing above one", ConfigRequest{TargetFPS: 30, SmoothingFactor: 1.2}, http.StatusBadRequest},
		{"smoothing at one", ConfigRequest{TargetFPS: 30, SmoothingFactor: 1}, http.StatusOK},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			resp := doJSON(t, s, http.MethodPost, "/api/config", c.req)
			defer resp.Body.Close()
			if resp.StatusCode != c.want {
				t.Errorf("status = %d, want %d", resp.StatusCode, c.want)
			}
		})
	}
}

func TestViewportReportResizesCompositor(t *testing.T) {
	s := newTestServer()

	resp := doJSON(t, s, http.MethodPost, "/api/viewport", ViewportRequest{Width: 1280, Height: 720})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}

	img := s.comp.Composite(stream.Snapshot{}, telemetry.Sample{First: true})
	if img.Bounds().Dx() != 1280 || img.Bounds().Dy() != 720 {
		t.Errorf("viewport not applied: frame is %dx%d", img.Bounds().Dx(), img.Bounds().Dy())
	}
}

func TestWSRoutesRequireUpgrade(t *testing.T) {
	s := newTestServer()
	resp := doJSON(t, s, http.MethodGet, "/ws/frames", nil)
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Errorf("plain GET on ws route = %d, want 426", resp.StatusCode)
	}
}
