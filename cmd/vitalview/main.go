package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsegrid/go-vitalview/internal/config"
	"github.com/pulsegrid/go-vitalview/internal/log"
	"github.com/pulsegrid/go-vitalview/pkg/compositor"
	"github.com/pulsegrid/go-vitalview/pkg/stream"
	"github.com/pulsegrid/go-vitalview/pkg/web"
)

func main() {
	// Command line flags
	gatewayURL := flag.String("gateway", config.GatewayURL(), "Inference gateway websocket URL (or set GATEWAY_URL)")
	port := flag.String("port", config.DashboardPort(), "Dashboard port (or set DASHBOARD_PORT)")
	logLevel := flag.String("log-level", config.LogLevel(), "Log level: debug, info, warn, error")
	targetFPS := flag.Int("target-fps", config.TargetFPS(), "Requested inference rate (or set TARGET_FPS)")
	smoothing := flag.Float64("smoothing", config.SmoothingFactor(), "Waveform smoothing factor in (0,1] (or set SMOOTHING_FACTOR)")
	flag.Parse()

	log.Init(*logLevel)
	log.Info("vitalview starting", "gateway", *gatewayURL, "port", *port)

	// Create context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		log.Info("shutting down")
		cancel()
	}()

	client := stream.New(*gatewayURL, stream.DefaultConfig())
	go client.Run(ctx)
	go pushInitialConfig(ctx, client, *targetFPS, *smoothing)

	comp := compositor.New(compositor.DefaultConfig())

	server := web.NewServer(*port, comp, client)
	server.StartAsync()
	defer server.Shutdown()

	// The compositor loop owns all drawing; it returns when ctx is
	// cancelled and releases the stream client on every exit path.
	comp.Run(ctx, client, server)
}

// pushInitialConfig sends the startup pipeline tuning once the gateway
// connection is up. Delivery is best effort; it retries until one send
// is handed to the transport.
func pushInitialConfig(ctx context.Context, client *stream.Client, targetFPS int, smoothing float64) {
	msg := stream.NewConfigUpdate(targetFPS, smoothing)
	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if client.Send(msg) {
				log.Debug("initial config delivered", "target_fps", targetFPS, "smoothing", smoothing)
				return
			}
		}
	}
}
