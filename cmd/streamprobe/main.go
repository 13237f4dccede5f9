// streamprobe connects to the inference gateway and prints a summary of
// each arriving snapshot. Useful for checking a gateway is producing
// data before pointing the dashboard at it.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pulsegrid/go-vitalview/internal/config"
	"github.com/pulsegrid/go-vitalview/internal/log"
	"github.com/pulsegrid/go-vitalview/pkg/stream"
	"github.com/pulsegrid/go-vitalview/pkg/telemetry"
)

func main() {
	gatewayURL := flag.String("gateway", config.GatewayURL(), "Inference gateway websocket URL (or set GATEWAY_URL)")
	count := flag.Int("n", 0, "Exit after this many snapshots (0 = run until interrupted)")
	start := flag.Bool("start", false, "Send START_INF once connected")
	flag.Parse()

	log.Init(config.LogLevel())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		cancel()
	}()

	client := stream.New(*gatewayURL, stream.DefaultConfig())
	go client.Run(ctx)

	tracker := telemetry.NewTracker(30)
	seen := 0

	for {
		select {
		case <-ctx.Done():
			return

		case connected := <-client.Status():
			if connected {
				fmt.Println("connected")
				if *start {
					if client.Send(stream.NewStartInference()) {
						fmt.Println("sent START_INF")
					}
				}
			} else {
				fmt.Println("disconnected, retrying...")
			}

		case snap := <-client.Snapshots():
			sample := tracker.Observe(snap, time.Now())
			fmt.Printf("frame %d: faces=%d fps=%.1f latency=%dms\n",
				snap.FrameID, len(snap.Faces), sample.FPS, sample.BackendLatency.Milliseconds())

			for id, face := range snap.Faces {
				line := fmt.Sprintf("  %s conf=%.2f", id, face.Confidence)
				if face.Expression != nil {
					line += fmt.Sprintf(" %s(%.0f%%)", face.Expression.Dominant, face.Expression.Confidence*100)
				}
				if face.Vitals != nil {
					line += fmt.Sprintf(" bpm=%.0f %s", face.Vitals.BPM, face.Vitals.CalibrationState)
				}
				fmt.Println(line)
			}

			seen++
			if *count > 0 && seen >= *count {
				return
			}
		}
	}
}
