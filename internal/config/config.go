// Package config provides configuration helpers for go-vitalview commands.
package config

import (
	"os"
	"strconv"
)

// Defaults for the dashboard and gateway connection.
const (
	DefaultGatewayURL    = "ws://localhost:8000/ws/stream"
	DefaultDashboardPort = "8090"
	DefaultTargetFPS     = 30
	DefaultSmoothing     = 0.6
)

// GatewayURL returns the inference gateway URL from GATEWAY_URL.
// Falls back to the local default if not set.
func GatewayURL() string {
	if url := os.Getenv("GATEWAY_URL"); url != "" {
		return url
	}
	return DefaultGatewayURL
}

// DashboardPort returns the local dashboard port from DASHBOARD_PORT.
func DashboardPort() string {
	if port := os.Getenv("DASHBOARD_PORT"); port != "" {
		return port
	}
	return DefaultDashboardPort
}

// LogLevel returns the log level from LOG_LEVEL ("debug", "info", "warn", "error").
func LogLevel() string {
	if lvl := os.Getenv("LOG_LEVEL"); lvl != "" {
		return lvl
	}
	return "info"
}

// TargetFPS returns the requested inference rate from TARGET_FPS.
func TargetFPS() int {
	if v := os.Getenv("TARGET_FPS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return DefaultTargetFPS
}

// SmoothingFactor returns the waveform smoothing factor from SMOOTHING_FACTOR.
func SmoothingFactor() float64 {
	if v := os.Getenv("SMOOTHING_FACTOR"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil && f > 0 && f <= 1 {
			return f
		}
	}
	return DefaultSmoothing
}
