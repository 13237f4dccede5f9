package stream

// ControlMessage is an outbound client-to-gateway message. Delivery is
// best effort: if the channel is closed the message is lost, not queued.
type ControlMessage struct {
	Type    string `json:"type"`
	Payload any    `json:"payload,omitempty"`
}

// ConfigPayload tunes the external capture/inference pipeline.
type ConfigPayload struct {
	TargetFPS       int     `json:"target_fps"`
	SmoothingFactor float64 `json:"smoothing_factor"`
}

// NewConfigUpdate builds a config_update control message.
func NewConfigUpdate(targetFPS int, smoothing float64) ControlMessage {
	return ControlMessage{
		Type: "config_update",
		Payload: ConfigPayload{
			TargetFPS:       targetFPS,
			SmoothingFactor: smoothing,
		},
	}
}

// NewStartInference builds the START_INF request that asks the external
// pipeline to begin producing a stream. Callers must check camera
// permission before sending it.
func NewStartInference() ControlMessage {
	return ControlMessage{Type: "START_INF"}
}
