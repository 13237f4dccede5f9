package stream

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// MessageTypeResults is the only inbound message type the client accepts.
const MessageTypeResults = "inference_results"

var (
	// ErrUnknownType is returned for well-formed messages whose type is
	// not inference_results. The client drops these silently.
	ErrUnknownType = errors.New("stream: unknown message type")

	// ErrMalformed is returned for messages that do not decode.
	ErrMalformed = errors.New("stream: malformed message")
)

type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type wireSnapshot struct {
	FrameID   int64               `json:"frame_id"`
	Timestamp float64             `json:"timestamp"`
	Faces     map[string]wireFace `json:"faces"`
	Frame     string              `json:"frame"`
}

type wireFace struct {
	BBox       *BoundingBox `json:"bbox"`
	Landmarks  []Point      `json:"landmarks"`
	Confidence float64      `json:"confidence"`
	Identity   *Identity    `json:"identity"`
	Expression *Expression  `json:"expression"`
	Vitals     *Vitals      `json:"rppg"`
}

// DecodeMessage decodes one inbound gateway message into a Snapshot.
// Validation and defaulting happen here, at the decode boundary, so the
// renderers never see out-of-range or half-present data.
func DecodeMessage(data []byte) (Snapshot, error) {
	var env envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return Snapshot{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}
	if env.Type != MessageTypeResults {
		return Snapshot{}, fmt.Errorf("%w: %q", ErrUnknownType, env.Type)
	}

	var ws wireSnapshot
	if err := json.Unmarshal(env.Payload, &ws); err != nil {
		return Snapshot{}, fmt.Errorf("%w: payload: %v", ErrMalformed, err)
	}

	snap := Snapshot{
		FrameID:   ws.FrameID,
		Timestamp: ws.Timestamp,
		Faces:     make(map[string]Face, len(ws.Faces)),
	}

	for id, wf := range ws.Faces {
		if wf.BBox == nil {
			// A face without geometry cannot be placed or drawn.
			continue
		}
		snap.Faces[id] = sanitizeFace(wf)
	}

	if ws.Frame != "" {
		if jpeg, err := decodeFramePayload(ws.Frame); err == nil {
			snap.Frame = jpeg
		}
	}

	return snap, nil
}

func sanitizeFace(wf wireFace) Face {
	f := Face{
		BBox: BoundingBox{
			XMin: clamp01(wf.BBox.XMin),
			YMin: clamp01(wf.BBox.YMin),
			XMax: clamp01(wf.BBox.XMax),
			YMax: clamp01(wf.BBox.YMax),
		},
		Landmarks:  wf.Landmarks,
		Confidence: clamp01(wf.Confidence),
		Identity:   wf.Identity,
	}

	if wf.Expression != nil {
		f.Expression = sanitizeExpression(wf.Expression)
	}
	if wf.Vitals != nil {
		f.Vitals = sanitizeVitals(wf.Vitals)
	}
	return f
}

func sanitizeExpression(e *Expression) *Expression {
	out := &Expression{
		Dominant:      e.Dominant,
		Probabilities: make(map[string]float64, len(ExpressionCategories)),
		Confidence:    clamp01(e.Confidence),
	}

	// Keep only the fixed category set; anything the classifier did not
	// report stays at implicit zero.
	for _, cat := range ExpressionCategories {
		if p, ok := e.Probabilities[cat]; ok {
			out.Probabilities[cat] = clamp01(p)
		}
	}

	if !isKnownCategory(out.Dominant) {
		out.Dominant = dominantOf(out.Probabilities)
	}
	return out
}

func sanitizeVitals(v *Vitals) *Vitals {
	out := &Vitals{
		BPM:          v.BPM,
		QualityScore: clamp01(v.QualityScore),
		Waveform:     v.Waveform,
	}
	if n := len(out.Waveform); n > MaxWaveformSamples {
		out.Waveform = out.Waveform[n-MaxWaveformSamples:]
	}

	switch v.CalibrationState {
	case Calibrating, Stable, Lost:
		out.CalibrationState = v.CalibrationState
	case "UNSTABLE":
		// Older backends report UNSTABLE where the model means Lost.
		out.CalibrationState = Lost
	default:
		out.CalibrationState = Calibrating
	}
	return out
}

func decodeFramePayload(s string) ([]byte, error) {
	// A frame may arrive as a bare base64 string or a data URL.
	if i := strings.IndexByte(s, ','); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+1:]
	}
	return base64.StdEncoding.DecodeString(s)
}

func isKnownCategory(name string) bool {
	for _, cat := range ExpressionCategories {
		if cat == name {
			return true
		}
	}
	return false
}

func dominantOf(probs map[string]float64) string {
	best := "Neutral"
	bestP := -1.0
	for _, cat := range ExpressionCategories {
		if p := probs[cat]; p > bestP {
			best, bestP = cat, p
		}
	}
	if bestP <= 0 {
		return "Neutral"
	}
	return best
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
