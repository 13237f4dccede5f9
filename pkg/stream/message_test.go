package stream

import (
	"errors"
	"fmt"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestDecodeMessage_FullPayload(t *testing.T) {
	msg := []byte(`{
		"type": "inference_results",
		"payload": {
			"frame_id": 1,
			"timestamp": 1700000000.0,
			"faces": {
				"e1": {
					"bbox": {"x_min": 0.3, "y_min": 0.2, "x_max": 0.5, "y_max": 0.6},
					"confidence": 0.92,
					"expression": {
						"dominant_emotion": "Happy",
						"probabilities": {"Happy": 0.85, "Neutral": 0.10, "Sad": 0.05},
						"confidence": 0.92
					},
					"rppg": {
						"bpm": 72.4,
						"quality_score": 0.85,
						"waveform": [0.1, -0.2, 0.3],
						"calibration_state": "STABLE"
					}
				}
			}
		}
	}`)

	snap, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}

	if snap.FrameID != 1 {
		t.Errorf("FrameID = %d, want 1", snap.FrameID)
	}
	if snap.Timestamp != 1700000000.0 {
		t.Errorf("Timestamp = %v, want 1700000000.0", snap.Timestamp)
	}

	face, ok := snap.Faces["e1"]
	if !ok {
		t.Fatal("expected face e1")
	}

	wantBox := BoundingBox{XMin: 0.3, YMin: 0.2, XMax: 0.5, YMax: 0.6}
	if diff := cmp.Diff(wantBox, face.BBox); diff != "" {
		t.Errorf("bbox mismatch (-want +got):\n%s", diff)
	}

	if face.Expression == nil {
		t.Fatal("expected expression data")
	}
	if face.Expression.Dominant != "Happy" {
		t.Errorf("Dominant = %q, want Happy", face.Expression.Dominant)
	}
	wantProbs := map[string]float64{"Happy": 0.85, "Neutral": 0.10, "Sad": 0.05}
	if diff := cmp.Diff(wantProbs, face.Expression.Probabilities); diff != "" {
		t.Errorf("probabilities mismatch (-want +got):\n%s", diff)
	}

	if face.Vitals == nil {
		t.Fatal("expected vitals data")
	}
	if face.Vitals.CalibrationState != Stable {
		t.Errorf("CalibrationState = %q, want STABLE", face.Vitals.CalibrationState)
	}
}

func TestDecodeMessage_RejectsUnknownType(t *testing.T) {
	_, err := DecodeMessage([]byte(`{"type": "heartbeat", "payload": {}}`))
	if !errors.Is(err, ErrUnknownType) {
		t.Errorf("err = %v, want ErrUnknownType", err)
	}
}

func TestDecodeMessage_RejectsMalformed(t *testing.T) {
	cases := []string{
		`{not json`,
		`{"type": "inference_results", "payload": "nope"}`,
		``,
	}
	for _, c := range cases {
		if _, err := DecodeMessage([]byte(c)); !errors.Is(err, ErrMalformed) {
			t.Errorf("DecodeMessage(%q) err = %v, want ErrMalformed", c, err)
		}
	}
}

func TestDecodeMessage_ClampsOutOfRange(t *testing.T) {
	msg := []byte(`{
		"type": "inference_results",
		"payload": {
			"frame_id": 2,
			"timestamp": 1.0,
			"faces": {
				"e1": {
					"bbox": {"x_min": -0.5, "y_min": 0.0, "x_max": 1.7, "y_max": 0.9},
					"confidence": 1.4,
					"expression": {
						"dominant_emotion": "Happy",
						"probabilities": {"Happy": 1.2, "Sad": -0.3},
						"confidence": 0.5
					}
				}
			}
		}
	}`)

	snap, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	face := snap.Faces["e1"]

	if face.BBox.XMin != 0 || face.BBox.XMax != 1 {
		t.Errorf("bbox not clamped: %+v", face.BBox)
	}
	if face.Confidence != 1 {
		t.Errorf("Confidence = %v, want 1", face.Confidence)
	}
	if p := face.Expression.Probabilities["Happy"]; p != 1 {
		t.Errorf("Happy = %v, want 1", p)
	}
	if p := face.Expression.Probabilities["Sad"]; p != 0 {
		t.Errorf("Sad = %v, want 0", p)
	}
}

func TestDecodeMessage_DropsUnknownCategories(t *testing.T) {
	msg := []byte(`{
		"type": "inference_results",
		"payload": {
			"frame_id": 3,
			"timestamp": 1.0,
			"faces": {
				"e1": {
					"bbox": {"x_min": 0.1, "y_min": 0.1, "x_max": 0.2, "y_max": 0.2},
					"expression": {
						"dominant_emotion": "Contempt",
						"probabilities": {"Contempt": 0.9, "Happy": 0.4},
						"confidence": 0.9
					}
				}
			}
		}
	}`)

	snap, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	expr := snap.Faces["e1"].Expression

	if _, ok := expr.Probabilities["Contempt"]; ok {
		t.Error("unknown category should be dropped")
	}
	// Dominant outside the fixed set falls back to the highest known one.
	if expr.Dominant != "Happy" {
		t.Errorf("Dominant = %q, want Happy", expr.Dominant)
	}
}

func TestDecodeMessage_BoundsWaveform(t *testing.T) {
	wave := "["
	for i := 0; i < MaxWaveformSamples+10; i++ {
		if i > 0 {
			wave += ","
		}
		wave += fmt.Sprintf("%d", i)
	}
	wave += "]"

	msg := []byte(`{
		"type": "inference_results",
		"payload": {
			"frame_id": 4,
			"timestamp": 1.0,
			"faces": {
				"e1": {
					"bbox": {"x_min": 0.1, "y_min": 0.1, "x_max": 0.2, "y_max": 0.2},
					"rppg": {"bpm": 70, "quality_score": 0.5, "waveform": ` + wave + `, "calibration_state": "STABLE"}
				}
			}
		}
	}`)

	snap, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	v := snap.Faces["e1"].Vitals

	if len(v.Waveform) != MaxWaveformSamples {
		t.Fatalf("waveform length = %d, want %d", len(v.Waveform), MaxWaveformSamples)
	}
	// Oldest samples are dropped; the newest must survive.
	if v.Waveform[len(v.Waveform)-1] != float64(MaxWaveformSamples+9) {
		t.Errorf("newest sample = %v, want %d", v.Waveform[len(v.Waveform)-1], MaxWaveformSamples+9)
	}
}

func TestDecodeMessage_NormalizesCalibrationState(t *testing.T) {
	cases := []struct {
		in   string
		want CalibrationState
	}{
		{"CALIBRATING", Calibrating},
		{"STABLE", Stable},
		{"LOST", Lost},
		{"UNSTABLE", Lost},
		{"whatever", Calibrating},
		{"", Calibrating},
	}

	for _, c := range cases {
		msg := []byte(`{
			"type": "inference_results",
			"payload": {
				"frame_id": 5,
				"timestamp": 1.0,
				"faces": {
					"e1": {
						"bbox": {"x_min": 0.1, "y_min": 0.1, "x_max": 0.2, "y_max": 0.2},
						"rppg": {"bpm": 70, "quality_score": 0.5, "waveform": [0.1], "calibration_state": "` + c.in + `"}
					}
				}
			}
		}`)

		snap, err := DecodeMessage(msg)
		if err != nil {
			t.Fatalf("DecodeMessage(%q) failed: %v", c.in, err)
		}
		if got := snap.Faces["e1"].Vitals.CalibrationState; got != c.want {
			t.Errorf("state %q normalized to %q, want %q", c.in, got, c.want)
		}
	}
}

func TestDecodeMessage_SkipsFaceWithoutGeometry(t *testing.T) {
	msg := []byte(`{
		"type": "inference_results",
		"payload": {
			"frame_id": 6,
			"timestamp": 1.0,
			"faces": {
				"good": {"bbox": {"x_min": 0.1, "y_min": 0.1, "x_max": 0.2, "y_max": 0.2}},
				"bad": {"confidence": 0.9}
			}
		}
	}`)

	snap, err := DecodeMessage(msg)
	if err != nil {
		t.Fatalf("DecodeMessage failed: %v", err)
	}
	if _, ok := snap.Faces["bad"]; ok {
		t.Error("face without bbox should be skipped")
	}
	if _, ok := snap.Faces["good"]; !ok {
		t.Error("face with bbox should survive")
	}
}
