// Package stream provides the client side of the inference gateway's
// duplex websocket channel: a reconnecting client, the decoded snapshot
// model, and outbound control messages.
package stream

// Expression categories the backend classifiers emit. The set is fixed;
// a category missing from a payload means probability zero.
var ExpressionCategories = []string{
	"Angry",
	"Disgust",
	"Fear",
	"Happy",
	"Sad",
	"Surprise",
	"Neutral",
}

// MaxWaveformSamples bounds the per-face biosignal window. Older samples
// beyond the bound are dropped at the decode boundary, oldest first.
const MaxWaveformSamples = 256

// CalibrationState is the lifecycle stage of a biosignal estimate.
type CalibrationState string

const (
	// Calibrating means the estimate is not yet meaningful and must be
	// masked in display.
	Calibrating CalibrationState = "CALIBRATING"
	// Stable means the estimate is valid.
	Stable CalibrationState = "STABLE"
	// Lost means the signal is temporarily unavailable.
	Lost CalibrationState = "LOST"
)

// BoundingBox is a face region in normalized 0-1 image coordinates.
type BoundingBox struct {
	XMin float64 `json:"x_min"`
	YMin float64 `json:"y_min"`
	XMax float64 `json:"x_max"`
	YMax float64 `json:"y_max"`
}

// Width returns the normalized box width.
func (b BoundingBox) Width() float64 { return b.XMax - b.XMin }

// Height returns the normalized box height.
func (b BoundingBox) Height() float64 { return b.YMax - b.YMin }

// Point is a normalized landmark coordinate.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Identity carries recognition results for a face. All fields are
// optional; an absent Identity renders as "Unknown".
type Identity struct {
	Name      string `json:"name"`
	Gender    string `json:"gender"`
	AgeBucket string `json:"age"`
}

// Expression is a fixed-category probability distribution. Probabilities
// need not sum to exactly 1 because the classifiers run independently.
type Expression struct {
	Dominant      string             `json:"dominant_emotion"`
	Probabilities map[string]float64 `json:"probabilities"`
	Confidence    float64            `json:"confidence"`
}

// Vitals holds the rPPG heart-rate estimate for a face. BPM is only
// meaningful when CalibrationState is Stable.
type Vitals struct {
	BPM              float64          `json:"bpm"`
	QualityScore     float64          `json:"quality_score"`
	Waveform         []float64        `json:"waveform"`
	CalibrationState CalibrationState `json:"calibration_state"`
}

// Face is the per-entity state within one snapshot. Optional collaborator
// outputs (identity, expression, vitals) are nil when the corresponding
// service produced nothing for this frame.
type Face struct {
	BBox       BoundingBox `json:"bbox"`
	Landmarks  []Point     `json:"landmarks"`
	Confidence float64     `json:"confidence"`
	Identity   *Identity   `json:"identity"`
	Expression *Expression `json:"expression"`
	Vitals     *Vitals     `json:"rppg"`
}

// Snapshot is one decoded inference update. It is immutable once decoded
// and is superseded wholesale by the next snapshot; faces absent from the
// newest snapshot are gone immediately.
type Snapshot struct {
	FrameID   int64
	Timestamp float64 // backend clock, seconds
	Faces     map[string]Face
	Frame     []byte // optional JPEG payload of the annotated camera feed
}
