// Package pose locates body landmarks in camera frames and measures the
// angles between them.
package pose

import (
	"errors"

	"gocv.io/x/gocv"
)

// ErrDetection is returned when a frame yields no usable landmarks.
var ErrDetection = errors.New("pose detection failed")

// Detector is the capability the monitor needs from a pose backend.
// Position must be called after FindPose and before any FindAngle.
type Detector interface {
	// FindPose runs inference on frame and draws the skeleton onto it.
	FindPose(frame *gocv.Mat) error

	// Position returns the landmarks of the last FindPose in pixel coordinates.
	Position(frame *gocv.Mat) ([]Landmark, error)

	// FindAngle measures the angle at landmark b formed with a and c, in
	// degrees within [0, 360), and annotates it on frame.
	FindAngle(frame *gocv.Mat, a, b, c int) (float64, error)

	Close() error
}

// Config holds landmark model configuration
type Config struct {
	ModelPath     string  // Path to ONNX model
	OutputName    string  // Landmark tensor name
	InputSize     int     // Square model input side
	MinVisibility float64 // Landmarks below this are treated as missing
	Draw          bool    // Annotate frames
}

// DefaultConfig returns defaults for the full BlazePose landmark model
func DefaultConfig() Config {
	return Config{
		ModelPath:     "models/pose_landmark_full.onnx",
		OutputName:    "Identity",
		InputSize:     256,
		MinVisibility: 0.5,
		Draw:          true,
	}
}
