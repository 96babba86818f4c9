// Package capture owns the camera device that feeds the monitor.
package capture

import (
	"errors"
	"fmt"
	"sync"

	"gocv.io/x/gocv"
)

var (
	// ErrCapture covers an unavailable device or a failed read.
	ErrCapture = errors.New("capture failed")
	// ErrClosed is returned by Read after Close.
	ErrClosed = errors.New("capture source closed")
)

// Device is the subset of a video capture handle the source drives.
type Device interface {
	Read(frame *gocv.Mat) bool
	SetResolution(width, height int)
	IsOpened() bool
	Close() error
}

// Source reads frames from a single camera device and releases it exactly once.
type Source struct {
	device Device
	index  int

	mu     sync.Mutex
	closed bool
	frames uint64
}

// Open opens camera device index through OpenCV.
func Open(index int) (*Source, error) {
	vc, err := gocv.OpenVideoCapture(index)
	if err != nil {
		return nil, fmt.Errorf("%w: opening device %d: %v", ErrCapture, index, err)
	}

	device := &videoDevice{capture: vc}
	if !device.IsOpened() {
		device.Close()
		return nil, fmt.Errorf("%w: device %d is not available", ErrCapture, index)
	}

	return NewSource(device, index), nil
}

// NewSource wraps an already opened device.
func NewSource(device Device, index int) *Source {
	return &Source{device: device, index: index}
}

// SetResolution asks the device for a frame size. Devices may ignore it.
func (s *Source) SetResolution(width, height int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.device.SetResolution(width, height)
}

// Read fills frame with the next camera image.
func (s *Source) Read(frame *gocv.Mat) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return ErrClosed
	}

	if ok := s.device.Read(frame); !ok {
		return fmt.Errorf("%w: device %d returned no frame", ErrCapture, s.index)
	}
	if frame.Empty() {
		return fmt.Errorf("%w: device %d returned an empty frame", ErrCapture, s.index)
	}

	s.frames++
	return nil
}

// Frames returns how many frames were read successfully.
func (s *Source) Frames() uint64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.frames
}

func (s *Source) Index() int {
	return s.index
}

// Close releases the device. Further calls are no-ops.
func (s *Source) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return nil
	}
	s.closed = true

	if !s.device.IsOpened() {
		return nil
	}
	return s.device.Close()
}

type videoDevice struct {
	capture *gocv.VideoCapture
}

func (v *videoDevice) Read(frame *gocv.Mat) bool {
	return v.capture.Read(frame)
}

func (v *videoDevice) SetResolution(width, height int) {
	v.capture.Set(gocv.VideoCaptureFrameWidth, float64(width))
	v.capture.Set(gocv.VideoCaptureFrameHeight, float64(height))
}

func (v *videoDevice) IsOpened() bool {
	return v.capture.IsOpened()
}

func (v *videoDevice) Close() error {
	return v.capture.Close()
}
