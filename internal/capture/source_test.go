package capture

import (
	"errors"
	"testing"

	"gocv.io/x/gocv"
)

type fakeDevice struct {
	open       bool
	fail       bool
	empty      bool
	reads      int
	closes     int
	resolution [2]int
}

func (f *fakeDevice) Read(frame *gocv.Mat) bool {
	f.reads++
	if f.fail {
		return false
	}
	if f.empty {
		return true
	}
	img := gocv.NewMatWithSize(4, 4, gocv.MatTypeCV8UC3)
	defer img.Close()
	img.CopyTo(frame)
	return true
}

func (f *fakeDevice) SetResolution(width, height int) { f.resolution = [2]int{width, height} }
func (f *fakeDevice) IsOpened() bool                  { return f.open }
func (f *fakeDevice) Close() error {
	f.closes++
	f.open = false
	return nil
}

func TestSourceRead(t *testing.T) {
	device := &fakeDevice{open: true}
	src := NewSource(device, 0)
	defer src.Close()

	frame := gocv.NewMat()
	defer frame.Close()

	if err := src.Read(&frame); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if frame.Rows() != 4 || frame.Cols() != 4 {
		t.Errorf("frame size: got %dx%d", frame.Cols(), frame.Rows())
	}
	if src.Frames() != 1 {
		t.Errorf("frames: got %d, want 1", src.Frames())
	}
}

func TestSourceReadFailures(t *testing.T) {
	tests := []struct {
		name   string
		device *fakeDevice
	}{
		{"device read fails", &fakeDevice{open: true, fail: true}},
		{"device returns empty frame", &fakeDevice{open: true, empty: true}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			src := NewSource(tc.device, 1)
			frame := gocv.NewMat()
			defer frame.Close()

			if err := src.Read(&frame); !errors.Is(err, ErrCapture) {
				t.Fatalf("expected ErrCapture, got %v", err)
			}
			if src.Frames() != 0 {
				t.Errorf("failed reads must not be counted")
			}
		})
	}
}

func TestSourceCloseReleasesOnce(t *testing.T) {
	device := &fakeDevice{open: true}
	src := NewSource(device, 0)

	for i := 0; i < 3; i++ {
		if err := src.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
	if device.closes != 1 {
		t.Errorf("device closed %d times, want 1", device.closes)
	}

	frame := gocv.NewMat()
	defer frame.Close()
	if err := src.Read(&frame); !errors.Is(err, ErrClosed) {
		t.Errorf("read after close: got %v, want ErrClosed", err)
	}
	if device.reads != 0 {
		t.Errorf("device read after close")
	}
}

func TestSourceSetResolution(t *testing.T) {
	device := &fakeDevice{open: true}
	src := NewSource(device, 0)
	defer src.Close()

	src.SetResolution(2080, 4020)
	if device.resolution != [2]int{2080, 4020} {
		t.Errorf("resolution: got %v", device.resolution)
	}
}
