package conversion

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

// FrameConverter turns BGR camera frames into images the window can draw.
// It reuses one RGBA buffer between calls and is not safe for concurrent use.
type FrameConverter struct {
	rgba gocv.Mat
}

func NewFrameConverter() *FrameConverter {
	return &FrameConverter{rgba: gocv.NewMat()}
}

// ToImage converts a BGR, BGRA or grayscale frame to an *image.RGBA.
// The pixels are copied out of the RGBA buffer directly; Mat.ToImage would
// treat that buffer as BGRA and swap the channels again.
func (fc *FrameConverter) ToImage(frame gocv.Mat) (image.Image, error) {
	if err := validateFrame(frame); err != nil {
		return nil, err
	}

	switch frame.Channels() {
	case 1:
		gocv.CvtColor(frame, &fc.rgba, gocv.ColorGrayToRGBA)
	case 3:
		gocv.CvtColor(frame, &fc.rgba, gocv.ColorBGRToRGBA)
	case 4:
		gocv.CvtColor(frame, &fc.rgba, gocv.ColorBGRAToRGBA)
	default:
		return nil, fmt.Errorf("unsupported channel count: %d", frame.Channels())
	}

	pix, err := fc.rgba.DataPtrUint8()
	if err != nil {
		return nil, fmt.Errorf("Mat to image conversion failed: %w", err)
	}

	img := image.NewRGBA(image.Rect(0, 0, fc.rgba.Cols(), fc.rgba.Rows()))
	if len(pix) < len(img.Pix) {
		return nil, fmt.Errorf("RGBA buffer holds %d bytes, need %d", len(pix), len(img.Pix))
	}
	copy(img.Pix, pix)
	return img, nil
}

func (fc *FrameConverter) Close() error {
	return fc.rgba.Close()
}

func validateFrame(frame gocv.Mat) error {
	if frame.Empty() {
		return fmt.Errorf("frame is empty")
	}
	if frame.Rows() <= 0 || frame.Cols() <= 0 {
		return fmt.Errorf("frame has invalid dimensions: %dx%d", frame.Cols(), frame.Rows())
	}
	if frame.Type()&0x7 != gocv.MatTypeCV8U {
		return fmt.Errorf("frame depth %d is not 8-bit", frame.Type()&0x7)
	}
	return nil
}
