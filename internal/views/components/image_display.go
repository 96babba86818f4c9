package components

import (
	"image"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
)

const (
	VideoAreaWidth  = 640
	VideoAreaHeight = 480
)

// ImageDisplay shows the annotated camera feed
type ImageDisplay struct {
	container   *fyne.Container
	border      *canvas.Rectangle
	video       *canvas.Image
	placeholder image.Image
	hasFrame    bool
}

// NewImageDisplay creates the video area with an empty placeholder frame
func NewImageDisplay() *ImageDisplay {
	display := &ImageDisplay{}
	display.createComponents()
	return display
}

func (id *ImageDisplay) createComponents() {
	placeholder := image.NewRGBA(image.Rect(0, 0, VideoAreaWidth, VideoAreaHeight))
	gray := color.RGBA{R: 240, G: 240, B: 240, A: 255}
	for y := 0; y < VideoAreaHeight; y++ {
		for x := 0; x < VideoAreaWidth; x++ {
			placeholder.SetRGBA(x, y, gray)
		}
	}
	id.placeholder = placeholder

	id.video = canvas.NewImageFromImage(placeholder)
	id.video.FillMode = canvas.ImageFillContain
	id.video.ScaleMode = canvas.ImageScaleFastest
	id.video.SetMinSize(fyne.NewSize(VideoAreaWidth, VideoAreaHeight))

	// solid outline around the feed
	id.border = canvas.NewRectangle(color.Transparent)
	id.border.StrokeWidth = 2
	id.border.StrokeColor = color.Black

	id.container = container.NewStack(id.video, id.border)
}

// SetFrame replaces the displayed frame; nil restores the placeholder
func (id *ImageDisplay) SetFrame(img image.Image) {
	if img != nil {
		id.video.Image = img
		id.hasFrame = true
	} else {
		id.video.Image = id.placeholder
		id.hasFrame = false
	}
	id.video.Refresh()
}

// SetBorderColor recolours the outline to follow the theme
func (id *ImageDisplay) SetBorderColor(c color.Color) {
	id.border.StrokeColor = c
	id.border.Refresh()
}

func (id *ImageDisplay) HasFrame() bool {
	return id.hasFrame
}

// Image returns the image currently shown
func (id *ImageDisplay) Image() image.Image {
	return id.video.Image
}

func (id *ImageDisplay) GetContainer() *fyne.Container {
	return id.container
}
