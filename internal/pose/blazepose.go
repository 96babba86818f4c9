package pose

import (
	"fmt"
	"image"
	"image/color"
	"os"
	"strconv"
	"sync"

	"gocv.io/x/gocv"
)

var (
	jointColor = color.RGBA{R: 255, G: 0, B: 0, A: 0}
	boneColor  = color.RGBA{R: 255, G: 255, B: 255, A: 0}
	angleColor = color.RGBA{R: 0, G: 0, B: 255, A: 0}
)

// point is a landmark in model-normalised coordinates (0-1).
type point struct {
	x, y       float64
	visibility float64
}

// BlazePoseDetector runs a BlazePose landmark network through OpenCV DNN
type BlazePoseDetector struct {
	net       gocv.Net
	config    Config
	inputSize image.Point

	mu        sync.Mutex
	points    []point
	positions []Landmark
}

// NewBlazePose loads the landmark model
func NewBlazePose(cfg Config) (*BlazePoseDetector, error) {
	if _, err := os.Stat(cfg.ModelPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("model file not found: %s", cfg.ModelPath)
	}

	net := gocv.ReadNetFromONNX(cfg.ModelPath)
	if net.Empty() {
		return nil, fmt.Errorf("failed to load pose model from %s", cfg.ModelPath)
	}

	net.SetPreferableBackend(gocv.NetBackendDefault)
	net.SetPreferableTarget(gocv.NetTargetCPU)

	return &BlazePoseDetector{
		net:       net,
		config:    cfg,
		inputSize: image.Pt(cfg.InputSize, cfg.InputSize),
	}, nil
}

func (d *BlazePoseDetector) FindPose(frame *gocv.Mat) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.points = nil
	d.positions = nil

	if frame == nil || frame.Empty() {
		return fmt.Errorf("%w: empty frame", ErrDetection)
	}

	blob := gocv.BlobFromImage(*frame, 1.0/255.0, d.inputSize, gocv.NewScalar(0, 0, 0, 0), true, false)
	defer blob.Close()

	d.net.SetInput(blob, "")
	output := d.net.Forward(d.config.OutputName)
	defer output.Close()

	data, err := output.DataPtrFloat32()
	if err != nil {
		return fmt.Errorf("%w: reading landmark tensor: %v", ErrDetection, err)
	}

	points, err := decodeLandmarks(data, float64(d.config.InputSize))
	if err != nil {
		return err
	}
	d.points = points

	if d.config.Draw {
		d.drawSkeleton(frame)
	}

	return nil
}

// decodeLandmarks turns the flat [39 x (x, y, z, visibility, presence)]
// tensor into normalised points, keeping the 33 body landmarks.
func decodeLandmarks(data []float32, inputSize float64) ([]point, error) {
	if len(data) < modelLandmarks*valuesPerPoint {
		return nil, fmt.Errorf("%w: landmark tensor has %d values", ErrDetection, len(data))
	}

	points := make([]point, BodyLandmarks)
	for i := range points {
		base := i * valuesPerPoint
		points[i] = point{
			x:          float64(data[base]) / inputSize,
			y:          float64(data[base+1]) / inputSize,
			visibility: sigmoid(float64(data[base+3])),
		}
	}
	return points, nil
}

func (d *BlazePoseDetector) Position(frame *gocv.Mat) ([]Landmark, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.points == nil {
		return nil, fmt.Errorf("%w: no pose found", ErrDetection)
	}

	d.positions = toPixels(d.points, frame.Cols(), frame.Rows(), d.config.MinVisibility)
	if len(d.positions) == 0 {
		return nil, fmt.Errorf("%w: no visible landmarks", ErrDetection)
	}

	out := make([]Landmark, len(d.positions))
	copy(out, d.positions)
	return out, nil
}

// toPixels scales visible points to frame pixels.
func toPixels(points []point, width, height int, minVisibility float64) []Landmark {
	landmarks := make([]Landmark, 0, len(points))
	for id, p := range points {
		if p.visibility < minVisibility {
			continue
		}
		landmarks = append(landmarks, Landmark{
			ID:         id,
			X:          int(p.x * float64(width)),
			Y:          int(p.y * float64(height)),
			Visibility: p.visibility,
		})
	}
	return landmarks
}

func (d *BlazePoseDetector) FindAngle(frame *gocv.Mat, a, b, c int) (float64, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.positions == nil {
		return 0, fmt.Errorf("%w: landmark positions not computed", ErrDetection)
	}

	pa, okA := lookup(d.positions, a)
	pb, okB := lookup(d.positions, b)
	pc, okC := lookup(d.positions, c)
	if !okA || !okB || !okC {
		return 0, fmt.Errorf("%w: landmarks %d/%d/%d not all visible", ErrDetection, a, b, c)
	}

	angle := Angle(pa, pb, pc)

	if d.config.Draw && frame != nil {
		vertex := image.Pt(pb.X, pb.Y)
		gocv.Line(frame, image.Pt(pa.X, pa.Y), vertex, angleColor, 3)
		gocv.Line(frame, image.Pt(pc.X, pc.Y), vertex, angleColor, 3)
		gocv.Circle(frame, vertex, 10, angleColor, 2)
		gocv.PutText(frame, strconv.Itoa(int(angle)), image.Pt(pb.X-50, pb.Y+50),
			gocv.FontHersheyPlain, 2, angleColor, 2)
	}

	return angle, nil
}

func (d *BlazePoseDetector) drawSkeleton(frame *gocv.Mat) {
	width, height := frame.Cols(), frame.Rows()
	pixel := func(p point) image.Point {
		return image.Pt(int(p.x*float64(width)), int(p.y*float64(height)))
	}

	for _, edge := range upperBody {
		from, to := d.points[edge[0]], d.points[edge[1]]
		if from.visibility < d.config.MinVisibility || to.visibility < d.config.MinVisibility {
			continue
		}
		gocv.Line(frame, pixel(from), pixel(to), boneColor, 2)
	}

	for _, p := range d.points {
		if p.visibility < d.config.MinVisibility {
			continue
		}
		gocv.Circle(frame, pixel(p), 5, jointColor, -1)
	}
}

// Close releases the network
func (d *BlazePoseDetector) Close() error {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.net.Close()
}
