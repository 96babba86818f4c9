package pose

import "math"

// Landmark indices in BlazePose / MediaPipe order.
const (
	Nose           = 0
	LeftEyeInner   = 1
	LeftEye        = 2
	LeftEyeOuter   = 3
	RightEyeInner  = 4
	RightEye       = 5
	RightEyeOuter  = 6
	LeftEar        = 7
	RightEar       = 8
	MouthLeft      = 9
	MouthRight     = 10
	LeftShoulder   = 11
	RightShoulder  = 12
	LeftElbow      = 13
	RightElbow     = 14
	LeftWrist      = 15
	RightWrist     = 16
	LeftHip        = 23
	RightHip       = 24
	BodyLandmarks  = 33
	modelLandmarks = 39
	valuesPerPoint = 5
)

// Landmark is a detected keypoint in frame pixels.
type Landmark struct {
	ID         int
	X, Y       int
	Visibility float64
}

// upperBody lists the skeleton edges drawn on the frame.
var upperBody = [][2]int{
	{Nose, LeftEyeInner}, {LeftEyeInner, LeftEye}, {LeftEye, LeftEyeOuter}, {LeftEyeOuter, LeftEar},
	{Nose, RightEyeInner}, {RightEyeInner, RightEye}, {RightEye, RightEyeOuter}, {RightEyeOuter, RightEar},
	{MouthLeft, MouthRight},
	{LeftShoulder, RightShoulder},
	{LeftShoulder, LeftElbow}, {LeftElbow, LeftWrist},
	{RightShoulder, RightElbow}, {RightElbow, RightWrist},
	{LeftShoulder, LeftHip}, {RightShoulder, RightHip}, {LeftHip, RightHip},
}

// Angle returns the angle at b, sweeping from ray b->a to ray b->c, in
// degrees within [0, 360). Image coordinates (y grows downward) are assumed.
func Angle(a, b, c Landmark) float64 {
	deg := (math.Atan2(float64(c.Y-b.Y), float64(c.X-b.X)) -
		math.Atan2(float64(a.Y-b.Y), float64(a.X-b.X))) * 180 / math.Pi
	if deg < 0 {
		deg += 360
	}
	return deg
}

func sigmoid(x float64) float64 {
	return 1 / (1 + math.Exp(-x))
}

// lookup finds a landmark by index among visible landmarks.
func lookup(landmarks []Landmark, id int) (Landmark, bool) {
	for _, lm := range landmarks {
		if lm.ID == id {
			return lm, true
		}
	}
	return Landmark{}, false
}
