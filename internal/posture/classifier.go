// Package posture decides whether a set of body angles describes good posture.
package posture

// Band is an inclusive range of degrees.
type Band struct {
	Min, Max float64
}

// Contains reports whether deg lies inside the band, bounds included.
func (b Band) Contains(deg float64) bool {
	return deg >= b.Min && deg <= b.Max
}

var (
	FrontBand         = Band{Min: 75, Max: 95}
	LeftShoulderBand  = Band{Min: 310, Max: 320}
	RightShoulderBand = Band{Min: 40, Max: 50}
)

// Angles are the three readings taken every tick.
type Angles struct {
	Front         float64
	LeftShoulder  float64
	RightShoulder float64
}

// Good reports whether every angle sits inside its band.
func (a Angles) Good() bool {
	return Classify(a.Front, a.LeftShoulder, a.RightShoulder)
}

// Classify returns true for good posture. NaN readings always fail.
func Classify(frontPosture, leftShoulder, rightShoulder float64) bool {
	return FrontBand.Contains(frontPosture) &&
		LeftShoulderBand.Contains(leftShoulder) &&
		RightShoulderBand.Contains(rightShoulder)
}
