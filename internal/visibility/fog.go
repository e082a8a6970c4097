package visibility

import "math"

// FogColor is the colour unseen tiles blend toward.
var FogColor = Color{R: 0.1, G: 0.1, B: 0.1}

// Color is a linear RGB triple in [0,1].
type Color struct {
	R float64 `json:"r" msgpack:"r"`
	G float64 `json:"g" msgpack:"g"`
	B float64 `json:"b" msgpack:"b"`
}

// FogStrength is how much fog covers a tile of visibility v.
func FogStrength(v float64) float64 {
	return 1 - math.Max(0, math.Min(1, v))
}

// ApplyFog blends c toward FogColor by the fog strength of v.
func ApplyFog(c Color, v float64) Color {
	f := FogStrength(v)
	return Color{
		R: c.R + (FogColor.R-c.R)*f,
		G: c.G + (FogColor.G-c.G)*f,
		B: c.B + (FogColor.B-c.B)*f,
	}
}
