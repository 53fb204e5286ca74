package meme

import "math"

// verticalPositionFactor sets how far from the center the captions sit.
const verticalPositionFactor = 2.1

// Layout holds font size and the vertical offsets of both captions,
// relative to the gravity anchor.
type Layout struct {
	FontSize float64 `json:"font_size"`
	Top      float64 `json:"top"`
	Bottom   float64 `json:"bottom"`
}

// ComputeLayout derives caption placement from the image size.
func ComputeLayout(d Dimensions, padding float64) Layout {
	height := float64(d.Height)
	return Layout{
		FontSize: float64(d.Width) / 12,
		Top:      -math.Abs(height/verticalPositionFactor - padding),
		Bottom:   height/verticalPositionFactor - padding,
	}
}
