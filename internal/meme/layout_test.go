package meme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestComputeLayout(t *testing.T) {
	l := ComputeLayout(Dimensions{Width: 1200, Height: 800}, 40)

	height, padding := 800.0, 40.0
	assert.Equal(t, 100.0, l.FontSize)
	assert.Equal(t, -(height/2.1 - padding), l.Top)
	assert.Equal(t, height/2.1-padding, l.Bottom)
	assert.InDelta(t, -340.952, l.Top, 0.001)
	assert.Equal(t, -l.Top, l.Bottom)
}

func TestComputeLayout_PaddingLargerThanBand(t *testing.T) {
	// The top offset stays above the anchor even when padding overshoots.
	l := ComputeLayout(Dimensions{Width: 60, Height: 42}, 40)

	assert.Equal(t, 5.0, l.FontSize)
	assert.InDelta(t, -20.0, l.Top, 1e-9)
	assert.InDelta(t, -20.0, l.Bottom, 1e-9)
}

func TestComputeLayout_Deterministic(t *testing.T) {
	d := Dimensions{Width: 640, Height: 480}
	assert.Equal(t, ComputeLayout(d, 40), ComputeLayout(d, 40))
}
