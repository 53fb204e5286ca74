package meme

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mememaker/internal/domain"
)

func TestConvertArgs(t *testing.T) {
	l := ComputeLayout(Dimensions{Width: 1200, Height: 800}, 40)
	p := RenderParameters{
		ImagePath:    "/tmp/a-in",
		Font:         "/fonts/impact.ttf",
		FontSize:     l.FontSize,
		Fill:         "#FFF",
		Stroke:       "#000",
		StrokeWeight: 1,
		Gravity:      "center",
		TopText:      "one does not simply",
		BottomText:   "",
		Top:          l.Top,
		Bottom:       l.Bottom,
	}

	args := convertArgs(p, "/tmp/a-out.png")

	assert.Equal(t, []string{
		"convert", "/tmp/a-in",
		"-font", "/fonts/impact.ttf",
		"-pointsize", "100",
		"-fill", "#FFF",
		"-stroke", "#000",
		"-strokewidth", "1",
		"-draw", `gravity center text 0,` + formatNumber(l.Top) + ` "one does not simply"`,
		"-draw", `gravity center text 0,` + formatNumber(l.Bottom) + ` ""`,
		"/tmp/a-out.png",
	}, args)
}

func TestDrawText_EscapesQuotes(t *testing.T) {
	got := drawText("center", -12.5, `it's "fine" \o/ $(rm -rf /)`)
	assert.Equal(t, `gravity center text 0,-12.5 "it's \"fine\" \\o/ $(rm -rf /)"`, got)
}

func TestCompositor_Compose(t *testing.T) {
	tool := &fakeTool{}
	c := Compositor{Runner: tool, Tool: "gm"}

	out := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, c.Compose(context.Background(), RenderParameters{ImagePath: "/tmp/in", TopText: "a"}, out))
	assert.Equal(t, "gm", tool.lastCall()[0])
	assert.Equal(t, "convert", tool.lastCall()[1])
	assert.FileExists(t, out)

	failing := Compositor{Runner: &fakeTool{convertErr: errors.New("unable to read font")}, Tool: "gm"}
	err := failing.Compose(context.Background(), RenderParameters{ImagePath: "/tmp/in"}, out)
	assert.ErrorIs(t, err, domain.ErrRender)
	assert.Contains(t, err.Error(), "unable to read font")
}
