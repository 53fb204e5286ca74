package meme

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mememaker/internal/domain"
	"mememaker/internal/infra/magick"
)

// RenderParameters is everything the compositor needs for one image.
type RenderParameters struct {
	ImagePath    string
	Font         string
	FontSize     float64
	Fill         string
	Stroke       string
	StrokeWeight float64
	Gravity      string
	Padding      float64
	TopText      string
	BottomText   string
	Top          float64
	Bottom       float64
}

// Compositor draws captions with `<tool> convert`.
type Compositor struct {
	Runner magick.Runner
	Tool   string
}

// Compose renders p into outPath.
func (c Compositor) Compose(ctx context.Context, p RenderParameters, outPath string) error {
	if _, err := c.Runner.Run(ctx, c.Tool, convertArgs(p, outPath)...); err != nil {
		return fmt.Errorf("%w: convert %s: %w", domain.ErrRender, p.ImagePath, err)
	}
	return nil
}

func convertArgs(p RenderParameters, outPath string) []string {
	return []string{
		"convert",
		p.ImagePath,
		"-font", p.Font,
		"-pointsize", formatNumber(p.FontSize),
		"-fill", p.Fill,
		"-stroke", p.Stroke,
		"-strokewidth", formatNumber(p.StrokeWeight),
		"-draw", drawText(p.Gravity, p.Top, p.TopText),
		"-draw", drawText(p.Gravity, p.Bottom, p.BottomText),
		outPath,
	}
}

func drawText(gravity string, y float64, text string) string {
	return fmt.Sprintf(`gravity %s text 0,%s "%s"`, gravity, formatNumber(y), escapeDrawText(text))
}

var drawTextEscaper = strings.NewReplacer(`\`, `\\`, `"`, `\"`)

// escapeDrawText keeps caption text inside the draw primitive's double quotes.
func escapeDrawText(s string) string {
	return drawTextEscaper.Replace(s)
}

func formatNumber(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
