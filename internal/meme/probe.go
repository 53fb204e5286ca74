package meme

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"mememaker/internal/domain"
	"mememaker/internal/infra/magick"
)

// Dimensions are the pixel size of a source image.
type Dimensions struct {
	Width  int `json:"width"`
	Height int `json:"height"`
}

// Prober reads image dimensions with `<tool> identify -verbose`.
type Prober struct {
	Runner magick.Runner
	Tool   string
}

// Probe returns the dimensions of the image at path.
func (p Prober) Probe(ctx context.Context, path string) (Dimensions, error) {
	out, err := p.Runner.Run(ctx, p.Tool, "identify", "-verbose", path)
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: identify %s: %w", domain.ErrProbe, path, err)
	}

	d, err := ParseGeometry(string(out))
	if err != nil {
		return Dimensions{}, fmt.Errorf("%w: %w", domain.ErrProbe, err)
	}
	return d, nil
}

// ParseGeometry extracts WxH from the first Geometry line of verbose
// identify output. A trailing page offset such as +0+0 is ignored.
func ParseGeometry(output string) (Dimensions, error) {
	for _, line := range strings.Split(output, "\n") {
		idx := strings.Index(line, "Geometry")
		if idx < 0 {
			continue
		}

		_, value, ok := strings.Cut(line[idx:], ":")
		fields := strings.Fields(value)
		if !ok || len(fields) == 0 {
			return Dimensions{}, fmt.Errorf("geometry line %q has no value", strings.TrimSpace(line))
		}

		token := fields[0]
		if cut := strings.IndexAny(token, "+-"); cut > 0 {
			token = token[:cut]
		}

		w, h, ok := strings.Cut(token, "x")
		if !ok {
			return Dimensions{}, fmt.Errorf("geometry %q is not WxH", fields[0])
		}

		width, err := strconv.Atoi(w)
		if err != nil {
			return Dimensions{}, fmt.Errorf("geometry width %q: %w", w, err)
		}
		height, err := strconv.Atoi(h)
		if err != nil {
			return Dimensions{}, fmt.Errorf("geometry height %q: %w", h, err)
		}
		if width <= 0 || height <= 0 {
			return Dimensions{}, fmt.Errorf("geometry %dx%d is not positive", width, height)
		}

		return Dimensions{Width: width, Height: height}, nil
	}

	return Dimensions{}, fmt.Errorf("no Geometry line in identify output")
}
