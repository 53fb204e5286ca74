package handlers

import (
	"context"
	"errors"

	"github.com/gofiber/fiber/v2"

	"mememaker/internal/domain"
	"mememaker/internal/infra/logging"
	"mememaker/internal/infra/magick"
	"mememaker/internal/infra/stats"
	"mememaker/internal/meme"
)

// Generator runs one caption job.
type Generator interface {
	Generate(ctx context.Context, req meme.Request) (meme.Result, error)
}

// PoolStatter reports command pool usage.
type PoolStatter interface {
	Stats() magick.Stats
}

// MemeHandler serves caption requests.
type MemeHandler struct {
	Service Generator
	Stats   stats.Recorder
	Pool    PoolStatter
	Debug   bool
}

func NewMemeHandler(svc Generator, rec stats.Recorder, pool PoolStatter, debug bool) *MemeHandler {
	if rec == nil {
		rec = stats.NewMemory()
	}
	return &MemeHandler{Service: svc, Stats: rec, Pool: pool, Debug: debug}
}

// RequestFromQuery reads image, topText and bottomText.
func RequestFromQuery(c *fiber.Ctx) meme.Request {
	return meme.Request{
		Image:      c.Query("image"),
		TopText:    c.Query("topText"),
		BottomText: c.Query("bottomText"),
	}
}

// HandleMeme captions the image named by the query string and returns it
// inline in an HTML page.
func (h *MemeHandler) HandleMeme(c *fiber.Ctx) error {
	ctx := c.UserContext()
	res, err := h.Service.Generate(ctx, RequestFromQuery(c))

	switch {
	case err == nil:
		h.Stats.Incr(ctx, stats.Served)
	case domain.IsClientError(err):
		h.Stats.Incr(ctx, stats.Rejected)
	default:
		h.Stats.Incr(ctx, stats.Failed)
		if errors.Is(err, context.DeadlineExceeded) {
			logging.Error("Meme generation timeout", "error", err)
		} else {
			logging.Error("Meme generation failed", "error", err)
		}
	}

	out := meme.Respond(res, err, h.Debug)
	c.Set(fiber.HeaderContentType, out.ContentType)
	return c.Status(out.Status).SendString(out.Body)
}

// HandleStats exposes outcome counters and command pool usage.
func (h *MemeHandler) HandleStats(c *fiber.Ctx) error {
	counters, err := h.Stats.Snapshot(c.UserContext())
	if err != nil {
		return fiber.NewError(fiber.StatusServiceUnavailable, "stats unavailable: "+err.Error())
	}

	var pool magick.Stats
	if h.Pool != nil {
		pool = h.Pool.Stats()
	}

	return c.JSON(fiber.Map{
		"counters": fiber.Map{
			stats.Served:   counters[stats.Served],
			stats.Rejected: counters[stats.Rejected],
			stats.Failed:   counters[stats.Failed],
		},
		"pool": pool,
	})
}
