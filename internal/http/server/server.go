package server

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/monitor"
	memoryStorage "github.com/gofiber/storage/memory/v2"

	"mememaker/internal/config"
	"mememaker/internal/http/handlers"
	"mememaker/internal/http/middleware"
	"mememaker/internal/infra/logging"
	"mememaker/internal/infra/stats"
	"mememaker/internal/tokens"
)

// Deps is everything the HTTP app needs. Nil Stats, Tokens and RateStore get
// in-memory defaults.
type Deps struct {
	Config    config.Config
	Service   handlers.Generator
	Pool      handlers.PoolStatter
	Stats     stats.Recorder
	Tokens    *tokens.Cache
	RateStore fiber.Storage
}

// New builds the fiber app with middleware, routes and the JSON error handler.
func New(d Deps) *fiber.App {
	if d.Tokens == nil {
		d.Tokens = tokens.NewCache()
	}
	if d.RateStore == nil {
		d.RateStore = memoryStorage.New()
	}

	app := fiber.New(fiber.Config{
		Prefork:               d.Config.Server.Prefork,
		ReadTimeout:           d.Config.Server.ReadTimeout,
		DisableStartupMessage: true,
		ErrorHandler:          errorHandler,
	})

	middleware.Register(app, d.Config)

	rl := middleware.RateLimitConfig{
		RateInterval:           d.Config.RateLimiter.Interval,
		EnableUserLimiter:      d.Config.RateLimiter.EnableUserLimiter,
		UserLimit:              d.Config.RateLimiter.UserLimit,
		EnableTokenRateLimiter: true,
	}
	limited := []fiber.Handler{
		middleware.KeyAuth(d.Tokens),
		middleware.TokenRateLimit(rl, d.Tokens, d.RateStore, middleware.NewLimiterCache()),
		middleware.UserRateLimit(rl, d.RateStore),
	}

	h := handlers.NewMemeHandler(d.Service, d.Stats, d.Pool, d.Config.Server.Debug)

	v1 := app.Group("/v1")
	v1.Get("/meme", append(limited, h.HandleMeme)...)
	v1.Get("/meme/stats", h.HandleStats)
	v1.Get("/monitor", monitor.New())

	app.Get("/", append(limited, h.HandleMeme)...)

	// Ensure all responses, including 404s, return JSON
	app.Use(func(c *fiber.Ctx) error {
		return fiber.NewError(fiber.StatusNotFound, "Not Found")
	})

	return app
}

func errorHandler(c *fiber.Ctx, err error) error {
	code := fiber.StatusInternalServerError
	msg := "Internal Server Error"

	var fe *fiber.Error
	if errors.As(err, &fe) {
		code = fe.Code
		msg = fe.Message
	}

	logging.Warn("Request failed", "path", c.Path(), "status", code, "message", msg)

	return middleware.ErrorJSON(c, code, msg)
}
