package router

import (
	"github.com/gofiber/fiber/v2"

	"github.com/venturekit/accel-api/internal/config"
	"github.com/venturekit/accel-api/internal/handler"
	"github.com/venturekit/accel-api/internal/observability"
)

// Dependencies groups router dependencies for registration.
type Dependencies struct {
	ScoreHandler       *handler.ScoreHandler
	ScoreboardHandler  *handler.ScoreboardHandler
	ProgressionHandler *handler.ProgressionHandler
	SlotHandler        *handler.SlotHandler
	RankingHandler     *handler.RankingHandler
	JudgeHandler       *handler.JudgeHandler
	JWTMiddleware      fiber.Handler
	AdminMiddleware    fiber.Handler
	ScoreRateLimiter   fiber.Handler
}

// Register wires the HTTP routes into the fiber application.
func Register(app *fiber.App, cfg config.Config, deps Dependencies) {
	// Common v1 group for health & headers
	api := app.Group("/api/v1", func(c *fiber.Ctx) error {
		c.Set("X-Application", cfg.AppName)
		return c.Next()
	})
	api.Get("/health", handler.HealthCheck(cfg))
	api.Get("/metrics", observability.MetricsHandler())

	// Use provided middleware, or no-ops if nil
	jwtMiddleware := deps.JWTMiddleware
	if jwtMiddleware == nil {
		jwtMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}
	adminMiddleware := deps.AdminMiddleware
	if adminMiddleware == nil {
		adminMiddleware = func(c *fiber.Ctx) error { return c.Next() }
	}

	// Evaluator surface: score submission and revision
	if deps.ScoreHandler != nil {
		scores := app.Group("/api/v1/scores", jwtMiddleware)
		if deps.ScoreRateLimiter != nil {
			scores.Use(deps.ScoreRateLimiter)
		}
		deps.ScoreHandler.Register(scores)
	}

	// Rankings are readable by any authenticated user; finalizing persists
	// ranks and is admin-only.
	if deps.RankingHandler != nil {
		rankings := app.Group("/api/v1/rankings", jwtMiddleware)
		deps.RankingHandler.Register(rankings)

		adminRankings := app.Group("/api/v1/rankings", jwtMiddleware, adminMiddleware)
		deps.RankingHandler.RegisterAdmin(adminRankings)
	}

	// Admin surface: scoreboards, progression, slots, judge roster
	if deps.ScoreboardHandler != nil {
		scoreboards := app.Group("/api/v1/scoreboards", jwtMiddleware, adminMiddleware)
		deps.ScoreboardHandler.Register(scoreboards)
	}

	if deps.ProgressionHandler != nil {
		progression := app.Group("/api/v1/progression", jwtMiddleware, adminMiddleware)
		deps.ProgressionHandler.Register(progression)
	}

	// Booking is an evaluator-facing operation; bulk generation is admin-only.
	if deps.SlotHandler != nil {
		slots := app.Group("/api/v1/slots", jwtMiddleware)
		deps.SlotHandler.Register(slots)

		adminSlots := app.Group("/api/v1/slots", jwtMiddleware, adminMiddleware)
		deps.SlotHandler.RegisterAdmin(adminSlots)
	}

	if deps.JudgeHandler != nil {
		judges := app.Group("/api/v1/judges", jwtMiddleware, adminMiddleware)
		deps.JudgeHandler.Register(judges)
	}
}
