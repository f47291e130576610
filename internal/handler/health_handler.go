package handler

import (
	"context"
	"database/sql"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

const (
	readinessTimeout = 2 * time.Second

	livenessMessage = "Server is running"
)

func RegisterHealthRoutes(app fiber.Router, sqlDB *sql.DB, rdb *redis.Client) {
	app.Get("/livez", LivezHandler())
	app.Get("/readyz", ReadyzHandler(sqlDB, rdb))
}

// LivezHandler answers as long as the process is up; dependencies are not
// consulted.
func LivezHandler() fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "ok",
			"message": livenessMessage,
		})
	}
}

// ReadyzHandler reports whether the outcome store and the rate limiter
// backend are reachable. Either one down drops readiness.
func ReadyzHandler(sqlDB *sql.DB, rdb *redis.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.Context(), readinessTimeout)
		defer cancel()

		checks := fiber.Map{
			"outcomeStore": "ok",
			"rateLimiter":  "ok",
		}

		status := "ready"
		statusCode := fiber.StatusOK

		if err := sqlDB.PingContext(ctx); err != nil {
			checks["outcomeStore"] = "down"
			status = "not_ready"
			statusCode = fiber.StatusServiceUnavailable
		}
		if err := rdb.Ping(ctx).Err(); err != nil {
			checks["rateLimiter"] = "down"
			status = "not_ready"
			statusCode = fiber.StatusServiceUnavailable
		}

		return c.Status(statusCode).JSON(fiber.Map{
			"status": status,
			"checks": checks,
		})
	}
}
