// Package handlers contains the HTTP route handler functions for the
// Quizzik API. Each handler corresponds to one endpoint and follows the
// "handler factory" pattern: an exported function takes its dependencies
// (game service, storage, hub) and returns a fiber.Handler, so nothing is
// reached through globals.
package handlers

import "github.com/gofiber/fiber/v2"

// HealthCheck handles GET /health.
// A lightweight liveness probe — no database, no game state — used by
// whatever supervises the process and by developers checking the server
// came up.
func HealthCheck(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"status": "ok"})
}
