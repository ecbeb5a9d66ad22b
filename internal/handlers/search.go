// This file handles GET /api/v1/search — the track catalog lookup players
// use while choosing their picks.
//
// This is the one collaborator whose failures ARE surfaced to the client:
// a search that dies on the network comes back as 502 so the UI can show
// "search failed, try again". Compare with persistence, whose failures are
// logged and swallowed.
package handlers

import (
	"log"

	"github.com/gofiber/fiber/v2"

	"github.com/adurand/quizzik/internal/catalog"
)

// SearchTracks returns a handler for GET /api/v1/search?q=...&limit=...
func SearchTracks(client *catalog.Client) fiber.Handler {
	return func(c *fiber.Ctx) error {
		query := c.Query("q")
		if query == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "q is required",
			})
		}

		// QueryInt returns 0 when absent or malformed; the client treats
		// anything <= 0 as "use the default limit".
		limit := c.QueryInt("limit")

		tracks, err := client.Search(c.Context(), query, limit)
		if err != nil {
			log.Printf("handlers: catalog search %q: %v", query, err)
			return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
				"error": "search failed",
			})
		}
		return c.JSON(fiber.Map{"data": tracks})
	}
}
