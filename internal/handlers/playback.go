// This file handles the /api/v1/playback routes — the audio transport.
// The server never touches audio bytes; the client plays the preview URL
// and reports back. What the server referees is the single-active-playback
// rule and the completion notification, and it mirrors every transport
// change to watchers through the hub.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adurand/quizzik/internal/audio"
)

// PlaybackRequest is the JSON body for the play and finished commands.
type PlaybackRequest struct {
	URL string `json:"url"`
}

// GetPlayback returns a handler for GET /api/v1/playback.
func GetPlayback(ctrl *audio.Controller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"playback": ctrl.State()})
	}
}

// Play returns a handler for POST /api/v1/playback/play.
// Starting a new clip implicitly replaces whatever was playing.
func Play(ctrl *audio.Controller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PlaybackRequest
		if err := c.BodyParser(&req); err != nil || req.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "url is required",
			})
		}
		ctrl.Play(req.URL)
		return c.JSON(fiber.Map{"playback": ctrl.State()})
	}
}

// Pause returns a handler for POST /api/v1/playback/pause.
func Pause(ctrl *audio.Controller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctrl.Pause()
		return c.JSON(fiber.Map{"playback": ctrl.State()})
	}
}

// FinishPlayback returns a handler for POST /api/v1/playback/finished —
// the client's completion notification. A stale report for a clip that is
// no longer loaded is ignored.
func FinishPlayback(ctrl *audio.Controller) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req PlaybackRequest
		if err := c.BodyParser(&req); err != nil || req.URL == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "url is required",
			})
		}
		ctrl.Finish(req.URL)
		return c.JSON(fiber.Map{"playback": ctrl.State()})
	}
}
