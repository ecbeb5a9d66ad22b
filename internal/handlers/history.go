// This file handles the /api/v1/history and /api/v1/premium routes —
// the bounded leaderboard history of past games, plus the entitlement and
// onboarding flags backing the client's gating decisions.
package handlers

import (
	"github.com/gofiber/fiber/v2"

	"github.com/adurand/quizzik/internal/models"
	"github.com/adurand/quizzik/internal/premium"
)

// EntitlementStore is the flag surface the handlers need from storage.
type EntitlementStore interface {
	IsPremium() bool
	SetPremium(enabled bool) error
	HasCompletedOnboarding() bool
	SetOnboardingCompleted() error
}

// HistoryStore is the history surface the handlers need from storage.
type HistoryStore interface {
	Results() ([]models.GameResult, error)
	ClearResults() error
}

// GetHistory returns a handler for GET /api/v1/history — past game
// results, most recent first, at most five. Route is premium-gated by
// middleware; results are recorded regardless of tier so a later upgrade
// reveals recent games.
func GetHistory(store HistoryStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		results, err := store.Results()
		if err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to load history",
			})
		}
		return c.JSON(fiber.Map{"data": results})
	}
}

// ClearHistory returns a handler for DELETE /api/v1/history.
func ClearHistory(store HistoryStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.ClearResults(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to clear history",
			})
		}
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// GetPremium returns a handler for GET /api/v1/premium — the entitlement
// flag plus the feature table the current tier unlocks, so the client can
// gate its UI from one response.
func GetPremium(store EntitlementStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		isPremium := store.IsPremium()
		return c.JSON(fiber.Map{
			"premium":  isPremium,
			"features": premium.For(isPremium),
		})
	}
}

// SetPremiumRequest is the JSON body for PUT /api/v1/premium.
type SetPremiumRequest struct {
	Premium bool `json:"premium"`
}

// SetPremium returns a handler for PUT /api/v1/premium. The purchase flow
// itself lives in the client; the server just records the outcome.
func SetPremium(store EntitlementStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req SetPremiumRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid body",
			})
		}
		if err := store.SetPremium(req.Premium); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save premium flag",
			})
		}
		return c.JSON(fiber.Map{"premium": req.Premium})
	}
}

// GetOnboarding returns a handler for GET /api/v1/onboarding.
func GetOnboarding(store EntitlementStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{"completed": store.HasCompletedOnboarding()})
	}
}

// CompleteOnboarding returns a handler for PUT /api/v1/onboarding —
// one-way: the walkthrough never comes back once dismissed.
func CompleteOnboarding(store EntitlementStore) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if err := store.SetOnboardingCompleted(); err != nil {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "failed to save onboarding flag",
			})
		}
		return c.JSON(fiber.Map{"completed": true})
	}
}
