// Package middleware contains HTTP middleware for the Quizzik API.
// This file handles premium gating — a handful of routes (the game history,
// stats) are only available once the premium flag has been set.
package middleware

import "github.com/gofiber/fiber/v2"

// EntitlementChecker reports the current premium entitlement. Satisfied by
// *storage.Storage.
type EntitlementChecker interface {
	IsPremium() bool
}

// RequirePremium returns a middleware handler that rejects requests with
// HTTP 402 Payment Required unless the premium flag is set.
//
// This is deliberately a flag check, not an account system: the game is
// pass-the-device, so there is exactly one entitlement for the whole box.
//
//	api.Get("/history", middleware.RequirePremium(store), handlers.GetHistory(store))
func RequirePremium(entitlements EntitlementChecker) fiber.Handler {
	return func(c *fiber.Ctx) error {
		if !entitlements.IsPremium() {
			return c.Status(fiber.StatusPaymentRequired).JSON(fiber.Map{
				"error": "premium required",
			})
		}
		return c.Next()
	}
}
