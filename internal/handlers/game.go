// This file handles the /api/v1/game routes — every command of the game
// lifecycle state machine.
//
// Two conventions apply throughout:
//
//   - The engine's silent-ignore policy surfaces here as "always return the
//     current state": a command whose precondition fails (voting while not
//     playing, a fourth pick against a quota of three) is a no-op in the
//     service, so the handler just echoes the unchanged game back with 200.
//     Clients re-render whatever state they receive and stay honest.
//
//   - After every mutation the fresh snapshot is broadcast through the hub,
//     so every screen watching the game updates without polling.
package handlers

import (
	"encoding/json"
	"log"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/adurand/quizzik/internal/game"
	"github.com/adurand/quizzik/internal/history"
	"github.com/adurand/quizzik/internal/models"
	"github.com/adurand/quizzik/internal/premium"
	"github.com/adurand/quizzik/internal/websocket"
)

// broadcastGame pushes the snapshot to everyone watching it. Best-effort:
// a marshal failure is a programming error worth a log line, never a
// failed request.
func broadcastGame(hub *websocket.Hub, g *models.Game) {
	if hub == nil || g == nil {
		return
	}
	data, err := json.Marshal(fiber.Map{"game": g})
	if err != nil {
		log.Printf("handlers: marshaling game broadcast: %v", err)
		return
	}
	hub.BroadcastToGame(g.ID, data)
}

// respondGame is the common tail of every lifecycle handler.
func respondGame(c *fiber.Ctx, g *models.Game) error {
	if g == nil {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "no active game",
		})
	}
	return c.JSON(fiber.Map{"game": g})
}

// GetGame returns a handler for GET /api/v1/game — the current aggregate,
// or 404 when no game exists (fresh install, or after a reset).
func GetGame(svc *game.Service) fiber.Handler {
	return func(c *fiber.Ctx) error {
		return respondGame(c, svc.Game())
	}
}

// CreateGame returns a handler for POST /api/v1/game.
// Always succeeds; any game in progress is discarded.
func CreateGame(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := svc.CreateGame()
		broadcastGame(hub, g)
		return c.Status(fiber.StatusCreated).JSON(fiber.Map{"game": g})
	}
}

// ResetGame returns a handler for DELETE /api/v1/game.
// Clears the in-memory game and its persisted snapshot.
func ResetGame(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		// Tell watchers the session ended before the id is gone.
		if g := svc.Game(); g != nil && hub != nil {
			data, _ := json.Marshal(fiber.Map{"game": nil})
			hub.BroadcastToGame(g.ID, data)
		}
		svc.ResetGame()
		return c.SendStatus(fiber.StatusNoContent)
	}
}

// AddPlayerRequest is the JSON body for POST /api/v1/game/players.
type AddPlayerRequest struct {
	Name  string `json:"name"`            // Required
	Color string `json:"color,omitempty"` // Optional; randomly assigned when empty
}

// AddPlayer returns a handler for POST /api/v1/game/players.
func AddPlayer(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req AddPlayerRequest
		if err := c.BodyParser(&req); err != nil || req.Name == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "name is required",
			})
		}
		g := svc.AddPlayer(req.Name, req.Color)
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// RemovePlayer returns a handler for DELETE /api/v1/game/players/:id.
// Removing a player also removes every pick they own.
func RemovePlayer(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := svc.RemovePlayer(c.Params("id"))
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// AddPickRequest is the JSON body for POST /api/v1/game/picks — the owner
// plus the track metadata the client got from the catalog search.
type AddPickRequest struct {
	OwnerID        string `json:"ownerId"`
	CatalogTrackID string `json:"deezerTrackId"`
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	PreviewURL     string `json:"previewUrl"`
	AlbumCover     string `json:"albumCover,omitempty"`
}

// AddPick returns a handler for POST /api/v1/game/picks.
// The per-player quota is enforced by the engine; a pick over quota simply
// doesn't appear in the returned state.
func AddPick(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req AddPickRequest
		if err := c.BodyParser(&req); err != nil || req.OwnerID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "ownerId is required",
			})
		}
		g := svc.AddTrackPick(req.OwnerID, models.TrackPick{
			CatalogTrackID: req.CatalogTrackID,
			Title:          req.Title,
			Artist:         req.Artist,
			PreviewURL:     req.PreviewURL,
			AlbumCover:     req.AlbumCover,
		})
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// RemovePick returns a handler for DELETE /api/v1/game/picks/:id — a
// player undoing one of their selections.
func RemovePick(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := svc.RemoveTrackPick(c.Params("id"))
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// UpdateSettingsRequest is the JSON body for PUT /api/v1/game/settings.
type UpdateSettingsRequest struct {
	PicksPerPlayer    int `json:"picksPerPlayer"`
	DiscussionSeconds int `json:"discussionSeconds,omitempty"`
}

// UpdateSettings returns a handler for PUT /api/v1/game/settings.
// The requested pick quota is clamped to what the current entitlement
// allows (free: exactly 3; premium: 3–5). Once the game is playing the
// engine freezes settings and this becomes a no-op.
func UpdateSettings(svc *game.Service, entitlements EntitlementStore, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req UpdateSettingsRequest
		if err := c.BodyParser(&req); err != nil {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "invalid body",
			})
		}
		isPremium := entitlements.IsPremium()
		g := svc.UpdateSettings(models.GameSettings{
			PicksPerPlayer:    premium.ClampPicksPerPlayer(isPremium, req.PicksPerPlayer),
			DiscussionSeconds: req.DiscussionSeconds,
			PremiumEnabled:    isPremium,
		})
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// StartGame returns a handler for POST /api/v1/game/start.
// Shuffles the picks and opens round 0. Starting with zero picks is a
// no-op and the game stays in setup.
func StartGame(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := svc.StartGame()
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// VoteRequest is the JSON body for POST /api/v1/game/votes.
type VoteRequest struct {
	VoterID        string `json:"voterId"`
	TargetPlayerID string `json:"targetPlayerId"`
}

// SubmitVote returns a handler for POST /api/v1/game/votes.
// Re-voting overwrites; voting outside a playing round is ignored.
func SubmitVote(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		var req VoteRequest
		if err := c.BodyParser(&req); err != nil || req.VoterID == "" || req.TargetPlayerID == "" {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error": "voterId and targetPlayerId are required",
			})
		}
		g := svc.SubmitVote(req.VoterID, req.TargetPlayerID)
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// RevealRound returns a handler for POST /api/v1/game/reveal.
// Discloses the current round's owner and locks in its scoring. Calling it
// again returns the same state — the reveal is idempotent.
func RevealRound(svc *game.Service, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := svc.RevealRound()
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}

// NextRound returns a handler for POST /api/v1/game/next.
// Advances to the next round, or finishes the game when the picks run out.
// Finishing triggers the history projection; a failed history write is
// logged and swallowed like every other persistence problem.
func NextRound(svc *game.Service, results history.Log, hub *websocket.Hub) fiber.Handler {
	return func(c *fiber.Ctx) error {
		g := svc.NextRound()
		if g != nil && g.Status == models.StatusFinished {
			if _, err := history.Record(results, g, time.Now()); err != nil {
				log.Printf("handlers: recording game result: %v", err)
			}
		}
		broadcastGame(hub, g)
		return respondGame(c, g)
	}
}
