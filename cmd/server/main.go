// cmd/server/main.go
// Entry point for the Quizzik game server — the engine behind a local
// "blind-test bluff" party game. The binary owns one game at a time:
// clients (the phone being passed around, a TV mirroring the table) drive
// it over a small REST API and watch it over a WebSocket feed.
package main

import (
	"encoding/json"
	"log"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"

	"github.com/adurand/quizzik/internal/audio"
	"github.com/adurand/quizzik/internal/catalog"
	"github.com/adurand/quizzik/internal/config"
	"github.com/adurand/quizzik/internal/database"
	"github.com/adurand/quizzik/internal/game"
	"github.com/adurand/quizzik/internal/handlers"
	"github.com/adurand/quizzik/internal/middleware"
	"github.com/adurand/quizzik/internal/storage"
	"github.com/adurand/quizzik/internal/websocket"
)

func main() {
	cfg := config.Load()

	// Open the local sqlite database and bring its schema up to date.
	db, err := database.Connect(cfg.DatabasePath)
	if err != nil {
		log.Fatal("Failed to open database:", err)
	}
	if err := database.RunMigrations(cfg.DatabasePath); err != nil {
		log.Fatal("Failed to run migrations:", err)
	}

	store := storage.New(db)

	// The lifecycle service owns the game aggregate. Restore whatever
	// session was in flight when the process last stopped — an interrupted
	// game party picks up exactly where it left off.
	svc := game.NewService(store)
	if err := svc.Load(); err != nil {
		log.Printf("No saved game restored: %v", err)
	}

	// The hub fans live game state out to every connected screen.
	hub := websocket.NewHub()
	go hub.Run()

	// Track catalog client (Deezer) for the pick-selection search.
	tracks := catalog.NewClient(cfg.DeezerAPIURL, nil)

	// Playback transport state: one preview clip at a time, mirrored to
	// watchers whenever it changes.
	player := audio.NewController()
	player.OnChange = func(state audio.State) {
		g := svc.Game()
		if g == nil {
			return
		}
		data, err := json.Marshal(fiber.Map{"playback": state})
		if err != nil {
			return
		}
		hub.BroadcastToGame(g.ID, data)
	}

	app := fiber.New(fiber.Config{
		AppName: "Quizzik API",
	})

	// Global middleware: request logging, and open CORS so the client can
	// be served from anywhere on the local network.
	app.Use(logger.New())
	app.Use(cors.New())

	app.Get("/health", handlers.HealthCheck)

	// WebSocket feed of live game state.
	app.Use("/ws", handlers.RequireWebSocketUpgrade)
	app.Get("/ws", handlers.GameSocket(hub))

	api := app.Group("/api/v1")

	// Game lifecycle — every command of the state machine.
	api.Get("/game", handlers.GetGame(svc))
	api.Post("/game", handlers.CreateGame(svc, hub))
	api.Delete("/game", handlers.ResetGame(svc, hub))
	api.Post("/game/players", handlers.AddPlayer(svc, hub))
	api.Delete("/game/players/:id", handlers.RemovePlayer(svc, hub))
	api.Post("/game/picks", handlers.AddPick(svc, hub))
	api.Delete("/game/picks/:id", handlers.RemovePick(svc, hub))
	api.Put("/game/settings", handlers.UpdateSettings(svc, store, hub))
	api.Post("/game/start", handlers.StartGame(svc, hub))
	api.Post("/game/votes", handlers.SubmitVote(svc, hub))
	api.Post("/game/reveal", handlers.RevealRound(svc, hub))
	api.Post("/game/next", handlers.NextRound(svc, store, hub))

	// Catalog search.
	api.Get("/search", handlers.SearchTracks(tracks))

	// History — reading it is a premium feature; results are recorded for
	// everyone so upgrading reveals recent games.
	api.Get("/history", middleware.RequirePremium(store), handlers.GetHistory(store))
	api.Delete("/history", handlers.ClearHistory(store))

	// Entitlement and onboarding flags.
	api.Get("/premium", handlers.GetPremium(store))
	api.Put("/premium", handlers.SetPremium(store))
	api.Get("/onboarding", handlers.GetOnboarding(store))
	api.Put("/onboarding", handlers.CompleteOnboarding(store))

	// Playback transport.
	api.Get("/playback", handlers.GetPlayback(player))
	api.Post("/playback/play", handlers.Play(player))
	api.Post("/playback/pause", handlers.Pause(player))
	api.Post("/playback/finished", handlers.FinishPlayback(player))

	log.Printf("Starting server on port %s", cfg.Port)
	log.Fatal(app.Listen(":" + cfg.Port))
}
