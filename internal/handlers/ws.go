// This file handles GET /ws — the WebSocket feed of live game state.
// Clients connect with ?game=<id> and receive the full JSON snapshot after
// every mutation, plus playback state changes. The connection is one-way:
// commands still go through the REST routes, the socket only listens.
package handlers

import (
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"

	ws "github.com/adurand/quizzik/internal/websocket"
)

// RequireWebSocketUpgrade rejects plain HTTP requests to the socket route.
func RequireWebSocketUpgrade(c *fiber.Ctx) error {
	if websocket.IsWebSocketUpgrade(c) {
		return c.Next()
	}
	return fiber.ErrUpgradeRequired
}

// GameSocket returns the WebSocket handler. Each connection becomes one
// hub client; the hub closes the Send channel when it drops us, which ends
// the writer loop below.
func GameSocket(hub *ws.Hub) fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		client := &ws.Client{
			GameID: conn.Query("game"),
			Send:   make(chan []byte, 16),
		}
		hub.Register(client)
		defer hub.Unregister(client)

		// Writer: drain the hub's messages onto the wire.
		go func() {
			for msg := range client.Send {
				if err := conn.WriteMessage(websocket.TextMessage, msg); err != nil {
					return
				}
			}
		}()

		// Reader: we ignore inbound data, but reading is how we notice the
		// peer going away.
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})
}
