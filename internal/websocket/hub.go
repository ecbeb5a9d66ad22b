// Package websocket implements a Hub for pushing live game state to
// connected clients. Quizzik is pass-the-device, but several screens can
// mirror the table at once (a TV showing the leaderboard, the phone being
// passed around), and every mutation of the game should appear everywhere
// instantly without polling. The Hub groups connections by game id and
// fans each state broadcast out to that game's watchers.
package websocket

import "sync"

// Client represents a single connected WebSocket client.
type Client struct {
	GameID string      // Which game this client is watching
	Send   chan []byte // Buffered channel of outgoing messages; the Hub writes here, the socket writer drains it
}

// Message is a unit of data to broadcast to all clients watching a game —
// typically the JSON-encoded Game snapshot after a mutation, or a playback
// state change.
type Message struct {
	GameID string
	Data   []byte
}

// Hub manages all active WebSocket connections, grouped by game id.
// It runs in its own goroutine and processes registration, unregistration,
// and broadcast events through channels, keeping all map mutation on a
// single goroutine.
type Hub struct {
	// clients maps gameID -> set of clients. map[*Client]bool as a set is
	// the usual Go idiom.
	clients map[string]map[*Client]bool

	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client

	// mu lets BroadcastToGame's fan-out read the client set while the main
	// loop mutates it.
	mu sync.RWMutex
}

// NewHub creates an empty Hub. The broadcast channel is buffered so a burst
// of game mutations doesn't block the handlers producing them.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		broadcast:  make(chan *Message, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

// Run is the Hub's main event loop. Call it in a goroutine ("go hub.Run()");
// it blocks forever.
func (h *Hub) Run() {
	for {
		select {

		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.GameID] == nil {
				h.clients[client.GameID] = make(map[*Client]bool)
			}
			h.clients[client.GameID][client] = true
			h.mu.Unlock()

		case client := <-h.unregister:
			h.mu.Lock()
			h.drop(client)
			h.mu.Unlock()

		case msg := <-h.broadcast:
			h.mu.RLock()
			clients := h.clients[msg.GameID]
			var slow []*Client
			for client := range clients {
				select {
				case client.Send <- msg.Data:
				// A client whose buffer is full is too slow to keep up —
				// drop it rather than stalling everyone else's updates.
				// Dropping happens inline rather than through the
				// unregister channel: this loop is the only reader of
				// that channel, so sending to it here would deadlock.
				default:
					slow = append(slow, client)
				}
			}
			h.mu.RUnlock()

			if len(slow) > 0 {
				h.mu.Lock()
				for _, client := range slow {
					h.drop(client)
				}
				h.mu.Unlock()
			}
		}
	}
}

// drop removes a client and closes its Send channel. Callers must hold the
// write lock. Dropping an already-removed client is a no-op, so the defer
// in the socket handler and the slow-client path can't double-close.
func (h *Hub) drop(client *Client) {
	clients, ok := h.clients[client.GameID]
	if !ok {
		return
	}
	if _, ok := clients[client]; !ok {
		return
	}
	delete(clients, client)
	close(client.Send) // signals the socket writer goroutine to stop
	if len(clients) == 0 {
		delete(h.clients, client.GameID)
	}
}

// BroadcastToGame sends data to every client watching the given game.
// Handlers call this with the fresh snapshot after each mutation.
func (h *Hub) BroadcastToGame(gameID string, data []byte) {
	h.broadcast <- &Message{GameID: gameID, Data: data}
}

// Register adds a client to the Hub so it starts receiving broadcasts.
func (h *Hub) Register(client *Client) {
	h.register <- client
}

// Unregister removes a client when its connection closes.
func (h *Hub) Unregister(client *Client) {
	h.unregister <- client
}
