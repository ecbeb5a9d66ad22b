// Package audio tracks the playback transport for the game session. The
// server doesn't render audio itself — the device in front of the players
// does — but the engine is the referee for WHAT should be sounding: at most
// one preview clip is active at a time, starting a new one implicitly tears
// down the previous one, and clients are told about every change so they
// stay in sync.
package audio

import "sync"

// State is the transport's externally visible state.
type State struct {
	TrackURL string `json:"trackUrl,omitempty"` // Preview URL currently loaded; empty when idle
	Playing  bool   `json:"playing"`
}

// Controller is the single-playback transport. OnChange, if set, is called
// (outside the lock) with the new state after every transition — the server
// wires it to the websocket hub.
type Controller struct {
	mu       sync.Mutex
	state    State
	OnChange func(State)
}

// NewController returns an idle controller.
func NewController() *Controller {
	return &Controller{}
}

// State returns the current transport state.
func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Play starts playback of the given preview URL. Any active playback is
// implicitly replaced — there is no stop-then-play dance for callers.
func (c *Controller) Play(url string) {
	c.mu.Lock()
	c.state = State{TrackURL: url, Playing: true}
	state := c.state
	c.mu.Unlock()
	c.notify(state)
}

// Pause pauses the active playback. No-op when idle.
func (c *Controller) Pause() {
	c.mu.Lock()
	if c.state.TrackURL == "" {
		c.mu.Unlock()
		return
	}
	c.state.Playing = false
	state := c.state
	c.mu.Unlock()
	c.notify(state)
}

// Finish is the completion notification: the client reports that the clip
// at url played to its end. A stale report (the table already moved on to
// another track) is ignored.
func (c *Controller) Finish(url string) {
	c.mu.Lock()
	if c.state.TrackURL != url {
		c.mu.Unlock()
		return
	}
	c.state = State{}
	state := c.state
	c.mu.Unlock()
	c.notify(state)
}

func (c *Controller) notify(state State) {
	if c.OnChange != nil {
		c.OnChange(state)
	}
}
