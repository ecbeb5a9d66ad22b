package audio

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPlayReplacesActivePlayback(t *testing.T) {
	c := NewController()

	c.Play("http://a.mp3")
	c.Play("http://b.mp3")

	state := c.State()
	assert.Equal(t, "http://b.mp3", state.TrackURL)
	assert.True(t, state.Playing)
}

func TestPauseWhenIdleIsANoOp(t *testing.T) {
	c := NewController()
	var changes []State
	c.OnChange = func(s State) { changes = append(changes, s) }

	c.Pause()

	assert.Empty(t, changes)
	assert.Equal(t, State{}, c.State())
}

func TestPauseKeepsTrackLoaded(t *testing.T) {
	c := NewController()
	c.Play("http://a.mp3")

	c.Pause()

	state := c.State()
	assert.Equal(t, "http://a.mp3", state.TrackURL)
	assert.False(t, state.Playing)
}

func TestFinishClearsOnlyMatchingTrack(t *testing.T) {
	c := NewController()
	c.Play("http://a.mp3")
	c.Play("http://b.mp3")

	// Stale completion from the clip that was replaced: ignored.
	c.Finish("http://a.mp3")
	assert.Equal(t, "http://b.mp3", c.State().TrackURL)

	c.Finish("http://b.mp3")
	assert.Equal(t, State{}, c.State())
}

func TestOnChangeSeesEveryTransition(t *testing.T) {
	c := NewController()
	var changes []State
	c.OnChange = func(s State) { changes = append(changes, s) }

	c.Play("http://a.mp3")
	c.Pause()
	c.Play("http://a.mp3")
	c.Finish("http://a.mp3")

	assert.Equal(t, []State{
		{TrackURL: "http://a.mp3", Playing: true},
		{TrackURL: "http://a.mp3", Playing: false},
		{TrackURL: "http://a.mp3", Playing: true},
		{},
	}, changes)
}
