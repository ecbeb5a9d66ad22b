// Package models defines the data structures that make up a Quizzik game.
// Unlike a typical CRUD backend, these structs are NOT database tables — the
// whole Game aggregate is persisted as one JSON snapshot after every change
// (see internal/storage). The JSON tags therefore ARE the storage format:
// they're camelCase and must stay stable so snapshots written by an older
// build of the app keep loading in a newer one.
//
// The game itself: each player secretly picks a few tracks, tracks are
// played back anonymously one per round, and everyone else votes on who
// they think picked it. Guessing right earns a point; slipping a track past
// everyone earns the owner a "perfect bluff" bonus.
package models

import "time"

// GameStatus tracks the lifecycle of a game.
// Go doesn't have a built-in enum keyword, so we use a named string type
// plus constants — type safe, and human-readable inside the JSON snapshot.
type GameStatus string

const (
	StatusSetup       GameStatus = "setup"        // Players are being added
	StatusAddingPicks GameStatus = "adding_picks" // Players are secretly choosing their tracks
	StatusPlaying     GameStatus = "playing"      // Rounds in progress: listen, vote, reveal
	StatusFinished    GameStatus = "finished"     // All rounds played; scores are final
)

// Player is one participant in the game. Players exist only inside a single
// Game — there are no accounts and nothing is shared across games.
type Player struct {
	ID    string `json:"id"`              // Opaque unique ID, generated at creation
	Name  string `json:"name"`            // Display name; no uniqueness requirement
	Color string `json:"color,omitempty"` // Cosmetic hex color, assigned randomly if not given
}

// TrackPick is a track secretly chosen by exactly one player.
// The metadata comes from the Deezer catalog at pick time; CatalogTrackID
// keeps Deezer's own id separate from our internal ID so the UI can detect
// when two players picked the same song.
type TrackPick struct {
	ID             string `json:"id"`
	OwnerID        string `json:"ownerId"`              // The player who picked this track
	CatalogTrackID string `json:"deezerTrackId"`        // Deezer's track id, kept for de-duplication
	Title          string `json:"title"`
	Artist         string `json:"artist"`
	PreviewURL     string `json:"previewUrl"`           // 30s preview clip played during the round
	AlbumCover     string `json:"albumCover,omitempty"` // Optional cover art URL
}

// Vote is one player's statement about who owns the current round's track.
// At most one vote per voter exists in a round — re-voting overwrites.
type Vote struct {
	VoterID        string `json:"voterId"`
	TargetPlayerID string `json:"targetPlayerId"`
}

// PointAward is a single score delta produced at reveal time.
type PointAward struct {
	PlayerID string `json:"playerId"`
	Delta    int    `json:"delta"`
}

// Round is the play unit for one track pick: listen, vote, reveal.
// A round transitions exactly once from open (RevealedOwnerID empty) to
// revealed, and PointsAwarded is populated only by that reveal.
type Round struct {
	ID              string       `json:"id"`
	TrackPickID     string       `json:"trackPickId"`
	Votes           []Vote       `json:"votes"`
	RevealedOwnerID string       `json:"revealedOwnerId,omitempty"` // Empty until the reveal
	PointsAwarded   []PointAward `json:"pointsAwarded"`
	PlayedAt        time.Time    `json:"playedAt"`
}

// Revealed reports whether this round's owner has already been disclosed.
// A revealed round must never be re-scored.
func (r *Round) Revealed() bool {
	return r.RevealedOwnerID != ""
}

// GameSettings holds the knobs chosen during setup. Settings are immutable
// once the game enters play.
type GameSettings struct {
	PicksPerPlayer    int  `json:"picksPerPlayer"`              // How many tracks each player submits (3, or 3–5 with premium)
	DiscussionSeconds int  `json:"discussionSeconds,omitempty"` // Optional discussion timer shown between listen and vote
	PremiumEnabled    bool `json:"premiumEnabled"`
}

// DefaultPicksPerPlayer is the free-tier pick count and the fallback applied
// when a snapshot from an old build is missing its settings.
const DefaultPicksPerPlayer = 3

// DefaultSettings returns the settings every new game starts with.
func DefaultSettings() GameSettings {
	return GameSettings{PicksPerPlayer: DefaultPicksPerPlayer}
}

// Game is the aggregate root — the single source of truth for one play
// session. Ordering matters everywhere:
//   - players: insertion order is the turn order for pick collection and
//     the tie-break order for the final ranking
//   - picks: shuffled once at game start; after that, picks[i] is the track
//     for round i
//   - rounds: index-aligned with picks; rounds[i] exists only once play has
//     reached round i
type Game struct {
	ID                string       `json:"id"`
	Players           []Player     `json:"players"`
	Picks             []TrackPick  `json:"picks"`
	Rounds            []Round      `json:"rounds"`
	Settings          GameSettings `json:"settings"`
	Status            GameStatus   `json:"status"`
	CurrentRoundIndex int          `json:"currentRoundIndex"` // Meaningful only while Status == playing
}

// CurrentRound returns the round being played right now, or nil if the game
// isn't in the playing state or the index has no round — or no pick — behind
// it. The pick bound matters: pick removal carries no status gate, so the
// pick list can shrink mid-play, and rounds[i] is only meaningful while
// picks[i] exists. nil beats a panic at an API boundary.
func (g *Game) CurrentRound() *Round {
	if g.Status != StatusPlaying || g.CurrentRoundIndex < 0 ||
		g.CurrentRoundIndex >= len(g.Rounds) || g.CurrentRoundIndex >= len(g.Picks) {
		return nil
	}
	return &g.Rounds[g.CurrentRoundIndex]
}

// PicksByOwner returns the picks currently held by the given player.
func (g *Game) PicksByOwner(playerID string) []TrackPick {
	var picks []TrackPick
	for _, p := range g.Picks {
		if p.OwnerID == playerID {
			picks = append(picks, p)
		}
	}
	return picks
}

// Clone returns a deep copy of the game. The lifecycle service hands copies
// to the persistence goroutine and to API callers so that nobody can reach
// back into the aggregate the service owns.
//
// Emptiness is preserved: a fresh game's empty player/pick/round lists must
// stay [] (not null) in the JSON snapshot, because that is the shape the
// historical snapshot format uses.
func (g *Game) Clone() *Game {
	if g == nil {
		return nil
	}
	out := *g
	out.Players = cloneSlice(g.Players)
	out.Picks = cloneSlice(g.Picks)
	if g.Rounds != nil {
		out.Rounds = make([]Round, len(g.Rounds))
		for i, r := range g.Rounds {
			r.Votes = cloneSlice(r.Votes)
			r.PointsAwarded = cloneSlice(r.PointsAwarded)
			out.Rounds[i] = r
		}
	}
	return &out
}

// cloneSlice copies a slice, keeping nil nil and empty empty.
func cloneSlice[T any](s []T) []T {
	if s == nil {
		return nil
	}
	out := make([]T, len(s))
	copy(out, s)
	return out
}

// ResultPlayer is one line of a finished game's leaderboard.
type ResultPlayer struct {
	Name  string `json:"name"`
	Score int    `json:"score"`
	Color string `json:"color,omitempty"`
}

// GameResult is the compact record written to the bounded history log when
// a game finishes. Players are ordered by final score, best first.
type GameResult struct {
	ID      string         `json:"id"`   // Same id as the Game it was projected from
	Date    time.Time      `json:"date"` // When the result was recorded
	Players []ResultPlayer `json:"players"`
}
