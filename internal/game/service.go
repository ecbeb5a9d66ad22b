// Package game implements the Quizzik game lifecycle — the state machine at
// the heart of the engine. A single Service owns the authoritative Game
// aggregate for the session; every command the HTTP layer can issue goes
// through a method here, which validates preconditions, produces the next
// aggregate value, and kicks off a best-effort snapshot write.
//
// Two policies shape every method:
//
//  1. Precondition violations are silent no-ops, not errors. Voting while
//     the game isn't playing, adding a fourth pick when the quota is three,
//     revealing an already-revealed round — all of these simply leave the
//     game unchanged. That's the product's contract with the UI: the engine
//     never yells at a confused client, it just refuses to move.
//
//  2. Mutations are copy-on-write. A method clones the current aggregate,
//     edits the clone, and swaps it in. The previous value is never touched
//     again, which is what makes it safe to hand to the persistence
//     goroutine without locks or races.
package game

import (
	"fmt"
	"log"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/adurand/quizzik/internal/models"
	"github.com/adurand/quizzik/internal/scoring"
)

// Store is the slice of the persistence collaborator the lifecycle needs.
// Snapshot writes are best-effort: the in-memory aggregate is the source of
// truth for the session, and a failed write must never block or roll back
// the mutation that triggered it.
type Store interface {
	SaveSnapshot(game *models.Game) error
	LoadSnapshot() (*models.Game, error)
	ClearSnapshot() error
}

// Service owns the Game aggregate. All access goes through its methods;
// the mutex makes them safe to call from concurrent HTTP handlers even
// though the product is effectively single-actor (one device, one table
// of players).
type Service struct {
	mu    sync.Mutex
	game  *models.Game
	store Store
	rng   *rand.Rand
	now   func() time.Time
}

// NewService creates a lifecycle service persisting through store.
// The service starts with no game; call Load to restore a saved session or
// CreateGame to begin a fresh one.
func NewService(store Store) *Service {
	return &Service{
		store: store,
		rng:   rand.New(rand.NewSource(time.Now().UnixNano())),
		now:   time.Now,
	}
}

// Load restores the previously saved game snapshot, if one exists.
// Called once at startup so an interrupted session survives a restart.
func (s *Service) Load() error {
	g, err := s.store.LoadSnapshot()
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if g != nil {
		s.game = g
	}
	return nil
}

// Game returns a copy of the current aggregate, or nil if no game exists.
// Callers get a copy so nothing outside the service can mutate game state.
func (s *Service) Game() *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.game.Clone()
}

// CreateGame discards any existing game and starts a fresh one in setup,
// with no players, no picks, and default settings. It always succeeds.
func (s *Service) CreateGame() *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()

	g := &models.Game{
		ID:       uuid.NewString(),
		Players:  []models.Player{},
		Picks:    []models.TrackPick{},
		Rounds:   []models.Round{},
		Settings: models.DefaultSettings(),
		Status:   models.StatusSetup,
	}
	s.swap(g)
	return g.Clone()
}

// AddPlayer appends a player with a fresh id. If no color is given, a
// pseudo-random one is assigned so every avatar renders distinctly.
// Names are not checked for uniqueness, and the operation is legal in any
// status — both quirks inherited from the product, not oversights to fix.
func (s *Service) AddPlayer(name, color string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}

	if color == "" {
		color = fmt.Sprintf("#%06x", s.rng.Intn(0x1000000))
	}
	g := s.game.Clone()
	g.Players = append(g.Players, models.Player{
		ID:    uuid.NewString(),
		Name:  name,
		Color: color,
	})
	s.swap(g)
	return g.Clone()
}

// RemovePlayer removes the player and every pick they own — the cascade is
// what keeps pick ownership referentially intact without a database foreign
// key. No-op if the id doesn't match anyone.
func (s *Service) RemovePlayer(playerID string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}

	g := s.game.Clone()
	players := g.Players[:0]
	for _, p := range g.Players {
		if p.ID != playerID {
			players = append(players, p)
		}
	}
	g.Players = players

	picks := g.Picks[:0]
	for _, p := range g.Picks {
		if p.OwnerID != playerID {
			picks = append(picks, p)
		}
	}
	g.Picks = picks

	s.swap(g)
	return g.Clone()
}

// AddTrackPick appends a new pick for ownerID. Silently refused when the
// owner already holds settings.PicksPerPlayer picks — the quota is a real
// invariant here, not just a disabled button in the UI.
func (s *Service) AddTrackPick(ownerID string, track models.TrackPick) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}
	if len(s.game.PicksByOwner(ownerID)) >= s.game.Settings.PicksPerPlayer {
		return s.game.Clone()
	}

	g := s.game.Clone()
	track.ID = uuid.NewString()
	track.OwnerID = ownerID
	g.Picks = append(g.Picks, track)
	s.swap(g)
	return g.Clone()
}

// RemoveTrackPick removes a pick by id (a player undoing a selection).
// No-op if the id is absent.
func (s *Service) RemoveTrackPick(pickID string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}

	g := s.game.Clone()
	picks := g.Picks[:0]
	for _, p := range g.Picks {
		if p.ID != pickID {
			picks = append(picks, p)
		}
	}
	g.Picks = picks
	s.swap(g)
	return g.Clone()
}

// UpdateSettings adjusts the pick quota while the game is still being set
// up. Once the game is playing (or finished) settings are frozen and the
// call is a no-op.
func (s *Service) UpdateSettings(settings models.GameSettings) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}
	if s.game.Status != models.StatusSetup && s.game.Status != models.StatusAddingPicks {
		return s.game.Clone()
	}

	g := s.game.Clone()
	if settings.PicksPerPlayer <= 0 {
		settings.PicksPerPlayer = models.DefaultPicksPerPlayer
	}
	g.Settings = settings
	s.swap(g)
	return g.Clone()
}

// StartGame shuffles the pick list and opens round 0.
//
// The shuffle must be an unbiased permutation — round order is the game's
// only anonymity mechanism, so a biased shuffle would leak information
// about who picked what. rand.Shuffle is Fisher–Yates.
//
// No-op when there are no picks (an empty shuffled game has no round 0 to
// open) or when the game has already started.
func (s *Service) StartGame() *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil {
		return nil
	}
	if len(s.game.Picks) == 0 || s.game.Status == models.StatusPlaying || s.game.Status == models.StatusFinished {
		return s.game.Clone()
	}

	g := s.game.Clone()
	s.rng.Shuffle(len(g.Picks), func(i, j int) {
		g.Picks[i], g.Picks[j] = g.Picks[j], g.Picks[i]
	})
	g.Status = models.StatusPlaying
	g.CurrentRoundIndex = 0
	g.Rounds = []models.Round{s.newRound(g.Picks[0].ID)}
	s.swap(g)
	return g.Clone()
}

// SubmitVote records voterID's guess about who owns the current round's
// track. A voter who already voted this round has their vote overwritten —
// last write wins, keyed by voter. No-op outside the playing state.
//
// Self-votes are accepted; filtering the voter out of the target list is a
// presentation concern.
func (s *Service) SubmitVote(voterID, targetPlayerID string) *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil || s.game.CurrentRound() == nil {
		return s.game.Clone()
	}

	g := s.game.Clone()
	round := &g.Rounds[g.CurrentRoundIndex]
	vote := models.Vote{VoterID: voterID, TargetPlayerID: targetPlayerID}
	replaced := false
	for i, v := range round.Votes {
		if v.VoterID == voterID {
			round.Votes[i] = vote
			replaced = true
			break
		}
	}
	if !replaced {
		round.Votes = append(round.Votes, vote)
	}
	s.swap(g)
	return g.Clone()
}

// RevealRound discloses the current track's owner and locks in the round's
// scoring. Revealing is one-way and idempotent-guarded: a round that
// already has a revealed owner keeps its awards exactly as they were, no
// matter how many times reveal is called.
func (s *Service) RevealRound() *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil || s.game.CurrentRound() == nil || s.game.CurrentRound().Revealed() {
		return s.game.Clone()
	}

	g := s.game.Clone()
	round := &g.Rounds[g.CurrentRoundIndex]
	ownerID := g.Picks[g.CurrentRoundIndex].OwnerID
	round.RevealedOwnerID = ownerID
	round.PointsAwarded = scoring.Score(round.Votes, ownerID)
	s.swap(g)
	return g.Clone()
}

// NextRound advances play by exactly one round. When the pick list is
// exhausted the game flips to finished instead — terminal, and no empty
// trailing round is created.
func (s *Service) NextRound() *models.Game {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.game == nil || s.game.Status != models.StatusPlaying {
		return s.game.Clone()
	}

	g := s.game.Clone()
	next := g.CurrentRoundIndex + 1
	if next >= len(g.Picks) {
		g.Status = models.StatusFinished
	} else {
		g.CurrentRoundIndex = next
		g.Rounds = append(g.Rounds, s.newRound(g.Picks[next].ID))
	}
	s.swap(g)
	return g.Clone()
}

// ResetGame throws the session away: the in-memory game is dropped and the
// persisted snapshot is cleared. The next CreateGame starts fully fresh.
func (s *Service) ResetGame() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.game = nil
	go func() {
		if err := s.store.ClearSnapshot(); err != nil {
			log.Printf("game: clearing snapshot: %v", err)
		}
	}()
}

func (s *Service) newRound(trackPickID string) models.Round {
	return models.Round{
		ID:            uuid.NewString(),
		TrackPickID:   trackPickID,
		Votes:         []models.Vote{},
		PointsAwarded: []models.PointAward{},
		PlayedAt:      s.now(),
	}
}

// swap installs the next aggregate value and fires the snapshot write.
// The write runs on its own goroutine and is never awaited: a burst of
// commands may race their writes and the last one wins, which is fine —
// each snapshot is the full aggregate, not a delta. Failures are logged
// and swallowed; the in-memory game plays on.
func (s *Service) swap(g *models.Game) {
	s.game = g
	go func() {
		if err := s.store.SaveSnapshot(g); err != nil {
			log.Printf("game: saving snapshot: %v", err)
		}
	}()
}
