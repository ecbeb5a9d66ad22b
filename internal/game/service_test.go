package game

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adurand/quizzik/internal/models"
)

// fakeStore records snapshot writes. It must be safe for concurrent use
// because the service persists from goroutines.
type fakeStore struct {
	mu        sync.Mutex
	saved     *models.Game
	saveCount int
	loadGame  *models.Game
	cleared   int
}

func (f *fakeStore) SaveSnapshot(g *models.Game) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.saved = g
	f.saveCount++
	return nil
}

func (f *fakeStore) LoadSnapshot() (*models.Game, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.loadGame, nil
}

func (f *fakeStore) ClearSnapshot() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cleared++
	return nil
}

func (f *fakeStore) clearedCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.cleared
}

func (f *fakeStore) lastSaved() *models.Game {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.saved
}

func newTestService() (*Service, *fakeStore) {
	store := &fakeStore{}
	return NewService(store), store
}

// setupGame builds a game with the given players each holding one pick,
// with picksPerPlayer set to 1 so the game is "complete" for a start.
func setupGame(t *testing.T, svc *Service, names ...string) []models.Player {
	t.Helper()
	svc.CreateGame()
	svc.UpdateSettings(models.GameSettings{PicksPerPlayer: 1})

	var players []models.Player
	for _, name := range names {
		g := svc.AddPlayer(name, "")
		players = g.Players
	}
	for _, p := range players {
		svc.AddTrackPick(p.ID, models.TrackPick{Title: "track by " + p.Name, PreviewURL: "http://x/" + p.ID})
	}
	return players
}

func TestCreateGame(t *testing.T) {
	svc, _ := newTestService()

	g := svc.CreateGame()

	require.NotNil(t, g)
	assert.NotEmpty(t, g.ID)
	assert.Equal(t, models.StatusSetup, g.Status)
	assert.Empty(t, g.Players)
	assert.Empty(t, g.Picks)
	assert.Empty(t, g.Rounds)
	assert.Equal(t, models.DefaultPicksPerPlayer, g.Settings.PicksPerPlayer)
}

func TestOperationsWithoutGameAreNoOps(t *testing.T) {
	svc, _ := newTestService()

	assert.Nil(t, svc.AddPlayer("Ana", ""))
	assert.Nil(t, svc.StartGame())
	assert.Nil(t, svc.SubmitVote("a", "b"))
	assert.Nil(t, svc.RevealRound())
	assert.Nil(t, svc.NextRound())
	assert.Nil(t, svc.Game())
}

func TestAddPlayerAssignsIDAndColor(t *testing.T) {
	svc, _ := newTestService()
	svc.CreateGame()

	g := svc.AddPlayer("Ana", "")
	require.Len(t, g.Players, 1)
	assert.NotEmpty(t, g.Players[0].ID)
	assert.Regexp(t, `^#[0-9a-f]{6}$`, g.Players[0].Color)

	g = svc.AddPlayer("Ben", "#ff0000")
	require.Len(t, g.Players, 2)
	assert.Equal(t, "#ff0000", g.Players[1].Color)

	// Duplicate names are allowed — identity is the id, not the name.
	g = svc.AddPlayer("Ana", "")
	assert.Len(t, g.Players, 3)
}

func TestRemovePlayerCascadesPicks(t *testing.T) {
	svc, _ := newTestService()
	players := setupGame(t, svc, "Ana", "Ben", "Carl")

	g := svc.RemovePlayer(players[1].ID)

	require.Len(t, g.Players, 2)
	require.Len(t, g.Picks, 2)
	for _, p := range g.Picks {
		assert.NotEqual(t, players[1].ID, p.OwnerID, "removed player's picks must be gone")
	}

	// Unknown id is a no-op.
	g2 := svc.RemovePlayer("nope")
	assert.Equal(t, g.Players, g2.Players)
	assert.Equal(t, g.Picks, g2.Picks)
}

func TestAddTrackPickEnforcesQuota(t *testing.T) {
	svc, _ := newTestService()
	svc.CreateGame()
	g := svc.AddPlayer("Ana", "")
	ana := g.Players[0].ID
	g = svc.AddPlayer("Ben", "")
	ben := g.Players[1].ID

	for i := 0; i < models.DefaultPicksPerPlayer; i++ {
		g = svc.AddTrackPick(ana, models.TrackPick{Title: "t"})
	}
	require.Len(t, g.Picks, models.DefaultPicksPerPlayer)

	// A fourth pick for Ana is silently refused…
	g = svc.AddTrackPick(ana, models.TrackPick{Title: "over quota"})
	assert.Len(t, g.Picks, models.DefaultPicksPerPlayer)

	// …but Ben's quota is his own.
	g = svc.AddTrackPick(ben, models.TrackPick{Title: "bens"})
	assert.Len(t, g.Picks, models.DefaultPicksPerPlayer+1)
}

func TestAddTrackPickAssignsIdentity(t *testing.T) {
	svc, _ := newTestService()
	svc.CreateGame()
	g := svc.AddPlayer("Ana", "")
	ana := g.Players[0].ID

	g = svc.AddTrackPick(ana, models.TrackPick{
		CatalogTrackID: "12345",
		Title:          "Song",
		Artist:         "Artist",
		PreviewURL:     "http://preview",
	})

	require.Len(t, g.Picks, 1)
	pick := g.Picks[0]
	assert.NotEmpty(t, pick.ID)
	assert.NotEqual(t, "12345", pick.ID, "internal id must be distinct from the catalog id")
	assert.Equal(t, "12345", pick.CatalogTrackID)
	assert.Equal(t, ana, pick.OwnerID)
}

func TestRemoveTrackPick(t *testing.T) {
	svc, _ := newTestService()
	setupGame(t, svc, "Ana", "Ben")

	g := svc.Game()
	removed := g.Picks[0].ID
	g = svc.RemoveTrackPick(removed)

	require.Len(t, g.Picks, 1)
	assert.NotEqual(t, removed, g.Picks[0].ID)

	// Absent id: no-op.
	g = svc.RemoveTrackPick("nope")
	assert.Len(t, g.Picks, 1)
}

func TestUpdateSettingsFrozenOncePlaying(t *testing.T) {
	svc, _ := newTestService()
	setupGame(t, svc, "Ana", "Ben", "Carl")

	g := svc.UpdateSettings(models.GameSettings{PicksPerPlayer: 5})
	assert.Equal(t, 5, g.Settings.PicksPerPlayer)

	svc.StartGame()
	g = svc.UpdateSettings(models.GameSettings{PicksPerPlayer: 3})
	assert.Equal(t, 5, g.Settings.PicksPerPlayer, "settings are immutable once playing")
}

func TestStartGame(t *testing.T) {
	svc, _ := newTestService()
	setupGame(t, svc, "Ana", "Ben", "Carl")
	before := svc.Game()

	g := svc.StartGame()

	assert.Equal(t, models.StatusPlaying, g.Status)
	assert.Equal(t, 0, g.CurrentRoundIndex)
	require.Len(t, g.Rounds, 1, "only round 0 exists at start")
	assert.Equal(t, g.Picks[0].ID, g.Rounds[0].TrackPickID)
	assert.Empty(t, g.Rounds[0].Votes)
	assert.False(t, g.Rounds[0].Revealed())

	// The shuffle is a permutation: same picks, possibly different order.
	beforeIDs := map[string]bool{}
	for _, p := range before.Picks {
		beforeIDs[p.ID] = true
	}
	require.Len(t, g.Picks, len(before.Picks))
	for _, p := range g.Picks {
		assert.True(t, beforeIDs[p.ID])
	}
}

func TestStartGameWithoutPicksIsANoOp(t *testing.T) {
	svc, _ := newTestService()
	svc.CreateGame()
	svc.AddPlayer("Ana", "")

	g := svc.StartGame()

	assert.Equal(t, models.StatusSetup, g.Status)
	assert.Empty(t, g.Rounds)
}

func TestStartGameTwiceDoesNotReshuffle(t *testing.T) {
	svc, _ := newTestService()
	setupGame(t, svc, "Ana", "Ben", "Carl")
	first := svc.StartGame()

	second := svc.StartGame()

	assert.Equal(t, first.Picks, second.Picks)
	assert.Equal(t, first.Rounds, second.Rounds)
}

func TestSubmitVoteUpsertsByVoter(t *testing.T) {
	svc, _ := newTestService()
	players := setupGame(t, svc, "Ana", "Ben", "Carl")
	svc.StartGame()
	ana, ben, carl := players[0].ID, players[1].ID, players[2].ID

	svc.SubmitVote(ben, ana)
	g := svc.SubmitVote(carl, ana)
	require.Len(t, g.Rounds[0].Votes, 2)

	// Ben changes his mind: still two votes, his target updated in place.
	g = svc.SubmitVote(ben, carl)
	require.Len(t, g.Rounds[0].Votes, 2)
	assert.Equal(t, models.Vote{VoterID: ben, TargetPlayerID: carl}, g.Rounds[0].Votes[0])
}

func TestSubmitVoteOutsidePlayingIsANoOp(t *testing.T) {
	svc, _ := newTestService()
	players := setupGame(t, svc, "Ana", "Ben")

	g := svc.SubmitVote(players[0].ID, players[1].ID)

	assert.Empty(t, g.Rounds)
	assert.Equal(t, models.StatusSetup, g.Status)
}

func TestRevealRoundScoresAndIsIdempotent(t *testing.T) {
	svc, _ := newTestService()
	players := setupGame(t, svc, "Ana", "Ben", "Carl")
	g := svc.StartGame()

	owner := g.Picks[0].OwnerID
	var guesser, wrong string
	for _, p := range players {
		if p.ID != owner {
			if guesser == "" {
				guesser = p.ID
			} else {
				wrong = p.ID
			}
		}
	}
	svc.SubmitVote(guesser, owner)
	svc.SubmitVote(wrong, guesser)

	g = svc.RevealRound()
	round := g.Rounds[0]
	assert.Equal(t, owner, round.RevealedOwnerID)
	assert.Equal(t, []models.PointAward{{PlayerID: guesser, Delta: 1}}, round.PointsAwarded)

	// Second reveal changes nothing, even if votes sneak in between.
	svc.SubmitVote(wrong, owner)
	again := svc.RevealRound()
	assert.Equal(t, round.RevealedOwnerID, again.Rounds[0].RevealedOwnerID)
	assert.Equal(t, round.PointsAwarded, again.Rounds[0].PointsAwarded)
}

func TestRevealRoundPerfectBluff(t *testing.T) {
	svc, _ := newTestService()
	players := setupGame(t, svc, "Ana", "Ben", "Carl")
	g := svc.StartGame()

	owner := g.Picks[0].OwnerID
	var others []string
	for _, p := range players {
		if p.ID != owner {
			others = append(others, p.ID)
		}
	}
	// Everyone points at somebody other than the owner.
	svc.SubmitVote(others[0], others[1])
	svc.SubmitVote(others[1], others[0])

	g = svc.RevealRound()

	assert.Equal(t, []models.PointAward{{PlayerID: owner, Delta: 2}}, g.Rounds[0].PointsAwarded)
}

func TestRevealAfterPickRemovedMidPlayIsANoOp(t *testing.T) {
	svc, _ := newTestService()
	players := setupGame(t, svc, "Ana", "Ben", "Carl")
	svc.StartGame()

	// Pick removal carries no status gate, so a pick can vanish while its
	// round is current. Advance to the last round, then pull its pick out
	// from under it.
	svc.RevealRound()
	svc.NextRound()
	svc.RevealRound()
	g := svc.NextRound()
	require.Equal(t, 2, g.CurrentRoundIndex)

	g = svc.RemoveTrackPick(g.Picks[2].ID)
	require.Len(t, g.Picks, 2)

	// The orphaned round can no longer be revealed or voted on.
	g = svc.RevealRound()
	assert.False(t, g.Rounds[2].Revealed(), "a round without a pick must stay unrevealed")
	assert.Empty(t, g.Rounds[2].PointsAwarded)

	g = svc.SubmitVote(players[0].ID, players[1].ID)
	assert.Empty(t, g.Rounds[2].Votes)
}

func TestNextRoundAdvancesByExactlyOne(t *testing.T) {
	svc, _ := newTestService()
	setupGame(t, svc, "Ana", "Ben", "Carl")
	g := svc.StartGame()
	require.Len(t, g.Picks, 3)

	for i := 1; i < 3; i++ {
		svc.RevealRound()
		g = svc.NextRound()
		assert.Equal(t, i, g.CurrentRoundIndex)
		require.Len(t, g.Rounds, i+1)
		assert.Equal(t, g.Picks[i].ID, g.Rounds[i].TrackPickID)
		assert.Equal(t, models.StatusPlaying, g.Status)
	}

	// Advancing past the last pick finishes the game without opening a
	// phantom round.
	svc.RevealRound()
	g = svc.NextRound()
	assert.Equal(t, models.StatusFinished, g.Status)
	assert.Len(t, g.Rounds, 3)

	// Terminal: further advances are no-ops.
	g = svc.NextRound()
	assert.Equal(t, models.StatusFinished, g.Status)
	assert.Len(t, g.Rounds, 3)
}

func TestResetGame(t *testing.T) {
	svc, store := newTestService()
	setupGame(t, svc, "Ana", "Ben")

	svc.ResetGame()

	assert.Nil(t, svc.Game())
	require.Eventually(t, func() bool {
		return store.clearedCount() > 0
	}, time.Second, 10*time.Millisecond, "reset must clear the persisted snapshot")
}

func TestMutationsPersistSnapshots(t *testing.T) {
	svc, store := newTestService()

	g := svc.CreateGame()

	require.Eventually(t, func() bool {
		saved := store.lastSaved()
		return saved != nil && saved.ID == g.ID
	}, time.Second, 10*time.Millisecond, "every mutation must write a snapshot")
}

func TestLoadRestoresSavedGame(t *testing.T) {
	store := &fakeStore{loadGame: &models.Game{
		ID:       "saved",
		Status:   models.StatusPlaying,
		Settings: models.DefaultSettings(),
		Players:  []models.Player{{ID: "p1", Name: "Ana"}},
	}}
	svc := NewService(store)

	require.NoError(t, svc.Load())

	g := svc.Game()
	require.NotNil(t, g)
	assert.Equal(t, "saved", g.ID)
	assert.Equal(t, models.StatusPlaying, g.Status)
}

func TestGameReturnsACopy(t *testing.T) {
	svc, _ := newTestService()
	setupGame(t, svc, "Ana", "Ben")

	g := svc.Game()
	g.Players[0].Name = "Hacked"
	g.Picks = nil

	fresh := svc.Game()
	assert.Equal(t, "Ana", fresh.Players[0].Name)
	assert.Len(t, fresh.Picks, 2)
}

// Full play-through: three players, one pick each.
func TestThreePlayerScenario(t *testing.T) {
	svc, _ := newTestService()
	players := setupGame(t, svc, "A", "B", "C")
	g := svc.StartGame()

	byID := map[string]models.Player{}
	for _, p := range players {
		byID[p.ID] = p
	}

	for i := 0; i < 3; i++ {
		g = svc.Game()
		require.Equal(t, i, g.CurrentRoundIndex)
		owner := g.Picks[i].OwnerID

		var others []string
		for _, p := range players {
			if p.ID != owner {
				others = append(others, p.ID)
			}
		}
		// First non-owner finds the owner, the second guesses wrong.
		svc.SubmitVote(others[0], owner)
		svc.SubmitVote(others[1], others[0])

		g = svc.RevealRound()
		assert.Equal(t, []models.PointAward{{PlayerID: others[0], Delta: 1}}, g.Rounds[i].PointsAwarded)

		g = svc.NextRound()
	}

	assert.Equal(t, models.StatusFinished, g.Status)
	assert.Len(t, g.Rounds, 3, "exactly one round per pick, created as play advanced")
}
