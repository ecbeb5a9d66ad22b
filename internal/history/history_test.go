package history

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/adurand/quizzik/internal/models"
)

type fakeLog struct {
	results   []models.GameResult
	appendErr error
	listErr   error
}

func (f *fakeLog) AppendResult(r models.GameResult) error {
	if f.appendErr != nil {
		return f.appendErr
	}
	f.results = append([]models.GameResult{r}, f.results...)
	return nil
}

func (f *fakeLog) Results() ([]models.GameResult, error) {
	return f.results, f.listErr
}

func finishedGame() *models.Game {
	return &models.Game{
		ID:     "g1",
		Status: models.StatusFinished,
		Players: []models.Player{
			{ID: "a", Name: "Ana", Color: "#111111"},
			{ID: "b", Name: "Ben", Color: "#222222"},
			{ID: "c", Name: "Carl"},
		},
		Rounds: []models.Round{
			{PointsAwarded: []models.PointAward{{PlayerID: "b", Delta: 1}}},
			{PointsAwarded: []models.PointAward{{PlayerID: "a", Delta: 2}}},
			{PointsAwarded: []models.PointAward{{PlayerID: "b", Delta: 1}, {PlayerID: "c", Delta: 1}}},
		},
	}
}

func TestProjectResultRanksByTotalDescending(t *testing.T) {
	now := time.Date(2025, 6, 1, 20, 0, 0, 0, time.UTC)

	result := ProjectResult(finishedGame(), now)

	assert.Equal(t, "g1", result.ID)
	assert.Equal(t, now, result.Date)
	require.Len(t, result.Players, 3)
	assert.Equal(t, models.ResultPlayer{Name: "Ana", Score: 2, Color: "#111111"}, result.Players[0])
	assert.Equal(t, models.ResultPlayer{Name: "Ben", Score: 2, Color: "#222222"}, result.Players[1])
	assert.Equal(t, models.ResultPlayer{Name: "Carl", Score: 1}, result.Players[2])
}

func TestProjectResultTiesKeepPlayerOrder(t *testing.T) {
	// Ana and Ben tie at 2; Ana was added first, so she stays first. The
	// tie-break is stability, nothing more.
	result := ProjectResult(finishedGame(), time.Now())

	assert.Equal(t, result.Players[0].Score, result.Players[1].Score)
	assert.Equal(t, "Ana", result.Players[0].Name)
	assert.Equal(t, "Ben", result.Players[1].Name)
}

func TestProjectResultZeroScorePlayersAppear(t *testing.T) {
	g := finishedGame()
	g.Players = append(g.Players, models.Player{ID: "d", Name: "Dave"})

	result := ProjectResult(g, time.Now())

	require.Len(t, result.Players, 4)
	assert.Equal(t, models.ResultPlayer{Name: "Dave", Score: 0}, result.Players[3])
}

func TestRecordAppendsOnce(t *testing.T) {
	log := &fakeLog{}
	g := finishedGame()

	wrote, err := Record(log, g, time.Now())
	require.NoError(t, err)
	assert.True(t, wrote)

	// Triggering the projection again for the same game must not produce a
	// duplicate record.
	wrote, err = Record(log, g, time.Now())
	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Len(t, log.results, 1)
}

func TestRecordSkipsUnfinishedGames(t *testing.T) {
	log := &fakeLog{}
	g := finishedGame()
	g.Status = models.StatusPlaying

	wrote, err := Record(log, g, time.Now())

	require.NoError(t, err)
	assert.False(t, wrote)
	assert.Empty(t, log.results)
}

func TestRecordSkipsNilAndEmptyGames(t *testing.T) {
	log := &fakeLog{}

	wrote, err := Record(log, nil, time.Now())
	require.NoError(t, err)
	assert.False(t, wrote)

	g := finishedGame()
	g.Players = nil
	wrote, err = Record(log, g, time.Now())
	require.NoError(t, err)
	assert.False(t, wrote)
}

func TestRecordSurfacesLogErrors(t *testing.T) {
	boom := errors.New("disk full")

	_, err := Record(&fakeLog{listErr: boom}, finishedGame(), time.Now())
	assert.ErrorIs(t, err, boom)

	_, err = Record(&fakeLog{appendErr: boom}, finishedGame(), time.Now())
	assert.ErrorIs(t, err, boom)
}
