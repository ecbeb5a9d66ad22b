// Package history turns a finished game into its immutable leaderboard
// record and appends it to the bounded history log. It runs exactly once
// per game: the projection is triggered when play reaches the finished
// state, and a duplicate-id guard makes repeat triggers harmless.
package history

import (
	"sort"
	"time"

	"github.com/adurand/quizzik/internal/models"
	"github.com/adurand/quizzik/internal/scoring"
)

// Log is the slice of the persistence collaborator this package needs.
// The log is bounded (oldest entries are evicted by the store) and ordered
// most-recent-first.
type Log interface {
	AppendResult(result models.GameResult) error
	Results() ([]models.GameResult, error)
}

// ProjectResult derives the final leaderboard from a game: each player's
// total is the sum of their deltas across all revealed rounds, ranked by
// total descending. Ties keep the original player order — sort.SliceStable
// gives us exactly that, and no stronger tie-break is promised.
func ProjectResult(g *models.Game, now time.Time) models.GameResult {
	totals := scoring.Totals(g.Rounds)

	players := make([]models.ResultPlayer, 0, len(g.Players))
	for _, p := range g.Players {
		players = append(players, models.ResultPlayer{
			Name:  p.Name,
			Score: totals[p.ID],
			Color: p.Color,
		})
	}
	sort.SliceStable(players, func(i, j int) bool {
		return players[i].Score > players[j].Score
	})

	return models.GameResult{ID: g.ID, Date: now, Players: players}
}

// Record projects the game's result and appends it to the log, unless a
// record with the same game id is already there. Returns true when a new
// record was written.
//
// Only finished games with players produce a record; anything else is
// skipped — the caller owns the "trigger on finish" timing, this guard
// just makes double triggers and stray calls safe.
func Record(log Log, g *models.Game, now time.Time) (bool, error) {
	if g == nil || g.Status != models.StatusFinished || len(g.Players) == 0 {
		return false, nil
	}

	existing, err := log.Results()
	if err != nil {
		return false, err
	}
	for _, r := range existing {
		if r.ID == g.ID {
			return false, nil
		}
	}

	if err := log.AppendResult(ProjectResult(g, now)); err != nil {
		return false, err
	}
	return true, nil
}
