// Package scoring computes the point deltas for a revealed round.
// It is deliberately a pure function of (votes, owner): no clock, no
// randomness, no access to the rest of the game. The lifecycle service
// calls it exactly once per round, at reveal time.
//
// The rule is werewolf-style — it rewards both detection and deception:
//   - every voter who pointed at the true owner earns 1 point
//   - if NOBODY pointed at the owner, the owner pulled off a perfect bluff
//     and earns 2 points
//   - wrong guesses and abstentions earn nothing
package scoring

import "github.com/adurand/quizzik/internal/models"

const (
	// CorrectGuessPoints is awarded to each voter who identified the owner.
	CorrectGuessPoints = 1
	// PerfectBluffPoints is awarded to the owner when no vote found them.
	PerfectBluffPoints = 2
)

// Score returns the point deltas for a round given its votes and the id of
// the player who owns the round's track. The vote list is expected to hold
// at most one vote per voter (the lifecycle service upserts by voter), so a
// player who changed their mind is only counted once.
//
// An owner voting for themself counts as a correct guesser like anyone
// else, which also suppresses their own bluff bonus. The engine doesn't
// special-case it; keeping self-votes out of the game is the UI's call.
func Score(votes []models.Vote, ownerID string) []models.PointAward {
	awards := []models.PointAward{}

	correct := 0
	for _, v := range votes {
		if v.TargetPlayerID == ownerID {
			awards = append(awards, models.PointAward{PlayerID: v.VoterID, Delta: CorrectGuessPoints})
			correct++
		}
	}

	// Perfect bluff: the owner fooled the whole table.
	if correct == 0 {
		awards = append(awards, models.PointAward{PlayerID: ownerID, Delta: PerfectBluffPoints})
	}

	return awards
}

// Totals sums point deltas per player across any number of rounds.
// Only revealed rounds carry awards, so open rounds contribute nothing.
func Totals(rounds []models.Round) map[string]int {
	totals := make(map[string]int)
	for _, r := range rounds {
		for _, a := range r.PointsAwarded {
			totals[a.PlayerID] += a.Delta
		}
	}
	return totals
}
