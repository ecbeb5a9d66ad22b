// Package premium defines the free/premium feature tiers. This is simple
// flag gating, nothing more: whether the premium flag is set lives in
// storage, purchase flows live entirely in the client, and the engine just
// answers "what does this tier allow?".
package premium

// Features describes what a tier allows.
type Features struct {
	MaxPlayers        int  `json:"maxPlayers"`
	MinPicksPerPlayer int  `json:"minPicksPerPlayer"`
	MaxPicksPerPlayer int  `json:"maxPicksPerPlayer"`
	HasHistory        bool `json:"hasHistory"`
	HasStats          bool `json:"hasStats"`
	HasThemes         bool `json:"hasThemes"`
}

// Free is the default tier: four players, exactly three picks each, no
// history access.
var Free = Features{
	MaxPlayers:        4,
	MinPicksPerPlayer: 3,
	MaxPicksPerPlayer: 3,
}

// Premium unlocks bigger tables, adjustable game length, and history.
var Premium = Features{
	MaxPlayers:        10,
	MinPicksPerPlayer: 3,
	MaxPicksPerPlayer: 5,
	HasHistory:        true,
	HasStats:          true,
	HasThemes:         true,
}

// For returns the feature set for the given entitlement.
func For(isPremium bool) Features {
	if isPremium {
		return Premium
	}
	return Free
}

// ClampPicksPerPlayer bounds a requested pick quota to what the tier
// allows. Free users always get exactly three.
func ClampPicksPerPlayer(isPremium bool, n int) int {
	f := For(isPremium)
	if n < f.MinPicksPerPlayer {
		return f.MinPicksPerPlayer
	}
	if n > f.MaxPicksPerPlayer {
		return f.MaxPicksPerPlayer
	}
	return n
}
