// Package storage is the persistence collaborator: a thin GORM layer over
// a local sqlite file. It stores three kinds of state:
//
//   - the current game, as one JSON snapshot row rewritten after every
//     mutation (the snapshot IS the save file — there is no per-entity
//     schema to migrate when the game model grows a field)
//   - the history log: one row per finished game, bounded to the five most
//     recent, oldest silently evicted
//   - boolean flags: premium entitlement and onboarding-seen
//
// Everything here is best-effort from the engine's point of view: callers
// log failures and move on, because the in-memory aggregate is the source
// of truth for a running session.
package storage

import (
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/adurand/quizzik/internal/models"
)

// HistoryLimit caps the history log. Appending a sixth result evicts the
// oldest.
const HistoryLimit = 5

// Flag names used by the app.
const (
	FlagPremium    = "premium_enabled"
	FlagOnboarding = "onboarding_completed"
)

const snapshotName = "current_game"

// Snapshot is the single-row table holding the serialized Game aggregate.
type Snapshot struct {
	Name      string `gorm:"primaryKey"`
	Data      []byte `gorm:"not null"` // JSON-encoded models.Game
	UpdatedAt time.Time
}

// ResultRow is one entry of the bounded history log.
type ResultRow struct {
	ID        string `gorm:"primaryKey"` // The finished game's id — natural dedup key
	Data      []byte `gorm:"not null"`   // JSON-encoded models.GameResult
	CreatedAt time.Time
}

// Flag is a named boolean (premium entitlement, onboarding-seen).
type Flag struct {
	Name      string `gorm:"primaryKey"`
	Value     bool   `gorm:"not null"`
	UpdatedAt time.Time
}

// Storage wraps the database handle. It satisfies game.Store and
// history.Log, plus the flag accessors the premium gate needs.
type Storage struct {
	db *gorm.DB
}

// New wraps an open GORM handle.
func New(db *gorm.DB) *Storage {
	return &Storage{db: db}
}

// SaveSnapshot serializes the game and upserts the single snapshot row.
func (s *Storage) SaveSnapshot(game *models.Game) error {
	data, err := json.Marshal(game)
	if err != nil {
		return err
	}
	row := Snapshot{Name: snapshotName, Data: data, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"data", "updated_at"}),
	}).Create(&row).Error
}

// LoadSnapshot returns the saved game, or (nil, nil) when none exists —
// an absent snapshot is a normal first-launch condition, not an error.
//
// Old snapshots are loaded leniently: a snapshot written before the
// settings field existed comes back with zero settings, which we replace
// with defaults rather than failing the load.
func (s *Storage) LoadSnapshot() (*models.Game, error) {
	var row Snapshot
	err := s.db.First(&row, "name = ?", snapshotName).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var game models.Game
	if err := json.Unmarshal(row.Data, &game); err != nil {
		return nil, err
	}
	if game.Settings.PicksPerPlayer <= 0 {
		game.Settings = models.DefaultSettings()
	}
	return &game, nil
}

// ClearSnapshot deletes the saved game, if any.
func (s *Storage) ClearSnapshot() error {
	return s.db.Delete(&Snapshot{}, "name = ?", snapshotName).Error
}

// AppendResult writes a finished game's record to the history log and
// evicts anything beyond the newest HistoryLimit entries. A record with an
// id already in the log is ignored (the projection also guards for this;
// the ON CONFLICT is the belt to its suspenders at the storage boundary).
func (s *Storage) AppendResult(result models.GameResult) error {
	data, err := json.Marshal(result)
	if err != nil {
		return err
	}
	row := ResultRow{ID: result.ID, Data: data, CreatedAt: time.Now()}
	if err := s.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&row).Error; err != nil {
		return err
	}

	// Evict the oldest rows past the cap. sqlite has no LIMIT on DELETE by
	// default, so select the survivors and delete the complement.
	var keep []string
	if err := s.db.Model(&ResultRow{}).
		Order("created_at DESC").
		Limit(HistoryLimit).
		Pluck("id", &keep).Error; err != nil {
		return err
	}
	return s.db.Delete(&ResultRow{}, "id NOT IN ?", keep).Error
}

// Results returns the history log, most recent first, at most HistoryLimit
// entries. Rows that fail to decode are skipped rather than poisoning the
// whole list.
func (s *Storage) Results() ([]models.GameResult, error) {
	var rows []ResultRow
	if err := s.db.Order("created_at DESC").Limit(HistoryLimit).Find(&rows).Error; err != nil {
		return nil, err
	}

	results := make([]models.GameResult, 0, len(rows))
	for _, row := range rows {
		var r models.GameResult
		if err := json.Unmarshal(row.Data, &r); err != nil {
			continue
		}
		results = append(results, r)
	}
	return results, nil
}

// ClearResults empties the history log.
func (s *Storage) ClearResults() error {
	return s.db.Where("1 = 1").Delete(&ResultRow{}).Error
}

// SetPremium records the premium entitlement flag.
func (s *Storage) SetPremium(enabled bool) error {
	return s.setFlag(FlagPremium, enabled)
}

// IsPremium reports the premium entitlement flag; false when unset or on
// read failure (a missing flag must never lock a user out of free play).
func (s *Storage) IsPremium() bool {
	return s.flag(FlagPremium)
}

// SetOnboardingCompleted marks the onboarding walkthrough as seen.
func (s *Storage) SetOnboardingCompleted() error {
	return s.setFlag(FlagOnboarding, true)
}

// HasCompletedOnboarding reports whether onboarding was completed.
func (s *Storage) HasCompletedOnboarding() bool {
	return s.flag(FlagOnboarding)
}

func (s *Storage) setFlag(name string, value bool) error {
	row := Flag{Name: name, Value: value, UpdatedAt: time.Now()}
	return s.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "name"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&row).Error
}

func (s *Storage) flag(name string) bool {
	var row Flag
	if err := s.db.First(&row, "name = ?", name).Error; err != nil {
		return false
	}
	return row.Value
}
