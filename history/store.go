// Package history records track transitions observed by a snapshot
// source into sqlite. It deliberately never feeds state back into the
// live snapshot: history is a log, not persistence for the current
// session.
package history

import (
	"database/sql"
	"database/sql/driver"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
)

// Colours stores a dominant-colour list as one comma-joined column.
type Colours []string

func (c Colours) Value() (driver.Value, error) {
	return strings.Join(c, ","), nil
}

func (c *Colours) Scan(src any) error {
	s, ok := src.(string)
	if !ok {
		return fmt.Errorf("cannot scan %T into Colours", src)
	}
	if s == "" {
		*c = nil
		return nil
	}
	*c = strings.Split(s, ",")
	return nil
}

// Track is the metadata half of a history row, deduplicated by the
// snapshot-derived track identity.
type Track struct {
	ID              string  `db:"id"`
	Title           string  `db:"title"`
	Artist          string  `db:"artist"`
	Album           string  `db:"album"`
	AppBundleID     string  `db:"app_bundle_id"`
	AppName         string  `db:"app_name"`
	Duration        float64 `db:"duration"`
	Image           string  `db:"image"`
	DominantColours Colours `db:"dominant_colours"`
}

// Play is one listen of a Track. A play stays open while updates keep
// arriving for the same track and is left behind once the track
// changes.
type Play struct {
	ID        int       `db:"id"`
	TrackID   string    `db:"track_id"`
	StartedAt time.Time `db:"started_at"`
	UpdatedAt time.Time `db:"updated_at"`
	Elapsed   float64   `db:"elapsed"`
}

// Entry is a Play joined with its Track for clients rendering history.
type Entry struct {
	ID              string  `db:"id" json:"id"`
	Title           string  `db:"title" json:"title"`
	Artist          string  `db:"artist" json:"artist"`
	Album           string  `db:"album" json:"album"`
	AppBundleID     string  `db:"app_bundle_id" json:"app_bundle_id"`
	AppName         string  `db:"app_name" json:"app_name"`
	Duration        float64 `db:"duration" json:"duration"`
	Image           string  `db:"image" json:"image"`
	DominantColours Colours `db:"dominant_colours" json:"dominant_colours"`

	PlayID    int       `db:"play_id" json:"-"`
	StartedAt time.Time `db:"started_at" json:"started_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
	Elapsed   float64   `db:"elapsed" json:"elapsed"`
}

type Store struct {
	db *sqlx.DB
}

func NewStore(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// RecordPlay upserts the track metadata and either refreshes the most
// recent play of that track or opens a new one when the track changed.
func (s *Store) RecordPlay(track Track, elapsed float64) error {
	tx, err := s.db.Beginx()
	if err != nil {
		return err
	}

	var committed bool
	defer func() {
		if !committed {
			tx.Rollback()
		}
	}()

	_, err = tx.NamedExec(`
	  INSERT INTO tracks
	  (id, title, artist, album, app_bundle_id, app_name, duration, image, dominant_colours)
	  VALUES (:id, :title, :artist, :album, :app_bundle_id, :app_name, :duration, :image, :dominant_colours)
	  ON CONFLICT (id) DO NOTHING`,
		track)
	if err != nil {
		return fmt.Errorf("failed to insert track: %w", err)
	}

	now := time.Now()

	var latest Play
	err = tx.Get(&latest, `
	  SELECT id, track_id, started_at, updated_at, elapsed
	  FROM plays
	  ORDER BY updated_at DESC LIMIT 1`)

	if err == nil && latest.TrackID == track.ID {
		_, err = tx.Exec(`
		  UPDATE plays SET elapsed = ?, updated_at = ? WHERE id = ?`,
			elapsed, now, latest.ID)
		if err != nil {
			return err
		}
	} else if err == nil || errors.Is(err, sql.ErrNoRows) {
		_, err = tx.Exec(`
		  INSERT INTO plays (track_id, started_at, updated_at, elapsed)
		  VALUES (?, ?, ?, ?)`,
			track.ID, now, now, elapsed)
		if err != nil {
			return fmt.Errorf("failed to insert play: %w", err)
		}
	} else {
		return err
	}

	if err = tx.Commit(); err != nil {
		return err
	}
	committed = true
	return nil
}

// GetRecent returns the latest plays, newest first.
func (s *Store) GetRecent(limit int) ([]Entry, error) {
	if limit <= 0 {
		return nil, fmt.Errorf("must request at least one historical item")
	}

	var results []Entry
	err := s.db.Select(&results, `
	  SELECT
	    t.id, t.title, t.artist, t.album, t.app_bundle_id, t.app_name,
	    t.duration, t.image, t.dominant_colours,
	    p.id AS play_id, p.started_at, p.updated_at, p.elapsed
	  FROM tracks t
	  JOIN plays p ON t.id = p.track_id
	  ORDER BY p.updated_at DESC
	  LIMIT ?`, limit)

	return results, err
}
