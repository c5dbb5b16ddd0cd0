package history

import (
	"testing"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"
	"github.com/pressly/goose/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogline/earshot/migrations"
)

func setupTestDB(t *testing.T) *sqlx.DB {
	db, err := sqlx.Connect("sqlite3", ":memory:")
	require.NoError(t, err)

	goose.SetBaseFS(migrations.GetMigrations())

	err = goose.SetDialect("sqlite3")
	require.NoError(t, err)

	err = goose.Up(db.DB, ".")
	require.NoError(t, err)

	return db
}

func goodSong() Track {
	return Track{
		ID:              "track:12345",
		Title:           "a good song",
		Artist:          "some artist",
		Album:           "an album",
		AppBundleID:     "com.apple.Music",
		AppName:         "Music",
		Duration:        180,
		Image:           "/static/cover.abc.jpeg",
		DominantColours: Colours{"#abc123", "#def456"},
	}
}

func TestStore_RecordPlayInsertsTrackAndPlay(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewStore(db)
	require.NoError(t, s.RecordPlay(goodSong(), 30))

	var track Track
	err := db.Get(&track, "SELECT * FROM tracks WHERE id = ?", "track:12345")
	require.NoError(t, err)
	assert.Equal(t, "a good song", track.Title)
	assert.Equal(t, "some artist", track.Artist)
	assert.Equal(t, Colours{"#abc123", "#def456"}, track.DominantColours)

	entries, err := s.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "track:12345", entries[0].ID)
	assert.Equal(t, 30.0, entries[0].Elapsed)
	assert.Equal(t, "/static/cover.abc.jpeg", entries[0].Image)
}

func TestStore_SameTrackRefreshesOpenPlay(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewStore(db)
	require.NoError(t, s.RecordPlay(goodSong(), 30))
	require.NoError(t, s.RecordPlay(goodSong(), 65))

	var count int
	require.NoError(t, db.Get(&count, "SELECT COUNT(*) FROM plays"))
	assert.Equal(t, 1, count)

	entries, err := s.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, 65.0, entries[0].Elapsed)
}

func TestStore_TrackChangeOpensNewPlay(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewStore(db)
	require.NoError(t, s.RecordPlay(goodSong(), 170))

	time.Sleep(5 * time.Millisecond)

	second := goodSong()
	second.ID = "track:67890"
	second.Title = "a better song"
	require.NoError(t, s.RecordPlay(second, 5))

	time.Sleep(5 * time.Millisecond)

	// Playing the first track again is a fresh listen, not a
	// continuation of the play it left behind.
	require.NoError(t, s.RecordPlay(goodSong(), 0))

	entries, err := s.GetRecent(10)
	require.NoError(t, err)
	require.Len(t, entries, 3)
	assert.Equal(t, "track:12345", entries[0].ID)
	assert.Equal(t, 0.0, entries[0].Elapsed)
	assert.Equal(t, "a better song", entries[1].Title)
	assert.Equal(t, 170.0, entries[2].Elapsed)
}

func TestStore_GetRecentRequiresPositiveLimit(t *testing.T) {
	db := setupTestDB(t)
	defer db.Close()

	s := NewStore(db)
	_, err := s.GetRecent(0)
	assert.Error(t, err)

	_, err = s.GetRecent(-1)
	assert.Error(t, err)
}

func TestColours_RoundTrip(t *testing.T) {
	v, err := Colours{"#abc123", "#def456"}.Value()
	require.NoError(t, err)
	assert.Equal(t, "#abc123,#def456", v)

	var c Colours
	require.NoError(t, c.Scan("#abc123,#def456"))
	assert.Equal(t, Colours{"#abc123", "#def456"}, c)

	require.NoError(t, c.Scan(""))
	assert.Nil(t, c)

	assert.Error(t, c.Scan(42))
}
