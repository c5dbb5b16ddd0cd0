package history

import (
	"log/slog"

	"github.com/fogline/earshot/playback"
	"github.com/fogline/earshot/utils"
)

// Recorder turns snapshot change notifications into history rows. It's
// an ordinary listener: attach it with source.Subscribe(rec.Listen).
type Recorder struct {
	store *Store
}

func NewRecorder(store *Store) *Recorder {
	return &Recorder{store: store}
}

// Listen records the snapshot when it identifies a track. Snapshots
// without a title are session noise (app switches, teardown blips) and
// are skipped.
func (r *Recorder) Listen(view playback.Snapshot, ok bool) {
	if !ok || view.Title == nil {
		return
	}

	track := Track{
		ID:              view.TrackID(),
		Title:           *view.Title,
		DominantColours: Colours(view.ArtworkColours),
	}
	if view.Artist != nil {
		track.Artist = *view.Artist
	}
	if view.Album != nil {
		track.Album = *view.Album
	}
	if view.AppBundleID != nil {
		track.AppBundleID = *view.AppBundleID
	}
	if view.AppName != nil {
		track.AppName = *view.AppName
	}
	if view.Duration != nil {
		track.Duration = *view.Duration
	}
	if len(view.ArtworkData) > 0 {
		location, _ := utils.BytesToGUIDLocation(view.ArtworkData, utils.DetectExtension(view.ArtworkData))
		track.Image = location
	}

	var elapsed float64
	if view.Elapsed != nil {
		elapsed = *view.Elapsed
	}

	if err := r.store.RecordPlay(track, elapsed); err != nil {
		slog.Error("Failed to record play", slog.String("stack", err.Error()))
	}
}
