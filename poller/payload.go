// Package poller implements the non-notification snapshot sources:
// a scheduled script poller and a streaming adapter process. Both only
// map an externally produced JSON record into the same snapshot shape
// the notification path maintains.
package poller

import (
	"encoding/base64"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/fogline/earshot/bundle"
	"github.com/fogline/earshot/playback"
	"github.com/fogline/earshot/utils"
)

// scriptRecord is the one-shot JSON document a polling script emits.
// The info keys mirror the native info dictionary.
type scriptRecord struct {
	IsPlaying *bool        `json:"isPlaying"`
	Info      scriptInfo   `json:"info"`
	Client    scriptClient `json:"client"`
}

type scriptInfo struct {
	Title     *string  `json:"kMRMediaRemoteNowPlayingInfoTitle"`
	Artist    *string  `json:"kMRMediaRemoteNowPlayingInfoArtist"`
	Album     *string  `json:"kMRMediaRemoteNowPlayingInfoAlbum"`
	Duration  *float64 `json:"kMRMediaRemoteNowPlayingInfoDuration"`
	Elapsed   *float64 `json:"kMRMediaRemoteNowPlayingInfoElapsedTime"`
	Timestamp *uint64  `json:"kMRMediaRemoteNowPlayingInfoTimestamp"` // ms since epoch
}

type scriptClient struct {
	BundleID       string `json:"bundleIdentifier"`
	ParentBundleID string `json:"parentApplicationBundleIdentifier"`
}

var errNoClient = errors.New("record carries no bundle identifier")

// snapshotFromScript maps a script record to a full snapshot. The
// record is only usable when it names a client application we can
// resolve; per-field absence is fine and stays nil.
func snapshotFromScript(rec *scriptRecord, resolver bundle.Resolver, now time.Time) (*playback.Snapshot, error) {
	bundleID := rec.Client.ParentBundleID
	if bundleID == "" {
		bundleID = rec.Client.BundleID
	}
	if bundleID == "" {
		return nil, errNoClient
	}

	info, ok := resolver.Resolve(bundleID)
	if !ok {
		return nil, errNoClient
	}

	snap := &playback.Snapshot{
		Playing:     rec.IsPlaying,
		Title:       rec.Info.Title,
		Artist:      rec.Info.Artist,
		Album:       rec.Info.Album,
		Elapsed:     rec.Info.Elapsed,
		Duration:    rec.Info.Duration,
		AppBundleID: &bundleID,
		AppName:     &info.Name,
		AppIcon:     info.Icon,
	}

	updatedAt := now
	if rec.Info.Timestamp != nil {
		updatedAt = time.UnixMilli(int64(*rec.Info.Timestamp))
	}
	snap.UpdatedAt = &updatedAt

	return snap, nil
}

// streamEnvelope wraps each line the adapter process writes.
type streamEnvelope struct {
	Payload *streamPayload `json:"payload"`
}

type streamPayload struct {
	Playing     *bool    `json:"playing"`
	Title       *string  `json:"title"`
	Artist      *string  `json:"artist"`
	Album       *string  `json:"album"`
	Elapsed     *float64 `json:"elapsedTime"`
	Duration    *float64 `json:"duration"`
	Timestamp   *float64 `json:"timestamp"` // seconds since epoch, fractional
	BundleID    *string  `json:"bundleIdentifier"`
	ArtworkData *string  `json:"artworkData"` // base64, possibly newline-wrapped
}

// snapshotFromStream maps one adapter payload to a full snapshot.
func snapshotFromStream(p *streamPayload, resolver bundle.Resolver, now time.Time) *playback.Snapshot {
	snap := &playback.Snapshot{
		Playing:     p.Playing,
		Title:       p.Title,
		Artist:      p.Artist,
		Album:       p.Album,
		Elapsed:     p.Elapsed,
		Duration:    p.Duration,
		AppBundleID: p.BundleID,
	}

	updatedAt := now
	if p.Timestamp != nil {
		sec := int64(*p.Timestamp)
		nsec := int64((*p.Timestamp - float64(sec)) * float64(time.Second))
		updatedAt = time.Unix(sec, nsec)
	}
	snap.UpdatedAt = &updatedAt

	if p.ArtworkData != nil {
		clean := strings.ReplaceAll(*p.ArtworkData, "\n", "")
		data, err := base64.StdEncoding.DecodeString(clean)
		if err == nil {
			img, colours, decErr := utils.DecodeArtwork(data)
			if decErr == nil {
				snap.Artwork = img
				snap.ArtworkData = data
				snap.ArtworkColours = colours
			} else {
				slog.Debug("Failed to decode adapter artwork", slog.String("stack", decErr.Error()))
			}
		}
	}

	if p.BundleID != nil {
		if info, ok := resolver.Resolve(*p.BundleID); ok {
			snap.AppName = &info.Name
			snap.AppIcon = info.Icon
		}
	}

	return snap
}
