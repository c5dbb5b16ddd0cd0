// Package remote implements the notification-driven snapshot source:
// a session that keeps the shared snapshot current from native media
// notifications, querying the asynchronous native API through the
// bounded bridge.
package remote

import (
	"log/slog"
	"sync"
	"time"

	"github.com/fogline/earshot/bundle"
	"github.com/fogline/earshot/mediaremote"
	"github.com/fogline/earshot/playback"
	"github.com/fogline/earshot/utils"
)

// Session is a live now-playing session. It registers for native
// notifications on construction, performs one eager full update so a
// fresh session is never empty, and then merges partial updates as
// events arrive. Close tears the observers down; no updater or
// listener runs after Close returns.
type Session struct {
	playback.Hub
	*playback.Controller

	api      mediaremote.API
	nc       mediaremote.NotificationCenter
	resolver bundle.Resolver

	observers []mediaremote.Observer
	closeOnce sync.Once
}

// NewSession builds a session over the supplied native binding. The
// notification center's process-wide registration happens here, before
// any observer is attached, which is the order the native layer
// requires.
func NewSession(api mediaremote.API, sink mediaremote.CommandSender, nc mediaremote.NotificationCenter, resolver bundle.Resolver) *Session {
	s := &Session{
		api:      api,
		nc:       nc,
		resolver: resolver,
	}
	s.Controller = playback.NewController(&s.Hub, sink)

	s.nc.Register()
	s.updateAll()

	s.observe(mediaremote.NotificationApplicationDidChange, s.updateApp)
	s.observe(mediaremote.NotificationInfoDidChange, s.updateInfo)
	s.observe(mediaremote.NotificationIsPlayingDidChange, s.updateState)
	// Client-state and queue notifications exist but stay unwired;
	// they carry nothing the three above don't already refresh.

	return s
}

func (s *Session) observe(n mediaremote.Notification, update func()) {
	o := s.nc.AddObserver(n, func() {
		update()
		s.Publish()
	})
	s.observers = append(s.observers, o)
}

// updateAll resets the snapshot to all-unknown and re-runs every
// updater, so no updater ever merges into a missing record.
func (s *Session) updateAll() {
	s.Store().Reset()
	s.updateState()
	s.updateApp()
	s.updateInfo()
}

func (s *Session) updateState() {
	if !s.Initialized() {
		s.updateAll()
		return
	}

	playing, ok := mediaremote.GetIsPlaying(s.api)
	if !ok {
		return
	}
	s.Store().Merge(func(snap *playback.Snapshot) {
		snap.Playing = &playing
	})
}

func (s *Session) updateApp() {
	if !s.Initialized() {
		s.updateAll()
		return
	}

	id, ok := mediaremote.GetClientParentBundleID(s.api)
	if !ok {
		id, ok = mediaremote.GetClientBundleID(s.api)
	}
	if !ok {
		return
	}

	info, found := s.resolver.Resolve(id)
	if !found {
		return
	}
	s.Store().Merge(func(snap *playback.Snapshot) {
		snap.AppBundleID = &id
		snap.AppName = &info.Name
		snap.AppIcon = info.Icon
	})
}

func (s *Session) updateInfo() {
	if !s.Initialized() {
		s.updateAll()
		return
	}

	info, ok := mediaremote.GetNowPlayingInfo(s.api)
	if !ok {
		return
	}
	queriedAt := time.Now()

	s.Store().Merge(func(snap *playback.Snapshot) {
		mergeString(info, mediaremote.InfoKeyTitle, &snap.Title)
		mergeString(info, mediaremote.InfoKeyArtist, &snap.Artist)
		mergeString(info, mediaremote.InfoKeyAlbum, &snap.Album)

		mergeFloat(info, mediaremote.InfoKeyDuration, &snap.Duration)
		mergeFloat(info, mediaremote.InfoKeyElapsedTime, &snap.Elapsed)

		if v, present := info[mediaremote.InfoKeyArtworkData]; present && v.Kind == mediaremote.KindData {
			img, colours, err := utils.DecodeArtwork(v.Data)
			if err != nil {
				slog.Debug("Failed to decode artwork from info dictionary",
					slog.String("stack", err.Error()))
			} else {
				snap.Artwork = img
				snap.ArtworkData = v.Data
				snap.ArtworkColours = colours
			}
		}

		if v, present := info[mediaremote.InfoKeyTimestamp]; present && v.Kind == mediaremote.KindTime {
			t := v.Time
			snap.UpdatedAt = &t
		} else {
			snap.UpdatedAt = &queriedAt
		}
	})
}

// mergeString copies a string entry only when it is present and
// non-empty. The native layer momentarily posts double payloads with
// empty strings; overwriting known values with those would blank real
// metadata.
func mergeString(info map[string]mediaremote.Value, key string, field **string) {
	v, present := info[key]
	if !present || v.Kind != mediaremote.KindString || v.Str == "" {
		return
	}
	s := v.Str
	*field = &s
}

// mergeFloat overwrites unconditionally when present: zero is a valid
// duration or position.
func mergeFloat(info map[string]mediaremote.Value, key string, field **float64) {
	v, present := info[key]
	if !present || v.Kind != mediaremote.KindFloat {
		return
	}
	f := v.Float
	*field = &f
}

// Close removes the session's observers and drops the process-wide
// notification registration. Safe to call more than once.
func (s *Session) Close() {
	s.closeOnce.Do(func() {
		for _, o := range s.observers {
			s.nc.RemoveObserver(o)
		}
		s.observers = nil
		s.nc.Unregister()
	})
}
