// Package playback holds the shared now-playing snapshot machinery:
// the lock-protected snapshot store with elapsed-time extrapolation,
// the listener hub that fans out snapshot changes, and the stateless
// controller that turns playback intents into native commands. Every
// snapshot source (notification-driven, script poller, stream adapter,
// MPRIS) composes these rather than re-implementing them.
package playback

import (
	"bytes"
	"fmt"
	"image"
	"time"

	"github.com/cespare/xxhash/v2"
)

// Snapshot is the aggregate now-playing record. Every field is
// independently nullable: a nil pointer means "not yet observed", which
// is distinct from false or zero. Updaters only ever replace pointers,
// never mutate through them, so a shallow copy of a Snapshot is safe to
// hand out as a read view.
type Snapshot struct {
	Playing *bool `json:"playing,omitempty"`

	Title          *string     `json:"title,omitempty"`
	Artist         *string     `json:"artist,omitempty"`
	Album          *string     `json:"album,omitempty"`
	Artwork        image.Image `json:"-"`
	ArtworkData    []byte      `json:"-"`
	ArtworkColours []string    `json:"artwork_colours,omitempty"`

	// Elapsed and Duration are in seconds. Zero is a valid duration.
	Elapsed  *float64 `json:"elapsed,omitempty"`
	Duration *float64 `json:"duration,omitempty"`

	// UpdatedAt is the instant Elapsed was last accurate, used to
	// extrapolate the playback position between source pushes.
	UpdatedAt *time.Time `json:"updated_at,omitempty"`

	AppBundleID *string     `json:"app_bundle_id,omitempty"`
	AppName     *string     `json:"app_name,omitempty"`
	AppIcon     image.Image `json:"-"`
}

// TrackID derives a stable identity for the playing track. It's
// deterministic so it doesn't matter how often it runs.
func (s *Snapshot) TrackID() string {
	hashString := fmt.Sprintf("%s-%s-%s-%s",
		deref(s.Title),
		deref(s.Artist),
		deref(s.Album),
		deref(s.AppBundleID),
	)
	return fmt.Sprintf("track:%d", xxhash.Sum64String(hashString))
}

// Equal reports whether two snapshots carry the same observed values.
// Artwork is compared by its raw bytes; decoded images are derived
// data. UpdatedAt is bookkeeping rather than an observation and is
// excluded, otherwise sources that stamp records on receipt would never
// see two records as equal.
func (s *Snapshot) Equal(o *Snapshot) bool {
	if s == nil || o == nil {
		return s == o
	}
	return eqPtr(s.Playing, o.Playing) &&
		eqPtr(s.Title, o.Title) &&
		eqPtr(s.Artist, o.Artist) &&
		eqPtr(s.Album, o.Album) &&
		eqPtr(s.Elapsed, o.Elapsed) &&
		eqPtr(s.Duration, o.Duration) &&
		eqPtr(s.AppBundleID, o.AppBundleID) &&
		eqPtr(s.AppName, o.AppName) &&
		bytes.Equal(s.ArtworkData, o.ArtworkData)
}

func eqPtr[T comparable](a, b *T) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

// Ptr is a convenience for building snapshots field by field.
func Ptr[T any](v T) *T {
	return &v
}
