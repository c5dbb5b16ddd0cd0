// Package mpris implements a snapshot source over the MPRIS D-Bus
// interface, the Linux counterpart to the native notification path. It
// produces the same snapshot shape from PropertiesChanged signals.
package mpris

import (
	"strings"

	"github.com/godbus/dbus/v5"
)

// Metadata is the MPRIS metadata mapping.
//
// https://www.freedesktop.org/wiki/Specifications/mpris-spec/metadata/
type Metadata map[string]dbus.Variant

func (m Metadata) str(key string) (string, bool) {
	v, ok := m[key]
	if !ok {
		return "", false
	}
	s, ok := v.Value().(string)
	if !ok || s == "" {
		return "", false
	}
	return s, true
}

// Title returns the track title.
func (m Metadata) Title() (string, bool) {
	return m.str("xesam:title")
}

// Artist returns the first listed artist.
func (m Metadata) Artist() (string, bool) {
	v, ok := m["xesam:artist"]
	if !ok {
		return "", false
	}
	switch artists := v.Value().(type) {
	case []string:
		if len(artists) == 0 || artists[0] == "" {
			return "", false
		}
		return artists[0], true
	case string:
		// Some players violate the spec and send a plain string.
		if artists == "" {
			return "", false
		}
		return artists, true
	}
	return "", false
}

// Album returns the album name.
func (m Metadata) Album() (string, bool) {
	return m.str("xesam:album")
}

// Length returns the track duration in seconds.
func (m Metadata) Length() (float64, bool) {
	v, ok := m["mpris:length"]
	if !ok {
		return 0, false
	}
	switch micros := v.Value().(type) {
	case int64:
		return float64(micros) / 1e6, true
	case uint64:
		return float64(micros) / 1e6, true
	}
	return 0, false
}

// ArtURL returns the artwork location, usually a file:// or https://
// URL.
func (m Metadata) ArtURL() (string, bool) {
	s, ok := m.str("mpris:artUrl")
	if !ok {
		return "", false
	}
	return strings.TrimSpace(s), true
}
