package mpris

import (
	"testing"

	"github.com/godbus/dbus/v5"
	"github.com/stretchr/testify/assert"
)

func TestMetadata_Title(t *testing.T) {
	m := Metadata{"xesam:title": dbus.MakeVariant("a good song")}
	title, ok := m.Title()
	assert.True(t, ok)
	assert.Equal(t, "a good song", title)

	_, ok = Metadata{}.Title()
	assert.False(t, ok)

	_, ok = Metadata{"xesam:title": dbus.MakeVariant("")}.Title()
	assert.False(t, ok)
}

func TestMetadata_Artist(t *testing.T) {
	m := Metadata{"xesam:artist": dbus.MakeVariant([]string{"some artist", "a guest"})}
	artist, ok := m.Artist()
	assert.True(t, ok)
	assert.Equal(t, "some artist", artist)

	// Some players ship a bare string instead of the mandated list.
	m = Metadata{"xesam:artist": dbus.MakeVariant("some artist")}
	artist, ok = m.Artist()
	assert.True(t, ok)
	assert.Equal(t, "some artist", artist)

	_, ok = Metadata{"xesam:artist": dbus.MakeVariant([]string{})}.Artist()
	assert.False(t, ok)

	_, ok = Metadata{}.Artist()
	assert.False(t, ok)
}

func TestMetadata_Length(t *testing.T) {
	m := Metadata{"mpris:length": dbus.MakeVariant(int64(180000000))}
	length, ok := m.Length()
	assert.True(t, ok)
	assert.Equal(t, 180.0, length)

	m = Metadata{"mpris:length": dbus.MakeVariant(uint64(90500000))}
	length, ok = m.Length()
	assert.True(t, ok)
	assert.Equal(t, 90.5, length)

	_, ok = Metadata{}.Length()
	assert.False(t, ok)

	// Unexpected wire types are ignored rather than coerced.
	_, ok = Metadata{"mpris:length": dbus.MakeVariant("180")}.Length()
	assert.False(t, ok)
}

func TestMetadata_ArtURL(t *testing.T) {
	m := Metadata{"mpris:artUrl": dbus.MakeVariant(" https://example.com/cover.jpeg ")}
	url, ok := m.ArtURL()
	assert.True(t, ok)
	assert.Equal(t, "https://example.com/cover.jpeg", url)

	_, ok = Metadata{}.ArtURL()
	assert.False(t, ok)
}
