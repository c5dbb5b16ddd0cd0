package utils

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func redPNG(t *testing.T) []byte {
	img := image.NewRGBA(image.Rect(0, 0, 4, 4))
	for x := 0; x < 4; x++ {
		for y := 0; y < 4; y++ {
			img.Set(x, y, color.RGBA{R: 200, G: 30, B: 30, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func TestDecodeArtwork(t *testing.T) {
	img, colours, err := DecodeArtwork(redPNG(t))
	require.NoError(t, err)
	assert.NotNil(t, img)
	require.NotEmpty(t, colours)
	for _, c := range colours {
		assert.Regexp(t, "^#[0-9a-f]{6}$", c)
	}

	_, _, err = DecodeArtwork([]byte("definitely not an image"))
	assert.Error(t, err)
}

func TestDetectExtension(t *testing.T) {
	assert.Equal(t, "png", DetectExtension(redPNG(t)))
	// Unknown content falls back to jpeg, the dominant artwork format.
	assert.Equal(t, "jpeg", DetectExtension([]byte("mystery bytes")))
}

func TestBytesToGUIDLocation(t *testing.T) {
	data := redPNG(t)

	location, guid := BytesToGUIDLocation(data, "png")
	location2, guid2 := BytesToGUIDLocation(data, "png")

	// Identical bytes always map to the same GUID so covers are only
	// stored once.
	assert.Equal(t, guid, guid2)
	assert.Equal(t, location, location2)
	assert.Equal(t, "/static/cover."+guid.String()+".png", location)

	_, other := BytesToGUIDLocation([]byte("different bytes"), "png")
	assert.NotEqual(t, guid, other)
}

func TestSaveAndLoadCover(t *testing.T) {
	dir := t.TempDir()
	data := redPNG(t)

	_, guid := BytesToGUIDLocation(data, "png")
	require.NoError(t, SaveCover(dir, guid.String(), data, "png"))

	loaded, err := LoadCover(dir, guid.String(), "png")
	require.NoError(t, err)
	assert.Equal(t, data, loaded)

	_, err = LoadCover(dir, "nonexistent", "png")
	assert.Error(t, err)
}

func TestFetchArtwork(t *testing.T) {
	data := redPNG(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, UserAgent, r.Header.Get("User-Agent"))
		w.Write(data)
	}))
	defer srv.Close()

	body, extension, err := FetchArtwork(srv.Client(), srv.URL)
	require.NoError(t, err)
	assert.Equal(t, data, body)
	assert.Equal(t, "png", extension)
}

func TestFetchArtwork_NonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	_, _, err := FetchArtwork(srv.Client(), srv.URL)
	assert.Error(t, err)
}
