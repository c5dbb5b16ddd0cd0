package utils

import (
	"bytes"
	"crypto/md5"
	"fmt"
	"image"
	"image/color"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"os"

	"github.com/google/uuid"
	color_extractor "github.com/marekm4/color-extractor"
)

const (
	UserAgent = "Earshot/1.0 <github.com/fogline/earshot>"
)

// DecodeArtwork decodes raw artwork bytes into an image and extracts
// its dominant colours as hex strings.
func DecodeArtwork(data []byte) (image.Image, []string, error) {
	img, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, nil, fmt.Errorf("failed to decode artwork: %w", err)
	}

	var domColours []string
	for _, c := range color_extractor.ExtractColors(img) {
		domColours = append(domColours, colorToHexString(c))
	}
	return img, domColours, nil
}

// FetchArtwork downloads artwork referenced by URL, e.g. an MPRIS
// artUrl, returning the raw bytes and detected extension.
func FetchArtwork(client *http.Client, artURL string) ([]byte, string, error) {
	req, err := http.NewRequest("GET", artURL, nil)
	if err != nil {
		return nil, "", err
	}
	req.Header = http.Header{
		"User-Agent": []string{UserAgent},
	}
	res, err := client.Do(req)
	if err != nil {
		return nil, "", err
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		return nil, "", fmt.Errorf("artwork fetch returned %d", res.StatusCode)
	}

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, "", err
	}

	return body, DetectExtension(body), nil
}

// DetectExtension sniffs the artwork bytes for a usable file extension.
func DetectExtension(data []byte) string {
	switch http.DetectContentType(data) {
	case "image/jpeg":
		return "jpeg"
	case "image/png":
		return "png"
	case "image/gif":
		return "gif"
	}
	return "jpeg"
}

// BytesToGUIDLocation derives a stable cover GUID and its public path
// from the artwork bytes themselves.
func BytesToGUIDLocation(image []byte, extension string) (string, uuid.UUID) {
	imageHash := md5.Sum(image)
	var genericBytes []byte = imageHash[:] // Disgusting :)
	guid, _ := uuid.FromBytes(genericBytes)
	location := fmt.Sprintf("/static/cover.%s.%s", guid, extension)
	return location, guid
}

// SaveCover persists artwork under the storage dir so /static/ can
// serve it after the snapshot has moved on.
func SaveCover(storageDir, guid string, image []byte, extension string) error {
	return os.WriteFile(fmt.Sprintf("%s/cover.%s.%s", storageDir, guid, extension), image, 0644)
}

// LoadCover reads a previously saved cover.
func LoadCover(storageDir, guid string, extension string) ([]byte, error) {
	return os.ReadFile(fmt.Sprintf("%s/cover.%s.%s", storageDir, guid, extension))
}

func colorToHexString(c color.Color) string {
	r, g, b, a := c.RGBA()
	rgba := color.RGBA{uint8(r), uint8(g), uint8(b), uint8(a)}
	return fmt.Sprintf("#%.2x%.2x%.2x", rgba.R, rgba.G, rgba.B)
}
