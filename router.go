package main

import (
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/cors"

	"github.com/fogline/earshot/events"
	"github.com/fogline/earshot/history"
	"github.com/fogline/earshot/playback"
	"github.com/fogline/earshot/utils"
)

// Player is the slice of a snapshot source the HTTP surface needs:
// reading the extrapolated view and issuing transport commands. Every
// source satisfies it through its embedded hub and controller.
type Player interface {
	Snapshot() (playback.Snapshot, bool)
	Play() bool
	Pause() bool
	Toggle() bool
	Stop() bool
	Next() bool
	Previous() bool
	ToggleShuffle() bool
	ToggleRepeat() bool
	StartForwardSeek() bool
	EndForwardSeek() bool
	StartBackwardSeek() bool
	EndBackwardSeek() bool
	SkipBack() bool
	SkipAhead() bool
}

type playingResponse struct {
	playback.Snapshot
	TrackID  string `json:"track_id"`
	CoverURL string `json:"cover_url,omitempty"`
}

func renderJSONMessage(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	res := map[string]string{"message": message}
	json.NewEncoder(w).Encode(res)
}

func RegisterRoutes(mux *http.ServeMux, player Player, store *history.Store, storageDir string) http.Handler {

	events.Server.CreateStream(events.StreamPlayback)

	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprintf(w, "Welcome to Earshot, a now playing API.\nYou can find the source code on <a href=\"https://github.com/fogline/earshot\">Github</a>\n")
	})

	mux.HandleFunc("/static/", func(w http.ResponseWriter, r *http.Request) {
		cover := strings.ReplaceAll(r.URL.Path, "/static/", "")
		// cover.<guid>.jpeg
		coverSegments := strings.Split(cover, ".")
		if len(coverSegments) != 3 || coverSegments[0] != "cover" {
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		guid := coverSegments[1]
		extension := coverSegments[2]
		if _, err := uuid.Parse(guid); err != nil {
			// Anything that isn't a GUID never names a stored cover.
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		image, err := utils.LoadCover(storageDir, guid, extension)
		if err != nil {
			w.WriteHeader(http.StatusGone)
			return
		}
		w.Header().Set("Cache-Control", "public, max-age=31622400")
		w.Header().Set("Content-Type", fmt.Sprintf("image/%s", extension))
		w.Write(image)
	})

	mux.HandleFunc("/api", func(w http.ResponseWriter, r *http.Request) {
		renderJSONMessage(w, "This is the base of Earshot's API")
	})

	mux.HandleFunc("/api/v1/playing", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		view, ok := player.Snapshot()
		if !ok {
			w.WriteHeader(http.StatusServiceUnavailable)
			json.NewEncoder(w).Encode(map[string]string{"error": "no playback state has been observed yet"})
			return
		}
		json.NewEncoder(w).Encode(buildPlayingResponse(view))
	})

	mux.HandleFunc("/api/v1/history", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		results, err := store.GetRecent(7)
		if err != nil {
			json.NewEncoder(w).Encode(map[string]string{"error": err.Error()})
			return
		}
		if len(results) == 0 {
			json.NewEncoder(w).Encode([]string{})
			return
		}
		json.NewEncoder(w).Encode(results)
	})

	mux.HandleFunc("/api/v1/controls/", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			w.WriteHeader(http.StatusMethodNotAllowed)
			renderJSONMessage(w, "That method is invalid for this endpoint")
			return
		}
		action := strings.TrimPrefix(r.URL.Path, "/api/v1/controls/")
		control, found := controls(player)[action]
		if !found {
			w.WriteHeader(http.StatusNotFound)
			renderJSONMessage(w, fmt.Sprintf("%s is not a recognised control", action))
			return
		}
		if !control() {
			// Commands are dropped until the first update lands.
			w.WriteHeader(http.StatusConflict)
			renderJSONMessage(w, "The player is not ready to accept commands yet")
			return
		}
		w.WriteHeader(http.StatusAccepted)
		renderJSONMessage(w, "Command was sent to the player")
	})

	mux.HandleFunc("/events", events.Server.ServeHTTP)

	c := cors.New(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST"},
		AllowedHeaders: []string{"Origin, Content-Type, Accept"},
	})

	handler := c.Handler(mux)

	return handler
}

func buildPlayingResponse(view playback.Snapshot) playingResponse {
	res := playingResponse{
		Snapshot: view,
		TrackID:  view.TrackID(),
	}
	if len(view.ArtworkData) > 0 {
		location, _ := utils.BytesToGUIDLocation(view.ArtworkData, utils.DetectExtension(view.ArtworkData))
		res.CoverURL = location
	}
	return res
}

func controls(player Player) map[string]func() bool {
	return map[string]func() bool{
		"play":                player.Play,
		"pause":               player.Pause,
		"toggle":              player.Toggle,
		"stop":                player.Stop,
		"next":                player.Next,
		"previous":            player.Previous,
		"shuffle":             player.ToggleShuffle,
		"repeat":              player.ToggleRepeat,
		"seek_forward_start":  player.StartForwardSeek,
		"seek_forward_end":    player.EndForwardSeek,
		"seek_backward_start": player.StartBackwardSeek,
		"seek_backward_end":   player.EndBackwardSeek,
		"skip_back":           player.SkipBack,
		"skip_ahead":          player.SkipAhead,
	}
}
