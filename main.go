package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/pressly/goose/v3"
	"github.com/r3labs/sse/v2"

	"github.com/fogline/earshot/bundle"
	"github.com/fogline/earshot/config"
	"github.com/fogline/earshot/db"
	"github.com/fogline/earshot/events"
	"github.com/fogline/earshot/history"
	"github.com/fogline/earshot/migrations"
	"github.com/fogline/earshot/mpris"
	"github.com/fogline/earshot/notifier"
	"github.com/fogline/earshot/playback"
	"github.com/fogline/earshot/poller"
	"github.com/fogline/earshot/shared"
	"github.com/fogline/earshot/utils"
)

// source is what every backend exposes once it is running: the
// extrapolated view, the command surface and listener registration.
type source interface {
	Player
	Subscribe(l playback.Listener) playback.ListenerToken
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}

	slog.SetDefault(slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.GetLogLevel(),
	})))

	database := db.Initialize(cfg.Earshot.DbPath)

	goose.SetBaseFS(migrations.GetMigrations())

	if err := goose.SetDialect("sqlite3"); err != nil {
		panic(err)
	}

	if err := goose.Up(database.DB, "."); err != nil {
		panic(err)
	}

	resolver := bundle.NewCache(bundle.Fallback())

	var (
		src  source
		stop func()
	)

	switch cfg.Earshot.Backend {
	case shared.BACKEND_SCRIPT:
		runner := poller.ExecRunner{Name: cfg.Earshot.ScriptPath}
		script := poller.NewScript(runner, nil, resolver, time.Duration(cfg.Earshot.PollInterval)*time.Second)
		script.Start()
		src, stop = script, script.Close
	case shared.BACKEND_STREAM:
		stream := poller.NewStream(poller.AdapterCommand(cfg.Earshot.AdapterPath), nil, resolver)
		if err := stream.Start(); err != nil {
			slog.With(slog.String("error", err.Error())).Error("Failed to start stream adapter")
			os.Exit(1)
		}
		src, stop = stream, stream.Close
	case shared.BACKEND_MPRIS:
		mp, err := mpris.NewSource(cfg.Earshot.MprisDest)
		if err != nil {
			slog.With(slog.String("error", err.Error())).Error("Failed to connect to the session bus")
			os.Exit(1)
		}
		if err := mp.Start(); err != nil {
			slog.With(slog.String("error", err.Error())).Error("Failed to start MPRIS source")
			os.Exit(1)
		}
		src, stop = mp, mp.Close
	default:
		slog.With(slog.String("backend", cfg.Earshot.Backend)).Error("Unknown backend")
		os.Exit(1)
	}

	events.Init()

	store := history.NewStore(database)
	recorder := history.NewRecorder(store)
	src.Subscribe(recorder.Listen)
	src.Subscribe(coverSaver(cfg.Earshot.StorageDir))
	src.Subscribe(ssePublisher())

	if cfg.Pushover.Token != "" {
		src.Subscribe(notifier.New(cfg.Pushover.Token, cfg.Pushover.Recipient).Listen)
	}

	router := RegisterRoutes(http.NewServeMux(), src, store, cfg.Earshot.StorageDir)

	server := &http.Server{Addr: cfg.Earshot.ListenAddr, Handler: router}

	go func() {
		slog.With(slog.String("addr", cfg.Earshot.ListenAddr)).Info("Earshot is running")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.With(slog.String("error", err.Error())).Error("Server stopped unexpectedly")
			os.Exit(1)
		}
	}()

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()
	<-ctx.Done()

	slog.Info("Shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.With(slog.String("error", err.Error())).Error("Failed to shut the server down cleanly")
	}
	stop()
}

// ssePublisher fans every published view out to connected event stream
// clients as the same JSON shape the REST endpoint serves.
func ssePublisher() playback.Listener {
	return func(view playback.Snapshot, ok bool) {
		if !ok {
			return
		}
		payload, err := json.Marshal(buildPlayingResponse(view))
		if err != nil {
			slog.With(slog.String("error", err.Error())).Error("Failed to marshal view for event stream")
			return
		}
		events.Server.Publish(events.StreamPlayback, &sse.Event{Data: payload})
	}
}

// coverSaver persists artwork so /static/ can serve it after the
// snapshot has moved on to another track.
func coverSaver(storageDir string) playback.Listener {
	return func(view playback.Snapshot, ok bool) {
		if !ok || len(view.ArtworkData) == 0 {
			return
		}
		extension := utils.DetectExtension(view.ArtworkData)
		_, guid := utils.BytesToGUIDLocation(view.ArtworkData, extension)
		if err := utils.SaveCover(storageDir, guid.String(), view.ArtworkData, extension); err != nil {
			slog.With(slog.String("error", err.Error())).Error("Failed to save cover")
		}
	}
}
