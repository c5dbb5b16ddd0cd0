package poller

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os/exec"
	"time"

	"github.com/fogline/earshot/bundle"
	"github.com/fogline/earshot/mediaremote"
	"github.com/fogline/earshot/playback"
)

// StartFunc launches the adapter and hands back its output stream.
// Cancelling ctx must terminate the underlying producer.
type StartFunc func(ctx context.Context) (io.ReadCloser, error)

// AdapterCommand is a StartFunc that spawns an external adapter process
// and streams its stdout.
func AdapterCommand(name string, args ...string) StartFunc {
	return func(ctx context.Context) (io.ReadCloser, error) {
		cmd := exec.CommandContext(ctx, name, args...)
		stdout, err := cmd.StdoutPipe()
		if err != nil {
			return nil, err
		}
		if err := cmd.Start(); err != nil {
			return nil, fmt.Errorf("failed to start adapter: %w", err)
		}
		go func() {
			// Reap the process once the context kills it.
			_ = cmd.Wait()
		}()
		return stdout, nil
	}
}

// Stream consumes a long-lived adapter process that pushes one JSON
// payload per line whenever the now-playing state changes. Each payload
// replaces the snapshot wholesale and is fanned out to listeners.
type Stream struct {
	playback.Hub
	*playback.Controller

	start    StartFunc
	resolver bundle.Resolver

	cancel context.CancelFunc
	done   chan struct{}
}

func NewStream(start StartFunc, sink mediaremote.CommandSender, resolver bundle.Resolver) *Stream {
	s := &Stream{
		start:    start,
		resolver: resolver,
	}
	s.Controller = playback.NewController(&s.Hub, sink)
	return s
}

// Start launches the adapter and begins consuming payloads in the
// background.
func (s *Stream) Start() error {
	ctx, cancel := context.WithCancel(context.Background())

	rc, err := s.start(ctx)
	if err != nil {
		cancel()
		return err
	}

	s.cancel = cancel
	s.done = make(chan struct{})
	go s.consume(rc)
	return nil
}

func (s *Stream) consume(rc io.ReadCloser) {
	defer close(s.done)
	defer rc.Close()

	scanner := bufio.NewScanner(rc)
	// Payload lines carrying inline artwork run to megabytes.
	scanner.Buffer(make([]byte, 0, 64*1024), 16*1024*1024)

	for scanner.Scan() {
		var env streamEnvelope
		if err := json.Unmarshal(scanner.Bytes(), &env); err != nil {
			slog.Debug("Skipping unparseable adapter line", slog.String("stack", err.Error()))
			continue
		}
		if env.Payload == nil {
			continue
		}

		snap := snapshotFromStream(env.Payload, s.resolver, time.Now())
		s.Store().Replace(snap)
		s.Publish()
	}

	if err := scanner.Err(); err != nil {
		slog.Error("Adapter stream ended", slog.String("stack", err.Error()))
	}
}

// Close terminates the adapter process and waits for the consumer to
// drain, guaranteeing no listener invocation after it returns.
func (s *Stream) Close() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
}
