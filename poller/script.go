package poller

import (
	"encoding/json"
	"log/slog"
	"os/exec"
	"time"

	"github.com/go-co-op/gocron"

	"github.com/fogline/earshot/bundle"
	"github.com/fogline/earshot/mediaremote"
	"github.com/fogline/earshot/playback"
)

// Runner produces one raw script record per invocation.
type Runner interface {
	Run() ([]byte, error)
}

// ExecRunner runs an external command and captures its stdout.
type ExecRunner struct {
	Name string
	Args []string
}

func (r ExecRunner) Run() ([]byte, error) {
	return exec.Command(r.Name, r.Args...).Output()
}

// Script polls an external script on a fixed cadence and replaces the
// snapshot when the derived record differs from the previous one, so
// listeners only hear about observed changes.
type Script struct {
	playback.Hub
	*playback.Controller

	runner   Runner
	resolver bundle.Resolver

	// last is the previous derived record. Diffing happens against it
	// rather than the live cell, which drifts under extrapolating
	// reads.
	last *playback.Snapshot

	scheduler *gocron.Scheduler
}

func NewScript(runner Runner, sink mediaremote.CommandSender, resolver bundle.Resolver, interval time.Duration) *Script {
	p := &Script{
		runner:   runner,
		resolver: resolver,
	}
	p.Controller = playback.NewController(&p.Hub, sink)

	p.scheduler = gocron.NewScheduler(time.UTC)
	p.scheduler.Every(interval).Do(p.poll)

	return p
}

// Start begins polling in the background. The first poll fires
// immediately so a freshly started source isn't empty for a full
// interval.
func (p *Script) Start() {
	p.scheduler.StartAsync()
}

// Close halts the scheduler. Any in-flight poll finishes; no listener
// runs after that.
func (p *Script) Close() {
	p.scheduler.Stop()
}

func (p *Script) poll() {
	out, err := p.runner.Run()
	if err != nil {
		slog.Debug("Now-playing script failed", slog.String("stack", err.Error()))
		return
	}

	var rec scriptRecord
	if err := json.Unmarshal(out, &rec); err != nil {
		slog.Error("Failed to parse now-playing script output", slog.String("stack", err.Error()))
		return
	}

	snap, err := snapshotFromScript(&rec, p.resolver, time.Now())
	if err != nil {
		return
	}

	if snap.Equal(p.last) {
		return
	}
	p.last = snap

	next := *snap
	p.Store().Replace(&next)
	p.Publish()
}
