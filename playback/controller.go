package playback

import (
	"github.com/fogline/earshot/mediaremote"
)

// Source is the capability set every snapshot backend exposes. The
// controller and anything else consuming snapshots is written against
// this rather than a concrete backend.
type Source interface {
	Snapshot() (Snapshot, bool)
	Initialized() bool
}

// Controller translates playback intents into native commands. It is
// stateless: each call checks that the source has observed at least one
// snapshot, a cheap guard against firing commands before the session
// knows anything, then forwards the fixed command code. The returned
// bool is the sink's acceptance result, or false when the guard failed
// and no native call was made. No retries, no queueing.
type Controller struct {
	src  Source
	sink mediaremote.CommandSender
}

func NewController(src Source, sink mediaremote.CommandSender) *Controller {
	return &Controller{src: src, sink: sink}
}

func (c *Controller) send(cmd mediaremote.Command) bool {
	// A nil sink is a read-only source; every command is refused.
	if c.sink == nil || !c.src.Initialized() {
		return false
	}
	return c.sink.SendCommand(cmd, nil)
}

// Play resumes playback of the current media.
func (c *Controller) Play() bool { return c.send(mediaremote.Play) }

// Pause pauses the current media.
func (c *Controller) Pause() bool { return c.send(mediaremote.Pause) }

// Toggle flips between play and pause.
func (c *Controller) Toggle() bool { return c.send(mediaremote.TogglePlayPause) }

// Stop stops playback.
func (c *Controller) Stop() bool { return c.send(mediaremote.Stop) }

// Next skips to the next track in the queue.
func (c *Controller) Next() bool { return c.send(mediaremote.NextTrack) }

// Previous returns to the previous track in the queue.
func (c *Controller) Previous() bool { return c.send(mediaremote.PreviousTrack) }

// ToggleShuffle flips the shuffle setting.
func (c *Controller) ToggleShuffle() bool { return c.send(mediaremote.ToggleShuffle) }

// ToggleRepeat cycles the repeat setting.
func (c *Controller) ToggleRepeat() bool { return c.send(mediaremote.ToggleRepeat) }

// StartForwardSeek begins seeking forward; EndForwardSeek stops it.
func (c *Controller) StartForwardSeek() bool { return c.send(mediaremote.StartForwardSeek) }
func (c *Controller) EndForwardSeek() bool   { return c.send(mediaremote.EndForwardSeek) }

// StartBackwardSeek begins seeking backward; EndBackwardSeek stops it.
func (c *Controller) StartBackwardSeek() bool { return c.send(mediaremote.StartBackwardSeek) }
func (c *Controller) EndBackwardSeek() bool   { return c.send(mediaremote.EndBackwardSeek) }

// SkipBack jumps back fifteen seconds.
func (c *Controller) SkipBack() bool { return c.send(mediaremote.GoBackFifteenSeconds) }

// SkipAhead jumps ahead fifteen seconds.
func (c *Controller) SkipAhead() bool { return c.send(mediaremote.SkipFifteenSeconds) }
