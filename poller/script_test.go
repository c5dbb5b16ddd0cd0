package poller

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogline/earshot/bundle"
	"github.com/fogline/earshot/playback"
)

type fakeRunner struct {
	out   []byte
	err   error
	calls int
}

func (r *fakeRunner) Run() ([]byte, error) {
	r.calls++
	return r.out, r.err
}

const scriptOutput = `{
  "isPlaying": true,
  "info": {
    "kMRMediaRemoteNowPlayingInfoTitle": "a good song",
    "kMRMediaRemoteNowPlayingInfoArtist": "some artist",
    "kMRMediaRemoteNowPlayingInfoDuration": 180,
    "kMRMediaRemoteNowPlayingInfoElapsedTime": 30
  },
  "client": {"bundleIdentifier": "com.apple.Music"}
}`

func TestScript_PollPublishesOnChange(t *testing.T) {
	runner := &fakeRunner{out: []byte(scriptOutput)}
	p := NewScript(runner, nil, bundle.Fallback(), time.Minute)

	publishes := 0
	p.Subscribe(func(view playback.Snapshot, ok bool) {
		if ok {
			publishes++
		}
	})

	p.poll()
	assert.Equal(t, 1, publishes)

	view, ok := p.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "a good song", *view.Title)
	assert.Equal(t, "Music", *view.AppName)
	assert.True(t, *view.Playing)
}

func TestScript_IdenticalRecordIsNotRepublished(t *testing.T) {
	runner := &fakeRunner{out: []byte(scriptOutput)}
	p := NewScript(runner, nil, bundle.Fallback(), time.Minute)

	publishes := 0
	p.Subscribe(func(view playback.Snapshot, ok bool) {
		if ok {
			publishes++
		}
	})

	p.poll()
	p.poll()
	p.poll()

	assert.Equal(t, 3, runner.calls)
	assert.Equal(t, 1, publishes)
}

func TestScript_FailuresLeaveStateUntouched(t *testing.T) {
	runner := &fakeRunner{out: []byte(scriptOutput)}
	p := NewScript(runner, nil, bundle.Fallback(), time.Minute)
	p.poll()

	before, ok := p.Snapshot()
	require.True(t, ok)

	runner.err = errors.New("script exploded")
	p.poll()

	runner.err = nil
	runner.out = []byte("not json at all")
	p.poll()

	// Output without a client is unusable, not an error.
	runner.out = []byte(`{"isPlaying": false, "info": {}, "client": {}}`)
	p.poll()

	after, ok := p.Snapshot()
	require.True(t, ok)
	assert.Equal(t, *before.Title, *after.Title)
	assert.True(t, *after.Playing)
}
