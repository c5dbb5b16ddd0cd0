package remote

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fogline/earshot/bundle"
	"github.com/fogline/earshot/mediaremote"
	"github.com/fogline/earshot/playback"
)

type fakeAPI struct {
	playing  bool
	info     map[string]mediaremote.Value
	bundleID string
	parentID string
}

func (f *fakeAPI) IsPlaying(deliver func(bool)) { deliver(f.playing) }
func (f *fakeAPI) NowPlayingInfo(deliver func(map[string]mediaremote.Value)) {
	deliver(f.info)
}
func (f *fakeAPI) ClientBundleID(deliver func(string))       { deliver(f.bundleID) }
func (f *fakeAPI) ClientParentBundleID(deliver func(string)) { deliver(f.parentID) }

type fakeCenter struct {
	registered   int
	unregistered int
	handlers     map[mediaremote.Notification]func()
	removed      []mediaremote.Observer
}

func (c *fakeCenter) Register()   { c.registered++ }
func (c *fakeCenter) Unregister() { c.unregistered++ }

func (c *fakeCenter) AddObserver(n mediaremote.Notification, fn func()) mediaremote.Observer {
	if c.handlers == nil {
		c.handlers = make(map[mediaremote.Notification]func())
	}
	c.handlers[n] = fn
	return n
}

func (c *fakeCenter) RemoveObserver(o mediaremote.Observer) {
	c.removed = append(c.removed, o)
}

func (c *fakeCenter) post(n mediaremote.Notification) {
	c.handlers[n]()
}

func musicAPI() *fakeAPI {
	return &fakeAPI{
		playing: true,
		info: map[string]mediaremote.Value{
			mediaremote.InfoKeyTitle:    mediaremote.StringValue("a good song"),
			mediaremote.InfoKeyArtist:   mediaremote.StringValue("some artist"),
			mediaremote.InfoKeyDuration: mediaremote.FloatValue(180),
		},
		bundleID: "com.apple.Music",
	}
}

func newTestSession(api *fakeAPI) (*Session, *fakeCenter) {
	nc := &fakeCenter{}
	s := NewSession(api, nil, nc, bundle.Fallback())
	return s, nc
}

func TestNewSession_PerformsEagerFullUpdate(t *testing.T) {
	s, nc := newTestSession(musicAPI())
	defer s.Close()

	assert.Equal(t, 1, nc.registered)
	assert.Len(t, nc.handlers, 3)

	view, ok := s.Snapshot()
	require.True(t, ok)
	require.NotNil(t, view.Playing)
	assert.True(t, *view.Playing)
	assert.Equal(t, "a good song", *view.Title)
	assert.Equal(t, "some artist", *view.Artist)
	assert.Equal(t, 180.0, *view.Duration)
	assert.Equal(t, "com.apple.Music", *view.AppBundleID)
	assert.Equal(t, "Music", *view.AppName)
	require.NotNil(t, view.UpdatedAt)
}

func TestSession_ParentBundleTakesPrecedence(t *testing.T) {
	api := musicAPI()
	api.bundleID = "com.apple.WebKit.GPU"
	api.parentID = "com.apple.Safari"

	s, _ := newTestSession(api)
	defer s.Close()

	view, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "com.apple.Safari", *view.AppBundleID)
	assert.Equal(t, "Safari", *view.AppName)
}

func TestSession_EmptyStringsDoNotBlankMetadata(t *testing.T) {
	api := musicAPI()
	s, nc := newTestSession(api)
	defer s.Close()

	// The native layer momentarily posts a second payload with empty
	// strings for fields it just reported.
	api.info = map[string]mediaremote.Value{
		mediaremote.InfoKeyTitle:  mediaremote.StringValue(""),
		mediaremote.InfoKeyArtist: mediaremote.StringValue(""),
		mediaremote.InfoKeyAlbum:  mediaremote.StringValue("an album"),
	}
	nc.post(mediaremote.NotificationInfoDidChange)

	view, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "a good song", *view.Title)
	assert.Equal(t, "some artist", *view.Artist)
	assert.Equal(t, "an album", *view.Album)
}

func TestSession_PlayStateEventOnlyTouchesPlaying(t *testing.T) {
	api := musicAPI()
	s, nc := newTestSession(api)
	defer s.Close()

	api.playing = false
	api.info = nil // a state flip often races the info dictionary away
	nc.post(mediaremote.NotificationIsPlayingDidChange)

	view, ok := s.Snapshot()
	require.True(t, ok)
	assert.False(t, *view.Playing)
	assert.Equal(t, "a good song", *view.Title)
}

func TestSession_AppChangeEventRefreshesClient(t *testing.T) {
	api := musicAPI()
	s, nc := newTestSession(api)
	defer s.Close()

	api.bundleID = "org.videolan.vlc"
	nc.post(mediaremote.NotificationApplicationDidChange)

	view, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "org.videolan.vlc", *view.AppBundleID)
	assert.Equal(t, "vlc", *view.AppName)
}

func TestSession_EventsNotifyListeners(t *testing.T) {
	api := musicAPI()
	s, nc := newTestSession(api)
	defer s.Close()

	calls := 0
	s.Subscribe(func(view playback.Snapshot, ok bool) {
		calls++
	})
	assert.Equal(t, 1, calls) // immediate invocation

	nc.post(mediaremote.NotificationInfoDidChange)
	nc.post(mediaremote.NotificationIsPlayingDidChange)
	assert.Equal(t, 3, calls)
}

func TestSession_UpdatersSelfHealAMissingSnapshot(t *testing.T) {
	api := musicAPI()
	s, nc := newTestSession(api)
	defer s.Close()

	// Simulate the snapshot vanishing out from under an updater.
	s.Store().Replace(nil)
	require.False(t, s.Initialized())

	nc.post(mediaremote.NotificationIsPlayingDidChange)

	view, ok := s.Snapshot()
	require.True(t, ok)
	assert.Equal(t, "a good song", *view.Title)
	assert.True(t, *view.Playing)
}

func TestSession_CloseTearsDownOnce(t *testing.T) {
	s, nc := newTestSession(musicAPI())

	s.Close()
	assert.Len(t, nc.removed, 3)
	assert.Equal(t, 1, nc.unregistered)

	s.Close()
	assert.Len(t, nc.removed, 3)
	assert.Equal(t, 1, nc.unregistered)
}
