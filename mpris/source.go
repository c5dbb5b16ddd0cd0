package mpris

import (
	"errors"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/godbus/dbus/v5"

	"github.com/fogline/earshot/mediaremote"
	"github.com/fogline/earshot/playback"
	"github.com/fogline/earshot/utils"
)

const (
	busPrefix       = "org.mpris.MediaPlayer2"
	objectPath      = "/org/mpris/MediaPlayer2"
	playerInterface = "org.mpris.MediaPlayer2.Player"
	propsInterface  = "org.freedesktop.DBus.Properties"
)

// Discover lists MPRIS players on the session bus.
func Discover(conn *dbus.Conn) ([]string, error) {
	var names []string
	err := conn.BusObject().Call("org.freedesktop.DBus.ListNames", 0).Store(&names)
	if err != nil {
		return nil, err
	}

	var dests []string
	for _, name := range names {
		if strings.HasPrefix(name, busPrefix) {
			dests = append(dests, name)
		}
	}

	if len(dests) == 0 {
		return nil, errors.New("no mpris player instance found")
	}
	return dests, nil
}

// Source keeps the snapshot current from one MPRIS player: an initial
// property read on Start, then partial merges driven by
// PropertiesChanged signals. Commands go back out over the same bus.
type Source struct {
	playback.Hub
	*playback.Controller

	conn   *dbus.Conn
	bo     dbus.BusObject
	dest   string
	client *http.Client

	signals chan *dbus.Signal
	done    chan struct{}
}

// NewSource connects to the session bus and binds to dest, e.g.
// "org.mpris.MediaPlayer2.spotify". An empty dest binds to the first
// discovered player.
func NewSource(dest string) (*Source, error) {
	conn, err := dbus.SessionBus()
	if err != nil {
		return nil, err
	}

	if dest == "" {
		dests, err := Discover(conn)
		if err != nil {
			return nil, err
		}
		dest = dests[0]
	}

	s := &Source{
		conn:   conn,
		bo:     conn.Object(dest, objectPath),
		dest:   dest,
		client: utils.NewHTTPClient(),
	}
	s.Controller = playback.NewController(&s.Hub, mediaremote.SenderFunc(s.sendCommand))
	return s, nil
}

// Start performs the eager initial read and subscribes to property
// change signals.
func (s *Source) Start() error {
	s.refresh()
	s.Publish()

	err := s.conn.AddMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchSender(s.dest),
	)
	if err != nil {
		return err
	}

	s.signals = make(chan *dbus.Signal, 16)
	s.done = make(chan struct{})
	s.conn.Signal(s.signals)

	go s.watch()
	return nil
}

func (s *Source) watch() {
	defer close(s.done)
	for sig := range s.signals {
		if sig.Name != propsInterface+".PropertiesChanged" || len(sig.Body) < 2 {
			continue
		}
		iface, _ := sig.Body[0].(string)
		if iface != playerInterface {
			continue
		}
		changed, ok := sig.Body[1].(map[string]dbus.Variant)
		if !ok {
			continue
		}
		if s.apply(changed) {
			s.Publish()
		}
	}
}

// refresh re-derives the whole snapshot from the player's properties.
func (s *Source) refresh() {
	snap := &playback.Snapshot{}

	playing := s.playbackStatus() == "Playing"
	snap.Playing = &playing

	s.mergeMetadata(snap, s.metadata())
	s.mergePosition(snap)

	snap.AppBundleID = &s.dest
	if identity, ok := s.identity(); ok {
		snap.AppName = &identity
	}

	s.Store().Replace(snap)
}

// apply merges one PropertiesChanged delivery and reports whether
// anything was merged. Only the properties the player reported change;
// everything else keeps its last value. The bus round trips and the
// artwork fetch all happen into a local delta before the store lock is
// taken, so readers never queue behind them.
func (s *Source) apply(changed map[string]dbus.Variant) bool {
	_, hasStatus := changed["PlaybackStatus"]
	_, hasMetadata := changed["Metadata"]
	if !hasStatus && !hasMetadata {
		return false
	}

	delta := &playback.Snapshot{}
	if v, ok := changed["PlaybackStatus"]; ok {
		if status, ok := v.Value().(string); ok {
			playing := status == "Playing"
			delta.Playing = &playing
		}
	}
	if v, ok := changed["Metadata"]; ok {
		if raw, ok := v.Value().(map[string]dbus.Variant); ok {
			s.mergeMetadata(delta, Metadata(raw))
		}
	}
	// Either change invalidates the last known position.
	s.mergePosition(delta)

	s.Store().Merge(func(snap *playback.Snapshot) {
		overlay(snap, delta)
	})
	return true
}

// overlay copies delta's observed fields onto snap, leaving the rest
// untouched.
func overlay(snap, delta *playback.Snapshot) {
	if delta.Playing != nil {
		snap.Playing = delta.Playing
	}
	if delta.Title != nil {
		snap.Title = delta.Title
	}
	if delta.Artist != nil {
		snap.Artist = delta.Artist
	}
	if delta.Album != nil {
		snap.Album = delta.Album
	}
	if delta.Duration != nil {
		snap.Duration = delta.Duration
	}
	if delta.Artwork != nil {
		snap.Artwork = delta.Artwork
		snap.ArtworkData = delta.ArtworkData
		snap.ArtworkColours = delta.ArtworkColours
	}
	if delta.Elapsed != nil {
		snap.Elapsed = delta.Elapsed
		snap.UpdatedAt = delta.UpdatedAt
	}
}

func (s *Source) mergeMetadata(snap *playback.Snapshot, m Metadata) {
	if m == nil {
		return
	}
	if title, ok := m.Title(); ok {
		snap.Title = &title
	}
	if artist, ok := m.Artist(); ok {
		snap.Artist = &artist
	}
	if album, ok := m.Album(); ok {
		snap.Album = &album
	}
	if length, ok := m.Length(); ok {
		snap.Duration = &length
	}
	if artURL, ok := m.ArtURL(); ok {
		s.mergeArtwork(snap, artURL)
	}
}

func (s *Source) mergeArtwork(snap *playback.Snapshot, artURL string) {
	var data []byte
	var err error

	switch {
	case strings.HasPrefix(artURL, "file://"):
		data, err = os.ReadFile(strings.TrimPrefix(artURL, "file://"))
	case strings.HasPrefix(artURL, "http://"), strings.HasPrefix(artURL, "https://"):
		data, _, err = utils.FetchArtwork(s.client, artURL)
	default:
		return
	}
	if err != nil {
		slog.Debug("Failed to load MPRIS artwork",
			slog.String("stack", err.Error()),
			slog.String("art_url", artURL),
		)
		return
	}

	img, colours, err := utils.DecodeArtwork(data)
	if err != nil {
		return
	}
	snap.Artwork = img
	snap.ArtworkData = data
	snap.ArtworkColours = colours
}

func (s *Source) mergePosition(snap *playback.Snapshot) {
	v, err := s.bo.GetProperty(playerInterface + ".Position")
	if err != nil {
		return
	}
	micros, ok := v.Value().(int64)
	if !ok {
		return
	}
	elapsed := float64(micros) / 1e6
	now := time.Now()
	snap.Elapsed = &elapsed
	snap.UpdatedAt = &now
}

func (s *Source) playbackStatus() string {
	v, err := s.bo.GetProperty(playerInterface + ".PlaybackStatus")
	if err != nil {
		return "Unknown"
	}
	status, _ := v.Value().(string)
	return status
}

func (s *Source) metadata() Metadata {
	v, err := s.bo.GetProperty(playerInterface + ".Metadata")
	if err != nil {
		return nil
	}
	raw, ok := v.Value().(map[string]dbus.Variant)
	if !ok {
		return nil
	}
	return Metadata(raw)
}

func (s *Source) identity() (string, bool) {
	v, err := s.bo.GetProperty(busPrefix + ".Identity")
	if err != nil {
		return "", false
	}
	identity, ok := v.Value().(string)
	return identity, ok && identity != ""
}

func (s *Source) call(method string, args ...any) bool {
	return s.bo.Call(playerInterface+"."+method, 0, args...).Err == nil
}

// sendCommand translates native command codes into MPRIS calls.
func (s *Source) sendCommand(cmd mediaremote.Command, _ map[string]any) bool {
	switch cmd {
	case mediaremote.Play:
		return s.call("Play")
	case mediaremote.Pause:
		return s.call("Pause")
	case mediaremote.TogglePlayPause:
		return s.call("PlayPause")
	case mediaremote.Stop:
		return s.call("Stop")
	case mediaremote.NextTrack:
		return s.call("Next")
	case mediaremote.PreviousTrack:
		return s.call("Previous")
	case mediaremote.ToggleShuffle:
		v, err := s.bo.GetProperty(playerInterface + ".Shuffle")
		if err != nil {
			return false
		}
		shuffle, ok := v.Value().(bool)
		if !ok {
			return false
		}
		return s.bo.SetProperty(playerInterface+".Shuffle", dbus.MakeVariant(!shuffle)) == nil
	case mediaremote.ToggleRepeat:
		v, err := s.bo.GetProperty(playerInterface + ".LoopStatus")
		if err != nil {
			return false
		}
		next := map[any]string{"None": "Playlist", "Playlist": "Track", "Track": "None"}[v.Value()]
		if next == "" {
			return false
		}
		return s.bo.SetProperty(playerInterface+".LoopStatus", dbus.MakeVariant(next)) == nil
	case mediaremote.GoBackFifteenSeconds:
		return s.call("Seek", int64(-15*1e6))
	case mediaremote.SkipFifteenSeconds:
		return s.call("Seek", int64(15*1e6))
	case mediaremote.StartForwardSeek:
		// MPRIS has no held-seek; jump once on start, ignore end.
		return s.call("Seek", int64(10*1e6))
	case mediaremote.StartBackwardSeek:
		return s.call("Seek", int64(-10*1e6))
	case mediaremote.EndForwardSeek, mediaremote.EndBackwardSeek:
		return true
	}
	return false
}

// Close unsubscribes from the bus and waits for the signal watcher to
// drain.
func (s *Source) Close() {
	if s.signals == nil {
		return
	}
	_ = s.conn.RemoveMatchSignal(
		dbus.WithMatchObjectPath(objectPath),
		dbus.WithMatchInterface(propsInterface),
		dbus.WithMatchMember("PropertiesChanged"),
		dbus.WithMatchSender(s.dest),
	)
	s.conn.RemoveSignal(s.signals)
	close(s.signals)
	<-s.done
}
