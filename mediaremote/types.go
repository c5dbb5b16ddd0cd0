// Package mediaremote defines the contract between earshot and the
// platform's media-status layer: the asynchronous query surface, the
// notification center, the command sink and the value types that cross
// that boundary. The actual native binding is supplied by the embedding
// application; everything in this package is binding-agnostic.
package mediaremote

import (
	"fmt"
	"time"
)

// Command is a playback intent with the fixed integer code the native
// command sink understands.
type Command int

const (
	Play Command = iota
	Pause
	TogglePlayPause
	Stop
	NextTrack
	PreviousTrack
	ToggleShuffle
	ToggleRepeat
	StartForwardSeek
	EndForwardSeek
	StartBackwardSeek
	EndBackwardSeek
	GoBackFifteenSeconds
	SkipFifteenSeconds
)

// Notification names posted by the native notification center.
type Notification string

const (
	NotificationInfoDidChange          Notification = "kMRMediaRemoteNowPlayingInfoDidChangeNotification"
	NotificationApplicationDidChange   Notification = "kMRMediaRemoteNowPlayingApplicationDidChangeNotification"
	NotificationIsPlayingDidChange     Notification = "kMRMediaRemoteNowPlayingApplicationIsPlayingDidChangeNotification"
	NotificationClientStateDidChange   Notification = "kMRMediaRemoteNowPlayingApplicationClientStateDidChange"
	NotificationPlaybackQueueDidChange Notification = "kMRMediaRemoteNowPlayingPlaybackQueueDidChangeNotification"
	NotificationQueueContentsChanged   Notification = "kMRPlaybackQueueContentItemsChangedNotification"
)

// Keys of interest in the now-playing info dictionary.
const (
	InfoKeyTitle       = "kMRMediaRemoteNowPlayingInfoTitle"
	InfoKeyArtist      = "kMRMediaRemoteNowPlayingInfoArtist"
	InfoKeyAlbum       = "kMRMediaRemoteNowPlayingInfoAlbum"
	InfoKeyDuration    = "kMRMediaRemoteNowPlayingInfoDuration"
	InfoKeyElapsedTime = "kMRMediaRemoteNowPlayingInfoElapsedTime"
	InfoKeyArtworkData = "kMRMediaRemoteNowPlayingInfoArtworkData"
	InfoKeyTimestamp   = "kMRMediaRemoteNowPlayingInfoTimestamp"
)

// ValueKind tags the variant held by a Value.
type ValueKind int

const (
	KindString ValueKind = iota
	KindSigned
	KindUnsigned
	KindFloat
	KindTime
	KindData
	// KindUnsupported marks a native value class the binding could not
	// translate. Updaters skip these rather than failing the merge.
	KindUnsupported
)

// Value is one entry of the now-playing info dictionary. Only the field
// matching Kind is meaningful.
type Value struct {
	Kind  ValueKind
	Str   string
	Int   int64
	Uint  uint64
	Float float64
	Time  time.Time
	Data  []byte
}

func StringValue(s string) Value { return Value{Kind: KindString, Str: s} }
func SignedValue(i int64) Value { return Value{Kind: KindSigned, Int: i} }
func UnsignedValue(u uint64) Value { return Value{Kind: KindUnsigned, Uint: u} }
func FloatValue(f float64) Value { return Value{Kind: KindFloat, Float: f} }
func TimeValue(t time.Time) Value { return Value{Kind: KindTime, Time: t} }
func DataValue(b []byte) Value { return Value{Kind: KindData, Data: b} }
func UnsupportedValue() Value { return Value{Kind: KindUnsupported} }

func (v Value) String() string {
	switch v.Kind {
	case KindString:
		return v.Str
	case KindSigned:
		return fmt.Sprintf("%d", v.Int)
	case KindUnsigned:
		return fmt.Sprintf("%d", v.Uint)
	case KindFloat:
		return fmt.Sprintf("%g", v.Float)
	case KindTime:
		return v.Time.Format(time.RFC3339)
	case KindData:
		return fmt.Sprintf("[%d bytes of data]", len(v.Data))
	default:
		return "unsupported"
	}
}
