package mediaremote

// API is the asynchronous native query surface. Each method issues one
// query and arranges for deliver to be invoked at most once, from an
// arbitrary thread, with the native result. There is no cancellation:
// a query that never completes simply never calls deliver.
//
// Absent values are sentinels rather than errors: an empty string for
// the bundle identifier queries, a nil map for NowPlayingInfo.
type API interface {
	// IsPlaying reports whether the now-playing application is
	// actively playing.
	IsPlaying(deliver func(playing bool))

	// NowPlayingInfo delivers the rich info dictionary, or nil when no
	// media session exists.
	NowPlayingInfo(deliver func(info map[string]Value))

	// ClientBundleID delivers the now-playing client's bundle
	// identifier, or "" when there is no client.
	ClientBundleID(deliver func(id string))

	// ClientParentBundleID delivers the bundle identifier of the
	// client's parent application, or "" when the client has none.
	ClientParentBundleID(deliver func(id string))
}

// CommandSender forwards a playback command to the native command sink.
// extra carries command-specific options and is usually nil. The return
// value is the sink's acceptance result.
type CommandSender interface {
	SendCommand(cmd Command, extra map[string]any) bool
}

// SenderFunc adapts a function to the CommandSender interface.
type SenderFunc func(cmd Command, extra map[string]any) bool

func (f SenderFunc) SendCommand(cmd Command, extra map[string]any) bool {
	return f(cmd, extra)
}

// Observer is an opaque handle for a registered notification observer.
// The session owns it and releases it exactly once at teardown.
type Observer any

// NotificationCenter delivers native media notifications. Register must
// be called once per process before any AddObserver call will see
// events; it is not safe to call per observer.
type NotificationCenter interface {
	Register()
	Unregister()

	// AddObserver binds fn to a notification name. fn runs
	// synchronously on the delivery thread.
	AddObserver(n Notification, fn func()) Observer
	RemoveObserver(o Observer)
}
