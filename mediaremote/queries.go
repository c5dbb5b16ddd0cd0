package mediaremote

// The helpers below wrap each native query in a bridged blocking call.
// They are the only place the query surface and the bridge meet, so
// every caller gets the same timeout and null handling.

// GetIsPlaying reports whether the now-playing application is playing.
// ok is false when the native layer did not answer within the timeout.
func GetIsPlaying(api API) (playing, ok bool) {
	return Call(api.IsPlaying, func(b bool) (bool, bool) {
		return b, true
	})
}

// GetNowPlayingInfo fetches the rich info dictionary. ok is false on
// timeout or when no media session exists.
func GetNowPlayingInfo(api API) (map[string]Value, bool) {
	return Call(api.NowPlayingInfo, func(m map[string]Value) (map[string]Value, bool) {
		return m, m != nil
	})
}

// GetClientBundleID fetches the now-playing client's bundle identifier.
func GetClientBundleID(api API) (string, bool) {
	return Call(api.ClientBundleID, rejectEmpty)
}

// GetClientParentBundleID fetches the bundle identifier of the client's
// parent application, e.g. the browser hosting a playing tab.
func GetClientParentBundleID(api API) (string, bool) {
	return Call(api.ClientParentBundleID, rejectEmpty)
}

func rejectEmpty(s string) (string, bool) {
	return s, s != ""
}
