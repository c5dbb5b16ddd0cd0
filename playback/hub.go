package playback

import (
	"sync"
	"sync/atomic"
)

// ListenerToken identifies a subscribed listener. Tokens are allocated
// from a monotonic counter and never reused within a session, even
// after the listener is removed.
type ListenerToken uint64

// Listener receives a snapshot view after each committed change. ok is
// false when no snapshot exists yet. Listeners run synchronously on the
// thread that triggered the update, so they must not block for long.
type Listener func(view Snapshot, ok bool)

// Hub bundles the snapshot store with the subscriber registry. Every
// snapshot source embeds one, which is what lets the subscription and
// controller logic live in a single place instead of per backend.
type Hub struct {
	store Store

	mu        sync.Mutex
	listeners map[ListenerToken]Listener
	tokens    atomic.Uint64
}

// Store exposes the underlying snapshot cell to the owning source.
func (h *Hub) Store() *Store {
	return &h.store
}

// Snapshot returns the current extrapolated view.
func (h *Hub) Snapshot() (Snapshot, bool) {
	return h.store.Snapshot()
}

// Initialized reports whether any snapshot has been observed.
func (h *Hub) Initialized() bool {
	return h.store.Initialized()
}

// Subscribe registers a listener and synchronously invokes it once with
// whatever snapshot exists right now, so new subscribers don't wait for
// the next source event.
//
// Notification iterates the live listener map while holding its lock:
// a listener that calls Subscribe or Unsubscribe from inside its own
// callback will deadlock.
func (h *Hub) Subscribe(l Listener) ListenerToken {
	view, ok := h.store.Snapshot()
	l(view, ok)

	token := ListenerToken(h.tokens.Add(1))

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.listeners == nil {
		h.listeners = make(map[ListenerToken]Listener)
	}
	h.listeners[token] = l
	return token
}

// Unsubscribe removes a listener. Removing an unknown token is a no-op.
// Once Unsubscribe returns, the listener will not be invoked again: a
// concurrent Publish either already holds the lock and completes first,
// or acquires it after the removal and no longer sees the entry.
func (h *Hub) Unsubscribe(token ListenerToken) {
	h.mu.Lock()
	defer h.mu.Unlock()
	delete(h.listeners, token)
}

// Publish fans the current snapshot out to every listener exactly once,
// in map-iteration order. Sources call it after each committed merge,
// so listeners always observe the post-merge state.
func (h *Hub) Publish() {
	view, ok := h.store.Snapshot()

	h.mu.Lock()
	defer h.mu.Unlock()
	for _, l := range h.listeners {
		l(view, ok)
	}
}
