package mediaremote

import "time"

// callTimeout bounds how long a bridged call waits for its native
// callback before giving up. A var so tests can tighten the window.
var callTimeout = 5 * time.Second

type callResult[T any] struct {
	val T
	ok  bool
}

// Call bridges a one-shot callback query into a blocking call. The
// query is issued on a dedicated goroutine, standing in for the serial
// dispatch queue the native API expects, and the calling goroutine
// blocks until the callback delivers a value or the timeout expires.
//
// fn maps the delivered native value and may reject it (ok false), e.g.
// for a null sentinel. Call returns ok false on timeout or rejection.
//
// The native contract promises a single callback invocation; should a
// misbehaving source call back twice, only the first result is
// consulted. A callback arriving after the timeout writes into an
// abandoned one-slot channel, which is harmless.
func Call[N, T any](query func(deliver func(N)), fn func(N) (T, bool)) (T, bool) {
	res := make(chan callResult[T], 1)

	go query(func(v N) {
		mapped, ok := fn(v)
		select {
		case res <- callResult[T]{mapped, ok}:
		default:
		}
	})

	select {
	case r := <-res:
		return r.val, r.ok
	case <-time.After(callTimeout):
		var zero T
		return zero, false
	}
}
