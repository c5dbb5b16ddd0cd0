package playback

import (
	"sync"
	"time"
)

// Store is the shared "current snapshot" cell. It starts empty: a nil
// snapshot means no source has observed anything yet, which gates
// commands and distinguishes "unknown" from "not playing".
type Store struct {
	mu   sync.RWMutex
	snap *Snapshot
}

// Initialized reports whether a snapshot exists yet.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap != nil
}

// Reset replaces the cell with a fresh all-unknown snapshot.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = &Snapshot{}
}

// Merge applies fn to the current snapshot under the exclusive lock, so
// a reader never observes a half-merged pass. If no snapshot exists the
// cell self-heals to an empty one first; fn then merges into that.
func (s *Store) Merge(fn func(*Snapshot)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.snap == nil {
		s.snap = &Snapshot{}
	}
	fn(s.snap)
}

// Replace swaps the whole snapshot. Poll-driven sources re-derive a
// full record per cycle instead of merging field groups.
func (s *Store) Replace(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snap = snap
}

// Snapshot extrapolates the playback position and returns a copied read
// view. Source pushes are seconds to tens of seconds apart; without
// advancing elapsed by the wall clock here, readers polling faster than
// the push cadence would see a frozen position. The extrapolated value
// is committed back into the cell before the view is taken, so repeated
// reads are monotonic while playing and stable while paused.
func (s *Store) Snapshot() (Snapshot, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.snap == nil {
		return Snapshot{}, false
	}

	if s.snap.Playing != nil && *s.snap.Playing &&
		s.snap.Elapsed != nil && s.snap.UpdatedAt != nil {
		now := time.Now()
		elapsed := *s.snap.Elapsed + now.Sub(*s.snap.UpdatedAt).Seconds()
		s.snap.Elapsed = &elapsed
		s.snap.UpdatedAt = &now
	}

	return *s.snap, true
}
