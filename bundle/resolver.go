// Package bundle resolves application bundle identifiers to display
// info. The real lookup goes through a platform application registry,
// which is an external collaborator; this package defines the contract
// plus a cache and a registry-free fallback.
package bundle

import (
	"image"
	"strings"
	"sync"
)

// AppInfo is what the platform registry knows about an application.
type AppInfo struct {
	Name string
	Icon image.Image
}

// Resolver maps a bundle identifier to display info. ok is false when
// the application cannot be located.
type Resolver interface {
	Resolve(bundleID string) (info AppInfo, ok bool)
}

// ResolverFunc adapts a function to the Resolver interface.
type ResolverFunc func(bundleID string) (AppInfo, bool)

func (f ResolverFunc) Resolve(bundleID string) (AppInfo, bool) {
	return f(bundleID)
}

// Cache memoises a Resolver. Registry lookups involve icon decoding and
// the now-playing application rarely changes, so hits dominate. Misses
// are not cached; an app may be installed between lookups.
type Cache struct {
	next Resolver

	mu      sync.Mutex
	entries map[string]AppInfo
}

func NewCache(next Resolver) *Cache {
	return &Cache{next: next, entries: make(map[string]AppInfo)}
}

func (c *Cache) Resolve(bundleID string) (AppInfo, bool) {
	c.mu.Lock()
	info, hit := c.entries[bundleID]
	c.mu.Unlock()
	if hit {
		return info, true
	}

	info, ok := c.next.Resolve(bundleID)
	if !ok {
		return AppInfo{}, false
	}

	c.mu.Lock()
	c.entries[bundleID] = info
	c.mu.Unlock()
	return info, true
}

// Fallback derives a display name from the identifier itself, for
// builds without a registry binding: "com.apple.Music" becomes "Music".
func Fallback() Resolver {
	return ResolverFunc(func(bundleID string) (AppInfo, bool) {
		if bundleID == "" {
			return AppInfo{}, false
		}
		segments := strings.Split(bundleID, ".")
		return AppInfo{Name: segments[len(segments)-1]}, true
	})
}
