// Package cache provides the in-process query caches used by the HTTP
// layer. Caches are bounded LRU maps with a TTL; a Manager sweeps expired
// entries in the background so idle caches do not pin stale results.
package cache

import (
	"log/slog"
	"time"
)

// Store is the read/write surface handlers work against.
type Store[T any] interface {
	Get(key string) (T, bool)
	Set(key string, data T)
	Delete(key string)
	Size() int
}

// Sweeper is implemented by caches the Manager can expire entries from.
type Sweeper interface {
	CleanExpired() int
}

// Manager runs the periodic expiry sweep over every registered cache.
type Manager struct {
	caches      []Sweeper
	stopCleanup chan struct{}
	cleanupDone chan struct{}
}

func NewManager() *Manager {
	return &Manager{
		stopCleanup: make(chan struct{}),
		cleanupDone: make(chan struct{}),
	}
}

// Register adds a cache to the sweep. Not safe to call after StartCleanup.
func (m *Manager) Register(cache Sweeper) {
	m.caches = append(m.caches, cache)
}

// StartCleanup launches the background sweep at the given interval.
func (m *Manager) StartCleanup(interval time.Duration) {
	go m.cleanup(interval)
}

func (m *Manager) cleanup(interval time.Duration) {
	defer close(m.cleanupDone)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			cleaned := 0
			for _, cache := range m.caches {
				cleaned += cache.CleanExpired()
			}
			if cleaned > 0 {
				slog.Debug("Swept expired cache entries", "count", cleaned)
			}
		case <-m.stopCleanup:
			return
		}
	}
}

// Stop halts the sweep and waits for the goroutine to exit.
func (m *Manager) Stop() {
	close(m.stopCleanup)
	<-m.cleanupDone
}
