// Package flood provides per-user rate limiting for inbound chat events.
package flood

import (
	"sync"
	"time"
)

const (
	windowDuration  = 60 * time.Second
	cleanupInterval = 10 * time.Minute
	idleTimeout     = 10 * time.Minute
)

// Floodgate applies a sliding-window event limit per user. Events over the
// limit are dropped before they reach the dialogue engine.
type Floodgate struct {
	limitPerMinute int
	entries        map[string]*userEntry
	mutex          sync.Mutex
	stopCleanup    chan struct{}
}

type userEntry struct {
	timestamps []time.Time
	lastSeen   time.Time
}

// New creates a Floodgate allowing limitPerMinute events per user per minute.
func New(limitPerMinute int) *Floodgate {
	fg := &Floodgate{
		limitPerMinute: limitPerMinute,
		entries:        make(map[string]*userEntry),
		stopCleanup:    make(chan struct{}),
	}

	go fg.cleanupLoop()

	return fg
}

// Stop stops the background cleanup goroutine.
func (fg *Floodgate) Stop() {
	close(fg.stopCleanup)
}

// Allow reports whether an event from userID should be processed now.
func (fg *Floodgate) Allow(userID string) bool {
	now := time.Now()

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	entry, exists := fg.entries[userID]
	if !exists {
		entry = &userEntry{
			timestamps: make([]time.Time, 0, fg.limitPerMinute+1),
		}
		fg.entries[userID] = entry
	}
	entry.lastSeen = now

	windowStart := now.Add(-windowDuration)
	valid := entry.timestamps[:0]
	for _, ts := range entry.timestamps {
		if ts.After(windowStart) {
			valid = append(valid, ts)
		}
	}
	entry.timestamps = valid

	if len(entry.timestamps) >= fg.limitPerMinute {
		return false
	}

	entry.timestamps = append(entry.timestamps, now)
	return true
}

func (fg *Floodgate) cleanupLoop() {
	ticker := time.NewTicker(cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-fg.stopCleanup:
			return
		case <-ticker.C:
			fg.removeIdle()
		}
	}
}

func (fg *Floodgate) removeIdle() {
	cutoff := time.Now().Add(-idleTimeout)

	fg.mutex.Lock()
	defer fg.mutex.Unlock()

	for key, entry := range fg.entries {
		if entry.lastSeen.Before(cutoff) {
			delete(fg.entries, key)
		}
	}
}
