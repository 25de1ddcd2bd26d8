package auth

import (
	"strings"
	"sync"
	"time"
)

// Identifier keys lockout state by the normalized (phone, plate) pair.
type Identifier struct {
	Phone string
	Plate string
}

func (id Identifier) key() string {
	return strings.ToLower(id.Phone) + "|" + strings.ToUpper(id.Plate)
}

// failureRecord tracks failed attempts for one identifier inside a sliding
// failure window.
type failureRecord struct {
	count       int
	windowStart time.Time
	lockUntil   time.Time
}

// LockoutTracker counts failed credential checks per identifier and locks
// the identifier once the failure ceiling is reached within the window.
type LockoutTracker struct {
	mu       sync.Mutex
	records  map[string]*failureRecord
	window   time.Duration
	maxFails int
	now      func() time.Time
}

// NewLockoutTracker creates a tracker locking after maxFails failures within
// window; the lock itself also lasts for window.
func NewLockoutTracker(window time.Duration, maxFails int) *LockoutTracker {
	if window <= 0 {
		window = 15 * time.Minute
	}
	if maxFails <= 0 {
		maxFails = 5
	}
	return &LockoutTracker{
		records:  make(map[string]*failureRecord),
		window:   window,
		maxFails: maxFails,
		now:      time.Now,
	}
}

// Locked reports whether the identifier is currently locked, without
// consuming an attempt. Used as the pre-check before credentials are even
// looked at.
func (lt *LockoutTracker) Locked(id Identifier) (bool, time.Time) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	rec, ok := lt.records[id.key()]
	if !ok {
		return false, time.Time{}
	}
	now := lt.now()
	if !rec.lockUntil.IsZero() && now.Before(rec.lockUntil) {
		return true, rec.lockUntil
	}
	return false, time.Time{}
}

// Evaluate records the outcome of one verification attempt and reports
// whether the identifier is locked. A request arriving while the identifier
// is already locked does not consume an attempt; staleness is resolved
// before the lock check so an elapsed window can never leave a permanent lock.
func (lt *LockoutTracker) Evaluate(id Identifier, success bool) (locked bool, lockUntil time.Time) {
	lt.mu.Lock()
	defer lt.mu.Unlock()

	now := lt.now()
	key := id.key()
	rec, ok := lt.records[key]
	if !ok {
		rec = &failureRecord{windowStart: now}
		lt.records[key] = rec
	}

	if now.Sub(rec.windowStart) > lt.window {
		rec.count = 0
		rec.windowStart = now
		rec.lockUntil = time.Time{}
	}

	if !rec.lockUntil.IsZero() && now.Before(rec.lockUntil) {
		return true, rec.lockUntil
	}

	if success {
		rec.count = 0
		rec.windowStart = now
		rec.lockUntil = time.Time{}
		return false, time.Time{}
	}

	rec.count++
	if rec.count >= lt.maxFails {
		rec.lockUntil = now.Add(lt.window)
		return true, rec.lockUntil
	}
	return false, time.Time{}
}
