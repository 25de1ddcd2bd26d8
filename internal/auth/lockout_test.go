package auth

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

var testID = Identifier{Phone: "+84905123456", Plate: "92A-12345"}

func TestLockoutTracker_LocksAfterMaxFails(t *testing.T) {
	lt := NewLockoutTracker(15*time.Minute, 5)

	for i := 0; i < 4; i++ {
		locked, _ := lt.Evaluate(testID, false)
		assert.False(t, locked, "attempt %d must not lock yet", i+1)
	}

	locked, lockUntil := lt.Evaluate(testID, false)
	assert.True(t, locked, "5th consecutive failure must lock")
	assert.False(t, lockUntil.IsZero())
}

func TestLockoutTracker_LockIsStickyEvenOnSuccess(t *testing.T) {
	lt := NewLockoutTracker(15*time.Minute, 5)

	for i := 0; i < 5; i++ {
		lt.Evaluate(testID, false)
	}

	// Correct credentials while locked must still report locked.
	locked, _ := lt.Evaluate(testID, true)
	assert.True(t, locked)
}

func TestLockoutTracker_LockedRequestsDoNotConsumeAttempts(t *testing.T) {
	lt := NewLockoutTracker(15*time.Minute, 5)

	for i := 0; i < 5; i++ {
		lt.Evaluate(testID, false)
	}
	for i := 0; i < 10; i++ {
		lt.Evaluate(testID, false)
	}

	rec := lt.records[testID.key()]
	assert.Equal(t, 5, rec.count, "attempts made while locked must not increment the counter")
}

func TestLockoutTracker_SuccessResets(t *testing.T) {
	lt := NewLockoutTracker(15*time.Minute, 5)

	lt.Evaluate(testID, false)
	lt.Evaluate(testID, false)

	locked, _ := lt.Evaluate(testID, true)
	assert.False(t, locked)

	rec := lt.records[testID.key()]
	assert.Equal(t, 0, rec.count)
	assert.True(t, rec.lockUntil.IsZero())
}

func TestLockoutTracker_LockExpiresWithWindow(t *testing.T) {
	lt := NewLockoutTracker(15*time.Minute, 5)

	now := time.Now()
	lt.now = func() time.Time { return now }

	for i := 0; i < 5; i++ {
		lt.Evaluate(testID, false)
	}
	locked, _ := lt.Locked(testID)
	assert.True(t, locked)

	now = now.Add(16 * time.Minute)
	locked, _ = lt.Locked(testID)
	assert.False(t, locked, "an elapsed window must release the lock")

	locked, _ = lt.Evaluate(testID, false)
	assert.False(t, locked, "counter must restart after the window elapses")
	assert.Equal(t, 1, lt.records[testID.key()].count)
}

func TestLockoutTracker_LockedPrecheckDoesNotMutate(t *testing.T) {
	lt := NewLockoutTracker(15*time.Minute, 5)

	lt.Evaluate(testID, false)
	before := lt.records[testID.key()].count

	lt.Locked(testID)
	lt.Locked(testID)

	assert.Equal(t, before, lt.records[testID.key()].count)
}
