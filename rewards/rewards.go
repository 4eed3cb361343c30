// Package rewards holds the reward decision engines. The engines own
// all streak, task and referral policy; persistence is delegated to a
// store.Store so the same logic runs against the in-memory store and
// the relational one.
package rewards

import (
	"errors"
	"sync"
)

// Domain errors surfaced by the engines. Storage failures are returned
// unwrapped alongside these; callers distinguish them with errors.Is.
var (
	ErrAlreadyClaimed      = errors.New("daily reward already claimed today")
	ErrTaskNotFound        = errors.New("task not found")
	ErrSelfReferral        = errors.New("cannot refer yourself")
	ErrReferralCodeUnknown = errors.New("referral code not found")
)

// userLocks serializes reward mutations per user so two concurrent
// claims for the same user cannot both pass the eligibility check.
// Requests for different users proceed in parallel.
type userLocks struct {
	mu sync.Mutex
	m  map[string]*sync.Mutex
}

func newUserLocks() *userLocks {
	return &userLocks{m: map[string]*sync.Mutex{}}
}

// lock acquires the mutex for key and returns its release func.
func (l *userLocks) lock(key string) func() {
	l.mu.Lock()
	um, ok := l.m[key]
	if !ok {
		um = &sync.Mutex{}
		l.m[key] = um
	}
	l.mu.Unlock()

	um.Lock()
	return um.Unlock
}
