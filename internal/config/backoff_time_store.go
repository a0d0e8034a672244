package config

import (
	"math/rand/v2"
	"sync"
	"time"
)

// Load backoff for networks whose station source keeps failing. The delay
// doubles per consecutive failure up to maxBackoff, plus up to 50% jitter.
const (
	baseBackoff   = 1 * time.Second
	maxBackoff    = 2 * time.Minute
	backoffFactor = 2
	jitterFactor  = 0.5
)

type networkBackoff struct {
	delay       time.Duration
	nextRetryAt time.Time
	failures    int
}

// BackoffStore remembers, per network, when loading its stations may be tried again.
type BackoffStore struct {
	mu       sync.RWMutex
	backoffs map[int]networkBackoff
}

func NewBackoffStore() *BackoffStore {
	return &BackoffStore{
		backoffs: make(map[int]networkBackoff),
	}
}

func (s *BackoffStore) NextRetryAt(networkID int) (time.Time, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	b, exists := s.backoffs[networkID]
	if !exists {
		return time.Time{}, false
	}
	return b.nextRetryAt, true
}

// Failures returns the number of consecutive failed loads of a network.
func (s *BackoffStore) Failures(networkID int) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.backoffs[networkID].failures
}

// ShouldSkip reports whether networkID is still backing off at now.
func (s *BackoffStore) ShouldSkip(networkID int, now time.Time) bool {
	next, ok := s.NextRetryAt(networkID)
	return ok && now.Before(next)
}

// UpdateBackoff records a failed load and schedules the next attempt.
func (s *BackoffStore) UpdateBackoff(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	b := s.backoffs[networkID]
	if b.failures == 0 {
		b.delay = baseBackoff
	} else {
		b.delay = calculateNewBackoffDelay(b.delay)
	}
	b.failures++
	b.nextRetryAt = calculateNextRetryAt(time.Now(), b.delay)
	s.backoffs[networkID] = b
}

// ResetBackoff clears the backoff of a network after a successful load.
func (s *BackoffStore) ResetBackoff(networkID int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.backoffs, networkID)
}

func calculateNextRetryAt(now time.Time, delay time.Duration) time.Time {
	wait := delay + time.Duration(rand.Float64()*float64(delay)*jitterFactor)
	return now.Add(min(wait, maxBackoff)).UTC()
}

func calculateNewBackoffDelay(delay time.Duration) time.Duration {
	return min(delay*backoffFactor, maxBackoff)
}
