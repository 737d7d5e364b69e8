// Package ratelimit bounds report creation per user and hour.
package ratelimit

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Quota answers whether one more report creation fits the user's hourly
// budget. limit <= 0 means unlimited.
type Quota interface {
	Allow(ctx context.Context, userID uuid.UUID, limit int) (bool, error)
}

func hourBucket(t time.Time) string {
	return t.UTC().Format("2006010215")
}

// MemoryQuota is the in-process fallback used when Redis is not
// configured. Counts reset whenever the hour bucket rolls over.
type MemoryQuota struct {
	mu sync.Mutex

	// Now is swappable for tests.
	Now func() time.Time

	bucket string
	counts map[uuid.UUID]int
}

func NewMemoryQuota() *MemoryQuota {
	return &MemoryQuota{
		Now:    time.Now,
		counts: make(map[uuid.UUID]int),
	}
}

func (q *MemoryQuota) Allow(_ context.Context, userID uuid.UUID, limit int) (bool, error) {
	if limit <= 0 {
		return true, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	bucket := hourBucket(q.Now())
	if bucket != q.bucket {
		q.bucket = bucket
		q.counts = make(map[uuid.UUID]int)
	}
	q.counts[userID]++
	return q.counts[userID] <= limit, nil
}
