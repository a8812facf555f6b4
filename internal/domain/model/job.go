package model

import "time"

// PrefetchJob asks a worker to load the painters of one movement into the
// result cache.
type PrefetchJob struct {
	Movement   MovementID `json:"movement"`
	EnqueuedAt time.Time  `json:"enqueuedAt"`
}
