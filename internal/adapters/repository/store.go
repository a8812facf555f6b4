// Package repository keeps the painters fetched per movement for the
// lifetime of the process.
package repository

import (
	"context"

	"github.com/okian/artmap/internal/domain/model"
)

// Cache maps a movement id to the last result set fetched for it.
// Entries are never evicted.
type Cache interface {
	// Get returns the cached result set for id.
	Get(ctx context.Context, id model.MovementID) (model.ResultSet, bool)

	// Store saves rs under id, replacing any previous entry.
	Store(ctx context.Context, id model.MovementID, rs model.ResultSet)

	// GetOrFetch returns the cached value or fetches and stores it, and
	// reports whether the value was already cached. A failed fetch stores
	// nothing.
	GetOrFetch(ctx context.Context, id model.MovementID) (rs model.ResultSet, cached bool, err error)

	// PrefetchAll schedules one background fetch per id and returns how
	// many were accepted.
	PrefetchAll(ctx context.Context, ids []model.MovementID) (int, error)

	// Len returns the number of cached movements.
	Len(ctx context.Context) int

	// Movements returns the cached movement ids.
	Movements(ctx context.Context) []model.MovementID
}
