package station

import (
	"context"
	"errors"
)

// ErrNoSnapshot is returned when no persisted snapshot exists yet.
var ErrNoSnapshot = errors.New("no persisted snapshot")

// Repository persists directory snapshots so a fresh process can serve
// real (if stale) data before its first successful remote fetch.
type Repository interface {
	// SaveSnapshot stores a snapshot, replacing the previous one.
	SaveSnapshot(ctx context.Context, snapshot *Snapshot) error

	// LatestSnapshot retrieves the most recently saved snapshot.
	// Returns ErrNoSnapshot if nothing has been saved.
	LatestSnapshot(ctx context.Context) (*Snapshot, error)
}
