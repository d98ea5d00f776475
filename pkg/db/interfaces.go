package db

import (
	"context"
	"time"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
)

// GroupSnapshotStore defines the interface for cached group snapshots.
// Snapshots are keyed by the signed-in user who fetched them; one viewer
// never sees another viewer's rows.
type GroupSnapshotStore interface {
	SaveGroupSnapshot(ctx context.Context, viewerID string, group model.Group, fetchedAt time.Time) error
	GetGroupSnapshot(ctx context.Context, viewerID, groupID string) (*GroupSnapshot, error)
	ListGroupSnapshots(ctx context.Context, viewerID string) ([]GroupSnapshot, error)
	DeleteGroupSnapshot(ctx context.Context, viewerID, groupID string) error
}

// ActivityStore defines the interface for cached activity logs, keyed the
// same way as snapshots
type ActivityStore interface {
	SaveActivityLogs(ctx context.Context, viewerID, groupID string, logs []model.ActivityLog) error
	GetActivityLogs(ctx context.Context, viewerID, groupID string) ([]model.ActivityLog, error)
}

// Database defines the interface for all snapshot cache operations.
// The SQLite, Postgres and in-memory caches all implement it.
type Database interface {
	GroupSnapshotStore
	ActivityStore
	Close() error
}
