package db

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
)

var _ Database = (*MemoryDB)(nil)

type cacheKey struct {
	viewerID string
	groupID  string
}

// MemoryDB is a process-local cache, used when no cache driver is configured
type MemoryDB struct {
	mu        sync.Mutex
	snapshots map[cacheKey]GroupSnapshot
	logs      map[cacheKey][]model.ActivityLog
}

// NewMemoryDB creates an empty in-memory cache
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{
		snapshots: make(map[cacheKey]GroupSnapshot),
		logs:      make(map[cacheKey][]model.ActivityLog),
	}
}

func (m *MemoryDB) SaveGroupSnapshot(_ context.Context, viewerID string, group model.Group, fetchedAt time.Time) error {
	snap, err := NewGroupSnapshot(viewerID, group, fetchedAt)
	if err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snapshots[cacheKey{viewerID, group.ID}] = snap
	return nil
}

func (m *MemoryDB) GetGroupSnapshot(_ context.Context, viewerID, groupID string) (*GroupSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap, ok := m.snapshots[cacheKey{viewerID, groupID}]
	if !ok {
		return nil, nil
	}
	return &snap, nil
}

func (m *MemoryDB) ListGroupSnapshots(_ context.Context, viewerID string) ([]GroupSnapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]GroupSnapshot, 0, len(m.snapshots))
	for key, snap := range m.snapshots {
		if key.viewerID == viewerID {
			out = append(out, snap)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryDB) DeleteGroupSnapshot(_ context.Context, viewerID, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := cacheKey{viewerID, groupID}
	delete(m.snapshots, key)
	delete(m.logs, key)
	return nil
}

func (m *MemoryDB) SaveActivityLogs(_ context.Context, viewerID, groupID string, logs []model.ActivityLog) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.logs[cacheKey{viewerID, groupID}] = append([]model.ActivityLog(nil), logs...)
	return nil
}

func (m *MemoryDB) GetActivityLogs(_ context.Context, viewerID, groupID string) ([]model.ActivityLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]model.ActivityLog(nil), m.logs[cacheKey{viewerID, groupID}]...), nil
}

func (m *MemoryDB) Close() error {
	return nil
}
