package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ayuuto/ayuuto-cli/pkg/core/loadguard"
	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/optimistic"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
	"github.com/ayuuto/ayuuto-cli/pkg/db"
)

const groupsLoadKey = "groups"

func groupLoadKey(groupID string) string {
	return "group:" + groupID
}

// ListOptions controls how the group list is loaded
type ListOptions struct {
	Viewer      projector.Viewer
	Concurrency int
}

// ListGroups fetches the user's groups, then the details of each one with
// bounded concurrency, and projects them. The result keeps the backend's
// list order. Snapshots are cached when cache is not nil.
func ListGroups(ctx context.Context, api GroupLister, cache db.GroupSnapshotStore, guard *loadguard.Guard, logger *zap.Logger, opts ListOptions) ([]projector.View, error) {
	release, ok := guard.TryAcquire(groupsLoadKey)
	if !ok {
		return nil, ErrLoadInFlight
	}
	defer release()

	logger.Debug("Fetching groups")
	groups, err := api.ListGroups(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to list groups: %w", err)
	}
	logger.Debug("Fetched groups", zap.Int("count", len(groups)))

	limit := opts.Concurrency
	if limit <= 0 {
		limit = 1
	}

	detailed := make([]model.Group, len(groups))
	eg, egCtx := errgroup.WithContext(ctx)
	eg.SetLimit(limit)
	for i, summary := range groups {
		eg.Go(func() error {
			group, err := api.GetGroup(egCtx, summary.ID)
			if err != nil {
				return fmt.Errorf("failed to fetch group %s: %w", summary.ID, err)
			}
			detailed[i] = *group
			return nil
		})
	}
	if err := eg.Wait(); err != nil {
		return nil, err
	}

	now := time.Now()
	views := make([]projector.View, 0, len(detailed))
	for _, group := range detailed {
		cacheGroup(ctx, cache, logger, opts.Viewer.UserID, group, now)
		views = append(views, projector.Project(group, opts.Viewer))
	}
	return views, nil
}

// CreateGroup validates and creates a group
func CreateGroup(ctx context.Context, api GroupCreator, logger *zap.Logger, req validation.CreateGroupRequest) (*model.Group, error) {
	req.Name = strings.TrimSpace(req.Name)
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	logger.Debug("Creating group",
		zap.String("name", req.Name),
		zap.Int("member_count", req.MemberCount),
		zap.Float64("amount_per_person", req.AmountPerPerson))

	group, err := api.CreateGroup(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("failed to create group: %w", err)
	}
	return group, nil
}

// ViewGroup fetches a group, caches the snapshot and projects it
func ViewGroup(ctx context.Context, api GroupGetter, cache db.GroupSnapshotStore, guard *loadguard.Guard, logger *zap.Logger, viewer projector.Viewer, groupID string) (*projector.View, error) {
	release, ok := guard.TryAcquire(groupLoadKey(groupID))
	if !ok {
		return nil, ErrLoadInFlight
	}
	defer release()

	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	cacheGroup(ctx, cache, logger, viewer.UserID, *group, time.Now())
	view := projector.Project(*group, viewer)
	return &view, nil
}

// ViewSharedGroup fetches a group through its share token. The view is
// always read-only.
func ViewSharedGroup(ctx context.Context, api SharedGroupGetter, logger *zap.Logger, token string) (*projector.View, error) {
	token = strings.TrimSpace(token)
	if token == "" {
		return nil, &validation.ValidationError{Fields: []validation.FieldError{{Field: "Token", Message: "Token is required"}}}
	}

	logger.Debug("Fetching shared group")
	group, err := api.GetSharedGroup(ctx, token)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch shared group: %w", err)
	}

	view := projector.Project(*group, projector.Viewer{ReadOnly: true})
	return &view, nil
}

// DeleteGroup removes the group from the local list straight away and
// restores it if the backend refuses the delete
func DeleteGroup(ctx context.Context, api GroupDeleter, cache db.GroupSnapshotStore, list *optimistic.Store[[]model.Group], logger *zap.Logger, viewerID, groupID string) error {
	logger.Debug("Deleting group", zap.String("group_id", groupID))

	without := func(groups []model.Group) []model.Group {
		out := make([]model.Group, 0, len(groups))
		for _, g := range groups {
			if g.ID != groupID {
				out = append(out, g)
			}
		}
		return out
	}

	_, err := optimistic.Apply(ctx, list, without, func(ctx context.Context) ([]model.Group, error) {
		if err := api.DeleteGroup(ctx, groupID); err != nil {
			return nil, err
		}
		return without(list.Get()), nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete group: %w", err)
	}

	if cache != nil {
		if err := cache.DeleteGroupSnapshot(ctx, viewerID, groupID); err != nil {
			logger.Warn("Failed to remove cached group", zap.String("group_id", groupID), zap.Error(err))
		}
	}
	return nil
}

// CachedGroups returns the groups the viewer loaded last. Nothing is
// returned without a signed-in viewer.
func CachedGroups(ctx context.Context, cache db.GroupSnapshotStore, logger *zap.Logger, viewerID string) ([]model.Group, error) {
	if cache == nil || viewerID == "" {
		return nil, nil
	}

	snaps, err := cache.ListGroupSnapshots(ctx, viewerID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached groups: %w", err)
	}

	groups := make([]model.Group, 0, len(snaps))
	for _, snap := range snaps {
		group, err := snap.Group()
		if err != nil {
			logger.Warn("Skipping unreadable cached group", zap.String("group_id", snap.GroupID), zap.Error(err))
			continue
		}
		groups = append(groups, group)
	}
	return groups, nil
}

// CachedView is a group served from the snapshot cache
type CachedView struct {
	projector.View
	FetchedAt time.Time
}

// CachedGroup projects the last cached snapshot of a group
func CachedGroup(ctx context.Context, cache db.GroupSnapshotStore, logger *zap.Logger, viewer projector.Viewer, groupID string) (*CachedView, error) {
	if cache == nil || viewer.UserID == "" {
		return nil, ErrNotCached
	}

	snap, err := cache.GetGroupSnapshot(ctx, viewer.UserID, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to read cached group: %w", err)
	}
	if snap == nil {
		return nil, ErrNotCached
	}

	group, err := snap.Group()
	if err != nil {
		return nil, err
	}

	logger.Debug("Serving cached group", zap.String("group_id", groupID), zap.Time("fetched_at", snap.FetchedAt))
	// Cached data can be stale so nothing is editable from it
	viewer.ReadOnly = true
	return &CachedView{View: projector.Project(group, viewer), FetchedAt: snap.FetchedAt}, nil
}

func fetchGroup(ctx context.Context, api GroupGetter, logger *zap.Logger, groupID string) (*model.Group, error) {
	logger.Debug("Fetching group", zap.String("group_id", groupID))
	group, err := api.GetGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch group %s: %w", groupID, err)
	}
	return group, nil
}

func cacheGroup(ctx context.Context, cache db.GroupSnapshotStore, logger *zap.Logger, viewerID string, group model.Group, fetchedAt time.Time) {
	if cache == nil || viewerID == "" {
		return
	}
	if err := cache.SaveGroupSnapshot(ctx, viewerID, group, fetchedAt); err != nil {
		logger.Warn("Failed to cache group", zap.String("group_id", group.ID), zap.Error(err))
	}
}
