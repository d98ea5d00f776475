package services

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/db"
)

// ActivityResult is a group's activity feed with the group it belongs to.
// Summary is nil only when the feed came from the cache and the group
// snapshot did not.
type ActivityResult struct {
	Logs      []model.ActivityLog
	Summary   *projector.View
	FromCache bool
}

// ActivityLog fetches the activity feed of a group together with the group,
// so the feed is shown next to the same recipient and completion figures
// as the group view. When the backend cannot be reached the viewer's cached
// feed and snapshot are returned instead, if there are any.
func ActivityLog(ctx context.Context, api ActivityAPI, cache db.Database, logger *zap.Logger, viewer projector.Viewer, groupID string) (*ActivityResult, error) {
	logger.Debug("Fetching activity logs", zap.String("group_id", groupID))

	logs, err := api.GetActivityLogs(ctx, groupID)
	if err != nil {
		if cached := cachedActivity(ctx, cache, logger, viewer, groupID, err); cached != nil {
			return cached, nil
		}
		return nil, fmt.Errorf("failed to fetch activity logs: %w", err)
	}

	if cache != nil && viewer.UserID != "" {
		if err := cache.SaveActivityLogs(ctx, viewer.UserID, groupID, logs); err != nil {
			logger.Warn("Failed to cache activity logs", zap.String("group_id", groupID), zap.Error(err))
		}
	}

	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		if cached := cachedActivity(ctx, cache, logger, viewer, groupID, err); cached != nil {
			return cached, nil
		}
		return nil, err
	}
	cacheGroup(ctx, cache, logger, viewer.UserID, *group, time.Now())

	view := projector.Project(*group, viewer)
	return &ActivityResult{Logs: logs, Summary: &view}, nil
}

// cachedActivity serves the cached feed after a network failure. It
// returns nil when err is not a network failure or nothing is cached.
func cachedActivity(ctx context.Context, cache db.Database, logger *zap.Logger, viewer projector.Viewer, groupID string, err error) *ActivityResult {
	if cache == nil || viewer.UserID == "" || !ayuutoclient.IsTransport(err) {
		return nil
	}

	logs, cacheErr := cache.GetActivityLogs(ctx, viewer.UserID, groupID)
	if cacheErr != nil || len(logs) == 0 {
		return nil
	}
	logger.Debug("Serving cached activity logs", zap.Int("count", len(logs)))

	result := &ActivityResult{Logs: logs, FromCache: true}
	if cached, err := CachedGroup(ctx, cache, logger, viewer, groupID); err == nil {
		result.Summary = &cached.View
	}
	return result
}
