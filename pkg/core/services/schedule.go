package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/schedule"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// UpcomingCollections is how many collection dates SetSchedule previews
const UpcomingCollections = 3

// ScheduleResult is the updated group with its next collection dates
type ScheduleResult struct {
	Group           *model.Group
	NextCollections []time.Time
}

// SetSchedule validates and saves a group's contribution schedule
func SetSchedule(ctx context.Context, api ScheduleAPI, logger *zap.Logger, groupID string, req validation.ScheduleRequest, now time.Time) (*ScheduleResult, error) {
	req.CollectionDate = strings.TrimSpace(req.CollectionDate)
	req.Frequency = model.Frequency(strings.ToLower(string(req.Frequency)))
	if err := validation.CheckSchedule(req); err != nil {
		return nil, err
	}

	logger.Debug("Setting schedule",
		zap.String("group_id", groupID),
		zap.String("frequency", string(req.Frequency)),
		zap.String("collection_date", req.CollectionDate))

	group, err := api.SetSchedule(ctx, groupID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to set schedule: %w", err)
	}

	dates, err := schedule.NextCollections(*group, now, UpcomingCollections)
	if err != nil {
		// The backend accepted the schedule; only the preview is unavailable
		logger.Warn("Could not compute collection dates", zap.String("group_id", groupID), zap.Error(err))
		dates = nil
	}

	return &ScheduleResult{Group: group, NextCollections: dates}, nil
}
