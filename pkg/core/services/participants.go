package services

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// AddParticipants adds members to a group that has not been spun yet,
// without going past its member count
func AddParticipants(ctx context.Context, api ParticipantAPI, logger *zap.Logger, groupID string, req validation.AddParticipantsRequest) (*model.Group, error) {
	for i := range req.Participants {
		req.Participants[i].Name = strings.TrimSpace(req.Participants[i].Name)
		req.Participants[i].Email = normalizeEmail(req.Participants[i].Email)
	}
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	if group.IsOrderSet {
		return nil, fmt.Errorf("cannot add participants to %s: %w", group.Name, ErrOrderAlreadySet)
	}

	total := len(group.Participants) + len(req.Participants)
	if group.MemberCount > 0 && total > group.MemberCount {
		return nil, fmt.Errorf("%s has %d of %d members, cannot add %d more: %w",
			group.Name, len(group.Participants), group.MemberCount, len(req.Participants), ErrGroupFull)
	}

	logger.Debug("Adding participants",
		zap.String("group_id", groupID),
		zap.Int("count", len(req.Participants)),
		zap.Int("total", total))

	updated, err := api.AddParticipants(ctx, groupID, req)
	if err != nil {
		return nil, fmt.Errorf("failed to add participants: %w", err)
	}
	return updated, nil
}

// RemoveParticipant removes a member. Once the order is set the rotation is
// fixed and members can no longer be removed.
func RemoveParticipant(ctx context.Context, api ParticipantAPI, logger *zap.Logger, groupID, participantID string) (*model.Group, error) {
	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	if group.IsOrderSet {
		return nil, fmt.Errorf("cannot remove participants from %s: %w", group.Name, ErrOrderAlreadySet)
	}

	if _, ok := group.FindParticipant(participantID); !ok {
		return nil, fmt.Errorf("%s in group %s: %w", participantID, group.Name, ErrParticipantNotFound)
	}

	logger.Debug("Removing participant", zap.String("group_id", groupID), zap.String("participant_id", participantID))

	updated, err := api.RemoveParticipant(ctx, groupID, participantID)
	if err != nil {
		return nil, fmt.Errorf("failed to remove participant: %w", err)
	}
	return updated, nil
}
