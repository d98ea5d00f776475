package services

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/optimistic"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// SpinOrder asks the backend to draw the payout order
func SpinOrder(ctx context.Context, api RoundAPI, logger *zap.Logger, viewer projector.Viewer, groupID string) (*projector.View, error) {
	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsOwnedBy(viewer.UserID) || viewer.ReadOnly {
		return nil, ErrNotOwner
	}
	if group.IsOrderSet {
		return nil, ErrOrderAlreadySet
	}
	if len(group.Participants) < validation.MinMembers {
		return nil, fmt.Errorf("need at least %d participants to spin, have %d: %w",
			validation.MinMembers, len(group.Participants), ErrNotEnoughParticipants)
	}

	logger.Debug("Spinning payout order", zap.String("group_id", groupID), zap.Int("participants", len(group.Participants)))

	spun, err := api.SpinOrder(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to spin: %w", err)
	}

	view := projector.Project(*spun, viewer)
	return &view, nil
}

// PaymentUpdate reports the optimistic view shown while a payment change
// is in flight. It may be nil.
type PaymentUpdate func(pending projector.View)

// TogglePayment flips a contributor's paid flag for the current round. The
// change is applied locally first and reconciled with a full re-fetch.
func TogglePayment(ctx context.Context, api RoundAPI, logger *zap.Logger, viewer projector.Viewer, groupID, participantID string, onPending PaymentUpdate) (*projector.View, error) {
	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	participant, ok := group.FindParticipant(participantID)
	if !ok {
		return nil, fmt.Errorf("%s in group %s: %w", participantID, group.Name, ErrParticipantNotFound)
	}

	eligibility := projector.PaymentToggleEligibility(*group, participantID, viewer)
	if !eligibility.Visible || !eligibility.Editable {
		return nil, fmt.Errorf("%s: %w", participant.DisplayName(), ErrNotEditable)
	}

	target := !participant.IsPaid
	logger.Debug("Toggling payment",
		zap.String("group_id", groupID),
		zap.String("participant_id", participantID),
		zap.Bool("is_paid", target))

	store := optimistic.NewStore(*group)
	patch := func(g model.Group) model.Group {
		patched := g.Clone()
		for i := range patched.Participants {
			if patched.Participants[i].ID == participantID {
				patched.Participants[i].IsPaid = target
			}
		}
		if onPending != nil {
			onPending(projector.Project(patched, viewer))
		}
		return patched
	}

	result, err := optimistic.Apply(ctx, store, patch, func(ctx context.Context) (model.Group, error) {
		return updateAndRefetch(ctx, api, groupID, participantID, target)
	})
	if err != nil {
		logger.Debug("Payment update failed, local state restored", zap.String("group_id", groupID), zap.Error(err))
		return nil, fmt.Errorf("failed to update payment: %w", err)
	}

	view := projector.Project(result, viewer)
	return &view, nil
}

// PayRecipient marks the current recipient as paid once every other
// member has contributed
func PayRecipient(ctx context.Context, api RoundAPI, logger *zap.Logger, viewer projector.Viewer, groupID string) (*projector.View, error) {
	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsOwnedBy(viewer.UserID) || viewer.ReadOnly {
		return nil, ErrNotOwner
	}
	if !projector.CanCurrentRecipientBePaid(*group) {
		return nil, ErrCannotPayRecipient
	}

	recipient := projector.CurrentRecipient(*group)
	logger.Debug("Paying recipient", zap.String("group_id", groupID), zap.String("participant_id", recipient.ID))

	updated, err := updateAndRefetch(ctx, api, groupID, recipient.ID, true)
	if err != nil {
		return nil, fmt.Errorf("failed to pay recipient: %w", err)
	}

	view := projector.Project(updated, viewer)
	return &view, nil
}

// NextRound closes the current round once everyone has paid
func NextRound(ctx context.Context, api RoundAPI, logger *zap.Logger, viewer projector.Viewer, groupID string) (*projector.View, error) {
	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	if !group.IsOwnedBy(viewer.UserID) || viewer.ReadOnly {
		return nil, ErrNotOwner
	}
	if !projector.CanAdvanceRound(*group) {
		return nil, ErrCannotAdvanceRound
	}

	logger.Debug("Advancing round", zap.String("group_id", groupID), zap.Int("from_index", group.CurrentRecipientIndex))

	if _, err := api.NextRound(ctx, groupID); err != nil {
		return nil, fmt.Errorf("failed to advance round: %w", err)
	}

	refreshed, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	view := projector.Project(*refreshed, viewer)
	return &view, nil
}

// updateAndRefetch writes a payment flag then reads the whole group back,
// since the write response may not carry derived fields
func updateAndRefetch(ctx context.Context, api RoundAPI, groupID, participantID string, isPaid bool) (model.Group, error) {
	if _, err := api.UpdatePaymentStatus(ctx, groupID, participantID, isPaid); err != nil {
		return model.Group{}, err
	}
	group, err := api.GetGroup(ctx, groupID)
	if err != nil {
		return model.Group{}, err
	}
	return *group, nil
}
