package ayuutoclient

import (
	"context"
	"net/http"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// SpinOrder asks the backend to randomise the payout order. The returned
// group has isOrderSet, every order assigned and currentRecipientIndex 0.
func (c *Client) SpinOrder(ctx context.Context, groupID string) (*model.Group, error) {
	return c.groupCall(ctx, http.MethodPost, "/groups/"+escape(groupID)+"/spin", nil)
}

// UpdatePaymentStatus sets a participant's payment for the current round
func (c *Client) UpdatePaymentStatus(ctx context.Context, groupID, participantID string, isPaid bool) (*model.Group, error) {
	path := "/groups/" + escape(groupID) + "/participants/" + escape(participantID) + "/payment"
	return c.groupCall(ctx, http.MethodPatch, path, validation.PaymentStatusRequest{IsPaid: isPaid})
}

// NextRound advances the group to the next recipient
func (c *Client) NextRound(ctx context.Context, groupID string) (*model.Group, error) {
	return c.groupCall(ctx, http.MethodPost, "/groups/"+escape(groupID)+"/next-round", nil)
}

// GetActivityLogs returns a group's activity feed
func (c *Client) GetActivityLogs(ctx context.Context, groupID string) ([]model.ActivityLog, error) {
	var logs []model.ActivityLog
	if err := c.do(ctx, http.MethodGet, "/groups/"+escape(groupID)+"/logs", true, nil, &logs); err != nil {
		return nil, err
	}
	return logs, nil
}

// EnableSharing turns on read-only sharing and returns the link
func (c *Client) EnableSharing(ctx context.Context, groupID string) (*model.ShareLink, error) {
	var link model.ShareLink
	if err := c.do(ctx, http.MethodPost, "/groups/"+escape(groupID)+"/share", true, nil, &link); err != nil {
		return nil, err
	}
	return &link, nil
}

// GetSharedGroup fetches a group through its share token. No session is
// needed.
func (c *Client) GetSharedGroup(ctx context.Context, token string) (*model.Group, error) {
	var group model.Group
	if err := c.do(ctx, http.MethodGet, "/shared/"+escape(token), false, nil, &group); err != nil {
		return nil, err
	}
	return &group, nil
}
