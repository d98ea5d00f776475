package ayuutoclient

import (
	"context"
	"net/http"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// ListGroups returns every group visible to the current user
func (c *Client) ListGroups(ctx context.Context) ([]model.Group, error) {
	var groups []model.Group
	if err := c.do(ctx, http.MethodGet, "/groups", true, nil, &groups); err != nil {
		return nil, err
	}
	return groups, nil
}

// CreateGroup creates an empty group owned by the current user
func (c *Client) CreateGroup(ctx context.Context, req validation.CreateGroupRequest) (*model.Group, error) {
	return c.groupCall(ctx, http.MethodPost, "/groups", req)
}

// GetGroup fetches a group with participants and rounds
func (c *Client) GetGroup(ctx context.Context, groupID string) (*model.Group, error) {
	return c.groupCall(ctx, http.MethodGet, "/groups/"+escape(groupID), nil)
}

// DeleteGroup deletes a group
func (c *Client) DeleteGroup(ctx context.Context, groupID string) error {
	return c.do(ctx, http.MethodDelete, "/groups/"+escape(groupID), true, nil, nil)
}

// AddParticipants adds participants by name or email
func (c *Client) AddParticipants(ctx context.Context, groupID string, req validation.AddParticipantsRequest) (*model.Group, error) {
	return c.groupCall(ctx, http.MethodPost, "/groups/"+escape(groupID)+"/participants", req)
}

// RemoveParticipant removes a participant from a group
func (c *Client) RemoveParticipant(ctx context.Context, groupID, participantID string) (*model.Group, error) {
	return c.groupCall(ctx, http.MethodDelete, "/groups/"+escape(groupID)+"/participants/"+escape(participantID), nil)
}

// SetSchedule sets the contribution amount, frequency and collection day
func (c *Client) SetSchedule(ctx context.Context, groupID string, req validation.ScheduleRequest) (*model.Group, error) {
	return c.groupCall(ctx, http.MethodPut, "/groups/"+escape(groupID)+"/schedule", req)
}

func (c *Client) groupCall(ctx context.Context, method, path string, body any) (*model.Group, error) {
	var group model.Group
	if err := c.do(ctx, method, path, true, body, &group); err != nil {
		return nil, err
	}
	return &group, nil
}
