package db

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
)

// GroupSnapshot is the last group payload fetched from the backend
type GroupSnapshot struct {
	ViewerID  string
	GroupID   string
	Name      string
	Payload   []byte // JSON encoded model.Group
	FetchedAt time.Time
}

// Group decodes the cached payload
func (s GroupSnapshot) Group() (model.Group, error) {
	var g model.Group
	if err := json.Unmarshal(s.Payload, &g); err != nil {
		return model.Group{}, fmt.Errorf("failed to decode snapshot for group %s: %w", s.GroupID, err)
	}
	return g, nil
}

// NewGroupSnapshot encodes a group for caching on behalf of viewerID
func NewGroupSnapshot(viewerID string, group model.Group, fetchedAt time.Time) (GroupSnapshot, error) {
	if viewerID == "" {
		return GroupSnapshot{}, fmt.Errorf("cannot cache group %s without a signed-in user", group.ID)
	}
	if group.ID == "" {
		return GroupSnapshot{}, fmt.Errorf("cannot cache a group without an id")
	}
	payload, err := json.Marshal(group)
	if err != nil {
		return GroupSnapshot{}, fmt.Errorf("failed to encode group %s: %w", group.ID, err)
	}
	return GroupSnapshot{
		ViewerID:  viewerID,
		GroupID:   group.ID,
		Name:      group.Name,
		Payload:   payload,
		FetchedAt: fetchedAt.UTC(),
	}, nil
}
