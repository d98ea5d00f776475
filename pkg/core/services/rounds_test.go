package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
)

var ownerViewer = projector.Viewer{UserID: "owner"}

func TestSpinOrder(t *testing.T) {
	group := model.Group{
		ID:        "a",
		CreatedBy: owner,
		Participants: []model.Participant{
			{ID: "p1", Name: "Amina"},
			{ID: "p2", Name: "Hodan"},
		},
	}
	backend := newMockBackend(group)

	view, err := SpinOrder(context.Background(), backend, zap.NewNop(), ownerViewer, "a")
	require.NoError(t, err)

	assert.True(t, backend.spun)
	assert.True(t, view.Group.IsOrderSet)
	// mock assigns reverse order
	assert.Equal(t, "p2", view.Recipient.ID)
}

func TestSpinOrder_Refusals(t *testing.T) {
	tests := []struct {
		name   string
		group  model.Group
		viewer projector.Viewer
		want   error
	}{
		{
			name:   "not owner",
			group:  model.Group{ID: "a", CreatedBy: owner, Participants: []model.Participant{{ID: "p1"}, {ID: "p2"}}},
			viewer: projector.Viewer{UserID: "someone"},
			want:   ErrNotOwner,
		},
		{
			name:   "already spun",
			group:  spunGroup("a", 0, member("p1", 1, false, false), member("p2", 2, false, false)),
			viewer: ownerViewer,
			want:   ErrOrderAlreadySet,
		},
		{
			name:   "one participant",
			group:  model.Group{ID: "a", CreatedBy: owner, Participants: []model.Participant{{ID: "p1"}}},
			viewer: ownerViewer,
			want:   ErrNotEnoughParticipants,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMockBackend(tt.group)
			_, err := SpinOrder(context.Background(), backend, zap.NewNop(), tt.viewer, "a")
			assert.ErrorIs(t, err, tt.want)
			assert.False(t, backend.spun)
		})
	}
}

func TestTogglePayment_AppliesThenReconciles(t *testing.T) {
	backend := newMockBackend(spunGroup("a", 0,
		member("p1", 1, false, false),
		member("p2", 2, false, false),
		member("p3", 3, false, false),
	))

	var pending *projector.View
	view, err := TogglePayment(context.Background(), backend, zap.NewNop(), ownerViewer, "a", "p2", func(v projector.View) {
		pending = &v
	})
	require.NoError(t, err)

	require.NotNil(t, pending)
	assert.Equal(t, 1, pending.PaidCount)
	assert.Equal(t, []paymentCall{{"p2", true}}, backend.paymentCalls)

	// reconciled from the re-fetch, not the sparse write response
	require.Len(t, view.Participants, 3)
	assert.True(t, view.Participants[1].IsPaid)
}

func TestTogglePayment_FailureReturnsError(t *testing.T) {
	backend := newMockBackend(spunGroup("a", 0, member("p1", 1, false, false), member("p2", 2, true, false)))
	backend.paymentErr = &ayuutoclient.APIError{Status: 500, Message: "Could not update"}

	_, err := TogglePayment(context.Background(), backend, zap.NewNop(), ownerViewer, "a", "p2", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "Could not update")

	stored := backend.groups["a"]
	assert.True(t, stored.Participants[1].IsPaid)
}

func TestTogglePayment_EligibilityGates(t *testing.T) {
	group := spunGroup("a", 0, member("p1", 1, false, false), member("p2", 2, false, false))

	tests := []struct {
		name          string
		group         model.Group
		viewer        projector.Viewer
		participantID string
		want          error
	}{
		{"recipient slot", group, ownerViewer, "p1", ErrNotEditable},
		{"not owner", group, projector.Viewer{UserID: "x"}, "p2", ErrNotEditable},
		{"read only", group, projector.Viewer{UserID: "owner", ReadOnly: true}, "p2", ErrNotEditable},
		{"unknown participant", group, ownerViewer, "nobody", ErrParticipantNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			backend := newMockBackend(tt.group)
			_, err := TogglePayment(context.Background(), backend, zap.NewNop(), tt.viewer, "a", tt.participantID, nil)
			assert.ErrorIs(t, err, tt.want)
			assert.Empty(t, backend.paymentCalls)
		})
	}
}

func TestPayRecipient(t *testing.T) {
	backend := newMockBackend(spunGroup("a", 0,
		member("p1", 1, false, false),
		member("p2", 2, true, false),
		member("p3", 3, true, false),
	))

	view, err := PayRecipient(context.Background(), backend, zap.NewNop(), ownerViewer, "a")
	require.NoError(t, err)

	assert.Equal(t, []paymentCall{{"p1", true}}, backend.paymentCalls)
	assert.True(t, view.CanAdvanceRound)
}

func TestPayRecipient_NotEveryoneHasPaid(t *testing.T) {
	backend := newMockBackend(spunGroup("a", 0,
		member("p1", 1, false, false),
		member("p2", 2, true, false),
		member("p3", 3, false, false),
	))

	_, err := PayRecipient(context.Background(), backend, zap.NewNop(), ownerViewer, "a")
	assert.ErrorIs(t, err, ErrCannotPayRecipient)
	assert.Empty(t, backend.paymentCalls)
}

func TestNextRound(t *testing.T) {
	backend := newMockBackend(spunGroup("a", 0,
		member("p1", 1, true, false),
		member("p2", 2, true, false),
	))

	view, err := NextRound(context.Background(), backend, zap.NewNop(), ownerViewer, "a")
	require.NoError(t, err)

	assert.Equal(t, "p2", view.Recipient.ID)
	assert.Equal(t, 2, view.RoundNumber)
	assert.Zero(t, view.PaidCount)
}

func TestNextRound_Refused(t *testing.T) {
	backend := newMockBackend(spunGroup("a", 0,
		member("p1", 1, false, false),
		member("p2", 2, true, false),
	))

	_, err := NextRound(context.Background(), backend, zap.NewNop(), ownerViewer, "a")
	assert.ErrorIs(t, err, ErrCannotAdvanceRound)

	_, err = NextRound(context.Background(), backend, zap.NewNop(), projector.Viewer{UserID: "x"}, "a")
	assert.ErrorIs(t, err, ErrNotOwner)
}
