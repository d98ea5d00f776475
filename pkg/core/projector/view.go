package projector

import "github.com/ayuuto/ayuuto-cli/pkg/core/model"

// ParticipantRow is one participant as rendered in a group view
type ParticipantRow struct {
	model.Participant
	Position    int // 1-based position in display order
	IsRecipient bool
	Toggle      Eligibility
}

// View is everything needed to render a group. Building every rendering
// from the same View keeps list cards, details, and exports consistent.
type View struct {
	Group         model.Group
	Participants  []ParticipantRow
	Recipient     *model.Participant
	NextRecipient *model.Participant
	Completion    CompletionResult
	IsOwner       bool
	ReadOnly      bool

	CanPayRecipient bool
	CanAdvanceRound bool

	RoundNumber  int
	PoolAmount   float64 // what the recipient receives this round
	TotalSavings float64
	PaidCount    int
	PaidOutCount int
}

// Project builds the View of a group for a viewer
func Project(group model.Group, viewer Viewer) View {
	sorted := SortParticipants(group)
	completion := Completion(group)

	view := View{
		Group:        group,
		Participants: make([]ParticipantRow, 0, len(sorted)),
		Completion:   completion,
		IsOwner:      group.IsOwnedBy(viewer.UserID),
		ReadOnly:     viewer.ReadOnly,
		TotalSavings: TotalSavings(group),
	}

	recipientAt := -1
	if len(sorted) > 0 && group.IsOrderSet {
		idx := recipientIndex(group, len(sorted))
		recipientAt = idx
		recipient := sorted[idx]
		view.Recipient = &recipient
		view.RoundNumber = idx + 1
		if idx+1 < len(sorted) && !completion.Completed {
			next := sorted[idx+1]
			view.NextRecipient = &next
		}
	}

	for i, p := range sorted {
		if p.IsPaid {
			view.PaidCount++
		}
		if p.HasReceivedPayment {
			view.PaidOutCount++
		}
		view.Participants = append(view.Participants, ParticipantRow{
			Participant: p,
			Position:    i + 1,
			IsRecipient: i == recipientAt,
			Toggle:      eligibilityAt(group, len(sorted), i, viewer),
		})
	}

	if len(sorted) > 1 {
		view.PoolAmount = group.AmountPerPerson * float64(len(sorted)-1)
	}

	canAct := view.IsOwner && !viewer.ReadOnly
	view.CanPayRecipient = canAct && CanCurrentRecipientBePaid(group)
	view.CanAdvanceRound = canAct && CanAdvanceRound(group)

	return view
}
