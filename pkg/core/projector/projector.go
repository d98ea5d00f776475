// Package projector derives the view state of a group from a backend
// snapshot. Every function is pure: no I/O, no mutation of the input.
package projector

import (
	"sort"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
)

// CompletionSource names the signal that decided a group is completed
type CompletionSource string

const (
	SourceNone      CompletionSource = ""
	SourceRounds    CompletionSource = "rounds"
	SourcePayouts   CompletionSource = "payouts"
	SourceHeuristic CompletionSource = "lastRoundHeuristic"
)

// CompletionResult explains a completion decision
type CompletionResult struct {
	Completed bool
	Source    CompletionSource
	// Conflict is set when the server rounds and the participant payout
	// flags disagree about completion
	Conflict bool
}

// Viewer identifies who is looking at a group
type Viewer struct {
	UserID   string
	ReadOnly bool // viewing through a shared link
}

// Eligibility controls the per-participant payment toggle
type Eligibility struct {
	Visible  bool
	Editable bool
}

// SortParticipants returns the participants in payout order once the order
// is set, otherwise in the order they were received. The input slice is
// never reordered.
func SortParticipants(group model.Group) []model.Participant {
	sorted := make([]model.Participant, len(group.Participants))
	copy(sorted, group.Participants)
	if !group.IsOrderSet {
		return sorted
	}

	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].OrderValue() < sorted[j].OrderValue()
	})
	return sorted
}

// recipientIndex clamps currentRecipientIndex into [0, n-1]
func recipientIndex(group model.Group, n int) int {
	idx := group.CurrentRecipientIndex
	if idx < 0 {
		idx = 0
	}
	if idx > n-1 {
		idx = n - 1
	}
	return idx
}

// CurrentRecipient returns the participant receiving the pool this round,
// or nil if the group has no participants
func CurrentRecipient(group model.Group) *model.Participant {
	sorted := SortParticipants(group)
	if len(sorted) == 0 {
		return nil
	}
	p := sorted[recipientIndex(group, len(sorted))]
	return &p
}

func allReceivedPayment(participants []model.Participant) bool {
	if len(participants) == 0 {
		return false
	}
	for _, p := range participants {
		if !p.HasReceivedPayment {
			return false
		}
	}
	return true
}

func allRoundsCompleted(rounds []model.Round) bool {
	if len(rounds) == 0 {
		return false
	}
	for _, r := range rounds {
		if r.Status != model.RoundCompleted {
			return false
		}
	}
	return true
}

func allPaid(participants []model.Participant) bool {
	if len(participants) == 0 {
		return false
	}
	for _, p := range participants {
		if !p.IsPaid {
			return false
		}
	}
	return true
}

// lastRoundSettled is the fallback: the recipient is last in order and
// everyone has paid for the active round
func lastRoundSettled(group model.Group) bool {
	if !group.IsOrderSet || len(group.Participants) == 0 {
		return false
	}
	n := len(group.Participants)
	return recipientIndex(group, n) == n-1 && allPaid(group.Participants)
}

// IsGroupCompleted reports whether the group has finished its rotation.
// It is true if every participant has been paid out, every server round
// is completed, or the last recipient's round is fully paid.
func IsGroupCompleted(group model.Group) bool {
	return allReceivedPayment(group.Participants) ||
		allRoundsCompleted(group.Rounds) ||
		lastRoundSettled(group)
}

// Completion returns the same decision as IsGroupCompleted together with
// the signal that produced it. Server rounds are consulted first when
// present.
func Completion(group model.Group) CompletionResult {
	payouts := allReceivedPayment(group.Participants)

	if len(group.Rounds) > 0 {
		rounds := allRoundsCompleted(group.Rounds)
		res := CompletionResult{Conflict: rounds != payouts}
		switch {
		case rounds:
			res.Completed, res.Source = true, SourceRounds
		case payouts:
			res.Completed, res.Source = true, SourcePayouts
		case lastRoundSettled(group):
			res.Completed, res.Source = true, SourceHeuristic
		}
		return res
	}

	switch {
	case payouts:
		return CompletionResult{Completed: true, Source: SourcePayouts}
	case lastRoundSettled(group):
		return CompletionResult{Completed: true, Source: SourceHeuristic}
	}
	return CompletionResult{}
}

// CanCurrentRecipientBePaid reports whether the recipient may be marked
// paid: all other participants must have paid in first. The recipient is
// identified by position, so participants with missing or repeated IDs
// still count as contributors.
func CanCurrentRecipientBePaid(group model.Group) bool {
	if !group.IsOrderSet || IsGroupCompleted(group) {
		return false
	}

	sorted := SortParticipants(group)
	if len(sorted) == 0 {
		return false
	}
	recipient := recipientIndex(group, len(sorted))
	if sorted[recipient].IsPaid {
		return false
	}

	for i, p := range sorted {
		if i != recipient && !p.IsPaid {
			return false
		}
	}
	return true
}

// CanAdvanceRound reports whether the round is fully settled, recipient
// included, and the group still has rounds left
func CanAdvanceRound(group model.Group) bool {
	if !group.IsOrderSet || IsGroupCompleted(group) {
		return false
	}
	return allPaid(group.Participants)
}

// PaymentToggleEligibility decides whether the payment checkbox for a
// participant is shown and whether the viewer may change it. The current
// recipient never gets a checkbox; they are settled through PayRecipient.
func PaymentToggleEligibility(group model.Group, participantID string, viewer Viewer) Eligibility {
	sorted := SortParticipants(group)
	for i, p := range sorted {
		if p.ID == participantID {
			return eligibilityAt(group, len(sorted), i, viewer)
		}
	}
	return Eligibility{}
}

// eligibilityAt is PaymentToggleEligibility for the participant at
// position in the sorted order
func eligibilityAt(group model.Group, n, position int, viewer Viewer) Eligibility {
	if !group.IsOrderSet || position == recipientIndex(group, n) {
		return Eligibility{}
	}

	editable := !IsGroupCompleted(group) &&
		!viewer.ReadOnly &&
		group.IsOwnedBy(viewer.UserID)

	return Eligibility{Visible: true, Editable: editable}
}

// TotalSavings prefers the server figure, otherwise sums the contributions
// made in the active round
func TotalSavings(group model.Group) float64 {
	if group.TotalSavings != nil {
		return *group.TotalSavings
	}
	paid := 0
	for _, p := range group.Participants {
		if p.IsPaid {
			paid++
		}
	}
	return group.AmountPerPerson * float64(paid)
}
