package services

import (
	"errors"

	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// Errors for actions refused before any request is made
var (
	ErrLoadInFlight          = errors.New("a load for this resource is already in progress")
	ErrNotCached             = errors.New("no cached copy of this group")
	ErrOrderAlreadySet       = errors.New("the payout order has already been set")
	ErrNotEnoughParticipants = errors.New("not enough participants")
	ErrGroupFull             = errors.New("the group is full")
	ErrParticipantNotFound   = errors.New("participant not found")
	ErrNotOwner              = errors.New("only the group owner can do this")
	ErrNotEditable           = errors.New("this payment cannot be changed")
	ErrCannotPayRecipient    = errors.New("the recipient cannot be paid yet")
	ErrCannotAdvanceRound    = errors.New("the round cannot be advanced yet")
	ErrExportNotConfigured   = errors.New("export.spreadsheetID is not configured")
)

// IsRefused reports whether err is a local precondition failure rather
// than a backend or network error
func IsRefused(err error) bool {
	for _, target := range []error{
		ErrLoadInFlight, ErrNotCached, ErrOrderAlreadySet, ErrNotEnoughParticipants,
		ErrGroupFull, ErrParticipantNotFound, ErrNotOwner, ErrNotEditable,
		ErrCannotPayRecipient, ErrCannotAdvanceRound, ErrExportNotConfigured,
	} {
		if errors.Is(err, target) {
			return true
		}
	}
	return validation.IsValidationError(err)
}
