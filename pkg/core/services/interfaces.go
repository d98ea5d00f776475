package services

import (
	"context"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/sheetsclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// AuthAPI is the part of the backend that handles accounts
type AuthAPI interface {
	Register(ctx context.Context, req validation.RegisterRequest) (*model.Session, error)
	Login(ctx context.Context, req validation.LoginRequest) (*model.Session, error)
	ForgotPassword(ctx context.Context, req validation.ForgotPasswordRequest) error
	VerifyOTP(ctx context.Context, req validation.VerifyOTPRequest) error
	ResetPassword(ctx context.Context, req validation.ResetPasswordRequest) error
}

// SessionStore persists the signed-in session
type SessionStore interface {
	Save(sess model.Session) error
	Clear() error
}

// GroupGetter fetches a single group
type GroupGetter interface {
	GetGroup(ctx context.Context, groupID string) (*model.Group, error)
}

// GroupLister fetches the groups of the signed-in user
type GroupLister interface {
	GroupGetter
	ListGroups(ctx context.Context) ([]model.Group, error)
}

// GroupCreator creates groups
type GroupCreator interface {
	CreateGroup(ctx context.Context, req validation.CreateGroupRequest) (*model.Group, error)
}

// GroupDeleter deletes groups
type GroupDeleter interface {
	DeleteGroup(ctx context.Context, groupID string) error
}

// SharedGroupGetter fetches a group through its public share token
type SharedGroupGetter interface {
	GetSharedGroup(ctx context.Context, token string) (*model.Group, error)
}

// ParticipantAPI manages group membership
type ParticipantAPI interface {
	GroupGetter
	AddParticipants(ctx context.Context, groupID string, req validation.AddParticipantsRequest) (*model.Group, error)
	RemoveParticipant(ctx context.Context, groupID, participantID string) (*model.Group, error)
}

// ScheduleAPI sets the contribution schedule
type ScheduleAPI interface {
	SetSchedule(ctx context.Context, groupID string, req validation.ScheduleRequest) (*model.Group, error)
}

// RoundAPI drives the spin and the payment rounds
type RoundAPI interface {
	GroupGetter
	SpinOrder(ctx context.Context, groupID string) (*model.Group, error)
	UpdatePaymentStatus(ctx context.Context, groupID, participantID string, isPaid bool) (*model.Group, error)
	NextRound(ctx context.Context, groupID string) (*model.Group, error)
}

// ActivityAPI fetches the activity feed of a group and the group itself
type ActivityAPI interface {
	GroupGetter
	GetActivityLogs(ctx context.Context, groupID string) ([]model.ActivityLog, error)
}

// SharingAPI enables public read-only links
type SharingAPI interface {
	GroupGetter
	EnableSharing(ctx context.Context, groupID string) (*model.ShareLink, error)
}

// ShareMailer emails share links
type ShareMailer interface {
	SendShareLink(ctx context.Context, to, groupName, link string) error
}

// LedgerExporter writes payout ledgers to a spreadsheet
type LedgerExporter interface {
	ExportLedger(ctx context.Context, spreadsheetID string, ledger *sheetsclient.Ledger) (string, error)
}

// AmountFormatter renders money for the active locale
type AmountFormatter interface {
	FormatAmount(v float64) string
}
