package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/sheetsclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/core/schedule"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

// ShareOptions controls how a share link is built and delivered
type ShareOptions struct {
	// BaseURL is used when the backend returns a token without a URL
	BaseURL string
	// Email, when set, receives the link through mailer
	Email string
}

// ShareGroup enables the read-only link of a group and optionally emails it
func ShareGroup(ctx context.Context, api SharingAPI, mailer ShareMailer, logger *zap.Logger, groupID string, opts ShareOptions) (*model.ShareLink, error) {
	opts.Email = normalizeEmail(opts.Email)
	if err := validation.Struct(validation.ShareRequest{Email: opts.Email}); err != nil {
		return nil, err
	}

	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return nil, err
	}

	logger.Debug("Enabling sharing", zap.String("group_id", groupID))
	link, err := api.EnableSharing(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to enable sharing: %w", err)
	}

	if link.URL == "" && opts.BaseURL != "" && link.Token != "" {
		link.URL = strings.TrimRight(opts.BaseURL, "/") + "/" + link.Token
	}

	if opts.Email == "" {
		return link, nil
	}
	if mailer == nil {
		return link, fmt.Errorf("cannot email share link: gmail is not configured")
	}

	target := link.URL
	if target == "" {
		target = link.Token
	}

	logger.Debug("Emailing share link", zap.String("group_id", groupID), zap.String("to", opts.Email))
	if err := mailer.SendShareLink(ctx, opts.Email, group.Name, target); err != nil {
		return link, fmt.Errorf("share link created but email failed: %w", err)
	}
	return link, nil
}

// ExportGroup writes the group's payout ledger to a spreadsheet tab and
// returns the tab title
func ExportGroup(ctx context.Context, api GroupGetter, exporter LedgerExporter, formatter AmountFormatter, logger *zap.Logger, spreadsheetID, groupID string, now time.Time) (string, error) {
	if spreadsheetID == "" {
		return "", ErrExportNotConfigured
	}

	group, err := fetchGroup(ctx, api, logger, groupID)
	if err != nil {
		return "", err
	}

	ledger := BuildLedger(*group, formatter, logger, now)

	logger.Debug("Exporting ledger", zap.String("group_id", groupID), zap.Int("rows", len(ledger.Rows)))
	tab, err := exporter.ExportLedger(ctx, spreadsheetID, ledger)
	if err != nil {
		return "", fmt.Errorf("failed to export ledger: %w", err)
	}
	return tab, nil
}

// BuildLedger lays out a group's projection as a payout ledger. Payout
// dates are filled in when the group has a usable schedule.
func BuildLedger(group model.Group, formatter AmountFormatter, logger *zap.Logger, now time.Time) *sheetsclient.Ledger {
	view := projector.Project(group, projector.Viewer{ReadOnly: true})

	dates := map[string]string{}
	if group.IsOrderSet && group.Frequency != "" {
		payouts, err := schedule.PayoutCalendar(group, now)
		if err != nil {
			logger.Debug("No payout calendar for ledger", zap.String("group_id", group.ID), zap.Error(err))
		}
		for _, p := range payouts {
			dates[p.Recipient.ID] = p.Date.Format("2006-01-02")
		}
	}

	ledger := &sheetsclient.Ledger{
		GroupName:    group.Name,
		Frequency:    string(group.Frequency),
		AmountLabel:  formatter.FormatAmount(group.AmountPerPerson),
		PoolLabel:    formatter.FormatAmount(view.PoolAmount),
		SavingsLabel: formatter.FormatAmount(view.TotalSavings),
		RoundNumber:  view.RoundNumber,
		Completed:    view.Completion.Completed,
	}
	for _, row := range view.Participants {
		ledger.Rows = append(ledger.Rows, sheetsclient.LedgerRow{
			Position:      row.Position,
			Name:          row.DisplayName(),
			PayoutDate:    dates[row.ID],
			PaidThisRound: row.IsPaid,
			ReceivedPot:   row.HasReceivedPayment,
			IsRecipient:   row.IsRecipient,
		})
	}
	return ledger
}
