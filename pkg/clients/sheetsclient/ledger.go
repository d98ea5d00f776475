package sheetsclient

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/api/sheets/v4"
)

// LedgerRow is one participant line of an exported payout ledger
type LedgerRow struct {
	Position      int
	Name          string
	PayoutDate    string // blank when no schedule is set
	PaidThisRound bool
	ReceivedPot   bool
	IsRecipient   bool
}

// Ledger is the payout ledger of a single group
type Ledger struct {
	GroupName    string
	Frequency    string
	AmountLabel  string // amount per person, already formatted for the locale
	PoolLabel    string
	SavingsLabel string
	RoundNumber  int
	Completed    bool
	Rows         []LedgerRow
}

var ledgerHeader = []interface{}{"Position", "Member", "Payout date", "Paid this round", "Received pot", "Current recipient"}

// TabTitle names the tab a ledger is written to. Sheets forbids some
// characters in titles so they are replaced.
func (l *Ledger) TabTitle() string {
	title := strings.NewReplacer("[", "(", "]", ")", ":", "-", "*", "-", "?", "", "/", "-", "\\", "-").
		Replace(strings.TrimSpace(l.GroupName))
	if title == "" {
		title = "Group"
	}
	return "Ayuuto - " + title
}

// ExportLedger writes the ledger to its tab, creating the tab on first
// export and replacing its contents afterwards
func (c *Client) ExportLedger(ctx context.Context, spreadsheetID string, ledger *Ledger) (string, error) {
	title := ledger.TabTitle()

	id, err := c.sheetID(ctx, spreadsheetID, title)
	if err != nil {
		return "", err
	}

	if id < 0 {
		if _, err := c.createSheet(ctx, spreadsheetID, title); err != nil {
			return "", fmt.Errorf("failed to create tab: %w", err)
		}
	} else {
		_, err := c.service.Spreadsheets.Values.Clear(spreadsheetID, quoteRange(title, "A1:ZZ"), &sheets.ClearValuesRequest{}).
			Context(ctx).Do()
		if err != nil {
			return "", fmt.Errorf("failed to clear existing tab: %w", err)
		}
	}

	valueRange := &sheets.ValueRange{Values: ledgerValues(ledger)}
	_, err = c.service.Spreadsheets.Values.Update(spreadsheetID, quoteRange(title, "A1"), valueRange).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return "", fmt.Errorf("failed to write ledger: %w", err)
	}

	return title, nil
}

// ledgerValues lays the ledger out as a summary block, a blank row, then
// the participant table
func ledgerValues(ledger *Ledger) [][]interface{} {
	status := fmt.Sprintf("Round %d", ledger.RoundNumber)
	if ledger.Completed {
		status = "Completed"
	}

	rows := [][]interface{}{
		{"Group", ledger.GroupName},
		{"Frequency", ledger.Frequency},
		{"Amount per person", ledger.AmountLabel},
		{"Pool per round", ledger.PoolLabel},
		{"Total savings", ledger.SavingsLabel},
		{"Status", status},
		{},
		ledgerHeader,
	}

	for _, r := range ledger.Rows {
		rows = append(rows, []interface{}{
			r.Position,
			r.Name,
			r.PayoutDate,
			yesNo(r.PaidThisRound),
			yesNo(r.ReceivedPot),
			yesNo(r.IsRecipient),
		})
	}
	return rows
}

func quoteRange(title, cells string) string {
	return fmt.Sprintf("'%s'!%s", strings.ReplaceAll(title, "'", "''"), cells)
}

func yesNo(b bool) string {
	if b {
		return "Yes"
	}
	return "No"
}
