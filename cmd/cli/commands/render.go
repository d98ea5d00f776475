package commands

import (
	"fmt"
	"io"
	"strconv"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
	"github.com/ayuuto/ayuuto-cli/pkg/core/services"
)

const dateLayout = "Mon 02 Jan 2006"

func statusLabel(view projector.View) string {
	switch {
	case view.Completion.Completed:
		return "Completed"
	case !view.Group.IsOrderSet:
		return "Waiting for spin"
	default:
		return fmt.Sprintf("Round %d of %d", view.RoundNumber, len(view.Participants))
	}
}

// printGroupCard renders the one-line summary used in the group list
func printGroupCard(out io.Writer, view projector.View, amounts services.AmountFormatter) {
	g := view.Group
	recipient := "-"
	if view.Recipient != nil && !view.Completion.Completed {
		recipient = view.Recipient.DisplayName()
	}
	fmt.Fprintf(out, "  %-24s %-18s members %d/%d  %s each  recipient %s  paid out %d/%d  [%s]\n",
		g.Name,
		statusLabel(view),
		len(g.Participants), g.MemberCount,
		amounts.FormatAmount(g.AmountPerPerson),
		recipient,
		view.PaidOutCount, len(view.Participants),
		g.ID,
	)
}

// printGroupDetails renders the full group view
func printGroupDetails(out io.Writer, view projector.View, amounts services.AmountFormatter, upcoming []time.Time) {
	g := view.Group

	fmt.Fprintf(out, "\n%s  [%s]\n", g.Name, g.ID)
	fmt.Fprintf(out, "Status:          %s\n", statusLabel(view))
	if g.Frequency != "" {
		fmt.Fprintf(out, "Schedule:        %s on %s\n", g.Frequency, g.CollectionDate)
	}
	fmt.Fprintf(out, "Amount:          %s per person\n", amounts.FormatAmount(g.AmountPerPerson))
	fmt.Fprintf(out, "Pool per round:  %s\n", amounts.FormatAmount(view.PoolAmount))
	fmt.Fprintf(out, "Total savings:   %s\n", amounts.FormatAmount(view.TotalSavings))
	fmt.Fprintf(out, "Members:         %d/%d\n", len(g.Participants), g.MemberCount)
	if g.CreatedBy == nil {
		fmt.Fprintln(out, "Owner:           (deleted account)")
	} else if view.IsOwner {
		fmt.Fprintln(out, "Owner:           you")
	} else {
		fmt.Fprintf(out, "Owner:           %s\n", userLabel(*g.CreatedBy))
	}
	if view.ReadOnly {
		fmt.Fprintln(out, "Access:          read-only")
	}
	if view.Completion.Conflict {
		fmt.Fprintln(out, "Note:            server rounds and payout flags disagree; showing the rounds record")
	}

	if len(view.Participants) == 0 {
		fmt.Fprintln(out, "\nNo participants yet.")
	} else {
		fmt.Fprintln(out)
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "  #\tMEMBER\tTHIS ROUND\tRECEIVED\t")
		for _, row := range view.Participants {
			fmt.Fprintf(w, "  %d\t%s\t%s\t%s\t\n", row.Position, rowName(row), paidLabel(row), yesNo(row.HasReceivedPayment))
		}
		w.Flush()
	}

	if view.NextRecipient != nil {
		fmt.Fprintf(out, "\nNext recipient:  %s\n", view.NextRecipient.DisplayName())
	}
	if len(upcoming) > 0 {
		dates := make([]string, len(upcoming))
		for i, d := range upcoming {
			dates[i] = d.Format(dateLayout)
		}
		fmt.Fprintf(out, "Next collection: %s\n", strings.Join(dates, ", "))
	}

	switch {
	case view.CanPayRecipient:
		fmt.Fprintf(out, "\nEveryone has paid. Run 'payRecipient %s' to pay %s.\n", g.ID, view.Recipient.DisplayName())
	case view.CanAdvanceRound:
		fmt.Fprintf(out, "\nRound settled. Run 'nextRound %s' to move on.\n", g.ID)
	}
	fmt.Fprintln(out)
}

func rowName(row projector.ParticipantRow) string {
	name := row.DisplayName()
	if row.IsRecipient {
		name += " (recipient)"
	}
	return name
}

// paidLabel shows the payment checkbox state, or why there is none
func paidLabel(row projector.ParticipantRow) string {
	switch {
	case row.IsRecipient:
		return "receiving"
	case !row.Toggle.Visible:
		return "-"
	case row.IsPaid:
		return "[x]"
	default:
		return "[ ]"
	}
}

func userLabel(u model.User) string {
	if u.Name != "" {
		return u.Name
	}
	if u.Email != "" {
		return u.Email
	}
	return u.ID
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func printActivity(out io.Writer, logs []model.ActivityLog) {
	if len(logs) == 0 {
		fmt.Fprintln(out, "No activity yet.")
		return
	}
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	for _, entry := range logs {
		actor := ""
		if entry.Actor != nil {
			actor = userLabel(*entry.Actor)
		}
		fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t\n", entry.CreatedAt.Local().Format("2006-01-02 15:04"), entry.Action, actor, entry.Message)
	}
	w.Flush()
}

// resolveParticipant accepts a participant ID, a 1-based position from the
// group view, or a case-insensitive name
func resolveParticipant(view projector.View, ref string) (model.Participant, error) {
	ref = strings.TrimSpace(ref)
	for _, row := range view.Participants {
		if row.ID == ref {
			return row.Participant, nil
		}
	}

	if pos, err := strconv.Atoi(ref); err == nil {
		if pos >= 1 && pos <= len(view.Participants) {
			return view.Participants[pos-1].Participant, nil
		}
		return model.Participant{}, fmt.Errorf("position %d is out of range 1-%d", pos, len(view.Participants))
	}

	var match *model.Participant
	for _, row := range view.Participants {
		if strings.EqualFold(row.DisplayName(), ref) {
			if match != nil {
				return model.Participant{}, fmt.Errorf("more than one participant is called %q, use the position instead", ref)
			}
			p := row.Participant
			match = &p
		}
	}
	if match == nil {
		return model.Participant{}, fmt.Errorf("no participant matches %q: %w", ref, services.ErrParticipantNotFound)
	}
	return *match, nil
}
