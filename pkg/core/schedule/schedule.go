// Package schedule turns a group's frequency and collection day into
// concrete collection dates.
package schedule

import (
	"fmt"
	"strings"
	"time"

	"github.com/teambition/rrule-go"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/projector"
)

var weekdays = map[string]rrule.Weekday{
	"monday":    rrule.MO,
	"tuesday":   rrule.TU,
	"wednesday": rrule.WE,
	"thursday":  rrule.TH,
	"friday":    rrule.FR,
	"saturday":  rrule.SA,
	"sunday":    rrule.SU,
}

// ParseWeekday accepts full or three-letter English weekday names
func ParseWeekday(s string) (rrule.Weekday, bool) {
	s = strings.ToLower(strings.TrimSpace(s))
	if wd, ok := weekdays[s]; ok {
		return wd, true
	}
	if len(s) == 3 {
		for name, wd := range weekdays {
			if strings.HasPrefix(name, s) {
				return wd, true
			}
		}
	}
	return rrule.Weekday{}, false
}

// Payout pairs a round with its recipient and collection date
type Payout struct {
	Round     int
	Recipient model.Participant
	Date      time.Time
}

// Rule builds the recurrence for a group's collections. anchor is used
// as DTSTART, which matters for biweekly schedules.
func Rule(group model.Group, anchor time.Time) (*rrule.RRule, error) {
	start := time.Date(anchor.Year(), anchor.Month(), anchor.Day(), 0, 0, 0, 0, anchor.Location())
	opt := rrule.ROption{Dtstart: start, Interval: 1}

	switch group.Frequency {
	case model.FrequencyMonthly:
		day, ok := group.CollectionDate.DayOfMonth()
		if !ok {
			return nil, fmt.Errorf("monthly collection day must be a day of the month, got %q", group.CollectionDate)
		}
		if day < 1 || day > 31 {
			return nil, fmt.Errorf("collection day must be between 1 and 31, got %d", day)
		}
		opt.Freq = rrule.MONTHLY
		if day <= 28 {
			opt.Bymonthday = []int{day}
		} else {
			// Short months collect on their last available day
			for d := 28; d <= day; d++ {
				opt.Bymonthday = append(opt.Bymonthday, d)
			}
			opt.Bysetpos = []int{-1}
		}

	case model.FrequencyWeekly, model.FrequencyBiweekly:
		wd, ok := ParseWeekday(string(group.CollectionDate))
		if !ok {
			return nil, fmt.Errorf("%s collection day must be a weekday, got %q", group.Frequency, group.CollectionDate)
		}
		opt.Freq = rrule.WEEKLY
		opt.Byweekday = []rrule.Weekday{wd}
		if group.Frequency == model.FrequencyBiweekly {
			opt.Interval = 2
		}

	case "":
		return nil, fmt.Errorf("group %s has no collection schedule", group.ID)

	default:
		return nil, fmt.Errorf("unknown frequency %q", group.Frequency)
	}

	r, err := rrule.NewRRule(opt)
	if err != nil {
		return nil, fmt.Errorf("failed to build collection rule: %w", err)
	}
	return r, nil
}

func anchorFor(group model.Group, from time.Time) time.Time {
	if group.CreatedAt != nil && group.CreatedAt.Before(from) {
		return group.CreatedAt.In(from.Location())
	}
	return from
}

// NextCollections returns the next n collection dates strictly after from
func NextCollections(group model.Group, from time.Time, n int) ([]time.Time, error) {
	if n <= 0 {
		return nil, nil
	}

	r, err := Rule(group, anchorFor(group, from))
	if err != nil {
		return nil, err
	}

	dates := make([]time.Time, 0, n)
	cursor := from
	for len(dates) < n {
		next := r.After(cursor, false)
		if next.IsZero() {
			break
		}
		dates = append(dates, next)
		cursor = next
	}
	return dates, nil
}

// PayoutCalendar lists the remaining payouts from the current round
// onwards. The current round collects on the next collection date.
func PayoutCalendar(group model.Group, from time.Time) ([]Payout, error) {
	if !group.IsOrderSet {
		return nil, fmt.Errorf("payout order for group %s has not been set", group.ID)
	}
	if projector.IsGroupCompleted(group) {
		return []Payout{}, nil
	}

	sorted := projector.SortParticipants(group)
	start := group.CurrentRecipientIndex
	if start < 0 {
		start = 0
	}
	if start >= len(sorted) {
		return []Payout{}, nil
	}

	remaining := sorted[start:]
	dates, err := NextCollections(group, from, len(remaining))
	if err != nil {
		return nil, err
	}

	payouts := make([]Payout, 0, len(remaining))
	for i, p := range remaining {
		if i >= len(dates) {
			break
		}
		payouts = append(payouts, Payout{
			Round:     start + i + 1,
			Recipient: p,
			Date:      dates[i],
		})
	}
	return payouts, nil
}
