package model

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// RoundStatus is the server-owned status of a payout round
type RoundStatus string

const (
	RoundPending   RoundStatus = "PENDING"
	RoundActive    RoundStatus = "ACTIVE"
	RoundCompleted RoundStatus = "COMPLETED"
)

// Frequency is how often contributions are collected
type Frequency string

const (
	FrequencyWeekly   Frequency = "weekly"
	FrequencyBiweekly Frequency = "biweekly"
	FrequencyMonthly  Frequency = "monthly"
)

func (f Frequency) IsValid() bool {
	return f == FrequencyWeekly || f == FrequencyBiweekly || f == FrequencyMonthly
}

// User is an account reference as returned by the backend
type User struct {
	ID    string `json:"id"`
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
}

// Participant is a member slot in a group. A participant may or may not be
// linked to a registered user. Order is assigned by the spin, IsPaid resets
// every round and HasReceivedPayment never goes back to false.
type Participant struct {
	ID                 string `json:"id"`
	Name               string `json:"name"`
	User               *User  `json:"user,omitempty"`
	Order              *int   `json:"order,omitempty"`
	IsPaid             bool   `json:"isPaid"`
	HasReceivedPayment bool   `json:"hasReceivedPayment"`
}

// OrderValue returns the payout order, treating a missing order as 0
func (p Participant) OrderValue() int {
	if p.Order == nil {
		return 0
	}
	return *p.Order
}

// DisplayName prefers the participant name, falling back to the linked email
func (p Participant) DisplayName() string {
	if p.Name != "" {
		return p.Name
	}
	if p.User != nil && p.User.Email != "" {
		return p.User.Email
	}
	return p.ID
}

// Round is one payout cycle
type Round struct {
	RoundNumber            int         `json:"roundNumber"`
	RecipientParticipantID string      `json:"recipientParticipantId,omitempty"`
	Status                 RoundStatus `json:"status"`
}

// CollectionDay is either a day of the month ("15") or a weekday name
// ("friday"). The backend sends it as a JSON number or string.
type CollectionDay string

func (d *CollectionDay) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = ""
		return nil
	}

	var n int
	if err := json.Unmarshal(data, &n); err == nil {
		*d = CollectionDay(strconv.Itoa(n))
		return nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("collectionDate must be a number or string: %w", err)
	}
	*d = CollectionDay(strings.TrimSpace(s))
	return nil
}

// DayOfMonth returns the day number if the collection day is numeric
func (d CollectionDay) DayOfMonth() (int, bool) {
	n, err := strconv.Atoi(string(d))
	if err != nil {
		return 0, false
	}
	return n, true
}

// Group is a rotating savings group snapshot. CreatedBy is nil when the
// owner account was deleted.
type Group struct {
	ID                    string        `json:"id"`
	Name                  string        `json:"name"`
	MemberCount           int           `json:"memberCount"`
	AmountPerPerson       float64       `json:"amountPerPerson"`
	CollectionDate        CollectionDay `json:"collectionDate,omitempty"`
	Frequency             Frequency     `json:"frequency,omitempty"`
	IsOrderSet            bool          `json:"isOrderSet"`
	CurrentRecipientIndex int           `json:"currentRecipientIndex"`
	TotalSavings          *float64      `json:"totalSavings,omitempty"`
	CreatedBy             *User         `json:"createdBy"`
	Participants          []Participant `json:"participants"`
	Rounds                []Round       `json:"rounds,omitempty"`
	IsShared              bool          `json:"isShared,omitempty"`
	ShareToken            string        `json:"shareToken,omitempty"`
	CreatedAt             *time.Time    `json:"createdAt,omitempty"`
}

// Clone returns a deep copy so callers can patch a snapshot without
// touching the original
func (g Group) Clone() Group {
	out := g
	if g.TotalSavings != nil {
		v := *g.TotalSavings
		out.TotalSavings = &v
	}
	if g.CreatedBy != nil {
		u := *g.CreatedBy
		out.CreatedBy = &u
	}
	if g.Participants != nil {
		out.Participants = make([]Participant, len(g.Participants))
		for i, p := range g.Participants {
			if p.User != nil {
				u := *p.User
				p.User = &u
			}
			if p.Order != nil {
				o := *p.Order
				p.Order = &o
			}
			out.Participants[i] = p
		}
	}
	if g.Rounds != nil {
		out.Rounds = append([]Round(nil), g.Rounds...)
	}
	return out
}

// FindParticipant returns the participant with the given ID
func (g Group) FindParticipant(id string) (Participant, bool) {
	for _, p := range g.Participants {
		if p.ID == id {
			return p, true
		}
	}
	return Participant{}, false
}

// IsOwnedBy reports whether the user created the group
func (g Group) IsOwnedBy(userID string) bool {
	return g.CreatedBy != nil && userID != "" && g.CreatedBy.ID == userID
}

// ActivityLog is an entry in a group's activity feed
type ActivityLog struct {
	ID        string    `json:"id"`
	GroupID   string    `json:"groupId"`
	Action    string    `json:"action"`
	Message   string    `json:"message"`
	Actor     *User     `json:"actor,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
}

// ShareLink is a read-only link to a group
type ShareLink struct {
	Token string `json:"token"`
	URL   string `json:"url"`
}

// Session is an authenticated user session
type Session struct {
	Token string `json:"token"`
	User  User   `json:"user"`
}
