package services

import (
	"context"
	"fmt"
	"sync"

	"github.com/ayuuto/ayuuto-cli/pkg/clients/ayuutoclient"
	"github.com/ayuuto/ayuuto-cli/pkg/clients/sheetsclient"
	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

func intPtr(i int) *int { return &i }

// mockBackend implements the group, round and sharing APIs over an
// in-memory set of groups
type mockBackend struct {
	mu     sync.Mutex
	groups map[string]model.Group
	order  []string

	getCalls      int
	paymentCalls  []paymentCall
	nextRoundErr  error
	paymentErr    error
	deleteErr     error
	getErr        map[string]error
	shareLink     *model.ShareLink
	added         []validation.NewParticipant
	removed       []string
	scheduleReq   *validation.ScheduleRequest
	spun          bool
	activity      []model.ActivityLog
	activityErr   error
	sharedByToken map[string]model.Group
}

type paymentCall struct {
	participantID string
	isPaid        bool
}

func newMockBackend(groups ...model.Group) *mockBackend {
	m := &mockBackend{groups: map[string]model.Group{}, getErr: map[string]error{}}
	for _, g := range groups {
		m.groups[g.ID] = g
		m.order = append(m.order, g.ID)
	}
	return m
}

func (m *mockBackend) group(id string) (model.Group, error) {
	g, ok := m.groups[id]
	if !ok {
		return model.Group{}, &ayuutoclient.APIError{Status: 404, Message: "Group not found"}
	}
	return g.Clone(), nil
}

func (m *mockBackend) ListGroups(ctx context.Context) ([]model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []model.Group
	for _, id := range m.order {
		// list responses carry summaries only
		out = append(out, model.Group{ID: id, Name: m.groups[id].Name})
	}
	return out, nil
}

func (m *mockBackend) GetGroup(ctx context.Context, groupID string) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if err := m.getErr[groupID]; err != nil {
		return nil, err
	}
	g, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *mockBackend) CreateGroup(ctx context.Context, req validation.CreateGroupRequest) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	g := model.Group{ID: fmt.Sprintf("g%d", len(m.groups)+1), Name: req.Name, MemberCount: req.MemberCount, AmountPerPerson: req.AmountPerPerson}
	m.groups[g.ID] = g
	m.order = append(m.order, g.ID)
	return &g, nil
}

func (m *mockBackend) DeleteGroup(ctx context.Context, groupID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.deleteErr != nil {
		return m.deleteErr
	}
	delete(m.groups, groupID)
	return nil
}

func (m *mockBackend) AddParticipants(ctx context.Context, groupID string, req validation.AddParticipantsRequest) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.added = append(m.added, req.Participants...)
	g, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	for i, p := range req.Participants {
		g.Participants = append(g.Participants, model.Participant{ID: fmt.Sprintf("new%d", i), Name: p.Name})
	}
	m.groups[groupID] = g
	return &g, nil
}

func (m *mockBackend) RemoveParticipant(ctx context.Context, groupID, participantID string) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, participantID)
	g, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	return &g, nil
}

func (m *mockBackend) SetSchedule(ctx context.Context, groupID string, req validation.ScheduleRequest) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scheduleReq = &req
	g, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	g.Frequency = req.Frequency
	g.CollectionDate = model.CollectionDay(req.CollectionDate)
	g.AmountPerPerson = req.AmountPerPerson
	m.groups[groupID] = g
	return &g, nil
}

func (m *mockBackend) SpinOrder(ctx context.Context, groupID string) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.spun = true
	g, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	g.IsOrderSet = true
	for i := range g.Participants {
		g.Participants[i].Order = intPtr(len(g.Participants) - i)
	}
	m.groups[groupID] = g
	return &g, nil
}

func (m *mockBackend) UpdatePaymentStatus(ctx context.Context, groupID, participantID string, isPaid bool) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.paymentCalls = append(m.paymentCalls, paymentCall{participantID, isPaid})
	if m.paymentErr != nil {
		return nil, m.paymentErr
	}
	g, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	for i := range g.Participants {
		if g.Participants[i].ID == participantID {
			g.Participants[i].IsPaid = isPaid
		}
	}
	m.groups[groupID] = g
	// the write response deliberately omits participants
	return &model.Group{ID: groupID}, nil
}

func (m *mockBackend) NextRound(ctx context.Context, groupID string) (*model.Group, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.nextRoundErr != nil {
		return nil, m.nextRoundErr
	}
	g, err := m.group(groupID)
	if err != nil {
		return nil, err
	}
	g.CurrentRecipientIndex++
	for i := range g.Participants {
		g.Participants[i].IsPaid = false
	}
	m.groups[groupID] = g
	return &g, nil
}

func (m *mockBackend) GetActivityLogs(ctx context.Context, groupID string) ([]model.ActivityLog, error) {
	if m.activityErr != nil {
		return nil, m.activityErr
	}
	return m.activity, nil
}

func (m *mockBackend) EnableSharing(ctx context.Context, groupID string) (*model.ShareLink, error) {
	if m.shareLink == nil {
		return &model.ShareLink{Token: "tok-" + groupID}, nil
	}
	link := *m.shareLink
	return &link, nil
}

func (m *mockBackend) GetSharedGroup(ctx context.Context, token string) (*model.Group, error) {
	g, ok := m.sharedByToken[token]
	if !ok {
		return nil, &ayuutoclient.APIError{Status: 404, Message: "Shared group not found"}
	}
	return &g, nil
}

// mockAuth implements AuthAPI
type mockAuth struct {
	session  *model.Session
	err      error
	lastCall string
	otp      string
}

func (m *mockAuth) Register(ctx context.Context, req validation.RegisterRequest) (*model.Session, error) {
	m.lastCall = "register:" + req.Email
	return m.session, m.err
}

func (m *mockAuth) Login(ctx context.Context, req validation.LoginRequest) (*model.Session, error) {
	m.lastCall = "login:" + req.Email
	return m.session, m.err
}

func (m *mockAuth) ForgotPassword(ctx context.Context, req validation.ForgotPasswordRequest) error {
	m.lastCall = "forgot:" + req.Email
	return m.err
}

func (m *mockAuth) VerifyOTP(ctx context.Context, req validation.VerifyOTPRequest) error {
	m.lastCall = "verify:" + req.Email
	m.otp = req.OTP
	return m.err
}

func (m *mockAuth) ResetPassword(ctx context.Context, req validation.ResetPasswordRequest) error {
	m.lastCall = "reset:" + req.Email
	return m.err
}

// mockSessions implements SessionStore
type mockSessions struct {
	saved   *model.Session
	cleared bool
	saveErr error
}

func (m *mockSessions) Save(sess model.Session) error {
	if m.saveErr != nil {
		return m.saveErr
	}
	m.saved = &sess
	return nil
}

func (m *mockSessions) Clear() error {
	m.cleared = true
	m.saved = nil
	return nil
}

// mockMailer implements ShareMailer
type mockMailer struct {
	to, groupName, link string
	err                 error
}

func (m *mockMailer) SendShareLink(ctx context.Context, to, groupName, link string) error {
	m.to, m.groupName, m.link = to, groupName, link
	return m.err
}

// mockExporter implements LedgerExporter
type mockExporter struct {
	spreadsheetID string
	ledger        *sheetsclient.Ledger
}

func (m *mockExporter) ExportLedger(ctx context.Context, spreadsheetID string, ledger *sheetsclient.Ledger) (string, error) {
	m.spreadsheetID = spreadsheetID
	m.ledger = ledger
	return ledger.TabTitle(), nil
}

// plainFormatter implements AmountFormatter
type plainFormatter struct{}

func (plainFormatter) FormatAmount(v float64) string { return fmt.Sprintf("%.2f", v) }
