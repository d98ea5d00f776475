package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ayuuto/ayuuto-cli/pkg/core/model"
	"github.com/ayuuto/ayuuto-cli/pkg/core/validation"
)

func TestShareGroup_BuildsURLAndEmails(t *testing.T) {
	backend := newMockBackend(model.Group{ID: "a", Name: "Family Pot"})
	mailer := &mockMailer{}

	link, err := ShareGroup(context.Background(), backend, mailer, zap.NewNop(), "a", ShareOptions{
		BaseURL: "https://ayuuto.test/share/",
		Email:   "Hodan@Example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "https://ayuuto.test/share/tok-a", link.URL)
	assert.Equal(t, "hodan@example.com", mailer.to)
	assert.Equal(t, "Family Pot", mailer.groupName)
	assert.Equal(t, link.URL, mailer.link)
}

func TestShareGroup_KeepsBackendURL(t *testing.T) {
	backend := newMockBackend(model.Group{ID: "a"})
	backend.shareLink = &model.ShareLink{Token: "t", URL: "https://backend.test/s/t"}

	link, err := ShareGroup(context.Background(), backend, nil, zap.NewNop(), "a", ShareOptions{BaseURL: "https://other.test"})
	require.NoError(t, err)
	assert.Equal(t, "https://backend.test/s/t", link.URL)
}

func TestShareGroup_EmailWithoutMailer(t *testing.T) {
	backend := newMockBackend(model.Group{ID: "a"})

	link, err := ShareGroup(context.Background(), backend, nil, zap.NewNop(), "a", ShareOptions{Email: "hodan@example.com"})
	require.Error(t, err)
	require.NotNil(t, link)
	assert.Equal(t, "tok-a", link.Token)
}

func TestShareGroup_InvalidEmail(t *testing.T) {
	backend := newMockBackend(model.Group{ID: "a"})

	_, err := ShareGroup(context.Background(), backend, &mockMailer{}, zap.NewNop(), "a", ShareOptions{Email: "nope"})
	assert.True(t, validation.IsValidationError(err))
}

func TestExportGroup(t *testing.T) {
	group := spunGroup("a", 1,
		member("p1", 1, true, true),
		member("p2", 2, false, false),
		member("p3", 3, true, false),
	)
	group.Name = "Family Pot"
	group.Frequency = model.FrequencyMonthly
	group.CollectionDate = "5"
	backend := newMockBackend(group)
	exporter := &mockExporter{}
	now := time.Date(2025, time.January, 10, 0, 0, 0, 0, time.UTC)

	tab, err := ExportGroup(context.Background(), backend, exporter, plainFormatter{}, zap.NewNop(), "sheet123", "a", now)
	require.NoError(t, err)

	assert.Equal(t, "Ayuuto - Family Pot", tab)
	assert.Equal(t, "sheet123", exporter.spreadsheetID)

	ledger := exporter.ledger
	require.Len(t, ledger.Rows, 3)
	assert.Equal(t, "100.00", ledger.AmountLabel)
	assert.Equal(t, "200.00", ledger.PoolLabel)
	assert.Equal(t, "200.00", ledger.SavingsLabel)
	assert.Equal(t, 2, ledger.RoundNumber)

	// p1 was already paid out so has no upcoming date
	assert.Empty(t, ledger.Rows[0].PayoutDate)
	assert.Equal(t, "2025-02-05", ledger.Rows[1].PayoutDate)
	assert.True(t, ledger.Rows[1].IsRecipient)
	assert.Equal(t, "2025-03-05", ledger.Rows[2].PayoutDate)
}

func TestExportGroup_NotConfigured(t *testing.T) {
	_, err := ExportGroup(context.Background(), newMockBackend(), &mockExporter{}, plainFormatter{}, zap.NewNop(), "", "a", time.Now())
	assert.ErrorIs(t, err, ErrExportNotConfigured)
}
