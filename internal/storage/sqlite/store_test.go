package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "leads.db"), Options{})
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func seed(t *testing.T, s *Store) core.Campaign {
	t.Helper()
	ctx := context.Background()

	c, err := s.CreateCampaign(ctx, "Spring")
	require.NoError(t, err)

	err = s.InsertLeads(ctx, []core.LeadRecord{
		{CampaignID: c.ID, CompanyName: "Acme", FirstName: "Jane", EmailAddress: "jane@acme.com", Status: core.StatusNew},
		{CampaignID: c.ID, CompanyName: "Globex", FirstName: "Hank", Status: core.StatusNew, ExtraFields: map[string]string{"Notes": "VIP"}},
		{CampaignID: c.ID, CompanyName: "Initech", LastName: "Lumbergh", Status: core.StatusMeetingSet},
	})
	require.NoError(t, err)
	return c
}

func TestDSN(t *testing.T) {
	assert.Equal(t, "file::memory:?_foreign_keys=on&_busy_timeout=5000", dsn(":memory:"))
	assert.Equal(t, "leads.db?_foreign_keys=on&_busy_timeout=5000", dsn("leads.db"))
	assert.Equal(t, "file:leads.db?mode=rwc&_foreign_keys=on&_busy_timeout=5000", dsn("file:leads.db?mode=rwc"))
}

func TestStore_InsertAndGet(t *testing.T) {
	s := openTestStore(t)
	c := seed(t, s)
	ctx := context.Background()

	page, err := s.ListLeads(ctx, core.LeadQuery{Search: "globex"})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)

	l, err := s.GetLead(ctx, page.Leads[0].ID)
	require.NoError(t, err)
	assert.Equal(t, "Globex", l.CompanyName)
	assert.Equal(t, c.ID, l.CampaignID)
	assert.Equal(t, core.StatusNew, l.Status)
	assert.Equal(t, "VIP", l.ExtraFields["Notes"])
	assert.False(t, l.CreatedAt.IsZero())

	_, err = s.GetLead(ctx, 9999)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	_, err = s.GetCampaign(ctx, uuid.New())
	assert.True(t, errors.Is(err, core.ErrNotFound))
}

func TestStore_InsertIsAtomic(t *testing.T) {
	s := openTestStore(t)
	c := seed(t, s)
	ctx := context.Background()

	err := s.InsertLeads(ctx, []core.LeadRecord{
		{CampaignID: c.ID, CompanyName: "Good"},
		{CampaignID: uuid.New(), CompanyName: "Orphan"},
	})
	require.Error(t, err)
	assert.Contains(t, strings.ToLower(err.Error()), "foreign key")

	stats, err := s.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Total)
}

func TestStore_InsertManyBatches(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	c, err := s.CreateCampaign(ctx, "Bulk")
	require.NoError(t, err)

	records := make([]core.LeadRecord, insertBatchSize*2+7)
	for i := range records {
		records[i] = core.LeadRecord{CampaignID: c.ID, CompanyName: "Co", Status: core.StatusNew}
	}
	require.NoError(t, s.InsertLeads(ctx, records))

	list, err := s.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, len(records), list[0].LeadCount)
}

func TestStore_ListLeads(t *testing.T) {
	s := openTestStore(t)
	c := seed(t, s)
	ctx := context.Background()

	page, err := s.ListLeads(ctx, core.LeadQuery{Search: "ACME"})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, "Acme", page.Leads[0].CompanyName)

	page, err = s.ListLeads(ctx, core.LeadQuery{Search: "100%"})
	require.NoError(t, err)
	assert.Empty(t, page.Leads)
	assert.NotNil(t, page.Leads)

	page, err = s.ListLeads(ctx, core.LeadQuery{Status: core.StatusMeetingSet})
	require.NoError(t, err)
	assert.Equal(t, 1, page.Total)

	page, err = s.ListLeads(ctx, core.LeadQuery{CampaignID: &c.ID, Sort: core.SortCompanyName})
	require.NoError(t, err)
	require.Len(t, page.Leads, 3)
	assert.Equal(t, "Acme", page.Leads[0].CompanyName)
	assert.Equal(t, "Initech", page.Leads[2].CompanyName)

	page, err = s.ListLeads(ctx, core.LeadQuery{Sort: core.SortCompanyName, Limit: 2, Offset: 2})
	require.NoError(t, err)
	assert.Equal(t, 3, page.Total)
	require.Len(t, page.Leads, 1)
	assert.Equal(t, "Initech", page.Leads[0].CompanyName)
}

func TestStore_LeadLifecycle(t *testing.T) {
	s := openTestStore(t)
	seed(t, s)
	ctx := context.Background()

	page, err := s.ListLeads(ctx, core.LeadQuery{Search: "acme"})
	require.NoError(t, err)
	id := page.Leads[0].ID

	l, err := s.UpdateLeadStatus(ctx, id, core.StatusContacted)
	require.NoError(t, err)
	assert.Equal(t, core.StatusContacted, l.Status)

	_, err = s.UpdateLeadStatus(ctx, 9999, core.StatusContacted)
	assert.True(t, errors.Is(err, core.ErrNotFound))

	first, err := s.AddActivity(ctx, core.Activity{LeadID: id, ContactMethod: core.ContactCall, Notes: "no answer"})
	require.NoError(t, err)
	second, err := s.AddActivity(ctx, core.Activity{LeadID: id, ContactMethod: core.ContactEmail})
	require.NoError(t, err)

	acts, err := s.ListActivities(ctx, id)
	require.NoError(t, err)
	require.Len(t, acts, 2)
	assert.Equal(t, second.ID, acts[0].ID)
	assert.Equal(t, first.ID, acts[1].ID)
	assert.Equal(t, "no answer", acts[1].Notes)

	_, err = s.AddActivity(ctx, core.Activity{LeadID: 9999, ContactMethod: core.ContactCall})
	assert.True(t, errors.Is(err, core.ErrNotFound))

	require.NoError(t, s.DeleteLead(ctx, id))
	assert.True(t, errors.Is(s.DeleteLead(ctx, id), core.ErrNotFound))

	acts, err = s.ListActivities(ctx, id)
	require.NoError(t, err)
	assert.Empty(t, acts)
}

func TestStore_Stats(t *testing.T) {
	s := openTestStore(t)
	c := seed(t, s)
	ctx := context.Background()

	other, err := s.CreateCampaign(ctx, "Fall")
	require.NoError(t, err)
	require.NoError(t, s.InsertLeads(ctx, []core.LeadRecord{{CampaignID: other.ID, CompanyName: "Hooli", Status: core.StatusNew}}))

	all, err := s.Stats(ctx, nil)
	require.NoError(t, err)
	assert.Equal(t, 4, all.Total)
	assert.Equal(t, 3, all.ByStatus[core.StatusNew])
	assert.Equal(t, 0, all.ByStatus[core.StatusNotInterested])

	one, err := s.Stats(ctx, &c.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, one.Total)
	assert.Equal(t, 1, one.ByStatus[core.StatusMeetingSet])

	require.NoError(t, s.Ping(ctx))
}
