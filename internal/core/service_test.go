package core_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/JonMunkholm/LeadTracker/internal/core"
	"github.com/JonMunkholm/LeadTracker/internal/logging"
	"github.com/JonMunkholm/LeadTracker/internal/storage/memory"
)

const leadsCSV = "Company Name,First Name,Email Address,Notes\n" +
	"Acme,Jane,jane@acme.com,VIP\n" +
	"Globex,Hank,hank@globex.com,\n"

type recordingNotifier struct {
	mu     sync.Mutex
	events []core.ImportEvent
	err    error
}

func (n *recordingNotifier) NotifyImported(_ context.Context, ev core.ImportEvent) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.events = append(n.events, ev)
	return n.err
}

func newService(t *testing.T, opts ...core.Option) (*core.Service, *memory.Store) {
	t.Helper()
	store := memory.New()
	svc := core.NewService(store, core.ServiceConfig{
		DefaultCompanyName:   "Unknown Company",
		MaxConcurrentImports: 2,
		MaxWaitTime:          50 * time.Millisecond,
	}, opts...)
	return svc, store
}

func TestService_ImportNewCampaign(t *testing.T) {
	notifier := &recordingNotifier{}
	cache := core.NewMemoryViewCache()
	svc, store := newService(t, core.WithNotifier(notifier), core.WithViewCache(cache))
	ctx := core.ContextWithUser(context.Background(), "rep@example.com")

	// Prime the cache so the import has something to invalidate.
	_, err := svc.Stats(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	res, err := svc.Import(ctx, core.ImportText{
		Campaign: core.CampaignTarget{NewName: "Spring"},
		Text:     leadsCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 2, store.LeadCount())
	assert.Equal(t, 0, cache.Len(), "import should invalidate cached views")

	require.Len(t, notifier.events, 1)
	ev := notifier.events[0]
	assert.Equal(t, res.CampaignID, ev.CampaignID)
	assert.Equal(t, 2, ev.InsertedCount)
	assert.Equal(t, "rep@example.com", ev.ImportedBy)

	page, err := svc.ListLeads(ctx, core.LeadQuery{Search: "acme"})
	require.NoError(t, err)
	require.Len(t, page.Leads, 1)
	lead := page.Leads[0]
	assert.Equal(t, core.StatusNew, lead.Status)
	assert.Equal(t, map[string]string{"Notes": "VIP"}, lead.ExtraFields)
	assert.Equal(t, res.CampaignID, lead.CampaignID)
}

func TestService_ImportErrors(t *testing.T) {
	svc, store := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, core.ImportText{Campaign: core.CampaignTarget{NewName: "X"}, Text: "Company Name\n"})
	assert.ErrorIs(t, err, core.ErrNoRows)

	_, err = svc.Import(ctx, core.ImportText{
		Campaign: core.CampaignTarget{NewName: "X"},
		Text:     "Company Name,Notes\nAcme,hi\n",
	})
	var ve *core.ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Equal(t, core.RuleContactName, ve.Rule)

	store.FailInsert = errors.New("connection reset by peer")
	_, err = svc.Import(ctx, core.ImportText{Campaign: core.CampaignTarget{NewName: "X"}, Text: leadsCSV})
	var se *core.StorageError
	require.ErrorAs(t, err, &se)
	assert.True(t, se.Retryable())
	assert.Equal(t, 0, store.LeadCount())
}

func TestService_ImportRetryAfterInsertFailure(t *testing.T) {
	cache := core.NewMemoryViewCache()
	svc, store := newService(t, core.WithViewCache(cache))
	ctx := context.Background()

	_, err := svc.Stats(ctx, nil)
	require.NoError(t, err)
	require.Equal(t, 1, cache.Len())

	store.FailInsert = errors.New("connection reset by peer")
	in := core.ImportText{Campaign: core.CampaignTarget{NewName: "Q3"}, Text: leadsCSV}
	_, err = svc.Import(ctx, in)
	var se *core.StorageError
	require.ErrorAs(t, err, &se)
	require.NotEqual(t, uuid.Nil, se.CampaignID)
	assert.Equal(t, 0, cache.Len(), "created campaign should invalidate cached views")

	store.FailInsert = nil
	in.Campaign = se.RetryTarget(in.Campaign)
	res, err := svc.Import(ctx, in)
	require.NoError(t, err)
	assert.Equal(t, se.CampaignID, res.CampaignID)

	campaigns, err := svc.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, 2, campaigns[0].LeadCount)
}

// captureLogs routes the default logger into a buffer for the test.
func captureLogs(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(logging.New(&buf, "info", "json"))
	t.Cleanup(func() { slog.SetDefault(prev) })
	return &buf
}

func logEntries(t *testing.T, buf *bytes.Buffer) map[string]map[string]any {
	t.Helper()
	entries := make(map[string]map[string]any)
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		var entry map[string]any
		require.NoError(t, json.Unmarshal([]byte(line), &entry))
		entries[entry["msg"].(string)] = entry
	}
	return entries
}

func TestService_LogsCarryClientDetails(t *testing.T) {
	notifier := &recordingNotifier{}
	svc, _ := newService(t, core.WithNotifier(notifier))
	buf := captureLogs(t)

	ctx := core.ContextWithIPAddress(context.Background(), "203.0.113.7")
	ctx = core.ContextWithUserAgent(ctx, "curl/8.5.0")

	_, err := svc.Import(ctx, core.ImportText{Campaign: core.CampaignTarget{NewName: "S"}, Text: leadsCSV})
	require.NoError(t, err)
	page, err := svc.ListLeads(ctx, core.LeadQuery{Search: "acme"})
	require.NoError(t, err)
	id := page.Leads[0].ID
	_, err = svc.AddActivity(ctx, id, core.ContactCall, "")
	require.NoError(t, err)
	_, err = svc.UpdateLeadStatus(ctx, id, core.StatusMeetingSet)
	require.NoError(t, err)

	entries := logEntries(t, buf)
	for _, msg := range []string{"import started", "import completed", "activity logged", "lead status updated"} {
		entry, ok := entries[msg]
		require.True(t, ok, "missing %q log", msg)
		assert.Equal(t, "203.0.113.7", entry["ip"], msg)
		assert.Equal(t, "curl/8.5.0", entry["user_agent"], msg)
	}
	assert.Equal(t, "new", entries["activity logged"]["previous_status"])

	require.Len(t, notifier.events, 1)
	assert.Equal(t, "203.0.113.7", notifier.events[0].SourceIP)
}

func TestService_ImportNotifierFailureDoesNotFailImport(t *testing.T) {
	notifier := &recordingNotifier{err: errors.New("broker down")}
	svc, store := newService(t, core.WithNotifier(notifier))

	res, err := svc.Import(context.Background(), core.ImportText{
		Campaign: core.CampaignTarget{NewName: "Spring"},
		Text:     leadsCSV,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, res.InsertedCount)
	assert.Equal(t, 2, store.LeadCount())
}

func TestService_ImportLimiterBusy(t *testing.T) {
	store := memory.New()
	svc := core.NewService(store, core.ServiceConfig{MaxConcurrentImports: 1, MaxWaitTime: 20 * time.Millisecond})

	// Hold the only slot through a blocked session import.
	session := core.NewImportSession()
	session, _ = session.NewCampaign("Busy")
	session, _ = session.Upload(leadsCSV)
	req := session.Request()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	blocking := &blockingStore{Store: store, release: make(chan struct{}), entered: make(chan struct{})}
	slow := core.NewService(blocking, core.ServiceConfig{MaxConcurrentImports: 1, MaxWaitTime: 20 * time.Millisecond})

	done := make(chan error, 1)
	go func() {
		_, err := slow.RunImport(ctx, req)
		done <- err
	}()
	<-blocking.entered

	_, err := slow.RunImport(context.Background(), req)
	assert.ErrorIs(t, err, core.ErrTooManyImports)
	assert.Equal(t, 1, slow.LimiterStatus().Active)

	close(blocking.release)
	require.NoError(t, <-done)

	waitCtx, waitCancel := context.WithTimeout(context.Background(), time.Second)
	defer waitCancel()
	assert.NoError(t, slow.WaitForImports(waitCtx))

	// The unblocked service is unaffected.
	_, err = svc.RunImport(context.Background(), req)
	assert.NoError(t, err)
}

type blockingStore struct {
	*memory.Store
	entered chan struct{}
	release chan struct{}
	once    sync.Once
}

func (b *blockingStore) InsertLeads(ctx context.Context, leads []core.LeadRecord) error {
	b.once.Do(func() { close(b.entered) })
	<-b.release
	return b.Store.InsertLeads(ctx, leads)
}

func TestService_PreviewImport(t *testing.T) {
	svc, _ := newService(t)

	p, err := svc.PreviewImport(leadsCSV, nil)
	require.NoError(t, err)
	assert.Equal(t, []string{"Company Name", "First Name", "Email Address", "Notes"}, p.Headers)
	assert.Equal(t, "comma", p.Delimiter)
	assert.Equal(t, 2, p.RowCount)
	assert.Nil(t, p.Validation)
	assert.Equal(t, core.FieldEmailAddress, p.Mapping["Email Address"])
	assert.NotContains(t, p.Mapping, "Notes")

	p, err = svc.PreviewImport(leadsCSV, core.FieldMapping{"Company Name": core.FieldCompanyName})
	require.NoError(t, err)
	require.NotNil(t, p.Validation)
	assert.Equal(t, "MAP002", p.Validation.Code)

	_, err = svc.PreviewImport("", nil)
	assert.ErrorIs(t, err, core.ErrNoRows)
}

func TestService_AddActivityBumpsNewLead(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.Import(ctx, core.ImportText{Campaign: core.CampaignTarget{NewName: "S"}, Text: leadsCSV})
	require.NoError(t, err)

	page, err := svc.ListLeads(ctx, core.LeadQuery{Search: "globex"})
	require.NoError(t, err)
	id := page.Leads[0].ID

	_, err = svc.AddActivity(ctx, id, core.ContactCall, "left voicemail")
	require.NoError(t, err)
	lead, err := svc.GetLead(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusContacted, lead.Status)

	_, err = svc.UpdateLeadStatus(ctx, id, core.StatusMeetingSet)
	require.NoError(t, err)
	_, err = svc.AddActivity(ctx, id, core.ContactEmail, "sent agenda")
	require.NoError(t, err)
	lead, err = svc.GetLead(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, core.StatusMeetingSet, lead.Status, "later statuses are not overwritten")

	acts, err := svc.ListActivities(ctx, id)
	require.NoError(t, err)
	assert.Len(t, acts, 2)

	_, err = svc.AddActivity(ctx, id, core.ContactMethod("fax"), "")
	assert.ErrorIs(t, err, core.ErrInvalidContactMethod)
	_, err = svc.UpdateLeadStatus(ctx, id, core.LeadStatus("won"))
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
	_, err = svc.AddActivity(ctx, 9999, core.ContactCall, "")
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_StatsAreCachedUntilWrite(t *testing.T) {
	cache := core.NewMemoryViewCache()
	svc, _ := newService(t, core.WithViewCache(cache))
	ctx := context.Background()

	res, err := svc.Import(ctx, core.ImportText{Campaign: core.CampaignTarget{NewName: "S"}, Text: leadsCSV})
	require.NoError(t, err)

	stats, err := svc.Stats(ctx, &res.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ByStatus[core.StatusNew])
	assert.Equal(t, 1, cache.Len())

	page, _ := svc.ListLeads(ctx, core.LeadQuery{})
	require.NoError(t, svc.DeleteLead(ctx, page.Leads[0].ID))
	assert.Equal(t, 0, cache.Len())

	stats, err = svc.Stats(ctx, &res.CampaignID)
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Total)

	campaigns, err := svc.ListCampaigns(ctx)
	require.NoError(t, err)
	require.Len(t, campaigns, 1)
	assert.Equal(t, 1, campaigns[0].LeadCount)

	_, err = svc.GetCampaign(ctx, uuid.New())
	assert.ErrorIs(t, err, core.ErrNotFound)
}

func TestService_CreateCampaignAndImportIntoIt(t *testing.T) {
	svc, _ := newService(t)
	ctx := context.Background()

	_, err := svc.CreateCampaign(ctx, "  ")
	assert.ErrorIs(t, err, core.ErrCampaignRequired)

	c, err := svc.CreateCampaign(ctx, "Existing")
	require.NoError(t, err)

	res, err := svc.Import(ctx, core.ImportText{Campaign: core.CampaignTarget{ID: c.ID}, Text: leadsCSV})
	require.NoError(t, err)
	assert.Equal(t, c.ID, res.CampaignID)

	// Re-importing the same file inserts new rows.
	_, err = svc.Import(ctx, core.ImportText{Campaign: core.CampaignTarget{ID: c.ID}, Text: leadsCSV})
	require.NoError(t, err)
	page, err := svc.ListLeads(ctx, core.LeadQuery{CampaignID: &c.ID})
	require.NoError(t, err)
	assert.Equal(t, 4, page.Total)

	_, err = svc.ListLeads(ctx, core.LeadQuery{Status: "bogus"})
	assert.ErrorIs(t, err, core.ErrInvalidStatus)
}
