// Package memory is a process-local LeadStore for development and tests.
//
// Every method takes one mutex, so InsertLeads is all-or-nothing exactly like
// the transactional stores: either every record gets an id or the store is
// unchanged.
package memory

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/JonMunkholm/LeadTracker/internal/core"
)

// Store implements core.LeadStore in memory.
type Store struct {
	mu sync.RWMutex

	campaigns  map[uuid.UUID]core.Campaign
	leads      map[int64]core.Lead
	activities map[int64][]core.Activity

	nextLeadID     int64
	nextActivityID int64

	now func() time.Time

	// FailInsert makes the next InsertLeads calls fail, for tests.
	FailInsert error
}

// New creates an empty store.
func New() *Store {
	return &Store{
		campaigns:  make(map[uuid.UUID]core.Campaign),
		leads:      make(map[int64]core.Lead),
		activities: make(map[int64][]core.Activity),
		now:        time.Now,
	}
}

var _ core.LeadStore = (*Store)(nil)

func (s *Store) CreateCampaign(_ context.Context, name string) (core.Campaign, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c := core.Campaign{ID: uuid.New(), Name: name, CreatedAt: s.now().UTC()}
	s.campaigns[c.ID] = c
	return c, nil
}

func (s *Store) InsertLeads(ctx context.Context, records []core.LeadRecord) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.FailInsert != nil {
		return s.FailInsert
	}
	for i, r := range records {
		if _, ok := s.campaigns[r.CampaignID]; !ok {
			return fmt.Errorf("insert lead %d: violates foreign key constraint on campaign %s", i, r.CampaignID)
		}
	}

	now := s.now().UTC()
	for _, r := range records {
		s.nextLeadID++
		r.ExtraFields = cloneExtra(r.ExtraFields)
		s.leads[s.nextLeadID] = core.Lead{
			ID:         s.nextLeadID,
			LeadRecord: r,
			CreatedAt:  now,
			UpdatedAt:  now,
		}
	}
	return nil
}

func (s *Store) ListCampaigns(_ context.Context) ([]core.CampaignSummary, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	counts := make(map[uuid.UUID]int, len(s.campaigns))
	for _, l := range s.leads {
		counts[l.CampaignID]++
	}

	out := make([]core.CampaignSummary, 0, len(s.campaigns))
	for _, c := range s.campaigns {
		out = append(out, core.CampaignSummary{Campaign: c, LeadCount: counts[c.ID]})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].Name < out[j].Name
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out, nil
}

func (s *Store) GetCampaign(_ context.Context, id uuid.UUID) (core.Campaign, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.campaigns[id]
	if !ok {
		return core.Campaign{}, fmt.Errorf("campaign %s: %w", id, core.ErrNotFound)
	}
	return c, nil
}

func (s *Store) ListLeads(_ context.Context, q core.LeadQuery) (core.LeadPage, error) {
	q = q.Normalize()

	s.mu.RLock()
	matched := make([]core.Lead, 0, len(s.leads))
	for _, l := range s.leads {
		if q.Matches(l) {
			matched = append(matched, detach(l))
		}
	}
	s.mu.RUnlock()

	sort.SliceStable(matched, lessBy(matched, q.Sort, q.Desc))

	page := core.LeadPage{Total: len(matched), Leads: []core.Lead{}}
	if q.Offset < len(matched) {
		end := min(q.Offset+q.Limit, len(matched))
		page.Leads = matched[q.Offset:end]
	}
	return page, nil
}

// lessBy orders by the sort column, then id so pages are stable.
func lessBy(leads []core.Lead, column string, desc bool) func(i, j int) bool {
	key := func(l core.Lead) string {
		switch column {
		case core.SortCompanyName:
			return strings.ToLower(l.CompanyName)
		case core.SortFirstName:
			return strings.ToLower(l.FirstName)
		case core.SortLastName:
			return strings.ToLower(l.LastName)
		case core.SortStatus:
			return string(l.Status)
		}
		return ""
	}

	return func(i, j int) bool {
		a, b := leads[i], leads[j]
		var cmp int
		if column == core.SortCreatedAt {
			cmp = a.CreatedAt.Compare(b.CreatedAt)
		} else {
			cmp = strings.Compare(key(a), key(b))
		}
		if cmp == 0 {
			cmp = compareInt(a.ID, b.ID)
		}
		if desc {
			return cmp > 0
		}
		return cmp < 0
	}
}

func compareInt(a, b int64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func (s *Store) GetLead(_ context.Context, id int64) (core.Lead, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	l, ok := s.leads[id]
	if !ok {
		return core.Lead{}, fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
	}
	return detach(l), nil
}

func (s *Store) UpdateLeadStatus(_ context.Context, id int64, status core.LeadStatus) (core.Lead, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	l, ok := s.leads[id]
	if !ok {
		return core.Lead{}, fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
	}
	l.Status = status
	l.UpdatedAt = s.now().UTC()
	s.leads[id] = l
	return detach(l), nil
}

// detach copies the lead's extra fields so callers cannot mutate stored state.
func detach(l core.Lead) core.Lead {
	l.ExtraFields = cloneExtra(l.ExtraFields)
	return l
}

func (s *Store) DeleteLead(_ context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[id]; !ok {
		return fmt.Errorf("lead %d: %w", id, core.ErrNotFound)
	}
	delete(s.leads, id)
	delete(s.activities, id)
	return nil
}

func (s *Store) AddActivity(_ context.Context, a core.Activity) (core.Activity, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.leads[a.LeadID]; !ok {
		return core.Activity{}, fmt.Errorf("lead %d: %w", a.LeadID, core.ErrNotFound)
	}
	s.nextActivityID++
	a.ID = s.nextActivityID
	a.CreatedAt = s.now().UTC()
	s.activities[a.LeadID] = append(s.activities[a.LeadID], a)
	return a, nil
}

func (s *Store) ListActivities(_ context.Context, leadID int64) ([]core.Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	src := s.activities[leadID]
	out := make([]core.Activity, len(src))
	for i, a := range src {
		out[len(src)-1-i] = a
	}
	return out, nil
}

func (s *Store) Stats(_ context.Context, campaignID *uuid.UUID) (core.LeadStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := core.NewLeadStats()
	for _, l := range s.leads {
		if campaignID != nil && l.CampaignID != *campaignID {
			continue
		}
		stats.Add(l.Status, 1)
	}
	return stats, nil
}

func (s *Store) Ping(context.Context) error { return nil }

func (s *Store) Close() error { return nil }

// LeadCount returns the number of stored leads.
func (s *Store) LeadCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.leads)
}

func cloneExtra(m map[string]string) map[string]string {
	if len(m) == 0 {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
